package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ganot/interview-etl/internal/domain/query"
	"github.com/ganot/interview-etl/internal/domain/workspace"
	"github.com/spf13/cobra"
)

// cliWorkspace names the single workspace a command invocation works in.
const cliWorkspace = "cli"

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a job's records as CSV",
	Long: "Opens a table on a completed job's results (or a schema's sample rows), applies an " +
		"optional search, filter and sort, and writes the CSV to a file, stdout or the export sink.",
	RunE: runExport,
}

var (
	exportJob     string
	exportSchema  string
	exportOut     string
	exportFields  string
	exportSearch  string
	exportFilter  string
	exportSort    string
	exportDesc    bool
	exportPublish bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportJob, "job", "j", "", "Completed job to export (sample rows when empty)")
	exportCmd.Flags().StringVarP(&exportSchema, "schema", "s", "", "Schema of the sample rows when no job is given")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (stdout when empty)")
	exportCmd.Flags().StringVar(&exportFields, "fields", "", "Comma separated columns to export, in order")
	exportCmd.Flags().StringVar(&exportSearch, "search", "", "Only records whose searchable fields contain this text")
	exportCmd.Flags().StringVar(&exportFilter, "filter", "", "Comma separated field=value constraints")
	exportCmd.Flags().StringVar(&exportSort, "sort", "", "Field to sort by")
	exportCmd.Flags().BoolVar(&exportDesc, "desc", false, "Sort descending")
	exportCmd.Flags().BoolVar(&exportPublish, "publish", false, "Write to the export sink and print its key and URL")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	filters, err := parseFilters(exportFilter)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cmd.ErrOrStderr(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	open := workspace.OpenRequest{ID: cliWorkspace, Schema: exportSchema, Seed: workspace.SeedSample}
	if exportJob != "" {
		j, err := a.jobs.Get(ctx, exportJob)
		if err != nil {
			return err
		}
		open = workspace.OpenRequest{ID: cliWorkspace, Schema: j.Construct, Seed: workspace.SeedJob, JobID: j.ID}
	}
	if _, err := a.workspaces.Open(ctx, open); err != nil {
		return err
	}
	defer a.workspaces.Close(ctx, cliWorkspace)

	req := workspace.ExportRequest{FieldOrder: splitList(exportFields)}
	if exportSearch != "" || len(filters) > 0 || exportSort != "" || exportDesc {
		spec := &query.ViewSpec{Search: exportSearch, Filters: filters, SortField: exportSort, Direction: query.Ascending}
		if exportDesc {
			spec.Direction = query.Descending
		}
		req.View = spec
	}

	if exportPublish {
		pub, err := a.workspaces.Publish(ctx, cliWorkspace, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "published %d records to %s\n", pub.Records, pub.Key)
		if pub.URL != "" {
			fmt.Fprintln(cmd.OutOrStdout(), pub.URL)
		}
		return nil
	}

	text, err := a.workspaces.Export(ctx, cliWorkspace, req)
	if err != nil {
		return err
	}
	if exportOut == "" {
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	}
	if err := os.WriteFile(exportOut, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func parseFilters(v string) (map[string]string, error) {
	pairs := splitList(v)
	if len(pairs) == 0 {
		return nil, nil
	}
	filters := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		field, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(field) == "" {
			return nil, fmt.Errorf("invalid filter %q, want field=value", pair)
		}
		filters[strings.TrimSpace(field)] = strings.TrimSpace(value)
	}
	return filters, nil
}
