package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ganot/interview-etl/internal/domain/job"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Store a CSV file as the results of a completed extraction job",
	Long: "Decodes and validates a CSV file against a schema and stores its rows as a COMPLETED job, " +
		"which workspaces can then open or import. Prints the job ID.",
	RunE: runIngest,
}

var (
	ingestFile   string
	ingestSchema string
	ingestName   string
	ingestID     string
	ingestFields string
)

func init() {
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "Path to the CSV file (required)")
	ingestCmd.Flags().StringVarP(&ingestSchema, "schema", "s", "", "Schema the rows conform to (defaults to the configured schema)")
	ingestCmd.Flags().StringVarP(&ingestName, "name", "n", "", "Job name (defaults to the file name)")
	ingestCmd.Flags().StringVar(&ingestID, "id", "", "Job ID (generated when empty)")
	ingestCmd.Flags().StringVar(&ingestFields, "fields", "", "Comma separated column order of the file (defaults to every schema field)")

	if err := ingestCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	data, err := os.ReadFile(ingestFile)
	if err != nil {
		return fmt.Errorf("failed to read CSV file: %w", err)
	}

	a, err := newApp(ctx, cmd.ErrOrStderr(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	schemaName := ingestSchema
	if schemaName == "" {
		schemaName = a.cfg.Table.DefaultSchema
	}
	sc, err := a.constructs.Resolve(ctx, schemaName)
	if err != nil {
		return err
	}

	name := ingestName
	if name == "" {
		name = ingestFile
	}
	j, err := a.jobs.Create(ctx, job.CreateRequest{ID: ingestID, Name: name, Construct: sc.Name})
	if err != nil {
		return err
	}
	if err := a.jobs.Advance(ctx, j.ID, job.StatusProcessing); err != nil {
		return err
	}

	records, err := decodeRows(string(data), sc, splitList(ingestFields))
	if err != nil {
		if failErr := a.jobs.Fail(ctx, j.ID, err.Error()); failErr != nil {
			return errors.Join(err, failErr)
		}
		return fmt.Errorf("job %s failed: %w", j.ID, err)
	}
	if err := a.jobs.Complete(ctx, j.ID, records); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), j.ID)
	return nil
}
