package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/ganot/interview-etl/internal/domain/job"
	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List extraction jobs",
	RunE:  runJobs,
}

var (
	jobsStatus    string
	jobsConstruct string
	jobsLimit     int
)

func init() {
	jobsCmd.Flags().StringVar(&jobsStatus, "status", "", "Only jobs in this status (CREATED, UPLOADING, PROCESSING, COMPLETED, FAILED)")
	jobsCmd.Flags().StringVar(&jobsConstruct, "schema", "", "Only jobs for this schema")
	jobsCmd.Flags().IntVar(&jobsLimit, "limit", 50, "Maximum number of jobs to list")

	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	status := job.Status(jobsStatus)
	if status != "" && !status.Valid() {
		return fmt.Errorf("unknown job status %q", jobsStatus)
	}

	a, err := newApp(ctx, cmd.ErrOrStderr(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	jobs, err := a.jobs.List(ctx, job.ListOptions{Status: status, Construct: jobsConstruct, Limit: jobsLimit})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSCHEMA\tSTATUS\tRESULTS")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", j.ID, j.Name, j.Construct, j.Status, j.ResultCount)
	}
	return tw.Flush()
}
