package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/ganot/interview-etl/internal/domain/schema"
	"github.com/spf13/cobra"
)

var schemasCmd = &cobra.Command{
	Use:   "schemas",
	Short: "List, show or import record schemas",
	RunE:  runSchemas,
}

var (
	schemasImport string
	schemasShow   string
)

func init() {
	schemasCmd.Flags().StringVar(&schemasImport, "import", "", "YAML file of schemas to store before listing")
	schemasCmd.Flags().StringVar(&schemasShow, "show", "", "Print the YAML definition of one schema")

	rootCmd.AddCommand(schemasCmd)
}

func runSchemas(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cmd.ErrOrStderr(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if schemasImport != "" {
		n, err := a.constructs.Import(ctx, schemasImport)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "imported %d schemas\n", n)
	}

	if schemasShow != "" {
		sc, err := a.constructs.Resolve(ctx, schemasShow)
		if err != nil {
			return err
		}
		data, err := schema.Marshal(sc)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	summaries, err := a.constructs.List(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPREFIX\tFIELDS\tBUILTIN\tDESCRIPTION")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%t\t%s\n", s.Name, s.IDPrefix, s.Fields, s.Builtin, s.Description)
	}
	return tw.Flush()
}
