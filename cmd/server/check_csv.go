package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ganot/interview-etl/internal/csvcodec"
	"github.com/ganot/interview-etl/internal/domain/record"
	"github.com/ganot/interview-etl/internal/domain/schema"
	"github.com/spf13/cobra"
)

var checkCSVCmd = &cobra.Command{
	Use:   "check-csv",
	Short: "Check that a CSV file decodes into valid records",
	Long: "Decodes a CSV file against a schema and validates every row as the table would " +
		"on import. Reports the record count, or the first problem found.",
	RunE: runCheckCSV,
}

var (
	checkCSVFile   string
	checkCSVSchema string
	checkCSVFields string
)

func init() {
	checkCSVCmd.Flags().StringVarP(&checkCSVFile, "file", "f", "", "Path to the CSV file, or - for stdin (required)")
	checkCSVCmd.Flags().StringVarP(&checkCSVSchema, "schema", "s", "", "Schema to check against (defaults to the configured schema)")
	checkCSVCmd.Flags().StringVar(&checkCSVFields, "fields", "", "Comma separated column order of the file")

	if err := checkCSVCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}

	rootCmd.AddCommand(checkCSVCmd)
}

func runCheckCSV(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	var (
		data []byte
		err  error
	)
	if checkCSVFile == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(checkCSVFile)
	}
	if err != nil {
		return fmt.Errorf("failed to read CSV file: %w", err)
	}

	a, err := newApp(ctx, cmd.ErrOrStderr(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	name := checkCSVSchema
	if name == "" {
		name = a.cfg.Table.DefaultSchema
	}
	sc, err := a.constructs.Resolve(ctx, name)
	if err != nil {
		return err
	}

	records, err := decodeRows(string(data), sc, splitList(checkCSVFields))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "ok: %d %s records\n", len(records), sc.Name)
	return nil
}

// decodeRows decodes CSV text and validates the rows as one table would.
// The returned records carry schema defaults for columns the text leaves out.
func decodeRows(text string, sc *schema.Schema, fieldOrder []string) ([]record.Record, error) {
	records, err := csvcodec.Decode(text, sc, fieldOrder)
	if err != nil {
		return nil, err
	}
	st, err := record.NewStore(sc, record.StaticSeed(records...))
	if err != nil {
		return nil, err
	}
	return st.Records(), nil
}
