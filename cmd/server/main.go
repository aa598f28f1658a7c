// Package main provides the interview-etl server and its maintenance commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "interview-etl",
	Short: "Record table server for interview extraction results",
	Long: "interview-etl serves editable tables of user stories and requirements over MCP, " +
		"and imports, checks and exports their CSV form from the command line.",
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
