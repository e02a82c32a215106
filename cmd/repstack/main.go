package main

import (
	"fmt"
	"os"

	"github.com/repstack/knowledge/internal/cli"
	"github.com/repstack/knowledge/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "repstack",
		Short: "Repstack CLI - fitness knowledge retrieval",
		Long: `Repstack CLI queries the fitness knowledge base.

Environment variables:
  REPSTACK_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.ContextualCmd())
	rootCmd.AddCommand(client.BatchCmd())
	rootCmd.AddCommand(client.TrendingCmd())
	rootCmd.AddCommand(client.ExerciseCmd())
	rootCmd.AddCommand(client.MuscleCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
