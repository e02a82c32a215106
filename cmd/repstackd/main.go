package main

import (
	"fmt"
	"os"

	"github.com/repstack/knowledge/internal/cli"
	"github.com/repstack/knowledge/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "repstackd",
		Short: "Repstack knowledge daemon",
		Long:  "Repstack knowledge daemon for serving the fitness knowledge retrieval API",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
