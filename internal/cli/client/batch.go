package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// BatchRequest represents the batch search API request.
type BatchRequest struct {
	Keywords []string `json:"keywords"`
	Limit    int      `json:"limit,omitempty"`
}

// BatchCmd creates the batch search command.
func BatchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "batch <keyword>...",
		Short: "Search multiple keywords in one combined query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runBatch(cmd, args, limit, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results")

	return cmd
}

func runBatch(cmd *cobra.Command, keywords []string, limit int, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/knowledge/batch", BatchRequest{Keywords: keywords, Limit: limit})
	if err != nil {
		return fmt.Errorf("batch search failed: %w", err)
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(resp.Data, &searchResp); err != nil {
		return fmt.Errorf("failed to parse results: %w", err)
	}

	printResults(searchResp, outputJSON, false)
	return nil
}
