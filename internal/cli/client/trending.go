package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

// TrendingCmd creates the trending command.
func TrendingCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "trending",
		Short: "Show the most viewed knowledge",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runTrending(cmd, limit, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results")

	return cmd
}

func runTrending(cmd *cobra.Command, limit int, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	path := "/knowledge/trending"
	if limit > 0 {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(limit))
		path += "?" + params.Encode()
	}

	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("trending lookup failed: %w", err)
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(resp.Data, &searchResp); err != nil {
		return fmt.Errorf("failed to parse results: %w", err)
	}

	printResults(searchResp, outputJSON, false)
	return nil
}
