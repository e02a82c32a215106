package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

// ExerciseCmd creates the exercise lookup command.
func ExerciseCmd() *cobra.Command {
	var (
		knowledgeTypes string
		limit          int
	)

	cmd := &cobra.Command{
		Use:   "exercise <name>",
		Short: "Look up knowledge for a specific exercise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			path := "/knowledge/exercise/" + url.PathEscape(args[0])
			return runTagLookup(cmd, path, knowledgeTypes, limit, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&knowledgeTypes, "types", "t", "", "Comma separated knowledge types to include")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results")

	return cmd
}

// MuscleCmd creates the muscle group lookup command.
func MuscleCmd() *cobra.Command {
	var (
		knowledgeTypes string
		limit          int
	)

	cmd := &cobra.Command{
		Use:   "muscle <group>",
		Short: "Look up knowledge for a muscle group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			path := "/knowledge/muscle/" + url.PathEscape(args[0])
			return runTagLookup(cmd, path, knowledgeTypes, limit, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&knowledgeTypes, "types", "t", "", "Comma separated knowledge types to include")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results")

	return cmd
}

func runTagLookup(cmd *cobra.Command, path, knowledgeTypes string, limit int, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	params := url.Values{}
	if knowledgeTypes != "" {
		params.Set("knowledge_types", knowledgeTypes)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(resp.Data, &searchResp); err != nil {
		return fmt.Errorf("failed to parse results: %w", err)
	}

	printResults(searchResp, outputJSON, false)
	return nil
}
