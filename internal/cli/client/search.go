package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var (
		knowledgeTypes string
		muscleGroup    string
		difficulty     string
		limit          int
		showPrompt     bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the knowledge base",
		Long:  "Searches the knowledge base with hybrid semantic and keyword search.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSearch(cmd, args[0], knowledgeTypes, muscleGroup, difficulty, limit, outputJSON, showPrompt)
		},
	}

	cmd.Flags().StringVarP(&knowledgeTypes, "types", "t", "", "Comma separated knowledge types to include")
	cmd.Flags().StringVarP(&muscleGroup, "muscle-group", "m", "", "Filter by muscle group")
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "Difficulty ceiling (beginner, intermediate, advanced)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results")
	cmd.Flags().BoolVar(&showPrompt, "prompt", false, "Print the assembled context prompt instead of a result list")

	return cmd
}

func runSearch(cmd *cobra.Command, query, knowledgeTypes, muscleGroup, difficulty string, limit int, outputJSON, showPrompt bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("query", query)
	if knowledgeTypes != "" {
		params.Set("knowledge_types", knowledgeTypes)
	}
	if muscleGroup != "" {
		params.Set("muscle_group", muscleGroup)
	}
	if difficulty != "" {
		params.Set("difficulty", difficulty)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	resp, err := api.Get("/knowledge/search?" + params.Encode())
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(resp.Data, &searchResp); err != nil {
		return fmt.Errorf("failed to parse search results: %w", err)
	}

	printResults(searchResp, outputJSON, showPrompt)
	return nil
}
