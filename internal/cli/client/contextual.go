package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// ContextualRequest represents the contextual search API request.
type ContextualRequest struct {
	Exercises      []string `json:"exercises,omitempty"`
	MuscleGroups   []string `json:"muscle_groups,omitempty"`
	Goals          []string `json:"goals,omitempty"`
	KnowledgeTypes []string `json:"knowledge_types,omitempty"`
	Difficulty     string   `json:"difficulty,omitempty"`
	Limit          int      `json:"limit,omitempty"`
}

// ContextualCmd creates the contextual command.
func ContextualCmd() *cobra.Command {
	var (
		exercises      []string
		muscleGroups   []string
		goals          []string
		knowledgeTypes []string
		difficulty     string
		limit          int
		showPrompt     bool
	)

	cmd := &cobra.Command{
		Use:   "contextual",
		Short: "Retrieve knowledge for structured workout signals",
		Long:  "Retrieves knowledge for a workout context built from exercises, muscle groups and goals.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			req := ContextualRequest{
				Exercises:      exercises,
				MuscleGroups:   muscleGroups,
				Goals:          goals,
				KnowledgeTypes: knowledgeTypes,
				Difficulty:     difficulty,
				Limit:          limit,
			}
			return runContextual(cmd, req, outputJSON, showPrompt)
		},
	}

	cmd.Flags().StringSliceVarP(&exercises, "exercise", "e", nil, "Exercise name (repeatable)")
	cmd.Flags().StringSliceVarP(&muscleGroups, "muscle-group", "m", nil, "Muscle group (repeatable)")
	cmd.Flags().StringSliceVarP(&goals, "goal", "g", nil, "Training goal (repeatable)")
	cmd.Flags().StringSliceVarP(&knowledgeTypes, "types", "t", nil, "Knowledge types to include")
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "Difficulty ceiling (beginner, intermediate, advanced)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results")
	cmd.Flags().BoolVar(&showPrompt, "prompt", false, "Print the assembled context prompt instead of a result list")

	return cmd
}

func runContextual(cmd *cobra.Command, req ContextualRequest, outputJSON, showPrompt bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/knowledge/contextual", req)
	if err != nil {
		return fmt.Errorf("contextual search failed: %w", err)
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(resp.Data, &searchResp); err != nil {
		return fmt.Errorf("failed to parse search results: %w", err)
	}

	printResults(searchResp, outputJSON, showPrompt)
	return nil
}
