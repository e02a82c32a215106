package client

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SearchResult represents one formatted knowledge record.
type SearchResult struct {
	ID           string        `json:"id"`
	Type         string        `json:"knowledge_type"`
	Content      string        `json:"content"`
	Summary      string        `json:"summary,omitempty"`
	ExerciseName string        `json:"exercise_name,omitempty"`
	MuscleGroup  string        `json:"muscle_group,omitempty"`
	Difficulty   string        `json:"difficulty_level,omitempty"`
	Source       *SourceDetail `json:"source,omitempty"`
}

// SourceDetail carries the provenance of a record.
type SourceDetail struct {
	VideoURL   string `json:"video_url,omitempty"`
	VideoTitle string `json:"video_title,omitempty"`
	Channel    string `json:"channel,omitempty"`
}

// SearchResponse represents the search API response.
type SearchResponse struct {
	Results       []SearchResult `json:"results"`
	ContextPrompt string         `json:"context_prompt"`
}

func printResults(resp SearchResponse, outputJSON, showPrompt bool) {
	if outputJSON {
		output, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(output))
		return
	}

	if showPrompt {
		fmt.Println(resp.ContextPrompt)
		return
	}

	if len(resp.Results) == 0 {
		fmt.Println("No results found.")
		return
	}

	fmt.Printf("Found %d results:\n\n", len(resp.Results))
	for i, result := range resp.Results {
		heading := result.Summary
		if heading == "" {
			heading = result.Type
		}
		fmt.Printf("%d. %s\n", i+1, heading)

		content := result.Content
		if len(content) > 200 {
			content = content[:197] + "..."
		}
		fmt.Printf("   %s\n", content)

		if result.ExerciseName != "" {
			fmt.Printf("   Exercise: %s\n", result.ExerciseName)
		}
		if result.MuscleGroup != "" {
			fmt.Printf("   Muscle group: %s\n", result.MuscleGroup)
		}
		if result.Difficulty != "" {
			fmt.Printf("   Difficulty: %s\n", result.Difficulty)
		}
		if result.Source != nil && result.Source.VideoTitle != "" {
			fmt.Printf("   Source: %s (%s)\n", result.Source.VideoTitle, result.Source.Channel)
		}
		fmt.Printf("   ID: %s\n", result.ID)
		if i < len(resp.Results)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}
}
