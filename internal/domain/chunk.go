package domain

import (
	"fmt"
	"strings"
	"time"
)

// KnowledgeType represents the category of a knowledge chunk
type KnowledgeType string

const (
	KnowledgeTypeExerciseTechnique KnowledgeType = "exercise_technique"
	KnowledgeTypeFormCheck         KnowledgeType = "form_check"
	KnowledgeTypeRoutineDesign     KnowledgeType = "routine_design"
	KnowledgeTypeNutritionRecovery KnowledgeType = "nutrition_recovery"
)

// KnowledgeTypes lists all valid knowledge types.
func KnowledgeTypes() []KnowledgeType {
	return []KnowledgeType{
		KnowledgeTypeExerciseTechnique,
		KnowledgeTypeFormCheck,
		KnowledgeTypeRoutineDesign,
		KnowledgeTypeNutritionRecovery,
	}
}

// HumanizeKnowledgeType returns a display label for a knowledge type.
func HumanizeKnowledgeType(t KnowledgeType) string {
	switch t {
	case KnowledgeTypeExerciseTechnique:
		return "Exercise technique"
	case KnowledgeTypeFormCheck:
		return "Form check"
	case KnowledgeTypeRoutineDesign:
		return "Routine design"
	case KnowledgeTypeNutritionRecovery:
		return "Nutrition & recovery"
	default:
		return strings.ReplaceAll(string(t), "_", " ")
	}
}

// DifficultyLevel is an ordered difficulty rating. The ordering is the
// contract: a query scoped to a level must also see everything below it.
type DifficultyLevel int

const (
	DifficultyUnspecified  DifficultyLevel = 0
	DifficultyBeginner     DifficultyLevel = 1
	DifficultyIntermediate DifficultyLevel = 2
	DifficultyAdvanced     DifficultyLevel = 3
)

// String returns the canonical name of the difficulty level.
func (d DifficultyLevel) String() string {
	switch d {
	case DifficultyBeginner:
		return "beginner"
	case DifficultyIntermediate:
		return "intermediate"
	case DifficultyAdvanced:
		return "advanced"
	default:
		return ""
	}
}

// ParseDifficultyLevel parses a difficulty name. Empty input maps to
// DifficultyUnspecified, which is not an error.
func ParseDifficultyLevel(s string) (DifficultyLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DifficultyUnspecified, nil
	case "beginner":
		return DifficultyBeginner, nil
	case "intermediate":
		return DifficultyIntermediate, nil
	case "advanced":
		return DifficultyAdvanced, nil
	default:
		return DifficultyUnspecified, fmt.Errorf("invalid difficulty level: %q", s)
	}
}

// SourceRef carries provenance of a knowledge chunk. The retrieval
// engine treats it as opaque and passes it through.
type SourceRef struct {
	VideoURL   string
	VideoTitle string
	Channel    string
}

// KnowledgeChunk is one immutable retrieval unit from the corpus.
// A chunk without an embedding is invisible to vector search but still
// reachable through keyword and structured lookups.
type KnowledgeChunk struct {
	ID           string
	Type         KnowledgeType
	Content      string
	Summary      string
	ExerciseName string
	MuscleGroup  string
	Difficulty   DifficultyLevel
	Embedding    []float32
	Source       *SourceRef
	ViewCount    int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidateKnowledgeChunk validates a KnowledgeChunk instance
func ValidateKnowledgeChunk(c *KnowledgeChunk) error {
	if c == nil {
		return fmt.Errorf("knowledge chunk cannot be nil")
	}

	if c.ID == "" {
		return fmt.Errorf("knowledge chunk ID is required")
	}

	if c.Content == "" {
		return fmt.Errorf("knowledge chunk Content is required")
	}

	if !IsValidKnowledgeType(c.Type) {
		return fmt.Errorf("knowledge chunk Type is invalid: %s", c.Type)
	}

	if !isValidDifficultyLevel(c.Difficulty) {
		return fmt.Errorf("knowledge chunk Difficulty is invalid: %d", c.Difficulty)
	}

	return nil
}

// IsValidKnowledgeType checks if a KnowledgeType is valid
func IsValidKnowledgeType(t KnowledgeType) bool {
	switch t {
	case KnowledgeTypeExerciseTechnique, KnowledgeTypeFormCheck,
		KnowledgeTypeRoutineDesign, KnowledgeTypeNutritionRecovery:
		return true
	}
	return false
}

// isValidDifficultyLevel checks if a DifficultyLevel is valid
func isValidDifficultyLevel(d DifficultyLevel) bool {
	return d >= DifficultyUnspecified && d <= DifficultyAdvanced
}

// ParseKnowledgeTypes parses a comma separated list of knowledge types,
// dropping blanks. Unknown names are an error.
func ParseKnowledgeTypes(csv string) ([]KnowledgeType, error) {
	if strings.TrimSpace(csv) == "" {
		return nil, nil
	}
	var types []KnowledgeType
	for _, part := range strings.Split(csv, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		t := KnowledgeType(name)
		if !IsValidKnowledgeType(t) {
			return nil, fmt.Errorf("invalid knowledge type: %q", name)
		}
		types = append(types, t)
	}
	return types, nil
}
