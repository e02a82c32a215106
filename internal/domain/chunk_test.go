package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validChunk() *KnowledgeChunk {
	return &KnowledgeChunk{
		ID:           "c1",
		Type:         KnowledgeTypeExerciseTechnique,
		Content:      "Keep the bar over midfoot.",
		Summary:      "Bar path basics",
		ExerciseName: "squat",
		MuscleGroup:  "legs",
		Difficulty:   DifficultyBeginner,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
}

func TestValidateKnowledgeChunk(t *testing.T) {
	t.Run("valid chunk passes", func(t *testing.T) {
		assert.NoError(t, ValidateKnowledgeChunk(validChunk()))
	})

	t.Run("nil chunk fails", func(t *testing.T) {
		assert.Error(t, ValidateKnowledgeChunk(nil))
	})

	t.Run("missing ID fails", func(t *testing.T) {
		c := validChunk()
		c.ID = ""
		assert.Error(t, ValidateKnowledgeChunk(c))
	})

	t.Run("missing content fails", func(t *testing.T) {
		c := validChunk()
		c.Content = ""
		assert.Error(t, ValidateKnowledgeChunk(c))
	})

	t.Run("invalid type fails", func(t *testing.T) {
		c := validChunk()
		c.Type = "yoga"
		assert.Error(t, ValidateKnowledgeChunk(c))
	})

	t.Run("chunk without embedding is valid", func(t *testing.T) {
		c := validChunk()
		c.Embedding = nil
		assert.NoError(t, ValidateKnowledgeChunk(c))
	})
}

func TestParseDifficultyLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    DifficultyLevel
		wantErr bool
	}{
		{"", DifficultyUnspecified, false},
		{"beginner", DifficultyBeginner, false},
		{"Intermediate", DifficultyIntermediate, false},
		{"  ADVANCED  ", DifficultyAdvanced, false},
		{"expert", DifficultyUnspecified, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDifficultyLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDifficultyLevelOrdering(t *testing.T) {
	assert.True(t, DifficultyBeginner < DifficultyIntermediate)
	assert.True(t, DifficultyIntermediate < DifficultyAdvanced)
	assert.True(t, DifficultyUnspecified < DifficultyBeginner)
}

func TestParseKnowledgeTypes(t *testing.T) {
	t.Run("parses csv", func(t *testing.T) {
		types, err := ParseKnowledgeTypes("exercise_technique, form_check")
		require.NoError(t, err)
		assert.Equal(t, []KnowledgeType{KnowledgeTypeExerciseTechnique, KnowledgeTypeFormCheck}, types)
	})

	t.Run("blank returns nil", func(t *testing.T) {
		types, err := ParseKnowledgeTypes("   ")
		require.NoError(t, err)
		assert.Nil(t, types)
	})

	t.Run("unknown type errors", func(t *testing.T) {
		_, err := ParseKnowledgeTypes("exercise_technique,cardio")
		assert.Error(t, err)
	})
}

func TestHumanizeKnowledgeType(t *testing.T) {
	assert.Equal(t, "Exercise technique", HumanizeKnowledgeType(KnowledgeTypeExerciseTechnique))
	assert.Equal(t, "Nutrition & recovery", HumanizeKnowledgeType(KnowledgeTypeNutritionRecovery))
	assert.Equal(t, "mystery type", HumanizeKnowledgeType(KnowledgeType("mystery_type")))
}
