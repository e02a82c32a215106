//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/repstack/knowledge/internal/domain"
	"github.com/repstack/knowledge/internal/service"
	"github.com/repstack/knowledge/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedChunk(ctx context.Context, t *testing.T, repo *ChunkRepository, mutate func(*domain.KnowledgeChunk)) *domain.KnowledgeChunk {
	t.Helper()

	c := &domain.KnowledgeChunk{
		ID:           uuid.NewString(),
		Type:         domain.KnowledgeTypeExerciseTechnique,
		Content:      "Drive through the midfoot and keep the chest up.",
		Summary:      "Squat drive cues",
		ExerciseName: "barbell squat",
		MuscleGroup:  "legs",
		Difficulty:   domain.DifficultyBeginner,
		ViewCount:    100,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
	if mutate != nil {
		mutate(c)
	}
	require.NoError(t, repo.Insert(ctx, c))
	return c
}

// axisEmbedding returns a 1536-dim unit vector along the given axis,
// giving deterministic cosine distances for ANN assertions.
func axisEmbedding(axis int) []float32 {
	v := make([]float32, 1536)
	v[axis] = 1
	return v
}

func TestChunkRepository_InsertAndGetByID(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool)

	c := seedChunk(ctx, t, repo, func(c *domain.KnowledgeChunk) {
		c.Source = &domain.SourceRef{
			VideoURL:   "https://youtube.com/watch?v=squat",
			VideoTitle: "Squat Basics",
			Channel:    "LiftLab",
		}
	})

	retrieved, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, retrieved.ID)
	assert.Equal(t, c.Type, retrieved.Type)
	assert.Equal(t, c.Content, retrieved.Content)
	assert.Equal(t, c.ExerciseName, retrieved.ExerciseName)
	assert.Equal(t, c.Difficulty, retrieved.Difficulty)
	require.NotNil(t, retrieved.Source)
	assert.Equal(t, "LiftLab", retrieved.Source.Channel)
}

func TestChunkRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool)

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrChunkNotFound)
}

func TestChunkRepository_CountChunks(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool)

	count, err := repo.CountChunks(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	for i := 0; i < 3; i++ {
		seedChunk(ctx, t, repo, nil)
	}

	count, err = repo.CountChunks(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestChunkRepository_SearchByEmbedding(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool)

	near := seedChunk(ctx, t, repo, func(c *domain.KnowledgeChunk) {
		c.Embedding = axisEmbedding(0)
	})
	far := seedChunk(ctx, t, repo, func(c *domain.KnowledgeChunk) {
		c.Embedding = axisEmbedding(1)
	})
	// No embedding: invisible to ANN.
	seedChunk(ctx, t, repo, nil)

	results, err := repo.SearchByEmbedding(ctx, axisEmbedding(0), service.SearchFilters{}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, near.ID, results[0].ID)
	assert.Equal(t, far.ID, results[1].ID)
}

func TestChunkRepository_SearchByEmbedding_DifficultyCeiling(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool)

	beginner := seedChunk(ctx, t, repo, func(c *domain.KnowledgeChunk) {
		c.Embedding = axisEmbedding(0)
		c.Difficulty = domain.DifficultyBeginner
	})
	untagged := seedChunk(ctx, t, repo, func(c *domain.KnowledgeChunk) {
		c.Embedding = axisEmbedding(0)
		c.Difficulty = domain.DifficultyUnspecified
	})
	advanced := seedChunk(ctx, t, repo, func(c *domain.KnowledgeChunk) {
		c.Embedding = axisEmbedding(0)
		c.Difficulty = domain.DifficultyAdvanced
	})

	results, err := repo.SearchByEmbedding(ctx, axisEmbedding(0), service.SearchFilters{
		Difficulty: domain.DifficultyBeginner,
	}, 10)
	require.NoError(t, err)

	ids := make([]string, len(results))
	for i, c := range results {
		ids[i] = c.ID
	}
	assert.Contains(t, ids, beginner.ID)
	assert.Contains(t, ids, untagged.ID)
	assert.NotContains(t, ids, advanced.ID)
}

func TestChunkRepository_SearchLexical(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool)

	deadlift := seedChunk(ctx, t, repo, func(c *domain.KnowledgeChunk) {
		c.Content = "Set the bar over midfoot before the deadlift pull."
		c.Summary = "Deadlift setup"
		c.ExerciseName = "deadlift"
		c.MuscleGroup = "back"
	})
	seedChunk(ctx, t, repo, func(c *domain.KnowledgeChunk) {
		c.Content = "Protein intake supports recovery between sessions."
		c.Summary = "Recovery nutrition"
		c.Type = domain.KnowledgeTypeNutritionRecovery
		c.ExerciseName = ""
		c.MuscleGroup = ""
	})

	results, err := repo.SearchLexical(ctx, "deadlift setup", service.SearchFilters{}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, deadlift.ID, results[0].ID)

	filtered, err := repo.SearchLexical(ctx, "deadlift setup", service.SearchFilters{
		Types: []domain.KnowledgeType{domain.KnowledgeTypeNutritionRecovery},
	}, 10)
	require.NoError(t, err)
	assert.Empty(t, filtered)
}

func TestChunkRepository_FindByExercises(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool)

	squat := seedChunk(ctx, t, repo, func(c *domain.KnowledgeChunk) {
		c.ExerciseName = "barbell squat"
		c.ViewCount = 500
	})
	frontSquat := seedChunk(ctx, t, repo, func(c *domain.KnowledgeChunk) {
		c.ExerciseName = "front squat"
		c.ViewCount = 200
	})
	seedChunk(ctx, t, repo, func(c *domain.KnowledgeChunk) {
		c.ExerciseName = "bench press"
	})

	results, err := repo.FindByExercises(ctx, []string{"squat"}, service.SearchFilters{}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	// Ordered by view count.
	assert.Equal(t, squat.ID, results[0].ID)
	assert.Equal(t, frontSquat.ID, results[1].ID)
}

func TestChunkRepository_FindByMuscleGroups(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool)

	back := seedChunk(ctx, t, repo, func(c *domain.KnowledgeChunk) {
		c.MuscleGroup = "Back"
	})
	seedChunk(ctx, t, repo, func(c *domain.KnowledgeChunk) {
		c.MuscleGroup = "legs"
	})

	results, err := repo.FindByMuscleGroups(ctx, []string{"back"}, service.SearchFilters{}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, back.ID, results[0].ID)
}

func TestChunkRepository_FindByType(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool)

	nutrition := seedChunk(ctx, t, repo, func(c *domain.KnowledgeChunk) {
		c.Type = domain.KnowledgeTypeNutritionRecovery
		c.ViewCount = 900
	})
	seedChunk(ctx, t, repo, nil)

	results, err := repo.FindByType(ctx, domain.KnowledgeTypeNutritionRecovery, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, nutrition.ID, results[0].ID)
}

func TestChunkRepository_FindTrending(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool)

	popular := seedChunk(ctx, t, repo, func(c *domain.KnowledgeChunk) {
		c.ViewCount = 50000
	})
	mid := seedChunk(ctx, t, repo, func(c *domain.KnowledgeChunk) {
		c.ViewCount = 20000
	})
	seedChunk(ctx, t, repo, func(c *domain.KnowledgeChunk) {
		c.ViewCount = 100
	})

	results, err := repo.FindTrending(ctx, 10000, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, popular.ID, results[0].ID)
	assert.Equal(t, mid.ID, results[1].ID)
}
