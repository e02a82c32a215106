package service

import (
	"context"
	"time"

	"github.com/repstack/knowledge/internal/domain"
)

// SearchFilters represents hard predicates applied by the knowledge
// store before relevance ranking. Zero values mean "no filter".
// Difficulty is a ceiling: chunks tagged at or below it, plus untagged
// chunks, pass the filter.
type SearchFilters struct {
	Types        []domain.KnowledgeType
	ExerciseName string
	MuscleGroup  string
	Difficulty   domain.DifficultyLevel
}

// SearchInput represents input for free-text search
type SearchInput struct {
	Query       string
	Types       []domain.KnowledgeType
	MuscleGroup string
	Difficulty  domain.DifficultyLevel
	Limit       int
}

// ContextualInput represents input for contextual search driven by
// structured workout signals rather than free text.
type ContextualInput struct {
	Exercises    []string
	MuscleGroups []string
	Goals        []string
	Types        []domain.KnowledgeType
	Difficulty   domain.DifficultyLevel
	Limit        int
}

// ChunkStore defines the knowledge store interface for retrieval.
// Implementations must treat the corpus as read-only.
type ChunkStore interface {
	SearchByEmbedding(ctx context.Context, embedding []float32, filters SearchFilters, limit int) ([]*domain.KnowledgeChunk, error)
	SearchLexical(ctx context.Context, query string, filters SearchFilters, limit int) ([]*domain.KnowledgeChunk, error)
	FindByExercises(ctx context.Context, names []string, filters SearchFilters, limit int) ([]*domain.KnowledgeChunk, error)
	FindByMuscleGroups(ctx context.Context, groups []string, filters SearchFilters, limit int) ([]*domain.KnowledgeChunk, error)
	FindByType(ctx context.Context, knowledgeType domain.KnowledgeType, limit int) ([]*domain.KnowledgeChunk, error)
	FindTrending(ctx context.Context, minViews int64, limit int) ([]*domain.KnowledgeChunk, error)
}

// EmbeddingProvider defines the interface for embedding generation.
// Configured must be cheap: it is consulted on every hybrid call to
// pick the retrieval strategy and must not touch the network.
type EmbeddingProvider interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	Configured() bool
}

// SearchConfig controls retrieval policy. The defaults are tuned
// values, not derived constants; deployments may override them.
type SearchConfig struct {
	// VectorQuotaRatio is the share of the result limit reserved for
	// the semantic backend in a hybrid call.
	VectorQuotaRatio float64
	// KeywordOverfetch multiplies the keyword quota when querying the
	// store; lexical relevance is noisier, so over-fetching gives the
	// merge stage room to prefer higher-quality items.
	KeywordOverfetch int
	// BatchKeywordCap bounds how many keywords a batch search folds
	// into one combined query.
	BatchKeywordCap int
	// GoalChunkLimit bounds goal-based augmentation in contextual search.
	GoalChunkLimit int
	// DefaultLimit applies when a caller passes a non-positive limit.
	DefaultLimit int
	// TrendingMinViews is the popularity floor for trending lookups.
	TrendingMinViews int64
	// SearchTimeout bounds the outbound embedding and store calls of one
	// retrieval operation. A hung backend must never block the caller
	// indefinitely; the deadline applies even when the caller's context
	// has none.
	SearchTimeout time.Duration
}

// DefaultSearchConfig returns the default retrieval policy.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		VectorQuotaRatio: 0.6,
		KeywordOverfetch: 2,
		BatchKeywordCap:  5,
		GoalChunkLimit:   2,
		DefaultLimit:     5,
		TrendingMinViews: 10000,
		SearchTimeout:    10 * time.Second,
	}
}

// SearchService answers knowledge retrieval queries by combining
// semantic and lexical search over the chunk store. Retrieval is
// advisory to the calling flow: every operation degrades to an empty
// result rather than returning an error.
type SearchService struct {
	store     ChunkStore
	embedding EmbeddingProvider
	cfg       SearchConfig
}

// NewSearchService creates a SearchService with the default policy.
// embedding may be nil, which forces the keyword-only strategy.
func NewSearchService(store ChunkStore, embedding EmbeddingProvider) *SearchService {
	return NewSearchServiceWithConfig(store, embedding, DefaultSearchConfig())
}

// NewSearchServiceWithConfig creates a SearchService with explicit policy.
func NewSearchServiceWithConfig(store ChunkStore, embedding EmbeddingProvider, cfg SearchConfig) *SearchService {
	def := DefaultSearchConfig()
	if cfg.VectorQuotaRatio <= 0 || cfg.VectorQuotaRatio >= 1 {
		cfg.VectorQuotaRatio = def.VectorQuotaRatio
	}
	if cfg.KeywordOverfetch <= 0 {
		cfg.KeywordOverfetch = def.KeywordOverfetch
	}
	if cfg.BatchKeywordCap <= 0 {
		cfg.BatchKeywordCap = def.BatchKeywordCap
	}
	if cfg.GoalChunkLimit < 0 {
		cfg.GoalChunkLimit = def.GoalChunkLimit
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = def.DefaultLimit
	}
	if cfg.TrendingMinViews <= 0 {
		cfg.TrendingMinViews = def.TrendingMinViews
	}
	if cfg.SearchTimeout <= 0 {
		cfg.SearchTimeout = def.SearchTimeout
	}
	return &SearchService{
		store:     store,
		embedding: embedding,
		cfg:       cfg,
	}
}
