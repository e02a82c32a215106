package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/repstack/knowledge/internal/domain"
	"github.com/repstack/knowledge/internal/service"
)

const (
	defaultIVFFlatProbes = 10

	chunkColumns = `id, knowledge_type, content, summary, exercise_name, muscle_group,
		difficulty_level, source_url, source_title, source_channel, view_count, created_at, updated_at`

	// documentVector is the lexical search surface: body text, summary,
	// and the structured tags.
	documentVector = `to_tsvector('simple',
		content || ' ' || summary || ' ' || coalesce(exercise_name, '') || ' ' || coalesce(muscle_group, ''))`
)

// ChunkRepository implements retrieval queries over knowledge_chunks.
// The corpus is read-only from the engine's point of view; Insert
// exists for corpus seeding and tests only.
type ChunkRepository struct {
	pool   *pgxpool.Pool
	probes int
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return NewChunkRepositoryWithProbes(pool, defaultIVFFlatProbes)
}

// NewChunkRepositoryWithProbes sets the ivfflat probe count used for
// ANN queries. Probes trade latency for recall; too few silently
// degrade result quality, so the value is fixed per deployment.
func NewChunkRepositoryWithProbes(pool *pgxpool.Pool, probes int) *ChunkRepository {
	if probes <= 0 {
		probes = defaultIVFFlatProbes
	}
	return &ChunkRepository{pool: pool, probes: probes}
}

// SearchByEmbedding returns the nearest chunks by cosine distance,
// with filters applied as hard predicates before distance ranking.
func (r *ChunkRepository) SearchByEmbedding(ctx context.Context, embedding []float32, filters service.SearchFilters, limit int) ([]*domain.KnowledgeChunk, error) {
	if limit <= 0 {
		limit = 20
	}

	args := []interface{}{pgvector.NewVector(embedding)}
	where := []string{"embedding IS NOT NULL"}
	where, args = appendFilterClauses(where, args, filters)

	query := fmt.Sprintf(
		`SELECT %s FROM knowledge_chunks WHERE %s ORDER BY embedding <=> $1 LIMIT %d`,
		chunkColumns, strings.Join(where, " AND "), limit,
	)

	// ivfflat.probes is transaction-local, so the ANN query runs inside
	// its own transaction.
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL ivfflat.probes = %d", r.probes)); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	chunks, err := scanChunkRows(rows)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return chunks, nil
}

// SearchLexical runs a full-text query over content, summary, and tags.
func (r *ChunkRepository) SearchLexical(ctx context.Context, query string, filters service.SearchFilters, limit int) ([]*domain.KnowledgeChunk, error) {
	if limit <= 0 {
		limit = 20
	}

	args := []interface{}{query}
	where := []string{fmt.Sprintf("%s @@ websearch_to_tsquery('simple', $1)", documentVector)}
	where, args = appendFilterClauses(where, args, filters)

	sql := fmt.Sprintf(
		`SELECT %s FROM knowledge_chunks
		 WHERE %s
		 ORDER BY ts_rank(%s, websearch_to_tsquery('simple', $1)) DESC, view_count DESC
		 LIMIT %d`,
		chunkColumns, strings.Join(where, " AND "), documentVector, limit,
	)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return scanChunkRows(rows)
}

// FindByExercises returns chunks whose exercise tag partially matches
// any of the given names.
func (r *ChunkRepository) FindByExercises(ctx context.Context, names []string, filters service.SearchFilters, limit int) ([]*domain.KnowledgeChunk, error) {
	if len(names) == 0 {
		return []*domain.KnowledgeChunk{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	patterns := make([]string, len(names))
	for i, name := range names {
		patterns[i] = "%" + name + "%"
	}

	args := []interface{}{patterns}
	where := []string{"exercise_name ILIKE ANY($1)"}
	where, args = appendFilterClauses(where, args, filters)

	sql := fmt.Sprintf(
		`SELECT %s FROM knowledge_chunks WHERE %s ORDER BY view_count DESC, updated_at DESC LIMIT %d`,
		chunkColumns, strings.Join(where, " AND "), limit,
	)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return scanChunkRows(rows)
}

// FindByMuscleGroups returns chunks tagged with any of the given
// muscle groups (case-insensitive exact match).
func (r *ChunkRepository) FindByMuscleGroups(ctx context.Context, groups []string, filters service.SearchFilters, limit int) ([]*domain.KnowledgeChunk, error) {
	if len(groups) == 0 {
		return []*domain.KnowledgeChunk{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	args := []interface{}{groups}
	where := []string{"muscle_group ILIKE ANY($1)"}
	where, args = appendFilterClauses(where, args, filters)

	sql := fmt.Sprintf(
		`SELECT %s FROM knowledge_chunks WHERE %s ORDER BY view_count DESC, updated_at DESC LIMIT %d`,
		chunkColumns, strings.Join(where, " AND "), limit,
	)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return scanChunkRows(rows)
}

// FindByType returns the most viewed chunks of one knowledge type.
func (r *ChunkRepository) FindByType(ctx context.Context, knowledgeType domain.KnowledgeType, limit int) ([]*domain.KnowledgeChunk, error) {
	if limit <= 0 {
		limit = 20
	}

	sql := fmt.Sprintf(
		`SELECT %s FROM knowledge_chunks WHERE knowledge_type = $1 ORDER BY view_count DESC, updated_at DESC LIMIT %d`,
		chunkColumns, limit,
	)

	rows, err := r.pool.Query(ctx, sql, string(knowledgeType))
	if err != nil {
		return nil, err
	}
	return scanChunkRows(rows)
}

// FindTrending returns chunks above the popularity floor, most viewed first.
func (r *ChunkRepository) FindTrending(ctx context.Context, minViews int64, limit int) ([]*domain.KnowledgeChunk, error) {
	if limit <= 0 {
		limit = 20
	}

	sql := fmt.Sprintf(
		`SELECT %s FROM knowledge_chunks WHERE view_count >= $1 ORDER BY view_count DESC LIMIT %d`,
		chunkColumns, limit,
	)

	rows, err := r.pool.Query(ctx, sql, minViews)
	if err != nil {
		return nil, err
	}
	return scanChunkRows(rows)
}

// GetByID fetches a single chunk.
func (r *ChunkRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeChunk, error) {
	sql := fmt.Sprintf(`SELECT %s FROM knowledge_chunks WHERE id = $1`, chunkColumns)

	rows, err := r.pool.Query(ctx, sql, id)
	if err != nil {
		return nil, err
	}
	chunks, err := scanChunkRows(rows)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, domain.ErrChunkNotFound
	}
	return chunks[0], nil
}

// CountChunks reports the corpus size.
func (r *ChunkRepository) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM knowledge_chunks`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Insert writes a chunk. Used for corpus seeding and tests; the
// retrieval engine itself never mutates the corpus.
func (r *ChunkRepository) Insert(ctx context.Context, c *domain.KnowledgeChunk) error {
	if err := domain.ValidateKnowledgeChunk(c); err != nil {
		return err
	}

	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := c.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	var embedding interface{}
	if len(c.Embedding) > 0 {
		embedding = pgvector.NewVector(c.Embedding)
	}

	var sourceURL, sourceTitle, sourceChannel *string
	if c.Source != nil {
		sourceURL = nullableString(c.Source.VideoURL)
		sourceTitle = nullableString(c.Source.VideoTitle)
		sourceChannel = nullableString(c.Source.Channel)
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO knowledge_chunks
			(id, knowledge_type, content, summary, exercise_name, muscle_group,
			 difficulty_level, embedding, source_url, source_title, source_channel,
			 view_count, created_at, updated_at)
		 VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		c.ID,
		string(c.Type),
		c.Content,
		c.Summary,
		nullableString(c.ExerciseName),
		nullableString(c.MuscleGroup),
		int(c.Difficulty),
		embedding,
		sourceURL,
		sourceTitle,
		sourceChannel,
		c.ViewCount,
		createdAt,
		updatedAt,
	)
	return err
}

// appendFilterClauses translates SearchFilters into SQL predicates.
// The difficulty filter is a ceiling: explicitly tagged chunks must be
// at or below the requested level, untagged chunks always pass.
func appendFilterClauses(where []string, args []interface{}, filters service.SearchFilters) ([]string, []interface{}) {
	if len(filters.Types) > 0 {
		types := make([]string, len(filters.Types))
		for i, t := range filters.Types {
			types[i] = string(t)
		}
		args = append(args, types)
		where = append(where, fmt.Sprintf("knowledge_type = ANY($%d)", len(args)))
	}

	if filters.ExerciseName != "" {
		args = append(args, "%"+filters.ExerciseName+"%")
		where = append(where, fmt.Sprintf("exercise_name ILIKE $%d", len(args)))
	}

	if filters.MuscleGroup != "" {
		args = append(args, filters.MuscleGroup)
		where = append(where, fmt.Sprintf("muscle_group ILIKE $%d", len(args)))
	}

	if filters.Difficulty > domain.DifficultyUnspecified {
		args = append(args, int(filters.Difficulty))
		where = append(where, fmt.Sprintf("(difficulty_level = 0 OR difficulty_level <= $%d)", len(args)))
	}

	return where, args
}

func scanChunkRows(rows pgx.Rows) ([]*domain.KnowledgeChunk, error) {
	defer rows.Close()

	var results []*domain.KnowledgeChunk
	for rows.Next() {
		var c domain.KnowledgeChunk
		var exerciseName, muscleGroup, sourceURL, sourceTitle, sourceChannel *string
		var difficulty int16
		if err := rows.Scan(
			&c.ID, &c.Type, &c.Content, &c.Summary, &exerciseName, &muscleGroup,
			&difficulty, &sourceURL, &sourceTitle, &sourceChannel, &c.ViewCount,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}

		c.Difficulty = domain.DifficultyLevel(difficulty)
		if exerciseName != nil {
			c.ExerciseName = *exerciseName
		}
		if muscleGroup != nil {
			c.MuscleGroup = *muscleGroup
		}
		if sourceURL != nil || sourceTitle != nil || sourceChannel != nil {
			c.Source = &domain.SourceRef{}
			if sourceURL != nil {
				c.Source.VideoURL = *sourceURL
			}
			if sourceTitle != nil {
				c.Source.VideoTitle = *sourceTitle
			}
			if sourceChannel != nil {
				c.Source.Channel = *sourceChannel
			}
		}

		results = append(results, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
