package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/repstack/knowledge/internal/domain"
	"github.com/repstack/knowledge/internal/telemetry"
)

// Search runs a free-text hybrid search. A blank query short-circuits
// to an empty result before any backend call.
func (s *SearchService) Search(ctx context.Context, input SearchInput) []*domain.KnowledgeChunk {
	if strings.TrimSpace(input.Query) == "" {
		return []*domain.KnowledgeChunk{}
	}

	limit := s.effectiveLimit(input.Limit)
	filters := SearchFilters{
		Types:       input.Types,
		MuscleGroup: input.MuscleGroup,
		Difficulty:  input.Difficulty,
	}

	return s.HybridSearch(ctx, input.Query, limit, filters)
}

// SearchByExercise looks up chunks tagged with the given exercise name.
// No embedding is involved: the caller already knows the exact entity
// and wants precision over recall.
func (s *SearchService) SearchByExercise(ctx context.Context, exerciseName string, types []domain.KnowledgeType, limit int) []*domain.KnowledgeChunk {
	exerciseName = strings.TrimSpace(exerciseName)
	if exerciseName == "" {
		return []*domain.KnowledgeChunk{}
	}

	ctx, span := telemetry.StartSpan(ctx, "SearchService.SearchByExercise", telemetry.SpanAttributes{
		Operation:    "exercise_search",
		ExerciseName: exerciseName,
	})
	defer span.End()

	ctx, cancel := s.boundedContext(ctx)
	defer cancel()

	limit = s.effectiveLimit(limit)
	chunks, err := s.store.FindByExercises(ctx, []string{exerciseName}, SearchFilters{Types: types}, limit)
	if err != nil {
		telemetry.CaptureError(ctx, fmt.Errorf("exercise search failed: %w", err))
		return []*domain.KnowledgeChunk{}
	}
	return mergeChunks(limit, chunks)
}

// SearchByMuscleGroup looks up chunks tagged with the given muscle group.
func (s *SearchService) SearchByMuscleGroup(ctx context.Context, muscleGroup string, types []domain.KnowledgeType, limit int) []*domain.KnowledgeChunk {
	muscleGroup = strings.TrimSpace(muscleGroup)
	if muscleGroup == "" {
		return []*domain.KnowledgeChunk{}
	}

	ctx, span := telemetry.StartSpan(ctx, "SearchService.SearchByMuscleGroup", telemetry.SpanAttributes{
		Operation:   "muscle_group_search",
		MuscleGroup: muscleGroup,
	})
	defer span.End()

	ctx, cancel := s.boundedContext(ctx)
	defer cancel()

	limit = s.effectiveLimit(limit)
	chunks, err := s.store.FindByMuscleGroups(ctx, []string{muscleGroup}, SearchFilters{Types: types}, limit)
	if err != nil {
		telemetry.CaptureError(ctx, fmt.Errorf("muscle group search failed: %w", err))
		return []*domain.KnowledgeChunk{}
	}
	return mergeChunks(limit, chunks)
}

// ContextualSearch retrieves knowledge from structured workout signals
// using a waterfall: exact exercise matches are authoritative and
// suppress muscle-group matches entirely, so a user asking about a
// named exercise never sees muscle-group filler. Goal-based
// augmentation is additive on top of either branch.
func (s *SearchService) ContextualSearch(ctx context.Context, input ContextualInput) []*domain.KnowledgeChunk {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.ContextualSearch", telemetry.SpanAttributes{
		Operation: "contextual_search",
		Limit:     input.Limit,
	})
	defer span.End()

	ctx, cancel := s.boundedContext(ctx)
	defer cancel()

	limit := s.effectiveLimit(input.Limit)
	filters := SearchFilters{
		Types:      input.Types,
		Difficulty: input.Difficulty,
	}

	var matched []*domain.KnowledgeChunk

	exercises := trimNonEmpty(input.Exercises)
	if len(exercises) > 0 {
		chunks, err := s.store.FindByExercises(ctx, exercises, filters, limit)
		if err != nil {
			telemetry.CaptureError(ctx, fmt.Errorf("contextual exercise lookup failed: %w", err))
		}
		matched = chunks
	}

	if len(matched) == 0 {
		if groups := trimNonEmpty(input.MuscleGroups); len(groups) > 0 {
			groupLimit := limit / 2
			if groupLimit < 1 {
				groupLimit = 1
			}
			chunks, err := s.store.FindByMuscleGroups(ctx, groups, filters, groupLimit)
			if err != nil {
				telemetry.CaptureError(ctx, fmt.Errorf("contextual muscle group lookup failed: %w", err))
			}
			matched = chunks
		}
	}

	var goalChunks []*domain.KnowledgeChunk
	if s.cfg.GoalChunkLimit > 0 && hasWeightLossGoal(input.Goals) {
		chunks, err := s.store.FindByType(ctx, domain.KnowledgeTypeNutritionRecovery, s.cfg.GoalChunkLimit)
		if err != nil {
			telemetry.CaptureError(ctx, fmt.Errorf("goal augmentation lookup failed: %w", err))
		}
		goalChunks = chunks
	}

	return mergeChunks(limit, matched, goalChunks)
}

// BatchSearch folds up to BatchKeywordCap keywords into a single
// combined hybrid query instead of one round-trip per keyword.
func (s *SearchService) BatchSearch(ctx context.Context, keywords []string, limit int) []*domain.KnowledgeChunk {
	kept := trimNonEmpty(keywords)
	if len(kept) == 0 {
		return []*domain.KnowledgeChunk{}
	}
	if len(kept) > s.cfg.BatchKeywordCap {
		kept = kept[:s.cfg.BatchKeywordCap]
	}

	ctx, span := telemetry.StartSpan(ctx, "SearchService.BatchSearch", telemetry.SpanAttributes{
		Operation: "batch_search",
		Limit:     limit,
	})
	defer span.End()

	return s.HybridSearch(ctx, strings.Join(kept, " "), s.effectiveLimit(limit), SearchFilters{})
}

// Trending returns the most popular chunks above the configured view
// floor. A pure store read, no merge logic.
func (s *SearchService) Trending(ctx context.Context, limit int) []*domain.KnowledgeChunk {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.Trending", telemetry.SpanAttributes{
		Operation: "trending",
		Limit:     limit,
	})
	defer span.End()

	ctx, cancel := s.boundedContext(ctx)
	defer cancel()

	limit = s.effectiveLimit(limit)
	chunks, err := s.store.FindTrending(ctx, s.cfg.TrendingMinViews, limit)
	if err != nil {
		telemetry.CaptureError(ctx, fmt.Errorf("trending lookup failed: %w", err))
		return []*domain.KnowledgeChunk{}
	}
	return mergeChunks(limit, chunks)
}

func (s *SearchService) effectiveLimit(limit int) int {
	if limit <= 0 {
		return s.cfg.DefaultLimit
	}
	return limit
}

func trimNonEmpty(values []string) []string {
	var kept []string
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return kept
}

func hasWeightLossGoal(goals []string) bool {
	for _, g := range goals {
		normalized := strings.ToLower(strings.TrimSpace(g))
		normalized = strings.ReplaceAll(normalized, "-", "_")
		normalized = strings.ReplaceAll(normalized, " ", "_")
		switch normalized {
		case "fat_loss", "weight_loss", "lose_weight", "lose_fat", "cutting", "cut":
			return true
		}
	}
	return false
}
