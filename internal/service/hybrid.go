package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/repstack/knowledge/internal/domain"
	"github.com/repstack/knowledge/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

// HybridSearch merges semantic and lexical retrieval into one
// deduplicated, priority-ordered list. Vector results are appended
// first in backend order, then keyword results that do not collide on
// id, until limit is reached.
//
// The strategy is chosen once per call: if the embedding provider is
// unconfigured the vector path is skipped entirely and the keyword
// backend receives the full limit, so the merge loop stays uniform
// regardless of which backends ran.
func (s *SearchService) HybridSearch(ctx context.Context, query string, limit int, filters SearchFilters) []*domain.KnowledgeChunk {
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return []*domain.KnowledgeChunk{}
	}

	useVector := s.embedding != nil && s.embedding.Configured()
	strategy := "keyword"
	if useVector {
		strategy = "hybrid"
	}

	ctx, span := telemetry.StartSpan(ctx, "SearchService.HybridSearch", telemetry.SpanAttributes{
		Operation: "hybrid_search",
		Strategy:  strategy,
		Limit:     limit,
	})
	defer span.End()

	ctx, cancel := s.boundedContext(ctx)
	defer cancel()

	vectorQuota, keywordQuota := splitQuota(limit, s.cfg.VectorQuotaRatio)
	if !useVector {
		vectorQuota, keywordQuota = 0, limit
	}

	var vectorHits, keywordHits []*domain.KnowledgeChunk

	g, gctx := errgroup.WithContext(ctx)
	if useVector {
		g.Go(func() error {
			vectorHits = s.vectorSearch(gctx, query, vectorQuota, filters)
			return nil
		})
	}
	g.Go(func() error {
		keywordHits = s.keywordSearch(gctx, query, keywordQuota, filters)
		return nil
	})
	_ = g.Wait()

	return mergeChunks(limit, vectorHits, keywordHits)
}

// vectorSearch embeds the query and runs the ANN lookup. It never
// fails the caller: embedding failures fall back to keyword search
// with the same arguments, store failures yield an empty list.
func (s *SearchService) vectorSearch(ctx context.Context, query string, limit int, filters SearchFilters) []*domain.KnowledgeChunk {
	embedding, err := s.embedding.GenerateEmbedding(ctx, query)
	if err != nil || len(embedding) == 0 {
		if err != nil {
			telemetry.CaptureError(ctx, fmt.Errorf("embedding degraded to keyword search: %w", err))
		}
		return s.keywordSearch(ctx, query, limit, filters)
	}

	chunks, err := s.store.SearchByEmbedding(ctx, embedding, filters, limit)
	if err != nil {
		telemetry.CaptureError(ctx, fmt.Errorf("vector search failed: %w", err))
		return nil
	}
	return chunks
}

// keywordSearch runs the lexical lookup, over-fetching candidates so
// the merge stage can drop duplicates without starving the result.
// Store failures yield an empty list: an empty result set is success.
func (s *SearchService) keywordSearch(ctx context.Context, query string, limit int, filters SearchFilters) []*domain.KnowledgeChunk {
	if limit <= 0 {
		return nil
	}

	chunks, err := s.store.SearchLexical(ctx, query, filters, limit*s.cfg.KeywordOverfetch)
	if err != nil {
		telemetry.CaptureError(ctx, fmt.Errorf("keyword search failed: %w", err))
		return nil
	}
	return chunks
}

// boundedContext caps one operation's outbound calls at SearchTimeout
// so a hung backend cannot hold the caller past the deadline.
func (s *SearchService) boundedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.SearchTimeout)
}

// splitQuota divides a result limit between the vector and keyword
// backends. Both shares round up, so a few extra candidates are
// requested rather than under-filling the merged result.
func splitQuota(limit int, vectorRatio float64) (vectorQuota, keywordQuota int) {
	vectorQuota = int(math.Ceil(float64(limit) * vectorRatio))
	keywordQuota = int(math.Ceil(float64(limit) * (1 - vectorRatio)))
	return vectorQuota, keywordQuota
}

// mergeChunks concatenates result lists in priority order, skipping
// entries whose id already appeared, and truncates to limit.
func mergeChunks(limit int, lists ...[]*domain.KnowledgeChunk) []*domain.KnowledgeChunk {
	merged := make([]*domain.KnowledgeChunk, 0, limit)
	seen := make(map[string]struct{}, limit)
	for _, list := range lists {
		for _, c := range list {
			if c == nil || c.ID == "" {
				continue
			}
			if _, ok := seen[c.ID]; ok {
				continue
			}
			seen[c.ID] = struct{}{}
			merged = append(merged, c)
			if len(merged) >= limit {
				return merged
			}
		}
	}
	return merged
}
