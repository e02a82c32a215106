package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/repstack/knowledge/internal/api"
	"github.com/repstack/knowledge/internal/domain"
	"github.com/repstack/knowledge/internal/service"
)

// Retriever is the search surface the HTTP layer depends on. Retrieval
// never fails from the caller's point of view: backend trouble shows up
// as an empty result set, so every endpoint here answers 200.
type Retriever interface {
	Search(ctx context.Context, input service.SearchInput) []*domain.KnowledgeChunk
	SearchByExercise(ctx context.Context, exerciseName string, types []domain.KnowledgeType, limit int) []*domain.KnowledgeChunk
	SearchByMuscleGroup(ctx context.Context, muscleGroup string, types []domain.KnowledgeType, limit int) []*domain.KnowledgeChunk
	ContextualSearch(ctx context.Context, input service.ContextualInput) []*domain.KnowledgeChunk
	BatchSearch(ctx context.Context, keywords []string, limit int) []*domain.KnowledgeChunk
	Trending(ctx context.Context, limit int) []*domain.KnowledgeChunk
}

type KnowledgeHandler struct {
	svc Retriever
}

func NewKnowledgeHandler(svc Retriever) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc}
}

// SearchResponse carries the formatted results plus a ready-to-embed
// prompt block so consumers do not re-implement the rendering.
type SearchResponse struct {
	Results       []service.FormattedRecord `json:"results"`
	ContextPrompt string                    `json:"context_prompt"`
}

func searchResponse(chunks []*domain.KnowledgeChunk) SearchResponse {
	return SearchResponse{
		Results:       service.FormatChunks(chunks),
		ContextPrompt: service.BuildPromptBlock(chunks),
	}
}

// Search handles GET /knowledge/search.
func (h *KnowledgeHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	types, err := domain.ParseKnowledgeTypes(q.Get("knowledge_types"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid knowledge_types")
		return
	}

	difficulty, err := domain.ParseDifficultyLevel(q.Get("difficulty"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid difficulty")
		return
	}

	input := service.SearchInput{
		Query:       q.Get("query"),
		Types:       types,
		MuscleGroup: q.Get("muscle_group"),
		Difficulty:  difficulty,
		Limit:       parseLimit(q),
	}

	chunks := h.svc.Search(r.Context(), input)
	api.Success(w, http.StatusOK, searchResponse(chunks))
}

type ContextualSearchRequest struct {
	Exercises      []string `json:"exercises"`
	MuscleGroups   []string `json:"muscle_groups"`
	Goals          []string `json:"goals"`
	KnowledgeTypes []string `json:"knowledge_types"`
	Difficulty     string   `json:"difficulty"`
	Limit          int      `json:"limit"`
}

// Contextual handles POST /knowledge/contextual.
func (h *KnowledgeHandler) Contextual(w http.ResponseWriter, r *http.Request) {
	var req ContextualSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	types := make([]domain.KnowledgeType, 0, len(req.KnowledgeTypes))
	for _, raw := range req.KnowledgeTypes {
		t := domain.KnowledgeType(raw)
		if !domain.IsValidKnowledgeType(t) {
			api.Error(w, http.StatusBadRequest, "invalid knowledge type: "+raw)
			return
		}
		types = append(types, t)
	}

	difficulty, err := domain.ParseDifficultyLevel(req.Difficulty)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid difficulty")
		return
	}

	input := service.ContextualInput{
		Exercises:    req.Exercises,
		MuscleGroups: req.MuscleGroups,
		Goals:        req.Goals,
		Types:        types,
		Difficulty:   difficulty,
		Limit:        req.Limit,
	}

	chunks := h.svc.ContextualSearch(r.Context(), input)
	api.Success(w, http.StatusOK, searchResponse(chunks))
}

type BatchSearchRequest struct {
	Keywords []string `json:"keywords"`
	Limit    int      `json:"limit"`
}

// Batch handles POST /knowledge/batch.
func (h *KnowledgeHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req BatchSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	chunks := h.svc.BatchSearch(r.Context(), req.Keywords, req.Limit)
	api.Success(w, http.StatusOK, searchResponse(chunks))
}

// Trending handles GET /knowledge/trending.
func (h *KnowledgeHandler) Trending(w http.ResponseWriter, r *http.Request) {
	chunks := h.svc.Trending(r.Context(), parseLimit(r.URL.Query()))
	api.Success(w, http.StatusOK, searchResponse(chunks))
}

// ByExercise handles GET /knowledge/exercise/{name}.
func (h *KnowledgeHandler) ByExercise(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		api.Error(w, http.StatusBadRequest, "exercise name is required")
		return
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}

	types, err := domain.ParseKnowledgeTypes(r.URL.Query().Get("knowledge_types"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid knowledge_types")
		return
	}

	chunks := h.svc.SearchByExercise(r.Context(), name, types, parseLimit(r.URL.Query()))
	api.Success(w, http.StatusOK, searchResponse(chunks))
}

// ByMuscleGroup handles GET /knowledge/muscle/{group}.
func (h *KnowledgeHandler) ByMuscleGroup(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")
	if group == "" {
		api.Error(w, http.StatusBadRequest, "muscle group is required")
		return
	}
	if decoded, err := url.PathUnescape(group); err == nil {
		group = decoded
	}

	types, err := domain.ParseKnowledgeTypes(r.URL.Query().Get("knowledge_types"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid knowledge_types")
		return
	}

	chunks := h.svc.SearchByMuscleGroup(r.Context(), group, types, parseLimit(r.URL.Query()))
	api.Success(w, http.StatusOK, searchResponse(chunks))
}

func parseLimit(q url.Values) int {
	raw := q.Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
