package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/repstack/knowledge/internal/api"
	"github.com/repstack/knowledge/internal/domain"
	"github.com/repstack/knowledge/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) Search(ctx context.Context, input service.SearchInput) []*domain.KnowledgeChunk {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*domain.KnowledgeChunk)
}

func (m *MockRetriever) SearchByExercise(ctx context.Context, exerciseName string, types []domain.KnowledgeType, limit int) []*domain.KnowledgeChunk {
	args := m.Called(ctx, exerciseName, types, limit)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*domain.KnowledgeChunk)
}

func (m *MockRetriever) SearchByMuscleGroup(ctx context.Context, muscleGroup string, types []domain.KnowledgeType, limit int) []*domain.KnowledgeChunk {
	args := m.Called(ctx, muscleGroup, types, limit)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*domain.KnowledgeChunk)
}

func (m *MockRetriever) ContextualSearch(ctx context.Context, input service.ContextualInput) []*domain.KnowledgeChunk {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*domain.KnowledgeChunk)
}

func (m *MockRetriever) BatchSearch(ctx context.Context, keywords []string, limit int) []*domain.KnowledgeChunk {
	args := m.Called(ctx, keywords, limit)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*domain.KnowledgeChunk)
}

func (m *MockRetriever) Trending(ctx context.Context, limit int) []*domain.KnowledgeChunk {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*domain.KnowledgeChunk)
}

func newTestChunk(id string) *domain.KnowledgeChunk {
	return &domain.KnowledgeChunk{
		ID:           id,
		Type:         domain.KnowledgeTypeExerciseTechnique,
		Content:      "Keep the bar over midfoot.",
		Summary:      "Squat bar path",
		ExerciseName: "barbell squat",
		MuscleGroup:  "legs",
		Difficulty:   domain.DifficultyBeginner,
	}
}

func decodeSearchResponse(t *testing.T, rec *httptest.ResponseRecorder) SearchResponse {
	t.Helper()

	var wrapper struct {
		Data SearchResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&wrapper))
	return wrapper.Data
}

func TestSearch_Success(t *testing.T) {
	svc := new(MockRetriever)
	handler := NewKnowledgeHandler(svc)

	chunks := []*domain.KnowledgeChunk{newTestChunk("c1"), newTestChunk("c2")}
	svc.On("Search", mock.Anything, service.SearchInput{
		Query: "squat depth",
		Limit: 3,
	}).Return(chunks)

	req := httptest.NewRequest(http.MethodGet, "/knowledge/search?query=squat+depth&limit=3", nil)
	rec := httptest.NewRecorder()

	handler.Search(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeSearchResponse(t, rec)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "c1", resp.Results[0].ID)
	assert.Contains(t, resp.ContextPrompt, "Squat bar path")
	svc.AssertExpectations(t)
}

func TestSearch_ParsesFilters(t *testing.T) {
	svc := new(MockRetriever)
	handler := NewKnowledgeHandler(svc)

	svc.On("Search", mock.Anything, service.SearchInput{
		Query:       "bench press grip",
		Types:       []domain.KnowledgeType{domain.KnowledgeTypeExerciseTechnique, domain.KnowledgeTypeFormCheck},
		MuscleGroup: "chest",
		Difficulty:  domain.DifficultyIntermediate,
	}).Return([]*domain.KnowledgeChunk{})

	target := "/knowledge/search?query=bench+press+grip&knowledge_types=exercise_technique,form_check&muscle_group=chest&difficulty=intermediate"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()

	handler.Search(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestSearch_InvalidKnowledgeType(t *testing.T) {
	svc := new(MockRetriever)
	handler := NewKnowledgeHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/knowledge/search?query=squat&knowledge_types=bogus", nil)
	rec := httptest.NewRecorder()

	handler.Search(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestSearch_InvalidDifficulty(t *testing.T) {
	svc := new(MockRetriever)
	handler := NewKnowledgeHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/knowledge/search?query=squat&difficulty=expert", nil)
	rec := httptest.NewRecorder()

	handler.Search(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch_EmptyResultsStillOK(t *testing.T) {
	svc := new(MockRetriever)
	handler := NewKnowledgeHandler(svc)

	svc.On("Search", mock.Anything, mock.Anything).Return([]*domain.KnowledgeChunk{})

	req := httptest.NewRequest(http.MethodGet, "/knowledge/search?query=anything", nil)
	rec := httptest.NewRecorder()

	handler.Search(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeSearchResponse(t, rec)
	assert.Empty(t, resp.Results)
	assert.Empty(t, resp.ContextPrompt)
}

func TestContextual_Success(t *testing.T) {
	svc := new(MockRetriever)
	handler := NewKnowledgeHandler(svc)

	svc.On("ContextualSearch", mock.Anything, service.ContextualInput{
		Exercises:  []string{"deadlift"},
		Goals:      []string{"fat_loss"},
		Difficulty: domain.DifficultyBeginner,
		Limit:      5,
	}).Return([]*domain.KnowledgeChunk{newTestChunk("c1")})

	body, _ := json.Marshal(ContextualSearchRequest{
		Exercises:  []string{"deadlift"},
		Goals:      []string{"fat_loss"},
		Difficulty: "beginner",
		Limit:      5,
	})
	req := httptest.NewRequest(http.MethodPost, "/knowledge/contextual", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Contextual(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeSearchResponse(t, rec)
	require.Len(t, resp.Results, 1)
	svc.AssertExpectations(t)
}

func TestContextual_InvalidBody(t *testing.T) {
	svc := new(MockRetriever)
	handler := NewKnowledgeHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/knowledge/contextual", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()

	handler.Contextual(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "ContextualSearch", mock.Anything, mock.Anything)
}

func TestContextual_InvalidKnowledgeType(t *testing.T) {
	svc := new(MockRetriever)
	handler := NewKnowledgeHandler(svc)

	body, _ := json.Marshal(ContextualSearchRequest{
		Exercises:      []string{"deadlift"},
		KnowledgeTypes: []string{"bogus"},
	})
	req := httptest.NewRequest(http.MethodPost, "/knowledge/contextual", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Contextual(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatch_Success(t *testing.T) {
	svc := new(MockRetriever)
	handler := NewKnowledgeHandler(svc)

	svc.On("BatchSearch", mock.Anything, []string{"squat", "deadlift"}, 4).
		Return([]*domain.KnowledgeChunk{newTestChunk("c1")})

	body, _ := json.Marshal(BatchSearchRequest{Keywords: []string{"squat", "deadlift"}, Limit: 4})
	req := httptest.NewRequest(http.MethodPost, "/knowledge/batch", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Batch(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeSearchResponse(t, rec)
	require.Len(t, resp.Results, 1)
	svc.AssertExpectations(t)
}

func TestTrending_Success(t *testing.T) {
	svc := new(MockRetriever)
	handler := NewKnowledgeHandler(svc)

	svc.On("Trending", mock.Anything, 0).Return([]*domain.KnowledgeChunk{newTestChunk("c1")})

	req := httptest.NewRequest(http.MethodGet, "/knowledge/trending", nil)
	rec := httptest.NewRecorder()

	handler.Trending(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeSearchResponse(t, rec)
	require.Len(t, resp.Results, 1)
	svc.AssertExpectations(t)
}

func TestByExercise_Success(t *testing.T) {
	svc := new(MockRetriever)
	handler := NewKnowledgeHandler(svc)

	svc.On("SearchByExercise", mock.Anything, "barbell squat", []domain.KnowledgeType(nil), 0).
		Return([]*domain.KnowledgeChunk{newTestChunk("c1")})

	req := httptest.NewRequest(http.MethodGet, "/knowledge/exercise/barbell%20squat", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("name", "barbell%20squat")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	handler.ByExercise(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestByMuscleGroup_Success(t *testing.T) {
	svc := new(MockRetriever)
	handler := NewKnowledgeHandler(svc)

	svc.On("SearchByMuscleGroup", mock.Anything, "back", []domain.KnowledgeType(nil), 0).
		Return([]*domain.KnowledgeChunk{newTestChunk("c1")})

	req := httptest.NewRequest(http.MethodGet, "/knowledge/muscle/back", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("group", "back")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	handler.ByMuscleGroup(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestByExercise_MissingName(t *testing.T) {
	svc := new(MockRetriever)
	handler := NewKnowledgeHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/knowledge/exercise/", nil)
	rctx := chi.NewRouteContext()
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	handler.ByExercise(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "exercise name is required", resp.Error)
}
