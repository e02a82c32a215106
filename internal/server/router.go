package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/repstack/knowledge/internal/api"
	"github.com/repstack/knowledge/internal/api/handlers"
	"github.com/repstack/knowledge/internal/api/middleware"
)

type RouterConfig struct {
	KnowledgeHandler *handlers.KnowledgeHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/knowledge", func(r chi.Router) {
		r.Get("/search", cfg.KnowledgeHandler.Search)
		r.Post("/contextual", cfg.KnowledgeHandler.Contextual)
		r.Post("/batch", cfg.KnowledgeHandler.Batch)
		r.Get("/trending", cfg.KnowledgeHandler.Trending)
		r.Get("/exercise/{name}", cfg.KnowledgeHandler.ByExercise)
		r.Get("/muscle/{group}", cfg.KnowledgeHandler.ByMuscleGroup)
	})

	return r
}
