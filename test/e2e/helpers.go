//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/repstack/knowledge/internal/api/handlers"
	"github.com/repstack/knowledge/internal/repository"
	"github.com/repstack/knowledge/internal/server"
	"github.com/repstack/knowledge/internal/service"
	"github.com/repstack/knowledge/internal/testutil"
)

// E2ETestEnv holds all resources needed for E2E tests.
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	PostgresC  *testutil.PostgresContainer
	Pool       *pgxpool.Pool
	Repo       *repository.ChunkRepository
	Server     *httptest.Server
	HTTPClient *http.Client
}

// SetupE2EEnv starts a pgvector container, applies migrations and serves
// the router in-process. No embedding provider is wired, so retrieval
// runs the keyword-only strategy.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	repo := repository.NewChunkRepository(pool)
	searchSvc := service.NewSearchService(repo, nil)

	router := server.NewRouter(server.RouterConfig{
		KnowledgeHandler: handlers.NewKnowledgeHandler(searchSvc),
	})
	srv := httptest.NewServer(router)

	return &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		Pool:       pool,
		Repo:       repo,
		Server:     srv,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Cleanup releases all environment resources.
func (env *E2ETestEnv) Cleanup() {
	env.Server.Close()
	env.Pool.Close()
	env.PostgresC.Terminate(env.Ctx)
}

// APIResponse mirrors the server's response envelope.
type APIResponse struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request against the test server.
func (env *E2ETestEnv) Get(path string) (*APIResponse, int, error) {
	resp, err := env.HTTPClient.Get(env.Server.URL + path)
	if err != nil {
		return nil, 0, err
	}
	return env.readResponse(resp)
}

// Post performs a POST request with a JSON body against the test server.
func (env *E2ETestEnv) Post(path string, body interface{}) (*APIResponse, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, err
	}

	resp, err := env.HTTPClient.Post(env.Server.URL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	return env.readResponse(resp)
}

func (env *E2ETestEnv) readResponse(resp *http.Response) (*APIResponse, int, error) {
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to parse response %q: %w", raw, err)
	}
	return &apiResp, resp.StatusCode, nil
}
