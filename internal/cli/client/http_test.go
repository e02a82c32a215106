package client

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/knowledge/trending", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"results":[],"context_prompt":""}}`))
	}))
	defer server.Close()

	api, err := NewAPIClientWithConfig(server.URL)
	require.NoError(t, err)

	resp, err := api.Get("/knowledge/trending")
	require.NoError(t, err)
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Error)
}

func TestAPIClient_Post(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"data":{"results":[],"context_prompt":""}}`))
	}))
	defer server.Close()

	api, err := NewAPIClientWithConfig(server.URL)
	require.NoError(t, err)

	_, err = api.Post("/knowledge/batch", BatchRequest{Keywords: []string{"squat"}})
	require.NoError(t, err)
}

func TestAPIClient_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid difficulty"}`))
	}))
	defer server.Close()

	api, err := NewAPIClientWithConfig(server.URL)
	require.NoError(t, err)

	_, err = api.Get("/knowledge/search?difficulty=bogus")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "invalid difficulty", apiErr.Message)
}

func TestNewAPIClientWithCmd_EnvFallback(t *testing.T) {
	os.Setenv(envAPIURL, "http://example.test:9999")
	defer os.Unsetenv(envAPIURL)

	api, err := NewAPIClientWithCmd(nil)
	require.NoError(t, err)
	assert.Equal(t, "http://example.test:9999", api.baseURL)
}

func TestNewAPIClientWithCmd_Default(t *testing.T) {
	os.Unsetenv(envAPIURL)

	api, err := NewAPIClientWithCmd(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultAPIURL, api.baseURL)
}
