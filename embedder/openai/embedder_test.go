package openai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/fred/embedder"
	"github.com/w-h-a/fred/errs"
)

func newServer(t *testing.T, hits *atomic.Int32, status int, values []float32) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		if r.URL.Path != "/embeddings" {
			http.NotFound(w, r)
			return
		}

		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)

		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`))
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  req["model"],
			"data": []map[string]any{
				{"object": "embedding", "index": 0, "embedding": values},
			},
		})
	}))

	t.Cleanup(srv.Close)

	return srv
}

func TestEmbedNormalizes(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits, http.StatusOK, []float32{3, 0, 4})

	e := NewEmbedder(
		embedder.WithApiKey("test-key"),
		embedder.WithBaseURL(srv.URL),
		embedder.WithDimensions(3),
	)

	vec, err := e.Embed(t.Context(), "series FEDFUNDS observation", embedder.TaskDocument)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float32{0.6, 0, 0.8}, vec, 1e-6)
	assert.InDelta(t, 1.0, embedder.Magnitude(vec), 1e-6)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, "text-embedding-3-small", e.Model())
}

func TestEmbedWrongDimensions(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits, http.StatusOK, []float32{1, 2})

	e := NewEmbedder(
		embedder.WithApiKey("test-key"),
		embedder.WithBaseURL(srv.URL),
		embedder.WithDimensions(3),
	)

	_, err := e.Embed(t.Context(), "text", embedder.TaskQuery)
	assert.ErrorIs(t, err, errs.ErrFormat)
}

func TestEmbedZeroVector(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits, http.StatusOK, []float32{0, 0, 0})

	e := NewEmbedder(
		embedder.WithApiKey("test-key"),
		embedder.WithBaseURL(srv.URL),
		embedder.WithDimensions(3),
	)

	_, err := e.Embed(t.Context(), "text", embedder.TaskQuery)
	assert.ErrorIs(t, err, errs.ErrNormalization)
}

func TestEmbedUpstreamError(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits, http.StatusTooManyRequests, nil)

	e := NewEmbedder(
		embedder.WithApiKey("test-key"),
		embedder.WithBaseURL(srv.URL),
		embedder.WithDimensions(3),
	)

	_, err := e.Embed(t.Context(), "text", embedder.TaskQuery)
	require.ErrorIs(t, err, errs.ErrUpstream)

	var upstreamErr *errs.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, http.StatusTooManyRequests, upstreamErr.StatusCode)
}

func TestEmbedMissingKeyMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits, http.StatusOK, []float32{1, 0, 0})

	e := NewEmbedder(
		embedder.WithBaseURL(srv.URL),
		embedder.WithDimensions(3),
	)

	_, err := e.Embed(t.Context(), "text", embedder.TaskDocument)
	assert.ErrorIs(t, err, errs.ErrConfiguration)
	assert.Zero(t, hits.Load())
}
