package azure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/fred/errs"
	"github.com/w-h-a/fred/generator"
)

func TestGenerateUsesDeployment(t *testing.T) {
	var hits atomic.Int32
	var body map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		if !strings.HasSuffix(r.URL.Path, "/openai/deployments/fred-gpt/chat/completions") {
			http.NotFound(w, r)
			return
		}

		if r.Header.Get("api-key") != "azure-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		_ = json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "chatcmpl-1",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]any{"role": "assistant", "content": "Banks tighten lending."}},
			},
		})
	}))
	t.Cleanup(srv.Close)

	g := NewGenerator(
		generator.WithApiKey("azure-key"),
		WithEndpoint(srv.URL),
		WithDeployment("fred-gpt"),
	)
	require.NoError(t, g.Validate())

	text, err := g.Generate(context.Background(), generator.Request{System: "be precise", Prompt: "rates?"})
	require.NoError(t, err)
	assert.Equal(t, "Banks tighten lending.", text)
	assert.Equal(t, int32(1), hits.Load())

	assert.Equal(t, float64(defaultMaxTokens), body["max_tokens"])
	assert.InDelta(t, defaultTemperature, body["temperature"], 1e-6)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		opts []generator.Option
	}{
		{"no key", []generator.Option{WithEndpoint("https://example.openai.azure.com"), WithDeployment("d")}},
		{"no endpoint", []generator.Option{generator.WithApiKey("k"), WithDeployment("d")}},
		{"no deployment", []generator.Option{generator.WithApiKey("k"), WithEndpoint("https://example.openai.azure.com")}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGenerator(tc.opts...)
			assert.ErrorIs(t, g.Validate(), errs.ErrConfiguration)

			_, err := g.Generate(context.Background(), generator.Request{Prompt: "hi"})
			assert.ErrorIs(t, err, errs.ErrConfiguration)
		})
	}
}

func TestModelFallsBackAsDeployment(t *testing.T) {
	g := NewGenerator(
		generator.WithApiKey("k"),
		generator.WithBaseURL("https://example.openai.azure.com"),
		generator.WithModel("gpt-4o"),
	).(*azureGenerator)

	assert.Equal(t, "gpt-4o", g.deployment)
	assert.Equal(t, "https://example.openai.azure.com", g.endpoint)
	assert.NoError(t, g.Validate())
}
