package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/fred/errs"
	"github.com/w-h-a/fred/generator"
)

type captured struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	System    []struct {
		Text string `json:"text"`
	} `json:"system"`
	Messages []struct {
		Role string `json:"role"`
	} `json:"messages"`
}

func newServer(t *testing.T, hits *atomic.Int32, got *captured, status int, text string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		if r.URL.Path != "/v1/messages" {
			http.NotFound(w, r)
			return
		}

		_ = json.NewDecoder(r.Body).Decode(got)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)

		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":            "msg_1",
			"type":          "message",
			"role":          "assistant",
			"model":         got.Model,
			"content":       []map[string]any{{"type": "text", "text": text}},
			"stop_reason":   "end_turn",
			"stop_sequence": nil,
			"usage":         map[string]any{"input_tokens": 1, "output_tokens": 1},
		})
	}))

	t.Cleanup(srv.Close)

	return srv
}

func TestGenerate(t *testing.T) {
	var hits atomic.Int32
	var got captured
	srv := newServer(t, &hits, &got, http.StatusOK, "Margins compress.")

	g := NewGenerator(generator.WithApiKey("test-key"), generator.WithBaseURL(srv.URL))

	text, err := g.Generate(context.Background(), generator.Request{
		System:  "be precise",
		History: []generator.Message{{Role: "user", Content: "hi"}, {Role: "model", Content: "hello"}},
		Prompt:  "rates?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Margins compress.", text)

	assert.Equal(t, defaultModel, got.Model)
	assert.Equal(t, defaultMaxTokens, got.MaxTokens)
	require.Len(t, got.System, 1)
	assert.Equal(t, "be precise", got.System[0].Text)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "assistant", got.Messages[1].Role)
	assert.Equal(t, "user", got.Messages[2].Role)
}

func TestGenerateEmptyReply(t *testing.T) {
	var hits atomic.Int32
	var got captured
	srv := newServer(t, &hits, &got, http.StatusOK, "")

	g := NewGenerator(generator.WithApiKey("test-key"), generator.WithBaseURL(srv.URL))

	_, err := g.Generate(context.Background(), generator.Request{Prompt: "rates?"})
	assert.ErrorIs(t, err, errs.ErrEmptyResponse)
}

func TestGenerateUpstreamError(t *testing.T) {
	var hits atomic.Int32
	var got captured
	srv := newServer(t, &hits, &got, http.StatusServiceUnavailable, "")

	g := NewGenerator(generator.WithApiKey("test-key"), generator.WithBaseURL(srv.URL))

	_, err := g.Generate(context.Background(), generator.Request{Prompt: "rates?"})
	require.ErrorIs(t, err, errs.ErrUpstream)
	assert.Equal(t, int32(1), hits.Load())
}

func TestMissingKeyMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	var got captured
	srv := newServer(t, &hits, &got, http.StatusOK, "unused")

	g := NewGenerator(generator.WithBaseURL(srv.URL))

	_, err := g.Generate(context.Background(), generator.Request{Prompt: "rates?"})
	assert.ErrorIs(t, err, errs.ErrConfiguration)
	assert.Zero(t, hits.Load())
}
