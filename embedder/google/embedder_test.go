package google

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/w-h-a/fred/embedder"
	"github.com/w-h-a/fred/errs"
)

func TestEmbedMissingKey(t *testing.T) {
	e := NewEmbedder()

	_, err := e.Embed(t.Context(), "series TOTALSL observation", embedder.TaskDocument)
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestEmbedRejectsEmptyText(t *testing.T) {
	e := NewEmbedder(embedder.WithApiKey("test-key"))

	_, err := e.Embed(t.Context(), "   ", embedder.TaskQuery)
	assert.ErrorIs(t, err, errs.ErrFormat)
}

func TestDefaults(t *testing.T) {
	e := NewEmbedder(embedder.WithApiKey("test-key"))

	assert.Equal(t, "text-embedding-004", e.Model())
	assert.Equal(t, 768, e.Dimensions())
}

func TestTaskType(t *testing.T) {
	assert.Equal(t, genai.TaskTypeRetrievalDocument, taskType(embedder.TaskDocument))
	assert.Equal(t, genai.TaskTypeRetrievalQuery, taskType(embedder.TaskQuery))
	assert.Equal(t, genai.TaskTypeUnspecified, taskType("other"))
}
