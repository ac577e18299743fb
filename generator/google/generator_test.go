package google

import (
	"context"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/fred/errs"
	"github.com/w-h-a/fred/generator"
	"github.com/w-h-a/fred/router"
)

func TestMissingKeyFailsBeforeAnyCall(t *testing.T) {
	g := NewGenerator(WithModelRotation(time.Minute))

	assert.ErrorIs(t, g.Validate(), errs.ErrConfiguration)

	_, err := g.Generate(context.Background(), generator.Request{Prompt: "hi"})
	assert.ErrorIs(t, err, errs.ErrConfiguration)

	lister, ok := g.(router.Lister)
	require.True(t, ok)

	_, err = lister.ListModels(context.Background())
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestDefaults(t *testing.T) {
	g := NewGenerator(generator.WithApiKey("key")).(*googleGenerator)

	assert.Equal(t, defaultModel, g.options.Model)
	assert.Equal(t, float32(defaultTemperature), g.options.Temperature)
	assert.Equal(t, defaultMaxTokens, g.options.MaxTokens)
	assert.Nil(t, g.Router())

	rotating := NewGenerator(generator.WithApiKey("key"), WithModelRotation(time.Minute)).(*googleGenerator)
	assert.NotNil(t, rotating.Router())
}

func TestHistoryMapsRoles(t *testing.T) {
	contents := history([]generator.Message{
		{Role: "system", Content: "ignored"},
		{Role: "user", Content: "rates?"},
		{Role: "assistant", Content: "rising"},
	})

	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, []genai.Part{genai.Text("rising")}, contents[1].Parts)
}

func TestReplyJoinsTextParts(t *testing.T) {
	assert.Empty(t, reply(nil))
	assert.Empty(t, reply(&genai.GenerateContentResponse{}))

	rsp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("a"), genai.Text("b")}},
		}},
	}
	assert.Equal(t, "ab", reply(rsp))
}
