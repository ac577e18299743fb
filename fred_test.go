package fred

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cachermemory "github.com/w-h-a/fred/cacher/memory"
	"github.com/w-h-a/fred/embedder"
	"github.com/w-h-a/fred/errs"
	"github.com/w-h-a/fred/generator"
	"github.com/w-h-a/fred/internal/service/analysis"
	"github.com/w-h-a/fred/internal/service/chat"
	"github.com/w-h-a/fred/observation"
	persistermemory "github.com/w-h-a/fred/persister/memory"
	storermemory "github.com/w-h-a/fred/storer/memory"
)

type staticFetcher map[string][]float64

func (f staticFetcher) Fetch(ctx context.Context, seriesId string) ([]observation.Observation, error) {
	out := []observation.Observation{}
	for i, v := range f[seriesId] {
		out = append(out, observation.Observation{
			SeriesId: seriesId,
			Date:     time.Date(2020, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC),
			Value:    v,
		})
	}
	return out, nil
}

// seriesEmbedder points every text mentioning a series along its own axis.
type seriesEmbedder struct {
	calls int
}

func (e *seriesEmbedder) Embed(ctx context.Context, text string, task embedder.TaskType) ([]float32, error) {
	e.calls++
	switch {
	case strings.Contains(text, "FEDFUNDS"), strings.Contains(text, "federal funds"):
		return []float32{1, 0}, nil
	default:
		return []float32{0, 1}, nil
	}
}

func (e *seriesEmbedder) Model() string   { return "axis" }
func (e *seriesEmbedder) Dimensions() int { return 2 }

type echoGenerator struct {
	last generator.Request
}

func (g *echoGenerator) Validate() error { return nil }

func (g *echoGenerator) Generate(ctx context.Context, req generator.Request) (string, error) {
	g.last = req
	return "answer", nil
}

func TestPipeline(t *testing.T) {
	ctx := t.Context()

	e := &seriesEmbedder{}
	gen := &echoGenerator{}

	f := New(
		persistermemory.NewPersister(),
		storermemory.NewStorer(),
		e,
		cachermemory.NewCacher(),
		staticFetcher{"FEDFUNDS": {1.55, 1.58, 0.65}, "MPRIME": {4.75, 4.75}},
		map[string]generator.Generator{chat.ProviderOpenAI: gen},
		Settings{Series: []string{"FEDFUNDS", "MPRIME"}, BatchSize: 2, Summarizer: chat.ProviderOpenAI},
	)

	results, err := f.Ingest(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 3, results[0].Stored)

	n, err := f.Upsert(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 5, e.calls)

	n, err = f.Upsert(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 5, e.calls)

	matches, err := f.Query(ctx, "federal funds rate 2020", 3)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	for _, m := range matches {
		assert.Contains(t, m.Id, "FEDFUNDS_2020-")
	}

	reply, err := f.Chat(ctx, chat.Request{Provider: chat.ProviderOpenAI, Message: "federal funds rate 2020"})
	require.NoError(t, err)
	assert.Equal(t, "answer", reply)
	assert.Contains(t, gen.last.Prompt, "[FEDFUNDS_2020-01-01]")

	report, err := f.Analyze(ctx, analysis.Request{SeriesId: "FEDFUNDS", Summarize: true})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Observations)
	assert.Equal(t, "answer", report.Summary)

	observations, err := f.Observations(ctx, "MPRIME")
	require.NoError(t, err)
	assert.Len(t, observations, 2)
}

func TestIngestWithoutFetcher(t *testing.T) {
	f := New(persistermemory.NewPersister(), storermemory.NewStorer(), &seriesEmbedder{}, nil, nil, nil, Settings{})

	_, err := f.Ingest(t.Context())
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}
