package main

import (
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/fred/internal/service/chat"
)

func parse(t *testing.T, args ...string) (*cli, *kong.Context) {
	t.Helper()

	var c cli
	parser, err := kong.New(&c, kong.Name("fred"))
	require.NoError(t, err)

	kctx, err := parser.Parse(args)
	require.NoError(t, err)

	return &c, kctx
}

func TestGeminiKeyFallback(t *testing.T) {
	t.Setenv("GOOGLE_AI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	c, kctx := parse(t, "upsert")

	assert.Equal(t, "upsert", kctx.Command())
	assert.Equal(t, "gemini-key", c.GoogleAPIKey)
}

func TestDefaults(t *testing.T) {
	c, _ := parse(t, "ingest")

	assert.Equal(t, []string{"TOTALSL", "TOTALSA", "MPRIME", "FEDFUNDS"}, c.Series)
	assert.Equal(t, "fred", c.Namespace)
	assert.Equal(t, 768, c.EmbeddingDimensions)
	assert.Equal(t, chat.ProviderGoogle, c.Summarizer)
}

func TestBuildMemoryBackends(t *testing.T) {
	c, _ := parse(t, "--persister=memory", "--storer=memory", "--cache=none", "upsert")

	f := c.Build()

	n, err := f.Upsert(t.Context())
	require.NoError(t, err)
	assert.Zero(t, n)

	observations, err := f.Observations(t.Context(), "")
	require.NoError(t, err)
	assert.Empty(t, observations)
}

func TestParseDay(t *testing.T) {
	day, err := parseDay("2020-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), day)

	day, err = parseDay("")
	require.NoError(t, err)
	assert.True(t, day.IsZero())

	_, err = parseDay("03/01/2020")
	assert.Error(t, err)
}

func TestAnalyzeFlags(t *testing.T) {
	dir := t.TempDir()

	c, kctx := parse(t, "analyze", "FEDFUNDS", "--normalize", "--chart", "--chart-dir="+dir)

	assert.Equal(t, "analyze <series-id>", kctx.Command())
	assert.Equal(t, "FEDFUNDS", c.Analyze.SeriesId)
	assert.True(t, c.Analyze.Normalize)
	assert.True(t, c.Analyze.Chart)
	assert.Equal(t, dir, c.Analyze.ChartDir)
}
