package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/fred/observation"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestReplaceSeries(t *testing.T) {
	p := NewPersister()
	ctx := t.Context()

	n, err := p.ReplaceSeries(ctx, "FEDFUNDS", []observation.Observation{
		{Date: day(2020, 2, 1), Value: 1.58},
		{Date: day(2020, 1, 1), Value: 1.55},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = p.ReplaceSeries(ctx, "MPRIME", []observation.Observation{{Date: day(2020, 1, 1), Value: 4.75}})
	require.NoError(t, err)

	_, err = p.ReplaceSeries(ctx, "FEDFUNDS", []observation.Observation{{Date: day(2020, 3, 1), Value: 0.65}})
	require.NoError(t, err)

	all, err := p.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "FEDFUNDS", all[0].SeriesId)
	assert.Equal(t, 0.65, all[0].Value)
	assert.Equal(t, "MPRIME", all[1].SeriesId)

	series, err := p.ListSeries(ctx, "MPRIME")
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, 4.75, series[0].Value)
}

func TestSetEmbedding(t *testing.T) {
	p := NewPersister()
	ctx := t.Context()

	_, err := p.ReplaceSeries(ctx, "TOTALSL", []observation.Observation{{Date: day(2019, 5, 1), Value: 4000}})
	require.NoError(t, err)

	all, err := p.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	vec := []float32{0.6, 0.8}
	require.NoError(t, p.SetEmbedding(ctx, all[0].ID, vec, "key"))
	vec[0] = 0

	all, err = p.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.6, 0.8}, all[0].Embedding)
	assert.Equal(t, "key", all[0].EmbeddingKey)

	assert.Error(t, p.SetEmbedding(ctx, "missing", vec, "key"))
}
