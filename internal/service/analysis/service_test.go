package analysis

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/fred/generator"
	"github.com/w-h-a/fred/observation"
	"github.com/w-h-a/fred/persister/memory"
)

type recordingGenerator struct {
	requests []generator.Request
	err      error
}

func (g *recordingGenerator) Validate() error { return nil }

func (g *recordingGenerator) Generate(ctx context.Context, req generator.Request) (string, error) {
	g.requests = append(g.requests, req)
	return "Rates trend upward.", g.err
}

func TestBuildFitsLinearSeries(t *testing.T) {
	data := series(1, 3, 5, 7, 9, 11, 13, 15, 17, 19, 21, 23)

	report := Build("X", data)

	assert.Equal(t, 12, report.Observations)
	assert.Equal(t, "2020-01-01", report.From)
	assert.Equal(t, "2020-01-12", report.To)
	assert.InDelta(t, 12, report.Stats.Mean, 1e-9)
	assert.Equal(t, 1.0, report.Stats.Min)
	assert.Equal(t, 23.0, report.Stats.Max)

	require.NotNil(t, report.Linear)
	assert.InDelta(t, 2, report.Linear.Coefficients[1], 1e-9)
	assert.InDelta(t, 1, report.Linear.Coefficients[0], 1e-9)

	require.NotEmpty(t, report.Polynomials)
	assert.LessOrEqual(t, len(report.Polynomials), MaxPolynomialOrder)
	assert.InDelta(t, 1, report.Polynomials[0].R2, 1e-9)

	assert.NotNil(t, report.Logarithmic)
	assert.NotNil(t, report.PercentChange)
}

func TestBuildSinglePoint(t *testing.T) {
	report := Build("X", series(4))

	assert.Equal(t, 1, report.Observations)
	assert.Nil(t, report.Linear)
	assert.Empty(t, report.Polynomials)
	assert.Nil(t, report.Logarithmic)
	assert.Nil(t, report.PercentChange)
	assert.Equal(t, 0.0, report.Stats.StdDev)
}

func TestAnalyzeWithSummary(t *testing.T) {
	p := memory.NewPersister()
	_, err := p.ReplaceSeries(t.Context(), "FEDFUNDS", []observation.Observation{
		{Date: day(2020, 1, 1), Value: 1.55},
		{Date: day(2020, 2, 1), Value: 1.58},
		{Date: day(2020, 3, 1), Value: 0.65},
		{Date: day(2020, 4, 1), Value: 0.05},
	})
	require.NoError(t, err)

	gen := &recordingGenerator{}
	svc := New(p, gen)

	report, err := svc.Analyze(t.Context(), Request{SeriesId: "FEDFUNDS", Summarize: true})
	require.NoError(t, err)

	assert.Equal(t, "Rates trend upward.", report.Summary)
	require.Len(t, gen.requests, 1)
	assert.Equal(t, SummaryInstructions, gen.requests[0].System)
	assert.True(t, strings.HasPrefix(gen.requests[0].Prompt, "=== Detailed Analysis for FRED Series: FEDFUNDS ==="))
	assert.Contains(t, gen.requests[0].Prompt, "Number of Observations: 4")
	assert.Contains(t, gen.requests[0].Prompt, "analyzed as raw")
}

func TestAnalyzeWithoutSummary(t *testing.T) {
	p := memory.NewPersister()
	_, err := p.ReplaceSeries(t.Context(), "MPRIME", []observation.Observation{
		{Date: day(2020, 1, 1), Value: 4.75},
		{Date: day(2020, 2, 1), Value: 4.75},
	})
	require.NoError(t, err)

	gen := &recordingGenerator{}
	report, err := New(p, gen).Analyze(t.Context(), Request{SeriesId: "MPRIME"})
	require.NoError(t, err)
	assert.Empty(t, report.Summary)
	assert.Empty(t, gen.requests)
}

func TestAnalyzeMissingSeries(t *testing.T) {
	_, err := New(memory.NewPersister(), nil).Analyze(t.Context(), Request{SeriesId: "NOPE", Summarize: true})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestAnalyzeSummaryFailure(t *testing.T) {
	p := memory.NewPersister()
	_, err := p.ReplaceSeries(t.Context(), "X", series(1, 2, 3))
	require.NoError(t, err)

	boom := errors.New("provider down")
	_, err = New(p, &recordingGenerator{err: boom}).Analyze(t.Context(), Request{SeriesId: "X", Summarize: true})
	assert.ErrorIs(t, err, boom)
}

func TestAnalyzeNormalize(t *testing.T) {
	p := memory.NewPersister()
	_, err := p.ReplaceSeries(t.Context(), "X", series(10, 20, 30, 40, 50))
	require.NoError(t, err)

	gen := &recordingGenerator{}
	report, err := New(p, gen).Analyze(t.Context(), Request{SeriesId: "X", Normalize: true, Summarize: true})
	require.NoError(t, err)

	assert.True(t, report.Normalized)
	assert.False(t, report.Cleaned)
	assert.Equal(t, 0.0, report.Stats.Min)
	assert.Equal(t, 1.0, report.Stats.Max)

	require.Len(t, gen.requests, 1)
	assert.Contains(t, gen.requests[0].Prompt, "min-max normalized")
	assert.NotContains(t, gen.requests[0].Prompt, "analyzed as raw")
}

func TestServiceChart(t *testing.T) {
	p := memory.NewPersister()
	_, err := p.ReplaceSeries(t.Context(), "X", series(1, 3, 2, 5, 4, 6))
	require.NoError(t, err)

	svc := New(p, nil)

	for _, scale := range []Scale{ScaleLinear, ScaleLog} {
		img, err := svc.Chart(t.Context(), Request{SeriesId: "X"}, scale)
		require.NoError(t, err, scale)
		assert.True(t, bytes.HasPrefix(img, pngSignature), scale)
	}

	_, err = svc.Chart(t.Context(), Request{SeriesId: "NOPE"}, ScaleLinear)
	assert.ErrorIs(t, err, ErrNoData)
}
