package ingest

import (
	"context"
	"log/slog"

	"github.com/w-h-a/fred/errs"
	"github.com/w-h-a/fred/fetcher"
	"github.com/w-h-a/fred/internal/metrics"
	"github.com/w-h-a/fred/internal/service/analysis"
	"github.com/w-h-a/fred/persister"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var DefaultSeries = []string{"TOTALSL", "TOTALSA", "MPRIME", "FEDFUNDS"}

var tracer = otel.Tracer("github.com/w-h-a/fred/internal/service/ingest")

type Result struct {
	SeriesId string `json:"seriesId"`
	Fetched  int    `json:"fetched"`
	Stored   int    `json:"stored"`
	Error    string `json:"error,omitempty"`
}

type Service struct {
	fetcher       fetcher.Fetcher
	persister     persister.Persister
	series        []string
	removeInvalid bool
}

// Run fetches each configured series in order and replaces its stored
// observations. A failing series is logged and reported in its Result; the
// others still run. Only cancellation stops the loop.
func (s *Service) Run(ctx context.Context) ([]Result, error) {
	return s.RunSeries(ctx, s.series...)
}

// RunSeries is Run over an explicit list of series ids.
func (s *Service) RunSeries(ctx context.Context, series ...string) ([]Result, error) {
	if s.fetcher == nil {
		return nil, errs.Configuration("ingest requires a statistics fetcher")
	}

	ctx, span := tracer.Start(ctx, "ingest.Run")
	defer span.End()

	results := make([]Result, 0, len(series))

	for _, seriesId := range series {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return results, err
		}

		result := s.runSeries(ctx, seriesId)
		results = append(results, result)
	}

	return results, nil
}

func (s *Service) runSeries(ctx context.Context, seriesId string) Result {
	result := Result{SeriesId: seriesId}

	observations, err := s.fetcher.Fetch(ctx, seriesId)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch series", "series", seriesId, "error", err)
		result.Error = err.Error()
		return result
	}

	result.Fetched = len(observations)

	if s.removeInvalid {
		observations = analysis.RemoveInvalid(observations)
	}

	stored, err := s.persister.ReplaceSeries(ctx, seriesId, observations)
	if err != nil {
		slog.ErrorContext(ctx, "failed to store series", "series", seriesId, "error", err)
		result.Error = err.Error()
		return result
	}

	result.Stored = stored

	metrics.AddObservationsIngested(seriesId, stored)

	trace.SpanFromContext(ctx).AddEvent("series stored", trace.WithAttributes(
		attribute.String("fred.series", seriesId),
		attribute.Int("fred.stored", stored),
	))

	slog.InfoContext(ctx, "stored series", "series", seriesId, "fetched", result.Fetched, "stored", stored)

	return result
}

func New(
	fetcher fetcher.Fetcher,
	persister persister.Persister,
	series []string,
	removeInvalid bool,
) *Service {
	if len(series) == 0 {
		series = DefaultSeries
	}

	return &Service{
		fetcher:       fetcher,
		persister:     persister,
		series:        series,
		removeInvalid: removeInvalid,
	}
}
