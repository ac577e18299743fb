package retrieval

import (
	"context"

	"github.com/w-h-a/fred/embedder"
	"github.com/w-h-a/fred/errs"
	"github.com/w-h-a/fred/internal/metrics"
	"github.com/w-h-a/fred/storer"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/w-h-a/fred/internal/service/retrieval")

type Service struct {
	embedder  embedder.Embedder
	storer    storer.Storer
	namespace string
}

// Query returns up to topK matches for text in the order the vector store
// ranked them. An empty namespace yields an empty slice.
func (s *Service) Query(ctx context.Context, text string, topK int) ([]storer.Match, error) {
	ctx, span := tracer.Start(ctx, "retrieval.Query")
	defer span.End()

	span.SetAttributes(attribute.Int("fred.top_k", topK))

	if topK < 1 {
		return []storer.Match{}, nil
	}

	vector, err := s.embedder.Embed(ctx, text, embedder.TaskQuery)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if len(vector) != s.embedder.Dimensions() {
		err := errs.Format("query embedding has %d values, expected %d", len(vector), s.embedder.Dimensions())
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	matches, err := s.storer.Query(ctx, s.namespace, vector, topK)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if matches == nil {
		matches = []storer.Match{}
	}

	if len(matches) > topK {
		matches = matches[:topK]
	}

	metrics.ObserveRetrieval(len(matches))
	span.SetAttributes(attribute.Int("fred.matches", len(matches)))

	return matches, nil
}

func New(
	embedder embedder.Embedder,
	storer storer.Storer,
	namespace string,
) *Service {
	if len(namespace) == 0 {
		namespace = "fred"
	}

	return &Service{
		embedder:  embedder,
		storer:    storer,
		namespace: namespace,
	}
}
