package indexer

import (
	"context"
	"log/slog"

	"github.com/w-h-a/fred/cacher"
	"github.com/w-h-a/fred/embedder"
	"github.com/w-h-a/fred/internal/metrics"
	"github.com/w-h-a/fred/observation"
	"github.com/w-h-a/fred/persister"
	"github.com/w-h-a/fred/storer"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultBatchSize = 100
	DefaultNamespace = "fred"
)

var tracer = otel.Tracer("github.com/w-h-a/fred/internal/service/indexer")

type Service struct {
	persister persister.Persister
	embedder  embedder.Embedder
	storer    storer.Storer
	cacher    cacher.Cacher
	namespace string
	batchSize int
}

// UpsertAll embeds every stored observation and upserts the vectors in
// batches. Records or batches that fail are logged and skipped; the
// returned count covers only vectors the index accepted.
func (s *Service) UpsertAll(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "indexer.UpsertAll")
	defer span.End()

	observations, err := s.persister.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	records := make([]storer.Record, 0, len(observations))

	for _, o := range observations {
		vector, ok := s.Embedding(ctx, o)
		if !ok {
			continue
		}

		records = append(records, storer.Record{
			Id:       o.VectorId(),
			Values:   vector,
			Metadata: o.Metadata(),
		})
	}

	upserted := 0

	for start := 0; start < len(records); start += s.batchSize {
		end := min(start+s.batchSize, len(records))
		batch := records[start:end]

		if err := s.storer.Upsert(ctx, s.namespace, batch); err != nil {
			slog.WarnContext(ctx, "failed to upsert batch", "namespace", s.namespace, "from", start, "to", end, "error", err)
			metrics.IncUpsertBatch("failed")
			continue
		}

		metrics.IncUpsertBatch("ok")
		upserted += len(batch)
	}

	metrics.AddVectorsUpserted(upserted)

	span.SetAttributes(
		attribute.Int("fred.observations", len(observations)),
		attribute.Int("fred.embedded", len(records)),
		attribute.Int("fred.upserted", upserted),
	)

	slog.InfoContext(ctx, "upserted vectors", "namespace", s.namespace, "observations", len(observations), "upserted", upserted)

	return upserted, nil
}

// Embedding returns the vector for o, reusing the one stored on the record
// when it has the expected dimensions and was built from the same text and
// model, then the cache, and only then the embedder. Generated vectors are
// written back to the record and the cache.
func (s *Service) Embedding(ctx context.Context, o observation.Observation) ([]float32, bool) {
	dims := s.embedder.Dimensions()
	text := o.Text()
	key := observation.ContentKey(s.embedder.Model(), text)

	if len(o.Embedding) == dims && (len(o.EmbeddingKey) == 0 || o.EmbeddingKey == key) {
		metrics.IncEmbeddingLookup("record")
		return o.Embedding, true
	}

	if s.cacher != nil {
		vector, ok, err := s.cacher.Get(ctx, key)
		if err != nil {
			slog.WarnContext(ctx, "failed to read embedding cache", "id", o.VectorId(), "error", err)
		}
		if ok && len(vector) == dims {
			metrics.IncEmbeddingLookup("cache")
			s.writeBack(ctx, o, vector, key)
			return vector, true
		}
	}

	vector, err := s.embedder.Embed(ctx, text, embedder.TaskDocument)
	if err != nil {
		metrics.IncEmbeddingLookup("failed")
		slog.WarnContext(ctx, "failed to generate embedding", "id", o.VectorId(), "error", err)
		return nil, false
	}

	metrics.IncEmbeddingLookup("generated")

	s.writeBack(ctx, o, vector, key)

	if s.cacher != nil {
		if err := s.cacher.Set(ctx, key, vector); err != nil {
			slog.WarnContext(ctx, "failed to write embedding cache", "id", o.VectorId(), "error", err)
		}
	}

	return vector, true
}

func (s *Service) writeBack(ctx context.Context, o observation.Observation, vector []float32, key string) {
	if err := s.persister.SetEmbedding(ctx, o.ID, vector, key); err != nil {
		slog.WarnContext(ctx, "failed to persist embedding", "id", o.VectorId(), "error", err)
	}
}

func New(
	persister persister.Persister,
	embedder embedder.Embedder,
	storer storer.Storer,
	cacher cacher.Cacher,
	namespace string,
	batchSize int,
) *Service {
	if len(namespace) == 0 {
		namespace = DefaultNamespace
	}

	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}

	return &Service{
		persister: persister,
		embedder:  embedder,
		storer:    storer,
		cacher:    cacher,
		namespace: namespace,
		batchSize: batchSize,
	}
}
