package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	vectorsUpserted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fred_vectors_upserted_total",
		Help: "Vectors successfully upserted into the vector index",
	})

	upsertBatches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fred_upsert_batches_total",
		Help: "Upsert batches by outcome (ok/failed)",
	}, []string{"outcome"})

	embeddingLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fred_embedding_lookups_total",
		Help: "Embedding lookups by source (record/cache/generated/failed)",
	}, []string{"source"})

	modelAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fred_model_attempts_total",
		Help: "Generation attempts per rotated model by outcome",
	}, []string{"model", "outcome"})

	chatRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fred_chat_requests_total",
		Help: "Chat requests per provider by outcome",
	}, []string{"provider", "outcome"})

	chatLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fred_chat_latency_seconds",
		Help:    "Latency of chat requests including retrieval",
		Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
	}, []string{"provider"})

	retrievalResults = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fred_retrieval_results",
		Help:    "Number of matches returned per retrieval query",
		Buckets: []float64{0, 1, 3, 10, 50, 200, 1000},
	})

	observationsIngested = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fred_observations_ingested_total",
		Help: "Observations stored per series",
	}, []string{"series"})
)

func ensureRegistered() {
	once.Do(func() {
		prometheus.MustRegister(Collectors()...)
	})
}

func AddVectorsUpserted(n int) {
	ensureRegistered()
	vectorsUpserted.Add(float64(n))
}

func IncUpsertBatch(outcome string) {
	ensureRegistered()
	upsertBatches.WithLabelValues(outcome).Inc()
}

func IncEmbeddingLookup(source string) {
	ensureRegistered()
	embeddingLookups.WithLabelValues(source).Inc()
}

func IncModelAttempt(model, outcome string) {
	ensureRegistered()
	modelAttempts.WithLabelValues(model, outcome).Inc()
}

// ObserveChat records the outcome and latency of one chat request.
func ObserveChat(provider string, start time.Time, err error) {
	ensureRegistered()
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	chatRequests.WithLabelValues(provider, outcome).Inc()
	chatLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())
}

func ObserveRetrieval(results int) {
	ensureRegistered()
	retrievalResults.Observe(float64(results))
}

func AddObservationsIngested(series string, n int) {
	ensureRegistered()
	observationsIngested.WithLabelValues(series).Add(float64(n))
}

func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		vectorsUpserted,
		upsertBatches,
		embeddingLookups,
		modelAttempts,
		chatRequests,
		chatLatency,
		retrievalResults,
		observationsIngested,
	}
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	ensureRegistered()
	return promhttp.Handler()
}
