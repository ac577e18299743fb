package http

import (
	"net/http"

	"github.com/w-h-a/fred/internal/metrics"
	"github.com/w-h-a/fred/internal/service/analysis"
	"github.com/w-h-a/fred/internal/service/chat"
	"github.com/w-h-a/fred/internal/service/indexer"
	"github.com/w-h-a/fred/internal/service/ingest"
	"github.com/w-h-a/fred/internal/service/retrieval"
	"github.com/w-h-a/fred/persister"
	"github.com/w-h-a/fred/server"
)

type Services struct {
	Chat      *chat.Service
	Retrieval *retrieval.Service
	Analysis  *analysis.Service
	Ingest    *ingest.Service
	Indexer   *indexer.Service
	Persister persister.Persister
}

// Register mounts every route on s. Routes whose service is nil are
// skipped.
func Register(s server.Server, services Services, publicURL string) {
	docs := NewDocsHandler(publicURL)

	s.Handle("/", http.HandlerFunc(docs.Root), http.MethodGet)
	s.Handle("/swagger.json", http.HandlerFunc(docs.Document), http.MethodGet)
	s.Handle("/api-docs", http.HandlerFunc(docs.UI), http.MethodGet)
	s.Handle("/healthz", http.HandlerFunc(NewHealthHandler(services.Chat).Handle), http.MethodGet)
	s.Handle("/metrics", metrics.Handler(), http.MethodGet)

	if services.Chat != nil {
		s.Handle("/chat", http.HandlerFunc(NewChatHandler(services.Chat).Handle), http.MethodPost)
	}

	if services.Persister != nil {
		s.Handle("/observations", http.HandlerFunc(NewObservationsHandler(services.Persister).Handle), http.MethodGet)
	}

	if services.Retrieval != nil {
		s.Handle("/search", http.HandlerFunc(NewSearchHandler(services.Retrieval).Handle), http.MethodGet)
	}

	if services.Analysis != nil {
		h := NewAnalysisHandler(services.Analysis)
		s.Handle("/analysis/{seriesId}", http.HandlerFunc(h.Handle), http.MethodGet)
		s.Handle("/analysis/{seriesId}/chart.png", http.HandlerFunc(h.Chart), http.MethodGet)
	}

	if services.Ingest != nil {
		h := NewIngestHandler(services.Ingest)
		s.Handle("/ingest", http.HandlerFunc(h.Handle), http.MethodPost)
		s.Handle("/ingest/{seriesId}", http.HandlerFunc(h.Handle), http.MethodPost)
	}

	if services.Indexer != nil {
		s.Handle("/upsert", http.HandlerFunc(NewUpsertHandler(services.Indexer).Handle), http.MethodPost)
	}
}
