package fred

import (
	"context"

	"github.com/w-h-a/fred/cacher"
	"github.com/w-h-a/fred/embedder"
	"github.com/w-h-a/fred/fetcher"
	"github.com/w-h-a/fred/generator"
	handler "github.com/w-h-a/fred/internal/handler/http"
	"github.com/w-h-a/fred/internal/service/analysis"
	"github.com/w-h-a/fred/internal/service/chat"
	"github.com/w-h-a/fred/internal/service/indexer"
	"github.com/w-h-a/fred/internal/service/ingest"
	"github.com/w-h-a/fred/internal/service/retrieval"
	"github.com/w-h-a/fred/observation"
	"github.com/w-h-a/fred/persister"
	"github.com/w-h-a/fred/server"
	"github.com/w-h-a/fred/storer"
)

// Settings tunes the pipeline. Zero values fall back to the defaults of
// each service.
type Settings struct {
	Namespace     string
	BatchSize     int
	Series        []string
	RemoveInvalid bool
	TopK          map[string]int
	Instructions  string
	Summarizer    string
}

type Fred struct {
	persister persister.Persister
	ingest    *ingest.Service
	indexer   *indexer.Service
	retrieval *retrieval.Service
	chat      *chat.Service
	analysis  *analysis.Service
}

// Ingest pulls every configured series into the document store.
func (f *Fred) Ingest(ctx context.Context) ([]ingest.Result, error) {
	return f.ingest.Run(ctx)
}

// Upsert embeds the stored observations and writes them to the vector
// index.
func (f *Fred) Upsert(ctx context.Context) (int, error) {
	return f.indexer.UpsertAll(ctx)
}

func (f *Fred) Query(ctx context.Context, text string, topK int) ([]storer.Match, error) {
	return f.retrieval.Query(ctx, text, topK)
}

func (f *Fred) Chat(ctx context.Context, req chat.Request) (string, error) {
	return f.chat.Chat(ctx, req)
}

func (f *Fred) Analyze(ctx context.Context, req analysis.Request) (*analysis.Report, error) {
	return f.analysis.Analyze(ctx, req)
}

// Chart renders a stored series with its fit as a PNG.
func (f *Fred) Chart(ctx context.Context, req analysis.Request, scale analysis.Scale) ([]byte, error) {
	return f.analysis.Chart(ctx, req, scale)
}

func (f *Fred) Observations(ctx context.Context, seriesId string) ([]observation.Observation, error) {
	if len(seriesId) > 0 {
		return f.persister.ListSeries(ctx, seriesId)
	}
	return f.persister.List(ctx)
}

// Register mounts the HTTP API on s.
func (f *Fred) Register(s server.Server, publicURL string) {
	handler.Register(s, handler.Services{
		Chat:      f.chat,
		Retrieval: f.retrieval,
		Analysis:  f.analysis,
		Ingest:    f.ingest,
		Indexer:   f.indexer,
		Persister: f.persister,
	}, publicURL)
}

func New(
	persister persister.Persister,
	storer storer.Storer,
	embedder embedder.Embedder,
	cacher cacher.Cacher,
	fetcher fetcher.Fetcher,
	generators map[string]generator.Generator,
	settings Settings,
) *Fred {
	if persister == nil {
		panic("persister is required")
	}

	if storer == nil {
		panic("storer is required")
	}

	if embedder == nil {
		panic("embedder is required")
	}

	if len(settings.Summarizer) == 0 {
		settings.Summarizer = chat.DefaultProvider
	}

	retrieval := retrieval.New(embedder, storer, settings.Namespace)

	return &Fred{
		persister: persister,
		ingest:    ingest.New(fetcher, persister, settings.Series, settings.RemoveInvalid),
		indexer:   indexer.New(persister, embedder, storer, cacher, settings.Namespace, settings.BatchSize),
		retrieval: retrieval,
		chat:      chat.New(retrieval, generators, settings.TopK, settings.Instructions),
		analysis:  analysis.New(persister, generators[settings.Summarizer]),
	}
}
