package openai

import (
	"context"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/fred/embedder"
	"github.com/w-h-a/fred/errs"
	"github.com/w-h-a/fred/util/transport"
	"github.com/w-h-a/fred/util/upstream"
)

const (
	defaultModel = "text-embedding-3-small"
)

type openAIEmbedder struct {
	options embedder.Options
	client  *openai.Client
	once    sync.Once
}

func (e *openAIEmbedder) Embed(ctx context.Context, text string, _ embedder.TaskType) ([]float32, error) {
	if len(e.options.ApiKey) == 0 {
		return nil, errs.Configuration("openai embedder requires OPENAI_API_KEY")
	}

	if err := embedder.ValidateText(text); err != nil {
		return nil, err
	}

	e.once.Do(e.connect)

	rsp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(e.options.Model),
		Dimensions: e.options.Dimensions,
	})
	if err != nil {
		return nil, upstream.OpenAI("openai", err)
	}

	if len(rsp.Data) == 0 {
		return nil, errs.Format("no embedding in response from OpenAI")
	}

	return embedder.Finalize(rsp.Data[0].Embedding, e.options.Dimensions)
}

func (e *openAIEmbedder) Model() string {
	return e.options.Model
}

func (e *openAIEmbedder) Dimensions() int {
	return e.options.Dimensions
}

func (e *openAIEmbedder) connect() {
	cfg := openai.DefaultConfig(e.options.ApiKey)
	if len(e.options.BaseURL) > 0 {
		cfg.BaseURL = e.options.BaseURL
	}
	cfg.HTTPClient = transport.NewClient(60 * time.Second)

	e.client = openai.NewClientWithConfig(cfg)
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	e := &openAIEmbedder{
		options: options,
	}

	return e
}
