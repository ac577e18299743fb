package google

import (
	"context"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/w-h-a/fred/embedder"
	"github.com/w-h-a/fred/errs"
	"github.com/w-h-a/fred/util/upstream"
	genaiopt "google.golang.org/api/option"
)

const (
	defaultModel = "text-embedding-004"
)

type googleEmbedder struct {
	options embedder.Options
	client  *genai.Client
	mtx     sync.Mutex
}

func (e *googleEmbedder) Embed(ctx context.Context, text string, task embedder.TaskType) ([]float32, error) {
	if len(e.options.ApiKey) == 0 {
		return nil, errs.Configuration("google embedder requires GOOGLE_AI_API_KEY or GEMINI_API_KEY")
	}

	if err := embedder.ValidateText(text); err != nil {
		return nil, err
	}

	client, err := e.getClient(ctx)
	if err != nil {
		return nil, err
	}

	model := client.EmbeddingModel(e.options.Model)
	model.TaskType = taskType(task)

	rsp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, upstream.Google(err)
	}

	if rsp == nil || rsp.Embedding == nil {
		return nil, errs.Format("no embedding in response from Google")
	}

	return embedder.Finalize(rsp.Embedding.Values, e.options.Dimensions)
}

func (e *googleEmbedder) Model() string {
	return e.options.Model
}

func (e *googleEmbedder) Dimensions() int {
	return e.options.Dimensions
}

func (e *googleEmbedder) getClient(ctx context.Context) (*genai.Client, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if e.client != nil {
		return e.client, nil
	}

	opts := []genaiopt.ClientOption{genaiopt.WithAPIKey(e.options.ApiKey)}
	if len(e.options.BaseURL) > 0 {
		opts = append(opts, genaiopt.WithEndpoint(e.options.BaseURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	e.client = client

	return client, nil
}

func taskType(task embedder.TaskType) genai.TaskType {
	switch task {
	case embedder.TaskQuery:
		return genai.TaskTypeRetrievalQuery
	case embedder.TaskDocument:
		return genai.TaskTypeRetrievalDocument
	default:
		return genai.TaskTypeUnspecified
	}
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	e := &googleEmbedder{
		options: options,
		mtx:     sync.Mutex{},
	}

	return e
}
