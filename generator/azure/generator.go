package azure

import (
	"context"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/fred/errs"
	"github.com/w-h-a/fred/generator"
	openaigen "github.com/w-h-a/fred/generator/openai"
	"github.com/w-h-a/fred/util/transport"
	"github.com/w-h-a/fred/util/upstream"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1024
)

type azureGenerator struct {
	options    generator.Options
	endpoint   string
	deployment string
	client     *openai.Client
	once       sync.Once
}

func (g *azureGenerator) Validate() error {
	if len(g.options.ApiKey) == 0 {
		return errs.Configuration("azure generator requires AZURE_OPENAI_API_KEY")
	}

	if len(g.endpoint) == 0 {
		return errs.Configuration("azure generator requires AZURE_OPENAI_ENDPOINT")
	}

	if len(g.deployment) == 0 {
		return errs.Configuration("azure generator requires AZURE_OPENAI_DEPLOYMENT_ID")
	}

	return nil
}

func (g *azureGenerator) Generate(ctx context.Context, req generator.Request) (string, error) {
	if err := g.Validate(); err != nil {
		return "", err
	}

	g.once.Do(g.connect)

	rsp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.deployment,
		Messages:    openaigen.Messages(req),
		MaxTokens:   g.options.MaxTokens,
		Temperature: g.options.Temperature,
	})
	if err != nil {
		return "", upstream.OpenAI("azure", err)
	}

	return openaigen.Reply(rsp, "Azure OpenAI")
}

func (g *azureGenerator) connect() {
	cfg := openai.DefaultAzureConfig(g.options.ApiKey, g.endpoint)
	if version, ok := APIVersionFrom(g.options.Context); ok {
		cfg.APIVersion = version
	}
	cfg.AzureModelMapperFunc = func(model string) string {
		return g.deployment
	}
	cfg.HTTPClient = transport.NewClient(2 * time.Minute)

	g.client = openai.NewClientWithConfig(cfg)
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	if options.Temperature < 0 {
		options.Temperature = defaultTemperature
	}

	if options.MaxTokens <= 0 {
		options.MaxTokens = defaultMaxTokens
	}

	g := &azureGenerator{
		options: options,
	}

	if endpoint, ok := EndpointFrom(options.Context); ok {
		g.endpoint = endpoint
	} else if len(options.BaseURL) > 0 {
		g.endpoint = options.BaseURL
	}

	if deployment, ok := DeploymentFrom(options.Context); ok {
		g.deployment = deployment
	} else if len(options.Model) > 0 {
		g.deployment = options.Model
	}

	return g
}
