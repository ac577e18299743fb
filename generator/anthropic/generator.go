package anthropic

import (
	"context"
	"strings"
	"sync"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/w-h-a/fred/errs"
	"github.com/w-h-a/fred/generator"
	"github.com/w-h-a/fred/util/transport"
	"github.com/w-h-a/fred/util/upstream"
)

const (
	defaultModel     = "claude-3-sonnet-20240229"
	defaultMaxTokens = 1024
)

type anthropicGenerator struct {
	options generator.Options
	client  *anthropic.Client
	once    sync.Once
}

func (g *anthropicGenerator) Validate() error {
	if len(g.options.ApiKey) == 0 {
		return errs.Configuration("anthropic generator requires CLAUDE_API_KEY")
	}
	return nil
}

func (g *anthropicGenerator) Generate(ctx context.Context, req generator.Request) (string, error) {
	if err := g.Validate(); err != nil {
		return "", err
	}

	g.once.Do(g.connect)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.options.Model),
		MaxTokens: int64(g.options.MaxTokens),
		Messages:  messages(req),
	}

	if len(req.System) > 0 {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	if g.options.Temperature >= 0 {
		params.Temperature = anthropic.Float(float64(g.options.Temperature))
	}

	rsp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", upstream.Anthropic(err)
	}

	var b strings.Builder
	for _, content := range rsp.Content {
		if text, ok := content.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}

	result := b.String()
	if len(strings.TrimSpace(result)) == 0 {
		return "", errs.EmptyResponse("no response from Anthropic")
	}

	return result, nil
}

func (g *anthropicGenerator) connect() {
	opts := []anthropicopt.RequestOption{
		anthropicopt.WithAPIKey(g.options.ApiKey),
		anthropicopt.WithHTTPClient(transport.NewClient(0)),
		anthropicopt.WithRequestTimeout(2 * time.Minute),
		anthropicopt.WithMaxRetries(0),
	}

	if len(g.options.BaseURL) > 0 {
		opts = append(opts, anthropicopt.WithBaseURL(g.options.BaseURL))
	}

	client := anthropic.NewClient(opts...)

	g.client = &client
}

func messages(req generator.Request) []anthropic.MessageParam {
	msgs := []anthropic.MessageParam{}

	for _, msg := range generator.Conversation(req.History) {
		block := anthropic.NewTextBlock(msg.Content)
		if msg.Role == generator.RoleAssistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(block))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(block))
		}
	}

	msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)))

	return msgs
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	if options.MaxTokens <= 0 {
		options.MaxTokens = defaultMaxTokens
	}

	g := &anthropicGenerator{
		options: options,
	}

	return g
}
