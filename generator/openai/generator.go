package openai

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/fred/errs"
	"github.com/w-h-a/fred/generator"
	"github.com/w-h-a/fred/util/transport"
	"github.com/w-h-a/fred/util/upstream"
)

const (
	defaultModel       = openai.GPT4
	defaultTemperature = 1
	defaultMaxTokens   = 1000
)

type openAIGenerator struct {
	options generator.Options
	client  *openai.Client
	once    sync.Once
}

func (g *openAIGenerator) Validate() error {
	if len(g.options.ApiKey) == 0 {
		return errs.Configuration("openai generator requires OPENAI_API_KEY")
	}
	return nil
}

func (g *openAIGenerator) Generate(ctx context.Context, req generator.Request) (string, error) {
	if err := g.Validate(); err != nil {
		return "", err
	}

	g.once.Do(g.connect)

	rsp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.options.Model,
		Messages:    Messages(req),
		MaxTokens:   g.options.MaxTokens,
		Temperature: g.options.Temperature,
	})
	if err != nil {
		return "", upstream.OpenAI("openai", err)
	}

	return Reply(rsp, "OpenAI")
}

func (g *openAIGenerator) connect() {
	cfg := openai.DefaultConfig(g.options.ApiKey)
	if len(g.options.BaseURL) > 0 {
		cfg.BaseURL = g.options.BaseURL
	}
	cfg.HTTPClient = transport.NewClient(2 * time.Minute)

	g.client = openai.NewClientWithConfig(cfg)
}

// Messages renders a request as a chat completion conversation: the
// system instruction first, then history, then the prompt.
func Messages(req generator.Request) []openai.ChatCompletionMessage {
	msgs := []openai.ChatCompletionMessage{}

	if len(req.System) > 0 {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}

	for _, msg := range generator.Conversation(req.History) {
		role := openai.ChatMessageRoleUser
		if msg.Role == generator.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	return msgs
}

func Reply(rsp openai.ChatCompletionResponse, service string) (string, error) {
	if len(rsp.Choices) == 0 || len(strings.TrimSpace(rsp.Choices[0].Message.Content)) == 0 {
		return "", errs.EmptyResponse("no response from %s", service)
	}

	return rsp.Choices[0].Message.Content, nil
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	if options.Temperature < 0 {
		options.Temperature = defaultTemperature
	}

	if options.MaxTokens <= 0 {
		options.MaxTokens = defaultMaxTokens
	}

	g := &openAIGenerator{
		options: options,
	}

	return g
}
