package google

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/w-h-a/fred/errs"
	"github.com/w-h-a/fred/generator"
	"github.com/w-h-a/fred/router"
	"github.com/w-h-a/fred/util/upstream"
	"google.golang.org/api/iterator"
	genaiopt "google.golang.org/api/option"
)

const (
	defaultModel       = "gemini-1.5-flash"
	defaultTemperature = 0.4
	defaultMaxTokens   = 8192
	defaultTopP        = 0.95
	defaultTopK        = 64
)

var harmCategories = []genai.HarmCategory{
	genai.HarmCategoryHarassment,
	genai.HarmCategoryHateSpeech,
	genai.HarmCategorySexuallyExplicit,
	genai.HarmCategoryDangerousContent,
}

type googleGenerator struct {
	options generator.Options
	router  *router.Router
	client  *genai.Client
	mtx     sync.Mutex
}

func (g *googleGenerator) Validate() error {
	if len(g.options.ApiKey) == 0 {
		return errs.Configuration("google generator requires GOOGLE_AI_API_KEY or GEMINI_API_KEY")
	}
	return nil
}

func (g *googleGenerator) Generate(ctx context.Context, req generator.Request) (string, error) {
	if err := g.Validate(); err != nil {
		return "", err
	}

	if g.router == nil {
		return g.generate(ctx, g.options.Model, req)
	}

	var result string

	err := g.router.Do(ctx, func(ctx context.Context, model string) error {
		text, err := g.generate(ctx, model, req)
		if err != nil {
			return err
		}
		result = text
		return nil
	})
	if err != nil {
		return "", err
	}

	return result, nil
}

// ListModels reads the account's model registry.
func (g *googleGenerator) ListModels(ctx context.Context) ([]router.ModelInfo, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	client, err := g.getClient(ctx)
	if err != nil {
		return nil, err
	}

	infos := []router.ModelInfo{}

	it := client.ListModels(ctx)
	for {
		m, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, upstream.Google(err)
		}

		infos = append(infos, router.ModelInfo{
			Name:                       m.Name,
			DisplayName:                m.DisplayName,
			SupportedGenerationMethods: m.SupportedGenerationMethods,
		})
	}

	return infos, nil
}

func (g *googleGenerator) Router() *router.Router {
	return g.router
}

func (g *googleGenerator) generate(ctx context.Context, name string, req generator.Request) (string, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return "", err
	}

	model := client.GenerativeModel(name)
	model.SetTemperature(g.options.Temperature)
	model.SetTopP(defaultTopP)
	model.SetTopK(defaultTopK)
	model.SetMaxOutputTokens(int32(g.options.MaxTokens))

	for _, category := range harmCategories {
		model.SafetySettings = append(model.SafetySettings, &genai.SafetySetting{
			Category:  category,
			Threshold: genai.HarmBlockNone,
		})
	}

	if len(req.System) > 0 {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}

	cs := model.StartChat()
	cs.History = history(req.History)

	rsp, err := cs.SendMessage(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", upstream.Google(err)
	}

	text := reply(rsp)
	if len(strings.TrimSpace(text)) == 0 {
		return "", errs.EmptyResponse("no response from Google model %s", name)
	}

	return text, nil
}

func (g *googleGenerator) getClient(ctx context.Context) (*genai.Client, error) {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	if g.client != nil {
		return g.client, nil
	}

	opts := []genaiopt.ClientOption{genaiopt.WithAPIKey(g.options.ApiKey)}
	if len(g.options.BaseURL) > 0 {
		opts = append(opts, genaiopt.WithEndpoint(g.options.BaseURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	g.client = client

	return client, nil
}

func history(msgs []generator.Message) []*genai.Content {
	contents := []*genai.Content{}

	for _, msg := range generator.Conversation(msgs) {
		role := "user"
		if msg.Role == generator.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	return contents
}

func reply(rsp *genai.GenerateContentResponse) string {
	if rsp == nil || len(rsp.Candidates) == 0 || rsp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range rsp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	return b.String()
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

	g := &googleGenerator{
		options: options,
		mtx:     sync.Mutex{},
	}

	if ttl, ok := ModelRotationFrom(options.Context); ok {
		g.router = router.New(g, router.WithTTL(ttl))
	}

	return g
}
