package chat

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/w-h-a/fred/errs"
	"github.com/w-h-a/fred/generator"
	"github.com/w-h-a/fred/internal/metrics"
	"github.com/w-h-a/fred/internal/service/retrieval"
	"github.com/w-h-a/fred/storer"
	getsafe "github.com/w-h-a/fred/util/get_safe"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	ProviderGoogle    = "google"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderAzure     = "azure"

	DefaultProvider = ProviderGoogle

	DefaultInstructions = "Answer based on the provided context. Focus on how the banking sector is affected, and be precise in your reasoning."

	NoKnowledge = "No relevant knowledge found in the knowledge base. Use your general knowledge to answer as accurately as possible."

	citationHeader = "Relevant Information (please cite the IDs in your answer):\n"
	missingText    = "No text available"
)

var tracer = otel.Tracer("github.com/w-h-a/fred/internal/service/chat")

// DefaultTopK is the number of matches retrieved per provider. Gemini's
// context window takes the whole neighborhood.
var DefaultTopK = map[string]int{
	ProviderGoogle:    1000,
	ProviderAnthropic: 3,
	ProviderOpenAI:    3,
	ProviderAzure:     3,
}

type Request struct {
	Provider          string
	History           []generator.Message
	Message           string
	SystemInstruction string
}

type Service struct {
	retrieval    *retrieval.Service
	generators   map[string]generator.Generator
	topK         map[string]int
	instructions string
}

func (s *Service) Chat(ctx context.Context, req Request) (reply string, err error) {
	provider := strings.ToLower(strings.TrimSpace(req.Provider))
	if len(provider) == 0 {
		provider = DefaultProvider
	}

	ctx, span := tracer.Start(ctx, "chat.Chat")
	defer span.End()

	span.SetAttributes(attribute.String("fred.provider", provider))

	start := time.Now()
	defer func() {
		metrics.ObserveChat(provider, start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	gen, ok := s.generators[provider]
	if !ok {
		return "", errs.Configuration("unknown chat provider %q", provider)
	}

	if len(strings.TrimSpace(req.Message)) == 0 {
		return "", errs.Format("chat message is empty")
	}

	if err := gen.Validate(); err != nil {
		return "", err
	}

	matches, err := s.retrieval.Query(ctx, req.Message, s.topKFor(provider))
	if err != nil {
		return "", err
	}

	span.SetAttributes(attribute.Int("fred.matches", len(matches)))

	return gen.Generate(ctx, generator.Request{
		System:  s.systemInstruction(req.SystemInstruction),
		History: generator.Conversation(req.History),
		Prompt:  req.Message + "\n\n" + Context(matches),
	})
}

// Providers lists the configured provider names in sorted order.
func (s *Service) Providers() []string {
	providers := make([]string, 0, len(s.generators))
	for name := range s.generators {
		providers = append(providers, name)
	}
	slices.Sort(providers)
	return providers
}

func (s *Service) topKFor(provider string) int {
	if k, ok := s.topK[provider]; ok {
		return k
	}
	return DefaultTopK[provider]
}

func (s *Service) systemInstruction(override string) string {
	if len(strings.TrimSpace(override)) > 0 {
		return override
	}
	if len(strings.TrimSpace(s.instructions)) > 0 {
		return s.instructions
	}
	return DefaultInstructions
}

// Context renders retrieval matches as a citation block, or the
// no-knowledge instruction when there are none.
func Context(matches []storer.Match) string {
	if len(matches) == 0 {
		return NoKnowledge
	}

	lines := make([]string, 0, len(matches))
	for _, match := range matches {
		text := getsafe.String(match.Metadata, "text")
		if len(text) == 0 {
			text = missingText
		}
		lines = append(lines, "- "+text+" ["+match.Id+"]")
	}

	return citationHeader + strings.Join(lines, "\n")
}

func New(
	retrieval *retrieval.Service,
	generators map[string]generator.Generator,
	topK map[string]int,
	instructions string,
) *Service {
	return &Service{
		retrieval:    retrieval,
		generators:   generators,
		topK:         topK,
		instructions: instructions,
	}
}
