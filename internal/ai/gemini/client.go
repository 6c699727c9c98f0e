package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prasad8mhatre/smart-recruiter-ai/internal/ai"
	"google.golang.org/genai"
)

const (
	ProviderName = "gemini"
	defaultModel = "gemini-2.5-flash"
)

// models is the subset of *genai.Models used by Generator.
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator wraps the Google GenAI client to provide simple prompt-based interactions.
type Generator struct {
	models      models
	modelName   string
	temperature *float32
}

// Option customises a Generator.
type Option func(*Generator)

// WithTemperature sets the sampling temperature sent with every request.
func WithTemperature(t float32) Option {
	return func(g *Generator) { g.temperature = &t }
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, opts ...Option) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, model, opts...), nil
}

func newGenerator(m models, model string, opts ...Option) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	g := &Generator{models: m, modelName: model}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateContent sends the prompt to Gemini and returns the concatenated text parts.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	var config *genai.GenerateContentConfig
	if g.temperature != nil {
		config = &genai.GenerateContentConfig{Temperature: g.temperature}
	}

	resp, err := g.models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("gemini api: %w", ai.ErrEmptyResponse)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", fmt.Errorf("gemini api: %w", ai.ErrEmptyResponse)
	}

	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}
