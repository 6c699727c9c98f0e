// Package langchain adapts LangChainGo models to ai.Generator, which lets the
// agent run against any OpenAI-compatible endpoint (OpenAI, xAI, a local Ollama).
package langchain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prasad8mhatre/smart-recruiter-ai/internal/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const ProviderName = "openai"

type Generator struct {
	model     llms.Model
	modelName string
	options   []llms.CallOption
}

// Config describes an OpenAI-compatible endpoint.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
}

// NewOpenAI builds a Generator backed by the LangChainGo OpenAI client.
func NewOpenAI(cfg Config) (*Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}

	opts := []openai.Option{openai.WithToken(strings.TrimSpace(cfg.APIKey))}
	if model := strings.TrimSpace(cfg.Model); model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}

	var callOpts []llms.CallOption
	if cfg.Temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(cfg.Temperature))
	}

	return New(llm, cfg.Model, callOpts...), nil
}

// New wraps an existing llms.Model.
func New(model llms.Model, modelName string, options ...llms.CallOption) *Generator {
	return &Generator{model: model, modelName: strings.TrimSpace(modelName), options: options}
}

func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.model == nil {
		return "", errors.New("langchain generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	out, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt, g.options...)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("%s: %w", ProviderName, ai.ErrEmptyResponse)
	}

	return out, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}
