package ai

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("empty response")

// Generator turns a prompt into model text.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
