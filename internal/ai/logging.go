package ai

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/prasad8mhatre/smart-recruiter-ai/internal/utils"
	"go.uber.org/zap"
)

const defaultMaxLogLength = 200

// LoggingGenerator logs a truncated preview of every prompt and response.
type LoggingGenerator struct {
	next      Generator
	logger    *zap.Logger
	maxLogLen int
}

func WithLogging(next Generator, logger *zap.Logger, maxLogLength int) *LoggingGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &LoggingGenerator{next: next, logger: logger, maxLogLen: maxLogLength}
}

func (g *LoggingGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	g.logger.Debug("generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, g.maxLogLen)),
	)

	started := time.Now()
	raw, err := g.next.GenerateContent(ctx, prompt)
	if err != nil {
		g.logger.Warn("generate content failed", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		return "", err
	}

	g.logger.Debug("generate content response",
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, g.maxLogLen)),
	)

	return raw, nil
}
