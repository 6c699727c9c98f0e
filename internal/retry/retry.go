package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/prasad8mhatre/smart-recruiter-ai/internal/ai"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	DefaultMaxRetries = 2
	DefaultBaseDelay  = 2 * time.Second
)

// wait is replaced in tests.
var wait = utils.WaitFor

// Generator retries transient generation failures with exponential backoff
// and jitter before giving up.
type Generator struct {
	inner      ai.Generator
	maxRetries int
	baseDelay  time.Duration
	logger     *zap.Logger
}

// NewGenerator wraps inner with retry logic.
// maxRetries is the number of additional attempts after the first failure; negative means default.
// baseDelay is the delay before the first retry, doubled on each subsequent retry.
func NewGenerator(inner ai.Generator, maxRetries int, baseDelay time.Duration, logger *zap.Logger) *Generator {
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{inner: inner, maxRetries: maxRetries, baseDelay: baseDelay, logger: logger}
}

func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	out, err := g.inner.GenerateContent(ctx, prompt)
	if err == nil {
		return out, nil
	}

	lastErr := err
	for attempt := 1; attempt <= g.maxRetries && IsRetryable(lastErr); attempt++ {
		delay := g.backoffDelay(attempt)

		g.logger.Warn("retrying after transient error",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", g.maxRetries),
			zap.Duration("delay", delay),
			zap.Error(lastErr),
		)

		if err := wait(ctx, delay); err != nil {
			return "", fmt.Errorf("retry cancelled: %w", err)
		}

		out, err = g.inner.GenerateContent(ctx, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}

	return "", lastErr
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
func (g *Generator) backoffDelay(attempt int) time.Duration {
	delay := g.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

// IsRetryable reports whether err is a transient failure worth another attempt.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if code, ok := apiStatus(err); ok {
		return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
	}

	// Empty answers and transport errors are worth another try.
	return true
}

func apiStatus(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, true
	}
	return 0, false
}
