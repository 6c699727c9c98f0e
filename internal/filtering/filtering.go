// Package filtering screens a batch of profiles before any of them reaches the
// agent. Steps run in order and each one may drop requests.
package filtering

import (
	"context"
	"fmt"
	"strings"

	"github.com/prasad8mhatre/smart-recruiter-ai/internal/analysis"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/history"
	"go.uber.org/zap"
)

// Filter represents a single screening step.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Apply(ctx context.Context, deps Deps, batch []analysis.Request) ([]analysis.Request, Step, error)
}

// Deps aggregates dependencies shared across all steps.
type Deps struct {
	Logger  *zap.Logger
	History history.Lister
	// MaxProfileChars is the limit the agent cleans profiles with.
	MaxProfileChars int
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string            `json:"name"`
	Enabled bool              `json:"enabled"`
	Reason  string            `json:"reason,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type statusProvider interface {
	Status() Status
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially.
func Run(ctx context.Context, deps Deps, steps []Filter, batch []analysis.Request) ([]analysis.Request, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			logger.Info("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, deps, batch)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		batch = next
		if len(batch) == 0 {
			break
		}
	}

	return batch, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// CandidateKey identifies a candidate across batches: the email when known,
// otherwise the name. Empty when neither is present.
func CandidateKey(req analysis.Request) string {
	d := req.Profile.Details()
	if email := strings.TrimSpace(d.Email); email != "" {
		return "email:" + strings.ToLower(email)
	}
	if name := strings.TrimSpace(d.Name); name != "" {
		return "name:" + strings.ToLower(name)
	}
	return ""
}

// exclude keeps the requests for which drop returns false and reports the labels it removed.
func exclude(batch []analysis.Request, drop func(analysis.Request) bool) ([]analysis.Request, []string) {
	kept := make([]analysis.Request, 0, len(batch))
	var dropped []string
	for _, req := range batch {
		if drop(req) {
			dropped = append(dropped, req.Label)
			continue
		}
		kept = append(kept, req)
	}
	return kept, dropped
}
