package filtering

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/prasad8mhatre/smart-recruiter-ai/internal/analysis"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/history"
	"go.uber.org/zap"
)

const forceFlagSetMsg = "force flag is set"

type analyzedFilter struct {
	ignore   bool
	disabled bool
	reason   string
}

// NewAlreadyAnalyzed creates a filter that removes candidates with a successful
// recorded run for the same job description.
func NewAlreadyAnalyzed(ignore bool) Filter {
	return &analyzedFilter{ignore: ignore}
}

func (f *analyzedFilter) Name() string { return "already_analyzed" }

func (f *analyzedFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *analyzedFilter) IsEnabled() bool { return !f.disabled }

func (f *analyzedFilter) Apply(ctx context.Context, deps Deps, batch []analysis.Request) ([]analysis.Request, Step, error) {
	initial := len(batch)
	if f.ignore {
		if deps.Logger != nil {
			deps.Logger.Info("ignoring already analyzed profiles", zap.String("reason", forceFlagSetMsg))
		}
		return batch, Step{Initial: initial, Left: initial}, nil
	}

	if deps.History == nil {
		return batch, Step{Initial: initial, Left: initial}, nil
	}

	entries, err := deps.History.Recent(ctx, history.MaxLimit)
	if err != nil {
		return batch, Step{}, fmt.Errorf("get recent runs: %w", err)
	}

	done := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Success {
			done[analyzedKey(e.Candidate, e.JobDescription)] = struct{}{}
		}
	}

	kept, dropped := exclude(batch, func(req analysis.Request) bool {
		name := req.Profile.Details().Name
		if strings.TrimSpace(name) == "" {
			return false
		}
		_, ok := done[analyzedKey(name, req.JobDescription)]
		return ok
	})

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding profiles based on run history",
			zap.Strings("excluded_profiles", dropped),
			zap.Int("profiles_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}

func (f *analyzedFilter) Status() Status {
	details := map[string]string{
		"exclude_analyzed": strconv.FormatBool(!f.ignore),
	}
	reason := f.reason
	if reason == "" && f.ignore {
		reason = "skip requested via flag"
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: reason, Details: details}
}

func analyzedKey(candidate, job string) string {
	return strings.ToLower(strings.TrimSpace(candidate)) + "\x00" + strings.TrimSpace(job)
}
