package filtering

import (
	"context"

	"github.com/prasad8mhatre/smart-recruiter-ai/internal/analysis"
	"go.uber.org/zap"
)

type emptyProfileFilter struct{}

// NewEmptyProfile creates a filter that removes profiles with no text left after cleaning.
func NewEmptyProfile() Filter {
	return &emptyProfileFilter{}
}

func (f *emptyProfileFilter) Name() string { return "empty_profile" }

func (f *emptyProfileFilter) Disable(string) {}

func (f *emptyProfileFilter) IsEnabled() bool { return true }

func (f *emptyProfileFilter) Apply(_ context.Context, deps Deps, batch []analysis.Request) ([]analysis.Request, Step, error) {
	initial := len(batch)
	kept, dropped := exclude(batch, func(req analysis.Request) bool {
		return req.Profile.Clean(deps.MaxProfileChars) == ""
	})

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding profiles without text. It is impossible to analyze them",
			zap.Strings("excluded_profiles", dropped),
			zap.Int("profiles_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}
