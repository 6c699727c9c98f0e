package filtering

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/prasad8mhatre/smart-recruiter-ai/internal/analysis"
	"go.uber.org/zap"
)

type duplicatesFilter struct{}

// NewDuplicates creates a filter that keeps only the first request per candidate.
// Candidates without a name or email are compared by their cleaned text.
func NewDuplicates() Filter {
	return &duplicatesFilter{}
}

func (f *duplicatesFilter) Name() string { return "duplicates" }

func (f *duplicatesFilter) Disable(string) {}

func (f *duplicatesFilter) IsEnabled() bool { return true }

func (f *duplicatesFilter) Apply(_ context.Context, deps Deps, batch []analysis.Request) ([]analysis.Request, Step, error) {
	initial := len(batch)
	seen := make(map[string]struct{}, initial)

	kept, dropped := exclude(batch, func(req analysis.Request) bool {
		key := CandidateKey(req)
		if key == "" {
			sum := sha256.Sum256([]byte(req.Profile.Clean(deps.MaxProfileChars)))
			key = "text:" + hex.EncodeToString(sum[:])
		}
		if _, ok := seen[key]; ok {
			return true
		}
		seen[key] = struct{}{}
		return false
	})

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding duplicate profiles",
			zap.Strings("excluded_profiles", dropped),
			zap.Int("profiles_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}
