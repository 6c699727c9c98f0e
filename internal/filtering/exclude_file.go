package filtering

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/prasad8mhatre/smart-recruiter-ai/internal/analysis"
	"go.uber.org/zap"
)

// ExcludedCandidates is the content of an exclude file.
type ExcludedCandidates struct {
	Items []*ExcludedCandidate
}

type ExcludedCandidate struct {
	Key        string
	Label      string
	ExcludedAt time.Time
}

// LoadExcluded reads an exclude file. A missing or empty file yields an empty list.
func LoadExcluded(path string) (*ExcludedCandidates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ExcludedCandidates{}, nil
		}
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return &ExcludedCandidates{}, nil
	}

	var excluded ExcludedCandidates
	if err := json.Unmarshal(data, &excluded); err != nil {
		return nil, fmt.Errorf("decoding exclude file %s: %w", path, err)
	}
	return &excluded, nil
}

// ToExcluded converts requests with a known candidate key into exclude entries.
func ToExcluded(batch []analysis.Request) *ExcludedCandidates {
	excluded := &ExcludedCandidates{}
	now := time.Now().UTC()
	for _, req := range batch {
		key := CandidateKey(req)
		if key == "" {
			continue
		}
		excluded.Items = append(excluded.Items, &ExcludedCandidate{Key: key, Label: req.Label, ExcludedAt: now})
	}
	return excluded
}

func (e *ExcludedCandidates) Append(other *ExcludedCandidates) {
	e.Items = append(e.Items, other.Items...)
}

func (e *ExcludedCandidates) Keys() []string {
	keys := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		keys = append(keys, item.Key)
	}
	return keys
}

func (e *ExcludedCandidates) ToFile(path string) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes candidates listed in the exclude file.
// An empty path disables nothing and drops nothing.
func NewExcludeFile(path string) Filter {
	return &excludeFileFilter{path: strings.TrimSpace(path)}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, batch []analysis.Request) ([]analysis.Request, Step, error) {
	initial := len(batch)
	if f.path == "" {
		return batch, Step{Initial: initial, Left: initial}, nil
	}

	excluded, err := LoadExcluded(f.path)
	if err != nil {
		return batch, Step{}, fmt.Errorf("getting excluded candidates from file: %w", err)
	}

	keys := make(map[string]struct{}, len(excluded.Items))
	for _, key := range excluded.Keys() {
		keys[key] = struct{}{}
	}

	kept, dropped := exclude(batch, func(req analysis.Request) bool {
		_, ok := keys[CandidateKey(req)]
		return ok
	})

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding profiles based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_profiles", dropped),
			zap.Int("profiles_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
