// Package tools holds the capabilities the agent may invoke by name and the
// registry that validates and dispatches those invocations.
package tools

import (
	"context"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/profile"
)

// Tool is a named capability with a documented parameter schema.
type Tool interface {
	Name() string
	// Description is the one-line summary shown to the model.
	Description() string
	// Signature renders the call shape, e.g. score_profile(profile_content, job_description).
	Signature() string
	// Schema is the JSON schema of the parameter mapping.
	Schema() map[string]any
	Call(ctx context.Context, params map[string]any) (any, error)
}

// Run carries the inputs of the run a tool call belongs to.
type Run struct {
	ID             string
	Profile        profile.Profile
	ProfileText    string
	JobDescription string
	// StepTimeout bounds each model call a tool makes; zero means no deadline.
	StepTimeout time.Duration
}

type runKey struct{}

// WithRun attaches run inputs so tools can fill parameters the model left out.
func WithRun(ctx context.Context, run Run) context.Context {
	return context.WithValue(ctx, runKey{}, run)
}

// RunFrom returns the run attached by WithRun.
func RunFrom(ctx context.Context) (Run, bool) {
	run, ok := ctx.Value(runKey{}).(Run)
	return run, ok
}

func decodeParams(params map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(params)
}
