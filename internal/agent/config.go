package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/prasad8mhatre/smart-recruiter-ai/internal/profile"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/section"
)

const (
	DefaultMaxIterations      = 5
	MinIterations             = 3
	MaxIterations             = 7
	DefaultMaxTranscriptChars = 8000
)

// PolicyMode decides what happens to a tool call emitted out of order.
type PolicyMode string

const (
	// PolicyAdvisory logs the violation and executes the call anyway.
	PolicyAdvisory PolicyMode = "advisory"
	// PolicyFeedback skips the call and tells the model why.
	PolicyFeedback PolicyMode = "feedback"
	// PolicyStrict terminates the run.
	PolicyStrict PolicyMode = "strict"
)

// UnknownToolMode decides what happens to a call of an unregistered tool.
type UnknownToolMode string

const (
	UnknownToolFail     UnknownToolMode = "fail"
	UnknownToolFeedback UnknownToolMode = "feedback"
)

type Config struct {
	MaxIterations      int
	MaxProfileChars    int
	MaxTranscriptChars int
	Policy             PolicyMode
	UnknownTool        UnknownToolMode
	// StepTimeout bounds a single model call; zero means no bound.
	StepTimeout time.Duration
}

// withDefaults fills zero values and clamps limits to their accepted ranges.
func (c Config) withDefaults() Config {
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	c.MaxIterations = section.Clamp(c.MaxIterations, MinIterations, MaxIterations)
	c.MaxProfileChars = profile.ClampChars(c.MaxProfileChars)
	if c.MaxTranscriptChars <= 0 {
		c.MaxTranscriptChars = DefaultMaxTranscriptChars
	}
	if c.Policy == "" {
		c.Policy = PolicyFeedback
	}
	if c.UnknownTool == "" {
		c.UnknownTool = UnknownToolFail
	}
	if c.StepTimeout < 0 {
		c.StepTimeout = 0
	}
	return c
}

func ParsePolicyMode(s string) (PolicyMode, error) {
	switch mode := PolicyMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return PolicyFeedback, nil
	case PolicyAdvisory, PolicyFeedback, PolicyStrict:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown policy mode %q (want advisory, feedback or strict)", s)
	}
}

func ParseUnknownToolMode(s string) (UnknownToolMode, error) {
	switch mode := UnknownToolMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return UnknownToolFail, nil
	case UnknownToolFail, UnknownToolFeedback:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown unknown-tool mode %q (want fail or feedback)", s)
	}
}
