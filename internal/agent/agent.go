// Package agent runs the reasoning loop: it prompts the model, executes the
// tool calls it asks for and turns its final answer into a RunResult.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/ai"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/logger"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/metrics"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/profile"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/protocol"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/tools"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/utils"
	"go.uber.org/zap"
)

const responsePreviewLength = 100

type Agent struct {
	generator ai.Generator
	registry  *tools.Registry
	cfg       Config
	preamble  string
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

type Option func(*Agent)

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Agent) { a.metrics = m }
}

func New(generator ai.Generator, registry *tools.Registry, cfg Config, log *zap.Logger, opts ...Option) (*Agent, error) {
	if generator == nil {
		return nil, errors.New("generator is required")
	}
	if registry == nil {
		return nil, errors.New("tool registry is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	a := &Agent{
		generator: generator,
		registry:  registry,
		cfg:       cfg.withDefaults(),
		preamble:  buildPreamble(registry.Describe()),
		logger:    log,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Agent) Config() Config {
	return a.cfg
}

// Run analyses one profile against one job description.
//
// A run ends with a final answer, with the iteration ceiling, or with an error.
// On error the returned RunResult is the failure variant and err is one of
// *protocol.ProtocolError, *protocol.ParameterFormatError, *tools.DispatchError,
// *tools.InvocationError, *GenerationError or *PolicyViolation.
func (a *Agent) Run(ctx context.Context, p profile.Profile, job string) (*RunResult, error) {
	runID := uuid.NewString()
	log := logger.ForRun(a.logger, runID)
	started := time.Now()

	result, iterations, err := a.run(ctx, runID, log, p, job)
	if err != nil {
		log.Error("analysis failed", zap.Int("iteration", iterations), zap.Error(err))
		result = failedResult(err)
	}
	result.RunID = runID
	result.Iterations = iterations

	a.metrics.ObserveRun(string(result.Termination), iterations, time.Since(started))
	log.Info("analysis finished",
		zap.String("termination", string(result.Termination)),
		zap.Bool("success", result.Success),
		zap.Int("match_score", result.MatchScore),
		zap.Int("iterations", iterations),
		zap.Duration("elapsed", time.Since(started)),
	)

	return result, err
}

func (a *Agent) run(ctx context.Context, runID string, log *zap.Logger, p profile.Profile, job string) (*RunResult, int, error) {
	profileText := p.Clean(a.cfg.MaxProfileChars)
	job = strings.TrimSpace(job)
	log.Info("starting analysis",
		zap.Int("profile_chars", len([]rune(profileText))),
		zap.Int("max_iterations", a.cfg.MaxIterations),
	)

	ctx = tools.WithRun(ctx, tools.Run{
		ID:             runID,
		Profile:        p,
		ProfileText:    profileText,
		JobDescription: job,
		StepTimeout:    a.cfg.StepTimeout,
	})

	query := initialQuery(profileText, job)
	transcript := &Transcript{}
	transcript.Append(KindQuery, query)
	state := &runState{}

	for iteration := 1; iteration <= a.cfg.MaxIterations; iteration++ {
		log.Debug("starting iteration", zap.Int("iteration", iteration), zap.Int("max_iterations", a.cfg.MaxIterations))

		prompt := buildPrompt(a.preamble, query, transcript, a.cfg.MaxTranscriptChars)
		response, err := a.generate(ctx, prompt)
		if err != nil {
			if a.stepTimedOut(ctx, err) {
				log.Warn("model call timed out", zap.Int("iteration", iteration), zap.Duration("timeout", a.cfg.StepTimeout))
				continue
			}
			return nil, iteration, &GenerationError{Iteration: iteration, Err: err}
		}

		transcript.Append(KindResponse, response)
		log.Debug("received response",
			zap.Int("iteration", iteration),
			zap.String("response_preview", utils.TruncateForLog(response, responsePreviewLength)),
		)

		action, err := protocol.ParseAction(response)
		if err != nil {
			var formatErr *protocol.ParameterFormatError
			if errors.As(err, &formatErr) && formatErr.Kind == protocol.KindFinalAnswer {
				return a.unparseableAnswer(log, state, err), iteration, nil
			}
			return nil, iteration, err
		}

		switch act := action.(type) {
		case protocol.FinalAnswer:
			log.Info("final answer received", zap.Int("iteration", iteration))
			if state.score != nil {
				return fromScore(*state.score, state.outreach, act.Result), iteration, nil
			}
			return fromPayload(act.Result), iteration, nil

		case protocol.ToolCall:
			if err := a.execute(ctx, log, act, state, transcript); err != nil {
				return nil, iteration, err
			}
		}
	}

	log.Warn("max iterations reached without conclusion", zap.Int("max_iterations", a.cfg.MaxIterations))
	return exhaustedResult(), a.cfg.MaxIterations, nil
}

// execute dispatches one tool call and records its outcome in the transcript.
// A nil error with no tool result means the call was turned into feedback.
func (a *Agent) execute(ctx context.Context, log *zap.Logger, call protocol.ToolCall, state *runState, transcript *Transcript) error {
	log = logger.ForTool(log, call.Name)

	name, known := a.registry.Resolve(call.Name)
	if !known {
		if a.cfg.UnknownTool == UnknownToolFeedback {
			log.Warn("unknown tool requested")
			transcript.Append(KindFeedback, fmt.Sprintf("Function %s not found. Available functions: %s.",
				call.Name, strings.Join(a.registry.Names(), ", ")))
			return nil
		}
		_, err := a.registry.Invoke(ctx, call.Name, call.Params)
		a.metrics.ObserveTool(metrics.UnknownTool, err, 0)
		return err
	}

	if violation := checkPolicy(name, state); violation != nil {
		a.metrics.ObservePolicyViolation(name)
		switch a.cfg.Policy {
		case PolicyStrict:
			return violation
		case PolicyFeedback:
			log.Warn("tool call rejected by policy", zap.String("reason", violation.Reason))
			transcript.Append(KindFeedback, fmt.Sprintf("Rejected %s: %s. Follow the steps in order.", call.String(), violation.Error()))
			return nil
		default:
			log.Warn("tool call out of order", zap.String("reason", violation.Reason))
		}
	}

	result, err := a.registry.Invoke(ctx, name, call.Params)
	if err != nil {
		a.metrics.ObserveTool(name, err, 0)
		return err
	}
	a.metrics.ObserveTool(name, nil, result.Duration)

	state.observe(result)
	transcript.Append(KindTool, fmt.Sprintf("Called %s with %s, got result: %s",
		call.Name, protocol.String(call.Params), result.Summary))

	return nil
}

func (a *Agent) generate(ctx context.Context, prompt string) (string, error) {
	if a.cfg.StepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.StepTimeout)
		defer cancel()
	}

	response, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return "", ai.ErrEmptyResponse
	}
	return response, nil
}

// stepTimedOut reports whether err is the per-step deadline rather than the
// caller's own cancellation.
func (a *Agent) stepTimedOut(ctx context.Context, err error) bool {
	return a.cfg.StepTimeout > 0 && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded)
}

func (a *Agent) unparseableAnswer(log *zap.Logger, state *runState, err error) *RunResult {
	if state.score != nil {
		log.Warn("final answer unparseable, using score result", zap.Error(err))
		return fromScore(*state.score, state.outreach, nil)
	}

	log.Warn("final answer unparseable", zap.Error(err))
	return &RunResult{
		Success:     false,
		Message:     fmt.Sprintf("Could not parse final answer: %v", err),
		Termination: TerminationUnparseable,
	}
}
