// Package analysis runs the agent for callers and records every finished run.
package analysis

import (
	"context"
	"time"

	"github.com/prasad8mhatre/smart-recruiter-ai/internal/agent"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/history"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/profile"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 4

// Runner is the part of *agent.Agent the service needs.
type Runner interface {
	Run(ctx context.Context, p profile.Profile, job string) (*agent.RunResult, error)
}

type Service struct {
	runner          Runner
	recorder        history.Recorder
	maxProfileChars int
	logger          *zap.Logger
	now             func() time.Time
}

func NewService(runner Runner, recorder history.Recorder, maxProfileChars int, logger *zap.Logger) *Service {
	if recorder == nil {
		recorder = history.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		runner:          runner,
		recorder:        recorder,
		maxProfileChars: maxProfileChars,
		logger:          logger,
		now:             time.Now,
	}
}

// Analyze runs one analysis. Recording failures are logged, never returned.
func (s *Service) Analyze(ctx context.Context, p profile.Profile, job string) (*agent.RunResult, error) {
	result, err := s.runner.Run(ctx, p, job)
	if result == nil {
		return nil, err
	}

	entry := history.Entry{
		RunID:          result.RunID,
		CreatedAt:      s.now(),
		Candidate:      p.Details().DisplayName(),
		Profile:        p.Clean(s.maxProfileChars),
		JobDescription: job,
		Success:        result.Success,
		MatchScore:     result.MatchScore,
		MatchAnalysis:  result.MatchAnalysis,
		Message:        result.Message,
		Termination:    string(result.Termination),
		Iterations:     result.Iterations,
		Error:          result.Error,
	}

	// Recording must outlive a caller that gives up right after the answer.
	if recErr := s.recorder.Record(context.WithoutCancel(ctx), entry); recErr != nil {
		s.logger.Warn("failed to record run", zap.String("run_id", result.RunID), zap.Error(recErr))
	}

	return result, err
}

// Request is one item of a batch.
type Request struct {
	Label          string
	Profile        profile.Profile
	JobDescription string
}

// Outcome pairs a batch item with its result.
type Outcome struct {
	Label  string
	Result *agent.RunResult
	Err    error
}

// AnalyzeBatch runs independent analyses concurrently, at most concurrency at a
// time. A failed item does not stop the others; outcomes keep request order.
func (s *Service) AnalyzeBatch(ctx context.Context, requests []Request, concurrency int) []Outcome {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	outcomes := make([]Outcome, len(requests))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, req := range requests {
		g.Go(func() error {
			result, err := s.Analyze(gctx, req.Profile, req.JobDescription)
			outcomes[i] = Outcome{Label: req.Label, Result: result, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}
