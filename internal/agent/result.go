package agent

import (
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/protocol"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/section"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/tools"
)

// Termination is the reason a run ended.
type Termination string

const (
	TerminationFinalAnswer   Termination = "final_answer"
	TerminationToolResult    Termination = "tool_result"
	TerminationMaxIterations Termination = "max_iterations"
	TerminationUnparseable   Termination = "unparseable_final_answer"
	TerminationError         Termination = "error"
)

const (
	MaxIterationsMessage = "Max iterations reached without conclusion"
	FailedMessage        = "Analysis failed"
)

// RunResult is the externally visible outcome of one run.
type RunResult struct {
	Success           bool   `json:"success"`
	MatchScore        int    `json:"matchScore"`
	MatchAnalysis     string `json:"matchAnalysis"`
	KeyQualifications string `json:"keyQualifications"`
	Message           string `json:"message"`
	Error             string `json:"error,omitempty"`

	RunID       string      `json:"-"`
	Termination Termination `json:"-"`
	Iterations  int         `json:"-"`
}

func exhaustedResult() *RunResult {
	return &RunResult{
		Success:     false,
		MatchScore:  0,
		Message:     MaxIterationsMessage,
		Termination: TerminationMaxIterations,
	}
}

func failedResult(err error) *RunResult {
	return &RunResult{
		Success:     false,
		Message:     FailedMessage,
		Error:       err.Error(),
		Termination: TerminationError,
	}
}

// fromScore builds the result from the tool-sourced score tuple. Only the
// model's success flag is taken from its own payload.
func fromScore(record tools.ScoreRecord, outreach string, payload map[string]any) *RunResult {
	success := true
	if v, ok := payload["success"]; ok {
		success = protocol.Bool(v)
	}

	message := outreach
	if message == "" {
		message = record.OutreachMessage
	}

	return &RunResult{
		Success:           success,
		MatchScore:        record.Score,
		MatchAnalysis:     record.MatchAnalysis,
		KeyQualifications: record.Qualifications,
		Message:           message,
		Termination:       TerminationToolResult,
	}
}

// fromPayload reads the model's own final answer.
func fromPayload(payload map[string]any) *RunResult {
	score, _ := protocol.Int(payload["matchScore"])

	return &RunResult{
		Success:           protocol.Bool(payload["success"]),
		MatchScore:        section.ClampScore(score),
		MatchAnalysis:     protocol.String(payload["matchAnalysis"]),
		KeyQualifications: protocol.String(payload["keyQualifications"]),
		Message:           protocol.String(payload["message"]),
		Termination:       TerminationFinalAnswer,
	}
}
