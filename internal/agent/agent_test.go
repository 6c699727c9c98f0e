package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prasad8mhatre/smart-recruiter-ai/internal/ai"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/metrics"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/profile"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/protocol"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const assessment95 = `### Match Score
**Score:** 95

### Match Analysis
Excellent backend experience.

### Qualifications Analysis
#### Key Qualifications
- Go
- Kubernetes

### Personalized Message
Let's talk about the platform team.`

type scriptedGenerator struct {
	mu        sync.Mutex
	responses []string
	prompts   []string
	repeat    string
}

func (g *scriptedGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.prompts = append(g.prompts, prompt)
	if len(g.responses) == 0 {
		if g.repeat != "" {
			return g.repeat, nil
		}
		return "", errors.New("script exhausted")
	}
	next := g.responses[0]
	g.responses = g.responses[1:]
	return next, nil
}

type countingDispatcher struct {
	mu     sync.Mutex
	emails []string
	sms    []string
}

func (d *countingDispatcher) SendEmail(_ context.Context, to, _, _ string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.emails = append(d.emails, to)
	return true
}

func (d *countingDispatcher) SendSMS(_ context.Context, to, _ string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sms = append(d.sms, to)
	return true
}

func newTestAgent(t *testing.T, gen ai.Generator, dispatcher *countingDispatcher, cfg Config) *Agent {
	t.Helper()

	registry, err := tools.NewRegistry(zap.NewNop(),
		tools.NewScoreProfile(gen),
		tools.GenerateOutreach{},
		tools.NewSendNotifications(dispatcher, "", zap.NewNop()),
	)
	require.NoError(t, err)

	a, err := New(gen, registry, cfg, zap.NewNop(), WithMetrics(metrics.New()))
	require.NoError(t, err)
	return a
}

var janeProfile = profile.Profile{Fields: map[string]any{
	"name":    "Jane Doe",
	"email":   "jane@example.com",
	"content": "<p>Senior Go engineer</p>",
}}

func TestRunExhaustsIterationCeiling(t *testing.T) {
	gen := &scriptedGenerator{repeat: `FUNCTION_CALL: score_profile|{"profile_content": "x", "job_description": "y"}`}
	a := newTestAgent(t, gen, &countingDispatcher{}, Config{})

	result, err := a.Run(context.Background(), janeProfile, "Go developer")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.MatchScore)
	assert.Equal(t, MaxIterationsMessage, result.Message)
	assert.Equal(t, TerminationMaxIterations, result.Termination)
	assert.Equal(t, DefaultMaxIterations, result.Iterations)
	assert.NotEmpty(t, result.RunID)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"matchScore":0,"matchAnalysis":"","keyQualifications":"","message":"Max iterations reached without conclusion"}`, string(data))
}

func TestRunPrefersToolScoreOverRestatement(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		`FUNCTION_CALL: score_profile|{"profile_content": "Senior Go engineer", "job_description": "Go developer"}`,
		assessment95,
		`FUNCTION_CALL: generate_outreach_message|{"name": "Jane", "score": 95, "message_section": "Let's talk about the platform team."}`,
		`FUNCTION_CALL: send_notifications|{"profile_data": {"name": "Jane", "email": "jane@example.com"}, "score": 95, "message_section": "Let's talk about the platform team."}`,
		`FINAL_ANSWER: {"success": true, "matchScore": 40, "message": "restated"}`,
	}}
	dispatcher := &countingDispatcher{}
	a := newTestAgent(t, gen, dispatcher, Config{})

	result, err := a.Run(context.Background(), janeProfile, "Go developer")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 95, result.MatchScore)
	assert.Equal(t, "Excellent backend experience.", result.MatchAnalysis)
	assert.Equal(t, "#### Key Qualifications\n- Go\n- Kubernetes", result.KeyQualifications)
	assert.True(t, strings.HasPrefix(result.Message, "Hi Jane,"), result.Message)
	assert.Equal(t, TerminationToolResult, result.Termination)
	assert.Equal(t, 4, result.Iterations)

	assert.Equal(t, []string{"jane@example.com"}, dispatcher.emails)
}

func TestRunPromptsRestateTranscript(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		`FUNCTION_CALL: score_profile|{}`,
		assessment95,
		`FINAL_ANSWER: {"success": true}`,
	}}
	a := newTestAgent(t, gen, &countingDispatcher{}, Config{})

	long := profile.Profile{Raw: "<p>" + strings.Repeat("a", 3000) + "</p>"}
	result, err := a.Run(context.Background(), long, "Go developer")
	require.NoError(t, err)
	assert.Equal(t, 95, result.MatchScore)
	assert.Equal(t, "Let's talk about the platform team.", result.Message)

	require.Len(t, gen.prompts, 3)
	first := gen.prompts[0]
	assert.Contains(t, first, "Respond with EXACTLY ONE of these formats")
	assert.Contains(t, first, "1. score_profile(profile_content, job_description, profile_data) -> Returns score and analysis")
	assert.Contains(t, first, "Query: Analyze profile:\nProfile: "+strings.Repeat("a", 1000)+"\nJob: Go developer")
	assert.NotContains(t, first, strings.Repeat("a", 1001))
	assert.NotContains(t, first, nextStepQuestion)

	// the scoring prompt received the cleaned profile from the run
	assert.Contains(t, gen.prompts[1], strings.Repeat("a", 1000))

	third := gen.prompts[2]
	assert.Contains(t, third, "Called score_profile with {}, got result: ")
	assert.Contains(t, third, `"score":95`)
	assert.True(t, strings.HasSuffix(third, nextStepQuestion))
}

func TestRunFinalAnswerFromModel(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		`FINAL_ANSWER: {'success': True, 'matchScore': '42', 'message': 'hi', 'matchAnalysis': None}`,
	}}
	a := newTestAgent(t, gen, &countingDispatcher{}, Config{})

	result, err := a.Run(context.Background(), janeProfile, "Go developer")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 42, result.MatchScore)
	assert.Equal(t, "hi", result.Message)
	assert.Equal(t, "", result.MatchAnalysis)
	assert.Equal(t, TerminationFinalAnswer, result.Termination)
	assert.Equal(t, 1, result.Iterations)
}

func TestRunUnparseableFinalAnswer(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{`FINAL_ANSWER: [1, 2, 3]`}}
	a := newTestAgent(t, gen, &countingDispatcher{}, Config{})

	result, err := a.Run(context.Background(), janeProfile, "Go developer")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, TerminationUnparseable, result.Termination)
	assert.Contains(t, result.Message, "Could not parse final answer")
}

func TestRunFatalErrors(t *testing.T) {
	tests := []struct {
		name      string
		responses []string
		cfg       Config
		check     func(t *testing.T, err error)
	}{
		{
			name:      "protocol error",
			responses: []string{"I believe this candidate is great."},
			check: func(t *testing.T, err error) {
				var target *protocol.ProtocolError
				assert.ErrorAs(t, err, &target)
			},
		},
		{
			name:      "malformed tool parameters",
			responses: []string{`FUNCTION_CALL: score_profile|{broken`},
			check: func(t *testing.T, err error) {
				var target *protocol.ParameterFormatError
				assert.ErrorAs(t, err, &target)
			},
		},
		{
			name:      "unknown tool",
			responses: []string{`FUNCTION_CALL: hire_immediately|{}`},
			check: func(t *testing.T, err error) {
				var target *tools.DispatchError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "hire_immediately", target.Name)
			},
		},
		{
			name:      "invocation error",
			responses: []string{`FUNCTION_CALL: score_profile|{}`, assessment95, `FUNCTION_CALL: generate_outreach_message|{"score": "high"}`},
			check: func(t *testing.T, err error) {
				var target *tools.InvocationError
				assert.ErrorAs(t, err, &target)
			},
		},
		{
			name:      "strict policy",
			responses: []string{`FUNCTION_CALL: send_notifications|{"score": 99}`},
			cfg:       Config{Policy: PolicyStrict},
			check: func(t *testing.T, err error) {
				var target *PolicyViolation
				require.ErrorAs(t, err, &target)
				assert.Equal(t, tools.SendNotificationsName, target.Tool)
			},
		},
		{
			name:      "empty response",
			responses: []string{"   "},
			check: func(t *testing.T, err error) {
				var target *GenerationError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, 1, target.Iteration)
				assert.True(t, errors.Is(err, ai.ErrEmptyResponse))
			},
		},
		{
			name: "generator failure",
			check: func(t *testing.T, err error) {
				var target *GenerationError
				assert.ErrorAs(t, err, &target)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &scriptedGenerator{responses: tt.responses}
			a := newTestAgent(t, gen, &countingDispatcher{}, tt.cfg)

			result, err := a.Run(context.Background(), janeProfile, "Go developer")
			require.Error(t, err)
			tt.check(t, err)

			require.NotNil(t, result)
			assert.False(t, result.Success)
			assert.Equal(t, FailedMessage, result.Message)
			assert.Equal(t, err.Error(), result.Error)
			assert.Equal(t, TerminationError, result.Termination)
		})
	}
}

func TestRunUnknownToolsShareOneMetricSeries(t *testing.T) {
	m := metrics.New()

	for i := 0; i < 20; i++ {
		gen := &scriptedGenerator{responses: []string{fmt.Sprintf("FUNCTION_CALL: invented_tool_%d|{}", i)}}
		registry, err := tools.NewRegistry(zap.NewNop(), tools.NewScoreProfile(gen))
		require.NoError(t, err)
		a, err := New(gen, registry, Config{}, zap.NewNop(), WithMetrics(m))
		require.NoError(t, err)

		_, err = a.Run(context.Background(), janeProfile, "Go developer")
		var target *tools.DispatchError
		require.ErrorAs(t, err, &target)
	}

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	var series []string
	for _, family := range families {
		if family.GetName() != "smart_recruiter_tool_calls_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "tool" {
					series = append(series, label.GetValue())
				}
			}
			assert.Equal(t, float64(20), metric.GetCounter().GetValue())
		}
	}
	assert.Equal(t, []string{metrics.UnknownTool}, series)
}

func TestRunUnknownToolFeedback(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		`FUNCTION_CALL: hire_immediately|{}`,
		`FINAL_ANSWER: {"success": false, "matchScore": 10, "message": "no"}`,
	}}
	a := newTestAgent(t, gen, &countingDispatcher{}, Config{UnknownTool: UnknownToolFeedback})

	result, err := a.Run(context.Background(), janeProfile, "Go developer")
	require.NoError(t, err)
	assert.Equal(t, 10, result.MatchScore)

	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[1], "Function hire_immediately not found. Available functions: score_profile, generate_outreach_message, send_notifications.")
}

func TestRunPolicyFeedback(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		`FUNCTION_CALL: send_notifications|{"score": 99}`,
		`FINAL_ANSWER: {"success": false, "matchScore": 0, "message": "stopped"}`,
	}}
	dispatcher := &countingDispatcher{}
	a := newTestAgent(t, gen, dispatcher, Config{})

	result, err := a.Run(context.Background(), janeProfile, "Go developer")
	require.NoError(t, err)
	assert.Equal(t, "stopped", result.Message)
	assert.Empty(t, dispatcher.emails)

	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[1], "Rejected send_notifications|")
	assert.Contains(t, gen.prompts[1], "before the profile was scored")
}

func TestRunPolicyAdvisoryExecutes(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		`FUNCTION_CALL: send_notifications|{"score": 99}`,
		`FINAL_ANSWER: {"success": true, "matchScore": 99, "message": "sent"}`,
	}}
	dispatcher := &countingDispatcher{}
	a := newTestAgent(t, gen, dispatcher, Config{Policy: PolicyAdvisory})

	_, err := a.Run(context.Background(), janeProfile, "Go developer")
	require.NoError(t, err)
	assert.Equal(t, []string{"jane@example.com"}, dispatcher.emails)
}

func TestRunStepTimeoutCountsAsIteration(t *testing.T) {
	gen := ai.GeneratorFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	a := newTestAgent(t, gen, &countingDispatcher{}, Config{MaxIterations: 3, StepTimeout: 5 * time.Millisecond})

	result, err := a.Run(context.Background(), janeProfile, "Go developer")
	require.NoError(t, err)
	assert.Equal(t, TerminationMaxIterations, result.Termination)
	assert.Equal(t, 3, result.Iterations)
}

func TestRunCallerCancellationIsFatal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := ai.GeneratorFunc(func(ctx context.Context, _ string) (string, error) {
		return "", ctx.Err()
	})
	a := newTestAgent(t, gen, &countingDispatcher{}, Config{StepTimeout: time.Second})

	_, err := a.Run(ctx, janeProfile, "Go developer")
	var target *GenerationError
	require.ErrorAs(t, err, &target)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewValidates(t *testing.T) {
	registry, err := tools.NewRegistry(nil)
	require.NoError(t, err)

	_, err = New(nil, registry, Config{}, nil)
	assert.Error(t, err)
	_, err = New(ai.GeneratorFunc(func(context.Context, string) (string, error) { return "", nil }), nil, Config{}, nil)
	assert.Error(t, err)
}
