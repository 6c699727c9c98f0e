package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()

	m.ObserveRun("tool_result", 4, 3*time.Second)
	m.ObserveRun("max_iterations", 5, time.Second)
	m.ObserveTool("score_profile", nil, time.Second)
	m.ObserveTool("score_profile", errors.New("boom"), 0)
	m.ObservePolicyViolation("send_notifications")
	m.ObserveRequest("POST", "/analyze", 200)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("tool_result")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("score_profile", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("score_profile", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.policyViolations.WithLabelValues("send_notifications")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/analyze", "200")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveRun("final_answer", 2, time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `smart_recruiter_runs_total{termination="final_answer"} 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRun("error", 1, time.Second)
		m.ObserveTool("x", nil, 0)
		m.ObservePolicyViolation("x")
		m.ObserveRequest("GET", "/", 200)
		_ = m.Handler()
	})
	assert.Nil(t, m.Registry())
}
