package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smart_recruiter"

// UnknownTool is the tool label for calls of unregistered tools, which keeps
// names invented by the model out of the label set.
const UnknownTool = "unknown"

// Metrics holds the Prometheus collectors of one process. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	runs             *prometheus.CounterVec
	runDuration      prometheus.Histogram
	runIterations    prometheus.Histogram
	toolCalls        *prometheus.CounterVec
	toolDuration     *prometheus.HistogramVec
	policyViolations *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Agent runs by termination reason.",
		}, []string{"termination"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of agent runs.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80},
		}),
		runIterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_iterations",
			Help:      "Model round-trips spent per run.",
			Buckets:   prometheus.LinearBuckets(1, 1, 7),
		}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool invocations by tool and outcome.",
		}, []string{"tool", "outcome"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_duration_seconds",
			Help:      "Duration of successful tool invocations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		policyViolations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "policy_violations_total",
			Help:      "Tool calls emitted out of the declared order.",
		}, []string{"tool"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.runs, m.runDuration, m.runIterations,
		m.toolCalls, m.toolDuration, m.policyViolations,
		m.httpRequests,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRun(termination string, iterations int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(termination).Inc()
	m.runDuration.Observe(elapsed.Seconds())
	m.runIterations.Observe(float64(iterations))
}

func (m *Metrics) ObserveTool(tool string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	if err != nil {
		m.toolCalls.WithLabelValues(tool, "error").Inc()
		return
	}
	m.toolCalls.WithLabelValues(tool, "ok").Inc()
	m.toolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

func (m *Metrics) ObservePolicyViolation(tool string) {
	if m == nil {
		return
	}
	m.policyViolations.WithLabelValues(tool).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, code int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}
