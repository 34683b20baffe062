// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the proxy and its backend sessions.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets defines histogram buckets suited for chat reply latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts all HTTP requests by method, status class, and route.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vecway_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status", "route"},
	)

	// RequestDuration records HTTP request duration in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vecway_request_duration_seconds",
			Help:    "Request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method", "route"},
	)

	// StreamingConnections tracks SSE responses currently in flight.
	StreamingConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vecway_streaming_connections_active",
			Help: "Active streaming connections",
		},
	)

	// BackendSessionsActive tracks open backend WebSocket sessions.
	BackendSessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vecway_backend_sessions_active",
			Help: "Open backend sessions",
		},
	)

	// BackendDialsTotal counts backend connection attempts by result (ok, error).
	BackendDialsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vecway_backend_dials_total",
			Help: "Backend connection attempts",
		},
		[]string{"result"},
	)

	// BackendFramesTotal counts received backend frames by type.
	BackendFramesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vecway_backend_frames_total",
			Help: "Backend frames received",
		},
		[]string{"type"},
	)

	// BackendOutcomesTotal counts how backend content streams ended.
	BackendOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vecway_backend_outcomes_total",
			Help: "Backend stream outcomes",
		},
		[]string{"outcome"},
	)

	// CompletionsTotal counts chat completions by backend model and delivery mode.
	CompletionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vecway_completions_total",
			Help: "Chat completions",
		},
		[]string{"model", "stream", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		StreamingConnections,
		BackendSessionsActive,
		BackendDialsTotal,
		BackendFramesTotal,
		BackendOutcomesTotal,
		CompletionsTotal,
	)
}
