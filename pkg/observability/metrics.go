// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the llmcaller gateway.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets defines histogram buckets suited for LLM inference
// latencies, ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

// Metrics is the gateway's instrument set. It is an explicitly owned,
// injectable component rather than a set of package globals, so tests
// can instantiate isolated instances per test case.
type Metrics struct {
	// RequestsTotal counts HTTP requests by method, status class, and operation.
	RequestsTotal *prometheus.CounterVec

	// RequestDuration records HTTP request duration in seconds.
	RequestDuration *prometheus.HistogramVec

	// StreamingConnections tracks active SSE streaming connections.
	StreamingConnections prometheus.Gauge

	// ProviderRequestsTotal counts dispatches to upstream providers.
	ProviderRequestsTotal *prometheus.CounterVec

	// ProviderLatency records upstream provider latency in seconds.
	ProviderLatency *prometheus.HistogramVec

	// ProviderTokensTotal counts tokens processed by direction (input/output).
	ProviderTokensTotal *prometheus.CounterVec

	// RetriesTotal counts retried provider dispatches by classification.
	RetriesTotal *prometheus.CounterVec

	// RateLimitRejectedTotal counts requests rejected by the rate limiter.
	RateLimitRejectedTotal *prometheus.CounterVec
}

// NewMetrics builds the instrument set and registers it with reg.
// Registration failures panic: a name collision is a programming error.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llmcaller_requests_total",
				Help: "Total requests",
			},
			[]string{"method", "status", "operation"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llmcaller_request_duration_seconds",
				Help:    "Request duration",
				Buckets: LLMBuckets,
			},
			[]string{"method", "operation"},
		),
		StreamingConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "llmcaller_streaming_connections_active",
				Help: "Active streaming connections",
			},
		),
		ProviderRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llmcaller_provider_requests_total",
				Help: "Provider dispatches",
			},
			[]string{"provider", "model", "status"},
		),
		ProviderLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llmcaller_provider_latency_seconds",
				Help:    "Provider latency",
				Buckets: LLMBuckets,
			},
			[]string{"provider", "model"},
		),
		ProviderTokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llmcaller_provider_tokens_total",
				Help: "Token count",
			},
			[]string{"provider", "model", "direction"},
		),
		RetriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llmcaller_retries_total",
				Help: "Retried provider dispatches",
			},
			[]string{"provider", "classification"},
		),
		RateLimitRejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llmcaller_ratelimit_rejected_total",
				Help: "Rate limit rejections",
			},
			[]string{"caller"},
		),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.StreamingConnections,
		m.ProviderRequestsTotal,
		m.ProviderLatency,
		m.ProviderTokensTotal,
		m.RetriesTotal,
		m.RateLimitRejectedTotal,
	)
	return m
}

// RecordUsage feeds token counts into the provider token counter.
func (m *Metrics) RecordUsage(provider, model string, inputTokens, outputTokens int) {
	if inputTokens > 0 {
		m.ProviderTokensTotal.WithLabelValues(provider, model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.ProviderTokensTotal.WithLabelValues(provider, model, "output").Add(float64(outputTokens))
	}
}
