package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// MCP-Tools Metrics - using explicit registration
var (
	// Request counters
	RequestsTotal *prometheus.CounterVec

	// Tool call counters
	ToolCallsTotal *prometheus.CounterVec

	// Tool token counters (approx payload tokens returned by tool)
	ToolTokensTotal *prometheus.CounterVec

	// Tool duration histogram
	ToolDuration *prometheus.HistogramVec

	// External provider call counters
	ProviderRequestsTotal *prometheus.CounterVec

	// Circuit breaker state gauge
	CircuitBreakerState *prometheus.GaugeVec

	// External provider latency
	ExternalProviderLatency *prometheus.HistogramVec

	// Analysis pipeline stage counters
	AnalysisStagesTotal *prometheus.CounterVec
)

// init creates and registers all metrics with the default registry
func init() {
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seo",
			Subsystem: "mcp",
			Name:      "requests_total",
			Help:      "Total number of MCP requests",
		},
		[]string{"method", "status"},
	)

	ToolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seo",
			Subsystem: "mcp",
			Name:      "tool_calls_total",
			Help:      "Total tool invocations",
		},
		[]string{"tool_name", "provider", "status"},
	)

	ToolTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seo",
			Subsystem: "mcp",
			Name:      "tool_tokens_total",
			Help:      "Total estimated tokens returned by tool payloads",
		},
		[]string{"tool_name", "provider"},
	)

	ToolDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "seo",
			Subsystem: "mcp",
			Name:      "tool_duration_seconds",
			Help:      "Tool execution duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"tool_name", "provider"},
	)

	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seo",
			Subsystem: "mcp",
			Name:      "provider_requests_total",
			Help:      "Total external provider requests",
		},
		[]string{"operation", "provider", "status"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "seo",
			Subsystem: "mcp",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 0.5=half-open, 1=open)",
		},
		[]string{"provider"},
	)

	ExternalProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "seo",
			Subsystem: "mcp",
			Name:      "external_provider_latency_seconds",
			Help:      "External provider response time in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"provider"},
	)

	AnalysisStagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seo",
			Subsystem: "mcp",
			Name:      "analysis_stages_total",
			Help:      "Total analysis pipeline stage outcomes",
		},
		[]string{"stage", "status"},
	)

	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(ToolCallsTotal)
	prometheus.MustRegister(ToolTokensTotal)
	prometheus.MustRegister(ToolDuration)
	prometheus.MustRegister(ProviderRequestsTotal)
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(ExternalProviderLatency)
	prometheus.MustRegister(AnalysisStagesTotal)
	log.Info().Msg("MCP metrics registered with Prometheus")
}

// RecordRequest records an MCP request
func RecordRequest(method, status string) {
	RequestsTotal.WithLabelValues(method, status).Inc()
}

// RecordToolCall records a tool invocation
func RecordToolCall(toolName, provider, status string, durationSec float64) {
	if provider == "" {
		provider = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	ToolCallsTotal.WithLabelValues(toolName, provider, status).Inc()
	ToolDuration.WithLabelValues(toolName, provider).Observe(durationSec)
}

// RecordToolTokens records estimated output tokens for a tool invocation
func RecordToolTokens(toolName, provider string, tokens float64) {
	if provider == "" {
		provider = "unknown"
	}
	if tokens < 0 {
		return
	}
	ToolTokensTotal.WithLabelValues(toolName, provider).Add(tokens)
}

// RecordProviderRequest records one external provider call outcome
func RecordProviderRequest(operation, provider, status string) {
	if status == "" {
		status = "unknown"
	}
	ProviderRequestsTotal.WithLabelValues(operation, provider, status).Inc()
}

// RecordAnalysisStage records an analysis pipeline stage outcome
func RecordAnalysisStage(stage, status string) {
	if status == "" {
		status = "unknown"
	}
	AnalysisStagesTotal.WithLabelValues(stage, status).Inc()
}

// SetCircuitBreakerState sets the circuit breaker state
func SetCircuitBreakerState(provider string, state string) {
	var val float64
	switch state {
	case "closed":
		val = 0.0
	case "half-open":
		val = 0.5
	case "open":
		val = 1.0
	}
	CircuitBreakerState.WithLabelValues(provider).Set(val)
}

// RecordExternalProviderLatency records external provider response time
func RecordExternalProviderLatency(provider string, durationSec float64) {
	ExternalProviderLatency.WithLabelValues(provider).Observe(durationSec)
}
