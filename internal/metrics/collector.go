// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/mygamer123/tradingagents/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// Collector
// =============================================================================

// Collector records provider resolutions and capability calls. It satisfies
// both registry.Recorder and data.CallRecorder.
type Collector struct {
	// registry metrics
	resolutionsTotal *prometheus.CounterVec

	// capability metrics
	callsTotal   *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
	callErrors   *prometheus.CounterVec

	// LLM metrics
	llmRequestsTotal   *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec
	llmTokensUsed      *prometheus.CounterVec

	// storage metrics
	dbConnectionsOpen *prometheus.GaugeVec
	dbConnectionsIdle *prometheus.GaugeVec

	logger *zap.Logger
}

// NewCollector registers the collector's metrics on reg under namespace. A nil
// reg means prometheus.DefaultRegisterer.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.resolutionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_resolutions_total",
			Help:      "Total number of provider resolutions by outcome",
		},
		[]string{"family", "provider", "outcome"}, // outcome: ok, unknown, error
	)

	c.callsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capability_calls_total",
			Help:      "Total number of capability calls",
		},
		[]string{"family", "provider", "operation", "status"},
	)

	c.callDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "capability_call_duration_seconds",
			Help:      "Capability call duration in seconds",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"family", "provider", "operation"},
	)

	c.callErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capability_errors_total",
			Help:      "Total number of failed capability calls by error code and reason",
		},
		[]string{"family", "provider", "code", "reason"},
	)

	c.llmRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM requests",
		},
		[]string{"provider", "model", "status"},
	)

	c.llmRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider", "model"},
	)

	c.llmTokensUsed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_used_total",
			Help:      "Total number of tokens used",
		},
		[]string{"provider", "model", "type"}, // type: prompt, completion
	)

	c.dbConnectionsOpen = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_open",
			Help:      "Number of open database connections",
		},
		[]string{"driver"},
	)

	c.dbConnectionsIdle = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_idle",
			Help:      "Number of idle database connections",
		},
		[]string{"driver"},
	)

	c.logger.Debug("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// Registry and capability metrics
// =============================================================================

// RecordResolution counts one registry lookup.
func (c *Collector) RecordResolution(family, key, outcome string) {
	c.resolutionsTotal.WithLabelValues(family, key, outcome).Inc()
}

// RecordCapabilityCall counts one call on a resolved provider and observes its
// duration. Failures are also counted by error code and reason.
func (c *Collector) RecordCapabilityCall(family, provider, operation string, duration time.Duration, err error) {
	c.callsTotal.WithLabelValues(family, provider, operation, status(err)).Inc()
	c.callDuration.WithLabelValues(family, provider, operation).Observe(duration.Seconds())
	if err == nil {
		return
	}

	code, reason := "INTERNAL", ""
	if e, ok := types.AsError(err); ok {
		code, reason = string(e.Code), string(e.Reason)
	}
	c.callErrors.WithLabelValues(family, provider, code, reason).Inc()
}

// =============================================================================
// LLM metrics
// =============================================================================

// RecordLLMRequest records one chat completion.
func (c *Collector) RecordLLMRequest(provider, model string, duration time.Duration, promptTokens, completionTokens int, err error) {
	c.llmRequestsTotal.WithLabelValues(provider, model, status(err)).Inc()
	c.llmRequestDuration.WithLabelValues(provider, model).Observe(duration.Seconds())
	c.llmTokensUsed.WithLabelValues(provider, model, "prompt").Add(float64(promptTokens))
	c.llmTokensUsed.WithLabelValues(provider, model, "completion").Add(float64(completionTokens))
}

// =============================================================================
// Storage metrics
// =============================================================================

// RecordDBConnections records the connection pool size of a SQL store.
func (c *Collector) RecordDBConnections(driver string, open, idle int) {
	c.dbConnectionsOpen.WithLabelValues(driver).Set(float64(open))
	c.dbConnectionsIdle.WithLabelValues(driver).Set(float64(idle))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
