// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Upstream metrics
	RPCCallLatency       *prometheus.HistogramVec
	RPCCallErrors        *prometheus.CounterVec
	UpstreamLatency      *prometheus.HistogramVec
	RetryAttempts        *prometheus.CounterVec
	NewsProviderFailures *prometheus.CounterVec

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// Action metrics
	ActionRequests  *prometheus.CounterVec
	ActionDuration  *prometheus.HistogramVec
	DegradedResults *prometheus.CounterVec
	RiskOverall     prometheus.Histogram

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulAction prometheus.Gauge
	WSConnections        prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg uses the default registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "solana_risk_engine"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		// Upstream metrics
		RPCCallLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		RPCCallErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_errors_total",
			Help:      "Total number of failed Solana RPC calls by method",
		}, []string{"method"}),
		UpstreamLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_latency_seconds",
			Help:      "HTTP request latency to market and news providers in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "endpoint"}),
		RetryAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "retry_attempts_total",
			Help:      "Total number of retried upstream attempts by source",
		}, []string{"source"}),
		NewsProviderFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "news",
			Name:      "provider_failures_total",
			Help:      "Total number of news provider fetches that degraded to empty",
		}, []string{"provider", "kind"}),

		// Cache metrics
		CacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of cache hits by cache name",
		}, []string{"cache"}),
		CacheMisses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of cache misses by cache name",
		}, []string{"cache"}),

		// Action metrics
		ActionRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "actions",
			Name:      "requests_total",
			Help:      "Total number of action invocations by action and status",
		}, []string{"action", "status"}),
		ActionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "actions",
			Name:      "duration_seconds",
			Help:      "Action execution duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"action"}),
		DegradedResults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "actions",
			Name:      "degraded_results_total",
			Help:      "Total number of results that fell back to a default value by source",
		}, []string{"source"}),
		RiskOverall: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "risk",
			Name:      "overall_score",
			Help:      "Distribution of overall risk scores",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),

		// Database metrics
		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulAction: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_action_timestamp",
			Help:      "Unix timestamp of last successful action",
		}),
		WSConnections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "ws_connections",
			Help:      "Number of open WebSocket connections",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordRPCCall records RPC call latency and failure.
func RecordRPCCall(method string, seconds float64, err error) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
	if err != nil {
		DefaultMetrics.RPCCallErrors.WithLabelValues(method).Inc()
	}
}

// RecordUpstreamLatency records an HTTP request to a market or news provider.
func RecordUpstreamLatency(provider, endpoint string, seconds float64) {
	DefaultMetrics.UpstreamLatency.WithLabelValues(provider, endpoint).Observe(seconds)
}

// RecordRetry increments the retry counter for a source.
func RecordRetry(source string) {
	DefaultMetrics.RetryAttempts.WithLabelValues(source).Inc()
}

// RecordNewsProviderFailure counts a provider that degraded to an empty list.
func RecordNewsProviderFailure(provider, kind string) {
	DefaultMetrics.NewsProviderFailures.WithLabelValues(provider, kind).Inc()
}

// RecordCache records a cache lookup.
func RecordCache(cache string, hit bool) {
	if hit {
		DefaultMetrics.CacheHits.WithLabelValues(cache).Inc()
		return
	}
	DefaultMetrics.CacheMisses.WithLabelValues(cache).Inc()
}

// RecordAction records an action invocation.
func RecordAction(action, status string, durationSeconds float64) {
	DefaultMetrics.ActionRequests.WithLabelValues(action, status).Inc()
	DefaultMetrics.ActionDuration.WithLabelValues(action).Observe(durationSeconds)
}

// RecordDegraded counts a result that fell back to a default value.
func RecordDegraded(source string) {
	DefaultMetrics.DegradedResults.WithLabelValues(source).Inc()
}

// RecordRiskScore observes an overall risk score.
func RecordRiskScore(score int) {
	DefaultMetrics.RiskOverall.Observe(float64(score))
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// UpdateLastSuccessfulAction sets the last successful action gauge.
func UpdateLastSuccessfulAction(unix int64) {
	DefaultMetrics.LastSuccessfulAction.Set(float64(unix))
}

// AddWSConnections adjusts the open WebSocket connection gauge.
func AddWSConnections(delta int) {
	DefaultMetrics.WSConnections.Add(float64(delta))
}
