// Package metrics provides Prometheus metrics for the arctrack
// leaderboard engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Submission pipeline
	submissionsAccepted prometheus.Counter
	submissionsRejected *prometheus.CounterVec
	bestUpdates         prometheus.Counter
	recentEvictions     *prometheus.CounterVec

	// Storage health
	transactionLatency  prometheus.Histogram
	storageErrors       prometheus.Counter
	invariantViolations prometheus.Counter

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "arctrack",
		subsystem:        "leaderboard",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.submissionsAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_accepted_total",
		Help:      "Total number of play submissions committed",
	})

	m.submissionsRejected = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "submissions_rejected_total",
			Help:      "Total number of play submissions rejected, by reason",
		},
		[]string{"reason"},
	)

	m.bestUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "best_updates_total",
		Help:      "Total number of submissions that changed a best-30 set",
	})

	m.recentEvictions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "recent_evictions_total",
			Help:      "Total number of recent-30 evictions, by policy branch",
		},
		[]string{"branch"},
	)

	m.transactionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "transaction_latency_milliseconds",
		Help:      "Histogram of store transaction commit latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storageErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "storage_errors_total",
		Help:      "Total number of failed store transactions",
	})

	m.invariantViolations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "eviction_invariant_violations_total",
		Help:      "Total number of aborted submissions due to a policy invariant violation",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// RecordSubmissionAccepted increments the committed submissions counter.
func RecordSubmissionAccepted() {
	globalManager.submissionsAccepted.Inc()
}

// RecordSubmissionRejected increments the rejected submissions counter.
func RecordSubmissionRejected(reason string) {
	globalManager.submissionsRejected.WithLabelValues(reason).Inc()
}

// RecordBestUpdate increments the best-30 updates counter.
func RecordBestUpdate() {
	globalManager.bestUpdates.Inc()
}

// RecordRecentEviction increments the eviction counter for a policy branch.
func RecordRecentEviction(branch string) {
	globalManager.recentEvictions.WithLabelValues(branch).Inc()
}

// RecordTransactionLatency records store commit latency in milliseconds.
func RecordTransactionLatency(latencyMs float64) {
	globalManager.transactionLatency.Observe(latencyMs)
}

// RecordStorageError increments the failed transaction counter.
func RecordStorageError() {
	globalManager.storageErrors.Inc()
}

// RecordInvariantViolation increments the aborted submission counter.
func RecordInvariantViolation() {
	globalManager.invariantViolations.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
