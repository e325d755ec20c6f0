package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the BFA.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	upstreamErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	violations      *prometheus.CounterVec
	submissions     *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bfa_request_duration_seconds",
				Help:    "Duration of service operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		upstreamErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_upstream_errors_total",
				Help: "Total failed calls to the ERP API.",
			},
			[]string{"operation"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		violations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_draft_violations_total",
				Help: "Transaction draft violations reported, by kind.",
			},
			[]string{"kind"},
		),
		submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_transaction_submissions_total",
				Help: "Transaction submissions by operation kind and outcome.",
			},
			[]string{"operation", "status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrUpstreamError increments the upstream error counter.
func (m *Metrics) IncrUpstreamError(operation string) {
	m.upstreamErrors.WithLabelValues(operation).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrViolation counts one reported draft violation.
func (m *Metrics) IncrViolation(kind string) {
	m.violations.WithLabelValues(kind).Inc()
}

// IncrSubmission counts a submit attempt; status is accepted, rejected or failed.
func (m *Metrics) IncrSubmission(operation, status string) {
	m.submissions.WithLabelValues(operation, status).Inc()
}

// ViolationCount returns the cumulative count for a violation kind.
func (m *Metrics) ViolationCount(kind string) float64 {
	return counterValue(m.violations.WithLabelValues(kind))
}

// SubmissionCount returns the cumulative count for an operation/status pair.
func (m *Metrics) SubmissionCount(operation, status string) float64 {
	return counterValue(m.submissions.WithLabelValues(operation, status))
}

// CacheHitCount returns the cumulative hit count of a cache.
func (m *Metrics) CacheHitCount(cache string) float64 {
	return counterValue(m.cacheHits.WithLabelValues(cache))
}

func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
