package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   prometheus.CounterVec
	HTTPRequestDuration prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec

	// Upstream service metrics
	UpstreamRequestsTotal   prometheus.CounterVec
	UpstreamRequestDuration prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitExceededTotal prometheus.CounterVec

	// Cleanup metrics
	GuestAccountsDeleted prometheus.Counter

	// Error metrics
	ErrorsTotal prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),

			CacheHitsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_hits_total",
					Help: "Total number of cache hits",
				},
				[]string{"cache_name"},
			),
			CacheMissesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_misses_total",
					Help: "Total number of cache misses",
				},
				[]string{"cache_name"},
			),

			UpstreamRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "upstream_requests_total",
					Help: "Total number of requests to upstream services",
				},
				[]string{"service", "status"},
			),
			UpstreamRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "upstream_request_duration_seconds",
					Help:    "Upstream request latency in seconds",
					Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
				},
				[]string{"service"},
			),

			RateLimitExceededTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Total number of rate limit violations",
				},
				[]string{"endpoint", "method"},
			),

			GuestAccountsDeleted: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "guest_accounts_deleted_total",
					Help: "Total number of stale guest accounts removed by cleanup",
				},
			),

			ErrorsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "errors_total",
					Help: "Total number of errors by type",
				},
				[]string{"error_type", "endpoint"},
			),
		}
	})
	return instance
}

// Get returns the global metrics instance
func Get() *Metrics {
	if instance == nil {
		return Initialize()
	}
	return instance
}

// RecordCacheHit increments the hit counter for the named cache.
func RecordCacheHit(cacheName string) {
	Get().CacheHitsTotal.WithLabelValues(cacheName).Inc()
}

// RecordCacheMiss increments the miss counter for the named cache.
func RecordCacheMiss(cacheName string) {
	Get().CacheMissesTotal.WithLabelValues(cacheName).Inc()
}

// RecordUpstreamRequest records one call to an upstream service.
func RecordUpstreamRequest(service, status string, seconds float64) {
	m := Get()
	m.UpstreamRequestsTotal.WithLabelValues(service, status).Inc()
	m.UpstreamRequestDuration.WithLabelValues(service).Observe(seconds)
}
