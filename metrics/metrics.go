// Package metrics provides Prometheus metrics for the Stash MCP server.
// It tracks tool calls, resource reads, Stash API traffic and cache performance.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const (
	Namespace = "stash_mcp"
)

var (
	// RequestsTotal counts total MCP tool calls by tool name and status
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "requests_total",
		Help:      "Total number of MCP tool calls",
	}, []string{"tool", "status"})

	// RequestDuration measures request latency distribution
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "request_duration_seconds",
		Help:      "Request latency distribution by tool",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"tool"})

	// RequestInFlight tracks currently executing requests
	RequestInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "requests_in_flight",
		Help:      "Number of requests currently being processed",
	}, []string{"tool"})

	// PanicsRecovered counts recovered panics
	PanicsRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "panics_recovered_total",
		Help:      "Number of panics recovered in tool handlers",
	}, []string{"tool"})

	// CacheHits counts memoized query cache hits
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "cache_hits_total",
		Help:      "Total cache hit count by cache",
	}, []string{"cache"})

	// CacheMisses counts memoized query cache misses
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "cache_misses_total",
		Help:      "Total cache miss count by cache",
	}, []string{"cache"})

	// CacheSize tracks current cache entry count
	CacheSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "cache_entries",
		Help:      "Current number of cache entries by cache",
	}, []string{"cache"})

	// StashAPIRequestsTotal counts GraphQL requests sent to Stash
	StashAPIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "stash_api_requests_total",
		Help:      "Total Stash API requests by operation and status",
	}, []string{"operation", "status"})

	// StashAPILatency measures Stash API call latency
	StashAPILatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "stash_api_latency_seconds",
		Help:      "Stash API call latency by operation",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	// StashAPIRetries counts Stash API request retries
	StashAPIRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "stash_api_retries_total",
		Help:      "Stash API retry count by operation",
	}, []string{"operation"})

	// ConnectAttempts counts connection attempts by result
	ConnectAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "connect_attempts_total",
		Help:      "Stash connection attempts by result",
	}, []string{"result"})

	// ResourceReads counts MCP resource reads
	ResourceReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "resource_reads_total",
		Help:      "MCP resource reads by resource and status",
	}, []string{"resource", "status"})

	// RateLimitRejections counts HTTP transport requests rejected by the per-client limiter
	RateLimitRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "rate_limit_rejections_total",
		Help:      "Requests rejected due to rate limiting",
	})

	// HTTPRequestsTotal counts HTTP transport requests
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method and status",
	}, []string{"method", "status"})

	// HTTPRequestDuration measures HTTP request latency
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency distribution",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path"})
)

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordRequest records a completed tool call with its duration and status
func RecordRequest(tool string, duration float64, success bool) {
	RequestsTotal.WithLabelValues(tool, status(success)).Inc()
	RequestDuration.WithLabelValues(tool).Observe(duration)
}

// RecordAPICall records a Stash API call
func RecordAPICall(operation string, duration float64, success bool) {
	StashAPIRequestsTotal.WithLabelValues(operation, status(success)).Inc()
	StashAPILatency.WithLabelValues(operation).Observe(duration)
}

// RecordCacheAccess records a cache hit or miss for the named cache
func RecordCacheAccess(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
	} else {
		CacheMisses.WithLabelValues(cache).Inc()
	}
}

// SetCacheSize updates the current size gauge for the named cache
func SetCacheSize(cache string, size int) {
	CacheSize.WithLabelValues(cache).Set(float64(size))
}

// RecordConnectAttempt records the outcome of one connection attempt
func RecordConnectAttempt(success bool) {
	ConnectAttempts.WithLabelValues(status(success)).Inc()
}

// RecordResourceRead records a resource read
func RecordResourceRead(resource string, success bool) {
	ResourceReads.WithLabelValues(resource, status(success)).Inc()
}
