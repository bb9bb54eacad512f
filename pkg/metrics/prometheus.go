// Package metrics provides Prometheus metrics for the insignia board engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Fetch and cache metrics
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	staleServed  prometheus.Counter
	fetchErrors  prometheus.Counter
	fetchLatency prometheus.Histogram
	cacheEntries prometheus.Gauge
	cacheBytes   prometheus.Gauge

	// Pipeline metrics
	probeAttempts      prometheus.Counter
	rootsDiscovered    prometheus.Counter
	resolutions        prometheus.Counter
	resolutionFailures prometheus.Counter
	titleLoads         prometheus.Counter
	titleLoadFailures  prometheus.Counter

	// Schedule metrics
	boardSwitches   prometheus.Counter
	variantSwitches prometheus.Counter
	boardsLoaded    prometheus.Gauge
	poolSize        prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "insignia",
		subsystem:        "board",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Total fresh cache reads that satisfied a fetch",
	})
	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_misses_total",
		Help:      "Total fetches that went to the network",
	})
	m.staleServed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_stale_served_total",
		Help:      "Total stale cache payloads served while the network was unreachable",
	})
	m.fetchErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_errors_total",
		Help:      "Total failed HTTP fetches",
	})
	m.fetchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_latency_milliseconds",
		Help:      "Histogram of successful HTTP fetch latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})
	m.cacheEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_entries",
		Help:      "Number of entries currently cached",
	})
	m.cacheBytes = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_bytes",
		Help:      "Total bytes currently cached",
	})

	m.probeAttempts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "probe_attempts_total",
		Help:      "Total root candidates probed",
	})
	m.rootsDiscovered = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "roots_discovered_total",
		Help:      "Total successful catalog root discoveries",
	})
	m.resolutions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "resolutions_total",
		Help:      "Total queries resolved to a title pool",
	})
	m.resolutionFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "resolution_failures_total",
		Help:      "Total resolution attempts with no acceptable match",
	})
	m.titleLoads = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "title_loads_total",
		Help:      "Total per-title documents loaded into boards",
	})
	m.titleLoadFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "title_load_failures_total",
		Help:      "Total per-title loads that yielded no usable boards",
	})

	m.boardSwitches = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "board_switches_total",
		Help:      "Total board rotations",
	})
	m.variantSwitches = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "variant_switches_total",
		Help:      "Total title-variant rotations",
	})
	m.boardsLoaded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "boards_loaded",
		Help:      "Number of boards loaded for the current variant",
	})
	m.poolSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "title_pool_size",
		Help:      "Number of variants in the resolved title pool",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordCacheHit increments the fresh cache read counter.
func RecordCacheHit() { globalManager.cacheHits.Inc() }

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() { globalManager.cacheMisses.Inc() }

// RecordStaleServed increments the stale-payload-served counter.
func RecordStaleServed() { globalManager.staleServed.Inc() }

// RecordFetchError increments the failed fetch counter.
func RecordFetchError() { globalManager.fetchErrors.Inc() }

// RecordFetchLatency records a successful fetch latency in milliseconds.
func RecordFetchLatency(latencyMs float64) { globalManager.fetchLatency.Observe(latencyMs) }

// UpdateCacheEntries sets the current cached entry count.
func UpdateCacheEntries(count int) { globalManager.cacheEntries.Set(float64(count)) }

// UpdateCacheBytes sets the current cached byte total.
func UpdateCacheBytes(bytes int64) { globalManager.cacheBytes.Set(float64(bytes)) }

// RecordProbeAttempt increments the probe attempt counter.
func RecordProbeAttempt() { globalManager.probeAttempts.Inc() }

// RecordRootDiscovered increments the root discovery counter.
func RecordRootDiscovered() { globalManager.rootsDiscovered.Inc() }

// RecordResolution increments the successful resolution counter.
func RecordResolution() { globalManager.resolutions.Inc() }

// RecordResolutionFailure increments the failed resolution counter.
func RecordResolutionFailure() { globalManager.resolutionFailures.Inc() }

// RecordTitleLoad increments the successful title load counter.
func RecordTitleLoad() { globalManager.titleLoads.Inc() }

// RecordTitleLoadFailure increments the failed title load counter.
func RecordTitleLoadFailure() { globalManager.titleLoadFailures.Inc() }

// RecordBoardSwitch increments the board rotation counter.
func RecordBoardSwitch() { globalManager.boardSwitches.Inc() }

// RecordVariantSwitch increments the variant rotation counter.
func RecordVariantSwitch() { globalManager.variantSwitches.Inc() }

// UpdateBoardsLoaded sets the loaded board count gauge.
func UpdateBoardsLoaded(count int) { globalManager.boardsLoaded.Set(float64(count)) }

// UpdatePoolSize sets the title pool size gauge.
func UpdatePoolSize(size int) { globalManager.poolSize.Set(float64(size)) }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
