// Package metrics provides Prometheus metrics for the studybuddy service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the studybuddy service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Recommendation metrics
	recommendationRequests *prometheus.CounterVec
	recommendationLatency  prometheus.Histogram
	candidatesScored       prometheus.Histogram
	recommendationsEmpty   prometheus.Counter
	batchSize              prometheus.Histogram

	// Store metrics
	profilesTotal    prometheus.Gauge
	storeLatency     *prometheus.HistogramVec
	storeErrorsTotal *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "studybuddy",
		subsystem:        "matcher",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.recommendationRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("recommendation_requests_total"),
		Help:        "Total number of recommendation requests by outcome",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.recommendationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("recommendation_latency_milliseconds"),
		Help:        "Time to resolve inputs, score and rank candidates in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.candidatesScored = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("candidates_scored"),
		Help:        "Number of candidates scored per recommendation request",
		Buckets:     prometheus.ExponentialBuckets(1, 4, 10),
		ConstLabels: labels,
	})

	m.recommendationsEmpty = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("recommendations_empty_total"),
		Help:        "Requests that found no candidates",
		ConstLabels: labels,
	})

	m.batchSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("batch_size"),
		Help:        "Number of requesters in a batch recommendation",
		Buckets:     prometheus.ExponentialBuckets(1, 2, 10),
		ConstLabels: labels,
	})

	m.profilesTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("profiles_total"),
		Help:        "Number of profiles in the store",
		ConstLabels: labels,
	})

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("store_query_latency_milliseconds"),
		Help:        "Profile store operation latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"driver", "op"})

	m.storeErrorsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("store_errors_total"),
		Help:        "Profile store operation failures",
		ConstLabels: labels,
	}, []string{"driver", "op"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_requests_total"),
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_request_duration_milliseconds"),
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_type_total"),
		Help:        "Errors by type and severity",
		ConstLabels: labels,
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_endpoint_total"),
		Help:        "Errors by HTTP endpoint",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "error_type"})

	m.errorLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("error_latency_milliseconds"),
		Help:        "Latency of failed operations in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_usage_bytes"),
		Help:        "System memory usage in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutine_count"),
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_time_milliseconds"),
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: labels,
	})
}

// RecordRecommendationRequest counts a request by outcome: ok, empty, not_found, error.
func RecordRecommendationRequest(outcome string) {
	if globalManager.enabled {
		globalManager.recommendationRequests.WithLabelValues(outcome).Inc()
	}
}

// RecordRecommendationLatency records end-to-end recommendation latency.
func RecordRecommendationLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.recommendationLatency.Observe(latencyMs)
	}
}

// RecordCandidatesScored records how many candidates one request scored.
func RecordCandidatesScored(n int) {
	if globalManager.enabled {
		globalManager.candidatesScored.Observe(float64(n))
	}
}

// RecordEmptyRecommendation counts a request with no candidates.
func RecordEmptyRecommendation() {
	if globalManager.enabled {
		globalManager.recommendationsEmpty.Inc()
	}
}

// RecordBatchSize records the number of requesters in a batch.
func RecordBatchSize(n int) {
	if globalManager.enabled {
		globalManager.batchSize.Observe(float64(n))
	}
}

// UpdateProfilesTotal sets the number of stored profiles.
func UpdateProfilesTotal(count int) {
	if globalManager.enabled {
		globalManager.profilesTotal.Set(float64(count))
	}
}

// RecordStoreQueryLatency records one store operation.
func RecordStoreQueryLatency(driver, op string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.storeLatency.WithLabelValues(driver, op).Observe(latencyMs)
	}
}

// RecordStoreError counts a failed store operation.
func RecordStoreError(driver, op string) {
	if globalManager.enabled {
		globalManager.storeErrorsTotal.WithLabelValues(driver, op).Inc()
	}
}

// RecordHTTPRequest increments the HTTP requests counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// RecordErrorByType records errors by type and severity.
func RecordErrorByType(errorType, severity string) {
	if globalManager.enabled {
		globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
	}
}

// RecordErrorByEndpoint records errors by HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// RecordErrorLatency records latency for failed operations.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
	}
}

// UpdateSystemMemoryUsage sets the current memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the current goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records a GC pause sample.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom registry serving the global metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RefreshInterval returns how often gauges should be refreshed.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}
