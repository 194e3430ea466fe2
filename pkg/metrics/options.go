package metrics

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// cleanName lowercases n and trims surrounding spaces and underscores.
func cleanName(n string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(n)), "_")
}

// WithNamespace sets the namespace for all metrics. Blank values are ignored.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if n := cleanName(namespace); n != "" {
			m.namespace = n
		}
	}
}

// WithSubsystem sets the subsystem for all metrics. Blank values are ignored.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if n := cleanName(subsystem); n != "" {
			m.subsystem = n
		}
	}
}

// WithMetricPrefix prepends prefix to every metric name.
func WithMetricPrefix(prefix string) Option {
	return func(m *Manager) {
		if n := cleanName(prefix); n != "" {
			m.metricPrefix = n
		}
	}
}

// WithHistogramBuckets sets the latency buckets in milliseconds.
// Buckets must be strictly increasing; anything else is ignored.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) == 0 {
			return
		}
		for i := 1; i < len(buckets); i++ {
			if buckets[i] <= buckets[i-1] {
				return
			}
		}
		m.histogramBuckets = slices.Clone(buckets)
	}
}

// WithMetricsEnabled turns recording on or off. Metrics stay registered either way.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithRefreshInterval sets how often cmd refreshes the system gauges.
func WithRefreshInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval > 0 {
			m.refreshInterval = interval
		}
	}
}

// WithCustomLabels attaches constant labels, e.g. env or instance, to every metric.
func WithCustomLabels(labels map[string]string) Option {
	return func(m *Manager) {
		if len(labels) > 0 {
			m.customLabels = maps.Clone(labels)
		}
	}
}

// WithPrometheusRegistry registers metrics on registry instead of the default one.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
