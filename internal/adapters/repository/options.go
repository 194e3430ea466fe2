package repository

// Option applies a configuration option to a store.
type Option func(*options)

type options struct {
	capacity int
	metrics  bool
}

func defaultOptions() options {
	return options{capacity: 1024, metrics: true}
}

// WithCapacity presizes the in-memory index.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithMetrics toggles latency and count reporting.
func WithMetrics(enabled bool) Option {
	return func(o *options) {
		o.metrics = enabled
	}
}
