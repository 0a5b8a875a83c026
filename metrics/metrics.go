package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/keenanlab/scopecache"
)

// Config configures the Prometheus collector.
type Config struct {
	// Namespace is the metrics namespace (default: "scopecache").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for load duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "scopecache",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector translates lifecycle events into Prometheus metrics.
type Collector struct {
	loadsTotal      *prometheus.CounterVec
	loadDuration    *prometheus.HistogramVec
	resourcesCached *prometheus.GaugeVec
	removalsTotal   *prometheus.CounterVec
	scopesAttached  prometheus.Gauge
	leaksTotal      prometheus.Counter
}

// New creates and registers a Collector.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Collector{
		loadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "loads_total",
			Help:        "Total number of resource loader invocations",
			ConstLabels: config.ConstLabels,
		}, []string{"store", "status"}),

		loadDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "load_duration_seconds",
			Help:        "Resource loader duration in seconds",
			Buckets:     config.Buckets,
			ConstLabels: config.ConstLabels,
		}, []string{"store"}),

		resourcesCached: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "resources_cached",
			Help:        "Resources currently held by stores",
			ConstLabels: config.ConstLabels,
		}, []string{"store"}),

		removalsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "removals_total",
			Help:        "Resources removed from stores, by reason",
			ConstLabels: config.ConstLabels,
		}, []string{"store", "reason"}),

		scopesAttached: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scopes_attached",
			Help:        "Scope handles currently attached to a resource",
			ConstLabels: config.ConstLabels,
		}),

		leaksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scope_leaks_total",
			Help:        "Scope handles reclaimed while still attached",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// OnCacheEvent implements scopecache.Observer.
func (c *Collector) OnCacheEvent(e scopecache.Event) {
	switch e.Type {
	case scopecache.EventLoaded:
		c.loadsTotal.WithLabelValues(e.Store, "ok").Inc()
		c.loadDuration.WithLabelValues(e.Store).Observe(e.Elapsed.Seconds())
		c.resourcesCached.WithLabelValues(e.Store).Inc()
	case scopecache.EventLoadFailed:
		c.loadsTotal.WithLabelValues(e.Store, "error").Inc()
		c.loadDuration.WithLabelValues(e.Store).Observe(e.Elapsed.Seconds())
	case scopecache.EventPurged:
		c.resourcesCached.WithLabelValues(e.Store).Dec()
		c.removalsTotal.WithLabelValues(e.Store, "purged").Inc()
	case scopecache.EventEvicted:
		c.resourcesCached.WithLabelValues(e.Store).Dec()
		c.removalsTotal.WithLabelValues(e.Store, "evicted").Inc()
	case scopecache.EventAttached:
		c.scopesAttached.Inc()
	case scopecache.EventDetached:
		c.scopesAttached.Dec()
	case scopecache.EventLeaked:
		// The handle never detached, so the gauge still counts it.
		c.scopesAttached.Dec()
		c.leaksTotal.Inc()
	}
}
