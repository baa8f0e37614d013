package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// singleton instance
	instance *Metrics
	once     sync.Once
)

// Metrics holds Prometheus metrics for eventops
type Metrics struct {
	// Invalidation bus metrics
	BusSubscriptionsActive prometheus.Gauge
	BusPublishesTotal      prometheus.Counter
	BusKeysPublished       prometheus.Histogram
	BusCallbacksInvoked    prometheus.Counter
	BusCallbackPanics      prometheus.Counter
	BusDispatchDuration    prometheus.Histogram

	// API metrics
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	APIErrorsTotal     *prometheus.CounterVec

	// Storage metrics
	StorageOperations        *prometheus.CounterVec
	StorageOperationDuration *prometheus.HistogramVec

	// Operation (mutation) metrics
	MutationsTotal *prometheus.CounterVec

	// View metrics
	ViewsMounted       prometheus.Gauge
	ViewLoadsTotal     *prometheus.CounterVec
	ViewLoadDuration   *prometheus.HistogramVec
	ViewInvalidations  *prometheus.CounterVec
	ViewEvictionsTotal prometheus.Counter
	ViewRefreshDropped prometheus.Counter
}

// GetMetrics returns the metrics singleton
func GetMetrics() *Metrics {
	once.Do(func() {
		instance = newMetrics()
	})
	return instance
}

// newMetrics initializes and registers all metrics
func newMetrics() *Metrics {
	m := &Metrics{}

	// Invalidation bus metrics
	m.BusSubscriptionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventops_bus_subscriptions_active",
			Help: "Number of live invalidation subscriptions",
		},
	)

	m.BusPublishesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventops_bus_publishes_total",
			Help: "Total number of non-empty publish calls",
		},
	)

	m.BusKeysPublished = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eventops_bus_keys_per_publish",
			Help:    "Number of keys announced by a single publish call",
			Buckets: prometheus.LinearBuckets(1, 2, 8), // 1, 3, ..., 15
		},
	)

	m.BusCallbacksInvoked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventops_bus_callbacks_invoked_total",
			Help: "Total number of subscriber callbacks invoked",
		},
	)

	m.BusCallbackPanics = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventops_bus_callback_panics_total",
			Help: "Total number of subscriber callbacks that panicked and were recovered",
		},
	)

	m.BusDispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eventops_bus_dispatch_duration_seconds",
			Help:    "Time spent matching and invoking subscribers for one publish",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 12), // from 10us to ~20ms
		},
	)

	// API metrics
	m.APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventops_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	m.APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventops_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // from 1ms to ~16s
		},
		[]string{"method", "route"},
	)

	m.APIErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventops_api_errors_total",
			Help: "Total number of API errors",
		},
		[]string{"route", "error_type"},
	)

	// Storage metrics
	m.StorageOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventops_storage_operations_total",
			Help: "Total number of storage operations",
		},
		[]string{"operation", "success"},
	)

	m.StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventops_storage_operation_duration_seconds",
			Help:    "Storage operation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15), // from 0.1ms to ~1.6s
		},
		[]string{"operation"},
	)

	m.MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventops_mutations_total",
			Help: "Total number of domain mutations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// View metrics
	m.ViewsMounted = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventops_views_mounted",
			Help: "Number of currently mounted views",
		},
	)

	m.ViewLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventops_view_loads_total",
			Help: "Total number of view loads",
		},
		[]string{"view", "success"},
	)

	m.ViewLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventops_view_load_duration_seconds",
			Help:    "Duration of view loads in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15),
		},
		[]string{"view"},
	)

	m.ViewInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventops_view_invalidations_total",
			Help: "Total number of times a mounted view was marked stale",
		},
		[]string{"view"},
	)

	m.ViewEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventops_view_evictions_total",
			Help: "Total number of views unmounted by LRU eviction",
		},
	)

	m.ViewRefreshDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventops_view_refresh_dropped_total",
			Help: "Refresh requests dropped because the refresh queue was full",
		},
	)

	return m
}
