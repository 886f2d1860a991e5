package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	globalCollector *Collector
	collectorMutex  sync.Mutex
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Business metrics
	PropertiesCreated prometheus.Counter
	PropertiesDeleted prometheus.Counter
	UnitsCreated      prometheus.Counter
	UnitsDeleted      prometheus.Counter
	BlocksCreated     prometheus.Counter
	BulkOperations    *prometheus.CounterVec

	// Repository metrics
	VersionConflicts prometheus.Counter
	EventsPublished  *prometheus.CounterVec
}

// NewCollector creates a new metrics collector with the given namespace.
// A process-wide singleton avoids duplicate registration in tests.
func NewCollector(namespace string) *Collector {
	collectorMutex.Lock()
	defer collectorMutex.Unlock()

	if globalCollector != nil {
		return globalCollector
	}

	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	propertiesCreated := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "properties_created_total",
			Help:      "Total number of properties created",
		},
	)

	propertiesDeleted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "properties_deleted_total",
			Help:      "Total number of properties deleted",
		},
	)

	unitsCreated := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_created_total",
			Help:      "Total number of units created",
		},
	)

	unitsDeleted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_deleted_total",
			Help:      "Total number of units deleted",
		},
	)

	blocksCreated := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_created_total",
			Help:      "Total number of blocks created",
		},
	)

	bulkOperations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_operations_total",
			Help:      "Total number of bulk unit operations",
		},
		[]string{"operation", "status"},
	)

	versionConflicts := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "version_conflicts_total",
			Help:      "Total number of optimistic concurrency conflicts",
		},
	)

	eventsPublished := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of domain events published",
		},
		[]string{"event_type", "status"},
	)

	registry.MustRegister(
		httpRequests,
		httpDuration,
		propertiesCreated,
		propertiesDeleted,
		unitsCreated,
		unitsDeleted,
		blocksCreated,
		bulkOperations,
		versionConflicts,
		eventsPublished,
	)

	globalCollector = &Collector{
		registry:          registry,
		HTTPRequests:      httpRequests,
		HTTPDuration:      httpDuration,
		PropertiesCreated: propertiesCreated,
		PropertiesDeleted: propertiesDeleted,
		UnitsCreated:      unitsCreated,
		UnitsDeleted:      unitsDeleted,
		BlocksCreated:     blocksCreated,
		BulkOperations:    bulkOperations,
		VersionConflicts:  versionConflicts,
		EventsPublished:   eventsPublished,
	}
	return globalCollector
}

// Handler returns an HTTP handler serving the collector's registry
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
