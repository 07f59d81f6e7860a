package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Storage and mapping Prometheus metrics.
var (
	ElasticsearchRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "esdata",
			Name:      "elasticsearch_request_duration_seconds",
			Help:      "Elasticsearch request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"op", "status"},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "esdata",
			Name:      "search_cache_total",
			Help:      "Search result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	EntityBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "esdata",
			Name:      "entity_builds_total",
			Help:      "Total number of persistent entity scans",
		},
		[]string{"entity", "status"},
	)

	EntityBuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "esdata",
			Name:      "entity_build_duration_seconds",
			Help:      "Persistent entity scan duration in seconds",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		},
		[]string{"entity"},
	)
)

var storeMetricsRegistered bool

// RegisterStoreMetrics registers storage and mapping metrics. Must be called once from main.
func RegisterStoreMetrics() {
	if storeMetricsRegistered {
		return
	}
	prometheus.MustRegister(ElasticsearchRequestDuration)
	prometheus.MustRegister(SearchCacheTotal)
	prometheus.MustRegister(EntityBuildsTotal)
	prometheus.MustRegister(EntityBuildDuration)
	storeMetricsRegistered = true
}

// EntityObserver reports entity scans to Prometheus.
type EntityObserver struct{}

// EntityBuilt implements mapping.BuildObserver.
func (EntityObserver) EntityBuilt(entityType string, took time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	EntityBuildsTotal.WithLabelValues(entityType, status).Inc()
	EntityBuildDuration.WithLabelValues(entityType).Observe(took.Seconds())
}
