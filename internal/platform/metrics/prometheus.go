// Package metrics exposes Prometheus metrics for the storage layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Store operation metrics
	StoreOpsTotal    *prometheus.CounterVec
	StoreOpsFailed   *prometheus.CounterVec
	StoreOpDuration  *prometheus.HistogramVec

	// Search index metrics
	IndexUpsertsTotal  prometheus.Counter
	IndexUpsertRetries prometheus.Counter
	IndexDeletesTotal  prometheus.Counter
	SearchesTotal      *prometheus.CounterVec
	DegradedSearches   prometheus.Counter

	// Reconciliation metrics
	ReconcileQueueDepth   prometheus.Gauge
	ReconcileQueueDrops   prometheus.Counter
	ReconcileSuccesses    prometheus.Counter
	ReconcileFailures     prometheus.Counter
	ReconcilePermanent    prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		StoreOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Total number of document store operations",
			},
			[]string{"collection", "operation"},
		),
		StoreOpsFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_failed_total",
				Help:      "Total number of failed document store operations",
			},
			[]string{"collection", "operation", "kind"},
		),
		StoreOpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Document store operation duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"collection", "operation"},
		),
		IndexUpsertsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "index_upserts_total",
				Help:      "Total number of search index upserts",
			},
		),
		IndexUpsertRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "index_upsert_retries_total",
				Help:      "Total number of retried search index upserts",
			},
		),
		IndexDeletesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "index_deletes_total",
				Help:      "Total number of search index deletes",
			},
		),
		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "searches_total",
				Help:      "Total number of search operations",
			},
			[]string{"mode"},
		),
		DegradedSearches: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "degraded_searches_total",
				Help:      "Total number of searches served by the document store fallback",
			},
		),
		ReconcileQueueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "reconcile_queue_depth",
				Help:      "Current number of urls awaiting search index repair",
			},
		),
		ReconcileQueueDrops: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconcile_queue_drops_total",
				Help:      "Total number of entries dropped from the full reconciliation queue",
			},
		),
		ReconcileSuccesses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconcile_successes_total",
				Help:      "Total number of urls repaired by the reconciler",
			},
		),
		ReconcileFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconcile_failures_total",
				Help:      "Total number of failed reconciliation attempts",
			},
		),
		ReconcilePermanent: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconcile_permanent_drift_total",
				Help:      "Total number of urls abandoned after exhausting reconciliation attempts",
			},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.StoreOpsTotal,
		m.StoreOpsFailed,
		m.StoreOpDuration,
		m.IndexUpsertsTotal,
		m.IndexUpsertRetries,
		m.IndexDeletesTotal,
		m.SearchesTotal,
		m.DegradedSearches,
		m.ReconcileQueueDepth,
		m.ReconcileQueueDrops,
		m.ReconcileSuccesses,
		m.ReconcileFailures,
		m.ReconcilePermanent,
	)

	return m
}

// Handler returns the HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
