// Package prommetrics provides a Prometheus implementation of the
// revmetrics.Metrics interface.
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics implements revmetrics.Metrics using Prometheus.
type Metrics struct {
	collectorDuration     *prometheus.HistogramVec
	collectorFailures     *prometheus.CounterVec
	ledgerFallbacks       *prometheus.CounterVec
	cacheHitsTotal        prometheus.Counter
	cacheMissesTotal      prometheus.Counter
	snapshotBuildDuration prometheus.Histogram
}

// NewMetrics creates a new Prometheus metrics implementation.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		collectorDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collector_duration_seconds",
			Help:      "Latency of individual metric collectors.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"metric"}),

		collectorFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collector_failures_total",
			Help:      "Total number of collectors that yielded their default value.",
		}, []string{"metric", "reason"}),

		ledgerFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_fallbacks_total",
			Help:      "Total number of monetary metrics that fell back to the provider walk.",
		}, []string{"metric"}),

		cacheHitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_cache_hits_total",
			Help:      "Total number of snapshots served from the cache.",
		}),

		cacheMissesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_cache_misses_total",
			Help:      "Total number of snapshots that had to be recomputed.",
		}),

		snapshotBuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_build_duration_seconds",
			Help:      "Latency of full snapshot aggregations.",
			Buckets:   []float64{.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
	}
}

func (m *Metrics) RecordCollectorDuration(metric string, duration time.Duration) {
	m.collectorDuration.WithLabelValues(metric).Observe(duration.Seconds())
}

func (m *Metrics) RecordCollectorFailure(metric, reason string) {
	m.collectorFailures.WithLabelValues(metric, reason).Inc()
}

func (m *Metrics) RecordLedgerFallback(metric string) {
	m.ledgerFallbacks.WithLabelValues(metric).Inc()
}

func (m *Metrics) RecordCacheHit() {
	m.cacheHitsTotal.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	m.cacheMissesTotal.Inc()
}

func (m *Metrics) RecordSnapshotBuild(duration time.Duration) {
	m.snapshotBuildDuration.Observe(duration.Seconds())
}
