package revmetrics

import "time"

// Metrics defines the interface for tracking aggregation behavior and
// performance.
type Metrics interface {
	// RecordCollectorDuration records how long one metric collector ran.
	RecordCollectorDuration(metric string, duration time.Duration)

	// RecordCollectorFailure records a collector that yielded its default.
	// Reason is "timeout" or "error".
	RecordCollectorFailure(metric, reason string)

	// RecordLedgerFallback records a monetary metric that fell back from
	// the local ledger to the full provider walk.
	RecordLedgerFallback(metric string)

	// RecordCacheHit records a snapshot served from the cache.
	RecordCacheHit()

	// RecordCacheMiss records a snapshot that had to be recomputed.
	RecordCacheMiss()

	// RecordSnapshotBuild records the duration of one full aggregation.
	RecordSnapshotBuild(duration time.Duration)
}

// NoopMetrics is a no-op implementation of the Metrics interface.
type NoopMetrics struct{}

func (n *NoopMetrics) RecordCollectorDuration(metric string, duration time.Duration) {}
func (n *NoopMetrics) RecordCollectorFailure(metric, reason string)                  {}
func (n *NoopMetrics) RecordLedgerFallback(metric string)                            {}
func (n *NoopMetrics) RecordCacheHit()                                               {}
func (n *NoopMetrics) RecordCacheMiss()                                              {}
func (n *NoopMetrics) RecordSnapshotBuild(duration time.Duration)                    {}
