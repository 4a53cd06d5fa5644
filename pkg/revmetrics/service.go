package revmetrics

import (
	"context"
	"errors"
	"time"
)

const (
	// DefaultSnapshotKey is the single cache key the whole snapshot
	// lives under.
	DefaultSnapshotKey = "revmetrics:snapshot"

	// DefaultTTL is how long a computed snapshot stays fresh.
	DefaultTTL = 5 * time.Minute
)

// ServiceConfig holds cache-aside configuration.
type ServiceConfig struct {
	// Store caches snapshots between refreshes. Nil disables caching
	// and recomputes on every call.
	Store SnapshotStore

	// Key overrides the cache key. Default: DefaultSnapshotKey.
	Key string

	// TTL overrides the snapshot freshness window. Default: 5 minutes.
	TTL time.Duration

	// Logger receives structured logs. Default: no-op.
	Logger Logger

	// Metrics receives cache hit/miss counters. Default: no-op.
	Metrics Metrics
}

// Service is the consumer-facing accessor over the aggregator: a
// cached read and a forced refresh. Store failures degrade to a cache
// miss so a broken cache can slow the dashboard down but never take it
// out.
type Service struct {
	aggregator *Aggregator
	store      SnapshotStore
	key        string
	ttl        time.Duration
	logger     Logger
	metrics    Metrics
}

// NewService creates the cache-aside layer over an aggregator.
func NewService(aggregator *Aggregator, config ServiceConfig) (*Service, error) {
	if aggregator == nil {
		return nil, ErrProviderNotConfigured
	}
	if config.Key == "" {
		config.Key = DefaultSnapshotKey
	}
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}
	if config.Logger == nil {
		config.Logger = &NoopLogger{}
	}
	if config.Metrics == nil {
		config.Metrics = &NoopMetrics{}
	}

	return &Service{
		aggregator: aggregator,
		store:      config.Store,
		key:        config.Key,
		ttl:        config.TTL,
		logger:     config.Logger,
		metrics:    config.Metrics,
	}, nil
}

// Snapshot returns the cached snapshot when one is still fresh,
// computing and caching a new one otherwise. Cached results carry
// Cached=true. Concurrent misses may each compute independently; the
// stampede is accepted since entries are immutable and any writer wins.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	if s.store != nil {
		cached, err := s.store.Get(ctx, s.key)
		if err == nil && cached != nil {
			s.metrics.RecordCacheHit()
			result := *cached
			result.Cached = true
			return &result, nil
		}
		if err != nil && !errors.Is(err, ErrSnapshotNotFound) {
			s.logger.Warn("snapshot store read failed, recomputing",
				Field{"key", s.key},
				Field{"error", err},
			)
		}
		s.metrics.RecordCacheMiss()
	}
	return s.Refresh(ctx)
}

// Refresh bypasses the cache, runs a full aggregation, and overwrites
// the cached snapshot.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	snapshot := s.aggregator.Collect(ctx)
	if s.store != nil {
		if err := s.store.Set(ctx, s.key, snapshot, s.ttl); err != nil {
			s.logger.Warn("snapshot store write failed",
				Field{"key", s.key},
				Field{"error", err},
			)
		}
	}
	return snapshot, nil
}
