// Package tiered provides a Hot/Cold tiered snapshot store that reads
// through a fast ephemeral tier (Hot) backed by a durable tier (Cold).
package tiered

import (
	"context"
	"errors"
	"time"

	"github.com/lumoshot/revmetrics/pkg/revmetrics"
)

// Config configures the tiered store behavior.
type Config struct {
	// Hot is the L1 store (e.g., Memory) for low-latency reads
	Hot revmetrics.SnapshotStore

	// Cold is the L2 store (e.g., Redis, Firestore) shared across
	// processes
	Cold revmetrics.SnapshotStore

	// HotTTL bounds how long a snapshot promoted from Cold lives in
	// Hot. Default: 30 seconds.
	HotTTL time.Duration
}

// Store implements revmetrics.SnapshotStore over two tiers.
// Reads go Hot first and promote Cold hits into Hot; writes go
// write-through Cold then Hot.
type Store struct {
	hot    revmetrics.SnapshotStore
	cold   revmetrics.SnapshotStore
	hotTTL time.Duration
}

// New creates a new tiered snapshot store.
func New(config Config) (*Store, error) {
	if config.Hot == nil || config.Cold == nil {
		return nil, errors.New("tiered storage: both hot and cold storage are required")
	}
	hotTTL := config.HotTTL
	if hotTTL <= 0 {
		hotTTL = 30 * time.Second
	}
	return &Store{hot: config.Hot, cold: config.Cold, hotTTL: hotTTL}, nil
}

// Get returns the snapshot from the hot tier when present, otherwise
// falls back to the cold tier and promotes the result. Hot tier
// failures are not fatal; the cold tier stays authoritative.
func (s *Store) Get(ctx context.Context, key string) (*revmetrics.Snapshot, error) {
	if snapshot, err := s.hot.Get(ctx, key); err == nil {
		return snapshot, nil
	}

	snapshot, err := s.cold.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	// Promotion is best-effort.
	_ = s.hot.Set(ctx, key, snapshot, s.hotTTL)
	return snapshot, nil
}

// Set writes the snapshot to the cold tier first, then mirrors it into
// the hot tier. A hot tier failure after a durable cold write is not
// reported; the next read falls back to cold.
func (s *Store) Set(ctx context.Context, key string, snapshot *revmetrics.Snapshot, ttl time.Duration) error {
	if err := s.cold.Set(ctx, key, snapshot, ttl); err != nil {
		return err
	}

	hotTTL := s.hotTTL
	if ttl > 0 && ttl < hotTTL {
		hotTTL = ttl
	}
	_ = s.hot.Set(ctx, key, snapshot, hotTTL)
	return nil
}
