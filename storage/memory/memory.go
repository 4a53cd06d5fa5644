// Package memory provides an in-memory implementation of the
// revmetrics.SnapshotStore interface. Suitable for single-process
// deployments and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/lumoshot/revmetrics/pkg/revmetrics"
)

type entry struct {
	snapshot  revmetrics.Snapshot
	expiresAt time.Time
}

// Store implements revmetrics.SnapshotStore with a mutex-guarded map.
// Expired entries are dropped lazily on read.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry

	// now is swappable for tests
	now func() time.Time
}

// New creates a new in-memory snapshot store.
func New() *Store {
	return &Store{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the stored snapshot for key, or
// revmetrics.ErrSnapshotNotFound when the key is absent or expired.
func (s *Store) Get(_ context.Context, key string) (*revmetrics.Snapshot, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, revmetrics.ErrSnapshotNotFound
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		s.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have
		// refreshed the entry.
		if cur, ok := s.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, revmetrics.ErrSnapshotNotFound
	}

	snapshot := e.snapshot
	return &snapshot, nil
}

// Set stores a snapshot under key. A zero ttl keeps it until
// overwritten.
func (s *Store) Set(_ context.Context, key string, snapshot *revmetrics.Snapshot, ttl time.Duration) error {
	e := entry{snapshot: *snapshot}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}
