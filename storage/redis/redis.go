// Package redis provides a Redis implementation of the
// revmetrics.SnapshotStore interface. Expiry is delegated to Redis
// key TTLs.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lumoshot/revmetrics/pkg/revmetrics"
)

// Store implements revmetrics.SnapshotStore using Redis.
type Store struct {
	client redis.UniversalClient
	config Config
}

// Config holds Redis snapshot store configuration.
type Config struct {
	// KeyPrefix is prepended to all Redis keys (default: "revmetrics:")
	KeyPrefix string

	// DefaultTTL applies when Set is called with a zero ttl
	// (0 = no expiration)
	DefaultTTL time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		KeyPrefix:  "revmetrics:",
		DefaultTTL: 5 * time.Minute,
	}
}

// New creates a new Redis snapshot store.
// The client can be *redis.Client, *redis.ClusterClient, or *redis.Ring
func New(client redis.UniversalClient, config Config) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "revmetrics:"
	}
	return &Store{client: client, config: config}, nil
}

func (s *Store) key(key string) string {
	return s.config.KeyPrefix + key
}

// Get returns the stored snapshot for key, or
// revmetrics.ErrSnapshotNotFound when the key is absent or expired.
func (s *Store) Get(ctx context.Context, key string) (*revmetrics.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, revmetrics.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var snapshot revmetrics.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}

// Set stores a snapshot under key with the given ttl. A zero ttl
// falls back to the configured DefaultTTL.
func (s *Store) Set(ctx context.Context, key string, snapshot *revmetrics.Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if ttl <= 0 {
		ttl = s.config.DefaultTTL
	}
	if err := s.client.Set(ctx, s.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set snapshot: %w", err)
	}
	return nil
}
