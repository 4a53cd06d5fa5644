// Package firestore provides a Firestore implementation of the
// revmetrics.SnapshotStore interface. Firestore has no server-side
// TTL on arbitrary fields, so expiry is enforced on read.
package firestore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/lumoshot/revmetrics/pkg/revmetrics"
)

// Store implements revmetrics.SnapshotStore using Google Cloud Firestore.
type Store struct {
	client     *firestore.Client
	collection string
}

// Config holds Firestore snapshot store configuration.
type Config struct {
	// Collection is the Firestore collection for snapshots
	// Default: "metric_snapshots"
	Collection string
}

// snapshotDoc is the stored document shape. The snapshot itself is
// kept as a JSON blob so the document schema does not track every
// snapshot field.
type snapshotDoc struct {
	Payload   []byte    `firestore:"payload"`
	ExpiresAt time.Time `firestore:"expiresAt"`
	StoredAt  time.Time `firestore:"storedAt"`
}

// New creates a new Firestore snapshot store.
func New(client *firestore.Client, config Config) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("firestore client is required")
	}
	if config.Collection == "" {
		config.Collection = "metric_snapshots"
	}
	return &Store{client: client, collection: config.Collection}, nil
}

// Get returns the stored snapshot for key, or
// revmetrics.ErrSnapshotNotFound when the key is absent or expired.
func (s *Store) Get(ctx context.Context, key string) (*revmetrics.Snapshot, error) {
	snap, err := s.client.Collection(s.collection).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, revmetrics.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	if !snap.Exists() {
		return nil, revmetrics.ErrSnapshotNotFound
	}

	var doc snapshotDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot document: %w", err)
	}
	if !doc.ExpiresAt.IsZero() && time.Now().After(doc.ExpiresAt) {
		return nil, revmetrics.ErrSnapshotNotFound
	}

	var snapshot revmetrics.Snapshot
	if err := json.Unmarshal(doc.Payload, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}

// Set stores a snapshot under key. A zero ttl keeps it until
// overwritten.
func (s *Store) Set(ctx context.Context, key string, snapshot *revmetrics.Snapshot, ttl time.Duration) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	now := time.Now().UTC()
	doc := snapshotDoc{Payload: payload, StoredAt: now}
	if ttl > 0 {
		doc.ExpiresAt = now.Add(ttl)
	}

	if _, err := s.client.Collection(s.collection).Doc(key).Set(ctx, doc); err != nil {
		return fmt.Errorf("failed to set snapshot: %w", err)
	}
	return nil
}
