// Package http provides net/http handlers for serving metric snapshots
package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/lumoshot/revmetrics/pkg/revmetrics"
)

// SnapshotSource produces metric snapshots. *revmetrics.Service
// satisfies it.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*revmetrics.Snapshot, error)
	Refresh(ctx context.Context) (*revmetrics.Snapshot, error)
}

// Config holds handler configuration
type Config struct {
	// Service is the snapshot source (required)
	Service SnapshotSource

	// OnError is called when snapshot computation fails
	// If nil, returns 502 Bad Gateway
	OnError func(w http.ResponseWriter, r *http.Request, err error)
}

// Snapshot returns a handler that serves the current metrics snapshot
// as JSON, honoring the service's cache-aside policy.
func Snapshot(config Config) http.Handler {
	return handlerFor(config, func(r *http.Request) (*revmetrics.Snapshot, error) {
		return config.Service.Snapshot(r.Context())
	})
}

// Refresh returns a handler that forces a recomputation and serves the
// fresh snapshot. Intended for admin routes.
func Refresh(config Config) http.Handler {
	return handlerFor(config, func(r *http.Request) (*revmetrics.Snapshot, error) {
		return config.Service.Refresh(r.Context())
	})
}

func handlerFor(config Config, fetch func(*http.Request) (*revmetrics.Snapshot, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := fetch(r)
		if err != nil {
			if config.OnError != nil {
				config.OnError(w, r, err)
			} else {
				http.Error(w, "metrics unavailable", http.StatusBadGateway)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snapshot); err != nil && config.OnError != nil {
			config.OnError(w, r, err)
		}
	})
}
