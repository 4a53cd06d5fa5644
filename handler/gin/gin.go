// Package gin provides Gin handlers for serving metric snapshots
package gin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

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
	// If nil, returns 502 JSON with a generic message
	OnError func(c *gin.Context, err error)
}

// Snapshot returns a Gin handler that serves the current metrics
// snapshot as JSON, honoring the service's cache-aside policy.
func Snapshot(config Config) gin.HandlerFunc {
	return handlerFor(config, func(c *gin.Context) (*revmetrics.Snapshot, error) {
		return config.Service.Snapshot(c.Request.Context())
	})
}

// Refresh returns a Gin handler that forces a recomputation and serves
// the fresh snapshot. Intended for admin routes.
func Refresh(config Config) gin.HandlerFunc {
	return handlerFor(config, func(c *gin.Context) (*revmetrics.Snapshot, error) {
		return config.Service.Refresh(c.Request.Context())
	})
}

func handlerFor(config Config, fetch func(*gin.Context) (*revmetrics.Snapshot, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		snapshot, err := fetch(c)
		if err != nil {
			if config.OnError != nil {
				config.OnError(c, err)
			} else {
				c.JSON(http.StatusBadGateway, gin.H{"error": "metrics unavailable"})
			}
			return
		}
		c.JSON(http.StatusOK, snapshot)
	}
}
