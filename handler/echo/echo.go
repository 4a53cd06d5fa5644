// Package echo provides Echo handlers for serving metric snapshots
package echo

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

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
	OnError func(c echo.Context, err error) error
}

// Snapshot returns an Echo handler that serves the current metrics
// snapshot as JSON, honoring the service's cache-aside policy.
func Snapshot(config Config) echo.HandlerFunc {
	return handlerFor(config, func(c echo.Context) (*revmetrics.Snapshot, error) {
		return config.Service.Snapshot(c.Request().Context())
	})
}

// Refresh returns an Echo handler that forces a recomputation and
// serves the fresh snapshot. Intended for admin routes.
func Refresh(config Config) echo.HandlerFunc {
	return handlerFor(config, func(c echo.Context) (*revmetrics.Snapshot, error) {
		return config.Service.Refresh(c.Request().Context())
	})
}

func handlerFor(config Config, fetch func(echo.Context) (*revmetrics.Snapshot, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		snapshot, err := fetch(c)
		if err != nil {
			if config.OnError != nil {
				return config.OnError(c, err)
			}
			return c.JSON(http.StatusBadGateway, map[string]string{
				"error": "metrics unavailable",
			})
		}
		return c.JSON(http.StatusOK, snapshot)
	}
}
