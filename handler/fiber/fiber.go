// Package fiber provides Fiber handlers for serving metric snapshots
package fiber

import (
	"context"

	"github.com/gofiber/fiber/v2"

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
	// If nil, returns 502 JSON with the error message
	OnError func(c *fiber.Ctx, err error) error
}

// Snapshot returns a Fiber handler that serves the current metrics
// snapshot as JSON, honoring the service's cache-aside policy.
func Snapshot(config Config) fiber.Handler {
	return handlerFor(config, func(c *fiber.Ctx) (*revmetrics.Snapshot, error) {
		return config.Service.Snapshot(c.UserContext())
	})
}

// Refresh returns a Fiber handler that forces a recomputation and
// serves the fresh snapshot. Intended for admin routes.
func Refresh(config Config) fiber.Handler {
	return handlerFor(config, func(c *fiber.Ctx) (*revmetrics.Snapshot, error) {
		return config.Service.Refresh(c.UserContext())
	})
}

func handlerFor(config Config, fetch func(*fiber.Ctx) (*revmetrics.Snapshot, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snapshot, err := fetch(c)
		if err != nil {
			if config.OnError != nil {
				return config.OnError(c, err)
			}
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "metrics unavailable",
			})
		}
		return c.JSON(snapshot)
	}
}
