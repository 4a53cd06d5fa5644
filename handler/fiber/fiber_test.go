package fiber

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumoshot/revmetrics/pkg/revmetrics"
)

type fakeSource struct {
	snapshot  *revmetrics.Snapshot
	err       error
	refreshes int
}

func (f *fakeSource) Snapshot(context.Context) (*revmetrics.Snapshot, error) {
	return f.snapshot, f.err
}

func (f *fakeSource) Refresh(context.Context) (*revmetrics.Snapshot, error) {
	f.refreshes++
	return f.snapshot, f.err
}

func newTestApp(source SnapshotSource) *fiber.App {
	app := fiber.New()
	app.Get("/metrics/revenue", Snapshot(Config{Service: source}))
	app.Post("/metrics/revenue/refresh", Refresh(Config{Service: source}))
	return app
}

func TestSnapshot(t *testing.T) {
	source := &fakeSource{snapshot: &revmetrics.Snapshot{MRR: 62, Cached: true}}
	app := newTestApp(source)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics/revenue", http.NoBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var got revmetrics.Snapshot
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, int64(62), got.MRR)
	assert.True(t, got.Cached)
	assert.Zero(t, source.refreshes)
}

func TestRefresh(t *testing.T) {
	source := &fakeSource{snapshot: &revmetrics.Snapshot{TotalRevenue: 200}}
	app := newTestApp(source)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/metrics/revenue/refresh", http.NoBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, source.refreshes)
}

func TestSnapshot_Error(t *testing.T) {
	source := &fakeSource{err: errors.New("provider down")}

	t.Run("default response", func(t *testing.T) {
		app := newTestApp(source)
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics/revenue", http.NoBody))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})

	t.Run("custom error handler", func(t *testing.T) {
		app := fiber.New()
		app.Get("/metrics/revenue", Snapshot(Config{
			Service: source,
			OnError: func(c *fiber.Ctx, err error) error {
				return c.Status(fiber.StatusServiceUnavailable).SendString(err.Error())
			},
		}))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics/revenue", http.NoBody))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "provider down", string(body))
	})
}
