package echo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
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

func TestSnapshot(t *testing.T) {
	source := &fakeSource{snapshot: &revmetrics.Snapshot{MRR: 62, NewOneTimeBuyers: 1}}
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/metrics/revenue", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, Snapshot(Config{Service: source})(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var got revmetrics.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(62), got.MRR)
	assert.Equal(t, 1, got.NewOneTimeBuyers)
	assert.Zero(t, source.refreshes)
}

func TestRefresh(t *testing.T) {
	source := &fakeSource{snapshot: &revmetrics.Snapshot{}}
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/metrics/revenue/refresh", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, Refresh(Config{Service: source})(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, source.refreshes)
}

func TestSnapshot_Error(t *testing.T) {
	source := &fakeSource{err: errors.New("provider down")}
	e := echo.New()

	t.Run("default response", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/metrics/revenue", http.NoBody), rec)
		require.NoError(t, Snapshot(Config{Service: source})(c))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("custom error handler", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/metrics/revenue", http.NoBody), rec)
		handler := Snapshot(Config{
			Service: source,
			OnError: func(c echo.Context, err error) error {
				return c.String(http.StatusServiceUnavailable, err.Error())
			},
		})
		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "provider down", rec.Body.String())
	})
}
