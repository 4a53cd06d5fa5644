package revmetrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker(t *testing.T, ledger Ledger) *LedgerBreaker {
	t.Helper()
	breaker, err := NewLedgerBreaker(ledger, LedgerBreakerConfig{
		FailureThreshold: 3,
		ResetTimeout:     50 * time.Millisecond,
	})
	require.NoError(t, err)
	return breaker
}

func TestNewLedgerBreaker(t *testing.T) {
	_, err := NewLedgerBreaker(nil, LedgerBreakerConfig{})
	assert.Error(t, err)
}

func TestLedgerBreaker_PassThrough(t *testing.T) {
	ledger := &fakeLedger{totals: RevenueTotals{Total: 50000}}
	breaker := newTestBreaker(t, ledger)

	totals, err := breaker.RevenueTotals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(50000), totals.Total)
	assert.Equal(t, BreakerClosed, breaker.State())
}

func TestLedgerBreaker_OpensAfterThreshold(t *testing.T) {
	ledger := &fakeLedger{err: errors.New("connection refused")}
	breaker := newTestBreaker(t, ledger)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := breaker.RevenueTotals(ctx)
		assert.Error(t, err)
	}
	assert.Equal(t, BreakerOpen, breaker.State())

	// Open breaker fails fast without reaching the ledger.
	before := ledger.calls
	_, err := breaker.RevenueTotals(ctx)
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.Equal(t, before, ledger.calls)
}

func TestLedgerBreaker_ProbeAfterResetTimeout(t *testing.T) {
	ledger := &fakeLedger{err: errors.New("connection refused")}
	breaker := newTestBreaker(t, ledger)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = breaker.RevenueTotals(ctx)
	}
	require.Equal(t, BreakerOpen, breaker.State())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, BreakerHalfOpen, breaker.State())

	t.Run("failed probe re-opens", func(t *testing.T) {
		_, err := breaker.RevenueTotals(ctx)
		assert.Error(t, err)
		assert.Equal(t, BreakerOpen, breaker.State())
	})

	t.Run("successful probe closes", func(t *testing.T) {
		time.Sleep(60 * time.Millisecond)
		ledger.err = nil
		ledger.totals = RevenueTotals{Total: 100}

		totals, err := breaker.RevenueTotals(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(100), totals.Total)
		assert.Equal(t, BreakerClosed, breaker.State())
	})
}

func TestLedgerBreaker_FeedsAggregatorFallback(t *testing.T) {
	ledger := &fakeLedger{err: errors.New("connection refused")}
	breaker := newTestBreaker(t, ledger)

	provider := testProvider()
	aggregator := newTestAggregator(t, provider, breaker, Config{})

	// Ledger is down, so monetary metrics come from the provider walk.
	snapshot := aggregator.Collect(context.Background())
	assert.Equal(t, int64(200), snapshot.TotalRevenue)
}
