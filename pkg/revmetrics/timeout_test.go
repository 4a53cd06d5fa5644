package revmetrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDefault_FastOperation(t *testing.T) {
	got, err := withDefault(context.Background(), time.Second, -1, func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestWithDefault_SlowOperationYieldsFallback(t *testing.T) {
	start := time.Now()
	got, err := withDefault(context.Background(), 30*time.Millisecond, -1, func(context.Context) (int, error) {
		time.Sleep(5 * time.Second)
		return 42, nil
	})
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrCollectorTimeout)
	assert.Equal(t, -1, got)
	// Must resolve within the budget plus scheduling slack, no matter
	// how long the operation itself takes.
	assert.Less(t, elapsed, time.Second)
}

func TestWithDefault_OperationSeesCancellation(t *testing.T) {
	cancelled := make(chan struct{})
	_, err := withDefault(context.Background(), 20*time.Millisecond, 0, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		close(cancelled)
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, ErrCollectorTimeout)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("operation context was not cancelled after budget elapsed")
	}
}

func TestWithDefault_OperationErrorPassesThrough(t *testing.T) {
	boom := errors.New("boom")
	got, err := withDefault(context.Background(), time.Second, -1, func(context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrCollectorTimeout)
	assert.Equal(t, 0, got)
}
