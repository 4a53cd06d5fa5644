package revmetrics

import (
	"context"
	"time"
)

// withDefault races op against a per-call budget. It always returns
// within the budget: if the timer wins, the fallback is returned with
// ErrCollectorTimeout and op's context is cancelled so the underlying
// transport can stop work. The goroutine running op is left to drain
// into a buffered channel, so a transport that ignores cancellation
// leaks no goroutine past op's own completion.
func withDefault[T any](ctx context.Context, budget time.Duration, fallback T, op func(context.Context) (T, error)) (T, error) {
	opCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		value, err := op(opCtx)
		done <- outcome{value: value, err: err}
	}()

	select {
	case out := <-done:
		return out.value, out.err
	case <-opCtx.Done():
		return fallback, ErrCollectorTimeout
	}
}
