package revmetrics

import (
	"context"
	"errors"
	"sync"
	"time"
)

// BreakerState represents the current state of the ledger breaker.
type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerOpen     BreakerState = "open"
	BreakerHalfOpen BreakerState = "half_open"
)

// ErrBreakerOpen is returned while the breaker is rejecting ledger
// reads.
var ErrBreakerOpen = errors.New("ledger breaker is open")

// LedgerBreaker wraps a Ledger and stops querying it after repeated
// failures. While open, RevenueTotals fails immediately, which sends
// the revenue collectors straight to the provider walk instead of
// waiting on a struggling database. After ResetTimeout one probe read
// is let through; its outcome closes or re-opens the breaker.
type LedgerBreaker struct {
	ledger Ledger
	logger Logger

	mu                  sync.Mutex
	state               BreakerState
	failureThreshold    int
	resetTimeout        time.Duration
	consecutiveFailures int
	lastFailureTime     time.Time
}

// LedgerBreakerConfig configures a LedgerBreaker.
type LedgerBreakerConfig struct {
	// FailureThreshold is how many consecutive failures open the
	// breaker. Default: 3.
	FailureThreshold int

	// ResetTimeout is how long the breaker stays open before allowing
	// a probe read. Default: 30 seconds.
	ResetTimeout time.Duration

	// Logger receives state transition logs. Default: no-op.
	Logger Logger
}

// NewLedgerBreaker wraps ledger with failure tracking.
func NewLedgerBreaker(ledger Ledger, config LedgerBreakerConfig) (*LedgerBreaker, error) {
	if ledger == nil {
		return nil, errors.New("ledger is required")
	}
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 3
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	logger := config.Logger
	if logger == nil {
		logger = &NoopLogger{}
	}
	return &LedgerBreaker{
		ledger:           ledger,
		logger:           logger,
		state:            BreakerClosed,
		failureThreshold: config.FailureThreshold,
		resetTimeout:     config.ResetTimeout,
	}, nil
}

// State returns the current breaker state.
func (b *LedgerBreaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentState()
}

// currentState must be called with b.mu held.
func (b *LedgerBreaker) currentState() BreakerState {
	if b.state == BreakerOpen && time.Since(b.lastFailureTime) >= b.resetTimeout {
		return BreakerHalfOpen
	}
	return b.state
}

// RevenueTotals implements Ledger. While open it fails without
// touching the underlying ledger.
func (b *LedgerBreaker) RevenueTotals(ctx context.Context) (RevenueTotals, error) {
	if b.State() == BreakerOpen {
		return RevenueTotals{}, ErrBreakerOpen
	}

	totals, err := b.ledger.RevenueTotals(ctx)
	if err != nil {
		b.failure(err)
		return RevenueTotals{}, err
	}

	b.success()
	return totals, nil
}

func (b *LedgerBreaker) success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != BreakerClosed {
		b.changeState(BreakerClosed)
	}
	b.consecutiveFailures = 0
}

func (b *LedgerBreaker) failure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures++
	b.lastFailureTime = time.Now()

	state := b.currentState()
	if state == BreakerClosed && b.consecutiveFailures >= b.failureThreshold {
		b.changeState(BreakerOpen)
		b.logger.Warn("Ledger breaker opened",
			Field{"consecutive_failures", b.consecutiveFailures},
			Field{"error", err},
		)
	} else if state == BreakerHalfOpen {
		b.state = BreakerHalfOpen
		b.changeState(BreakerOpen)
		b.logger.Warn("Ledger breaker re-opened after failed probe",
			Field{"error", err},
		)
	}
}

// changeState must be called with b.mu held.
func (b *LedgerBreaker) changeState(newState BreakerState) {
	if b.state != newState {
		b.state = newState
		if newState == BreakerClosed {
			b.logger.Info("Ledger breaker closed")
		}
	}
}
