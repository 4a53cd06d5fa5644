// Package postgres provides a PostgreSQL implementation of the
// revmetrics.Ledger interface backed by a payment ledger table that
// the application appends to as payments settle.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumoshot/revmetrics/pkg/revmetrics"
)

const (
	kindSubscription = "subscription"
	kindOneTime      = "one_time"
	kindCreditTopUp  = "credit_topup"

	statusSucceeded = "succeeded"
)

// Config holds PostgreSQL ledger configuration.
type Config struct {
	// ConnectionString is the PostgreSQL connection string
	ConnectionString string

	// Table names the payment ledger table. Default: payment_ledger.
	Table string

	// Pool configuration
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Table:           "payment_ledger",
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}
}

// Ledger implements revmetrics.Ledger using PostgreSQL.
type Ledger struct {
	pool  *pgxpool.Pool
	table string
	owned bool
}

// New creates a new PostgreSQL ledger and verifies connectivity.
func New(ctx context.Context, config Config) (*Ledger, error) {
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("connection string is required")
	}

	poolConfig, err := pgxpool.ParseConfig(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if config.MaxConns > 0 {
		poolConfig.MaxConns = config.MaxConns
	}
	if config.MinConns > 0 {
		poolConfig.MinConns = config.MinConns
	}
	if config.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = config.MaxConnLifetime
	}
	if config.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = config.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	ledger := NewWithPool(pool, config.Table)
	ledger.owned = true
	return ledger, nil
}

// NewWithPool creates a ledger on an existing pool. The caller keeps
// ownership of the pool.
func NewWithPool(pool *pgxpool.Pool, table string) *Ledger {
	if table == "" {
		table = DefaultConfig().Table
	}
	return &Ledger{pool: pool, table: table}
}

// EnsureSchema creates the ledger table if it does not exist.
func (l *Ledger) EnsureSchema(ctx context.Context) error {
	_, err := l.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id          TEXT PRIMARY KEY,
			customer_id TEXT NOT NULL DEFAULT '',
			kind        TEXT NOT NULL,
			status      TEXT NOT NULL,
			amount      BIGINT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, l.table))
	if err != nil {
		return fmt.Errorf("failed to create ledger table: %w", err)
	}
	return nil
}

// Record appends a settled payment to the ledger. Conflicting ids are
// ignored so provider webhook retries stay idempotent.
func (l *Ledger) Record(ctx context.Context, id, customerID, kind, status string, amount int64, createdAt time.Time) error {
	_, err := l.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, customer_id, kind, status, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`, l.table),
		id, customerID, kind, status, amount, createdAt)
	if err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	return nil
}

// RevenueTotals returns the pre-aggregated revenue figures, in minor
// currency units. Only succeeded payments count.
func (l *Ledger) RevenueTotals(ctx context.Context) (revmetrics.RevenueTotals, error) {
	var totals revmetrics.RevenueTotals
	err := l.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT
			COALESCE(SUM(amount), 0),
			COALESCE(SUM(amount) FILTER (WHERE kind = $1), 0),
			COALESCE(SUM(amount) FILTER (WHERE kind = $2), 0)
		FROM %s
		WHERE status = $3`, l.table),
		kindOneTime, kindCreditTopUp, statusSucceeded,
	).Scan(&totals.Total, &totals.OneTime, &totals.CreditTopUp)
	if err != nil {
		return revmetrics.RevenueTotals{}, fmt.Errorf("%w: %v", revmetrics.ErrLedgerUnavailable, err)
	}
	return totals, nil
}

// Close closes the connection pool if this ledger created it.
func (l *Ledger) Close() {
	if l.owned && l.pool != nil {
		l.pool.Close()
	}
}
