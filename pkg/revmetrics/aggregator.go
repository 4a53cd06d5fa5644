package revmetrics

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Metric names used in logs and observability counters.
const (
	MetricActiveSubscriptions = "active_subscriptions"
	MetricTotalSubscriptions  = "total_subscriptions"
	MetricCanceledInWindow    = "canceled_in_window"
	MetricMRR                 = "mrr"
	MetricTotalRevenue        = "total_revenue"
	MetricOneTimeRevenue      = "one_time_revenue"
	MetricCreditRevenue       = "credit_revenue"
	MetricNewSubscribers      = "new_subscribers"
	MetricNewOneTimeBuyers    = "new_one_time_buyers"
)

// Budgets are the per-collector soft-timeout budgets. Collectors that
// walk payment events get the largest budget since those collections
// grow without bound.
type Budgets struct {
	// SubscriptionCount bounds the plain subscription counters.
	SubscriptionCount time.Duration

	// SubscriptionScan bounds collectors that read line items from
	// every subscription (MRR, total count).
	SubscriptionScan time.Duration

	// PaymentScan bounds collectors that walk charges or payment
	// intents.
	PaymentScan time.Duration
}

// DefaultBudgets returns the budgets the dashboard ships with.
func DefaultBudgets() Budgets {
	return Budgets{
		SubscriptionCount: 10 * time.Second,
		SubscriptionScan:  15 * time.Second,
		PaymentScan:       30 * time.Second,
	}
}

// Config holds aggregator configuration.
type Config struct {
	// Window is the lookback for windowed counters (cancellations, new
	// subscribers, new buyers). Default: 30 days.
	Window time.Duration

	// MaxConcurrency bounds the collector fan-out. Default: one
	// goroutine per collector.
	MaxConcurrency int

	// Budgets are the per-collector timeout budgets.
	Budgets Budgets

	// Logger receives structured logs. Default: no-op.
	Logger Logger

	// Metrics receives observability counters. Default: no-op.
	Metrics Metrics
}

const collectorCount = 9

// Aggregator computes one full metrics snapshot by fanning out all
// collectors concurrently. Collectors are independent, read-only, and
// individually fenced: one failing or timing out defaults its own
// field to zero and never disturbs the others.
type Aggregator struct {
	provider   Provider
	ledger     Ledger
	classifier *Classifier

	window         time.Duration
	maxConcurrency int
	budgets        Budgets
	logger         Logger
	metrics        Metrics
}

// NewAggregator creates an aggregator over the given provider and
// ledger. The ledger may be nil, in which case monetary totals always
// take the full provider walk.
func NewAggregator(provider Provider, ledger Ledger, config Config) (*Aggregator, error) {
	if provider == nil {
		return nil, ErrProviderNotConfigured
	}

	if config.Window <= 0 {
		config.Window = 30 * 24 * time.Hour
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = collectorCount
	}
	zero := Budgets{}
	if config.Budgets == zero {
		config.Budgets = DefaultBudgets()
	}
	if config.Logger == nil {
		config.Logger = &NoopLogger{}
	}
	if config.Metrics == nil {
		config.Metrics = &NoopMetrics{}
	}

	return &Aggregator{
		provider:       provider,
		ledger:         ledger,
		classifier:     NewClassifier(provider, config.Logger),
		window:         config.Window,
		maxConcurrency: config.MaxConcurrency,
		budgets:        config.Budgets,
		logger:         config.Logger,
		metrics:        config.Metrics,
	}, nil
}

// Collect runs every collector concurrently and merges the settled
// values into one snapshot. It never fails: a collector that errors or
// exceeds its budget contributes its zero default, so the returned
// snapshot is always fully populated.
func (a *Aggregator) Collect(ctx context.Context) *Snapshot {
	start := time.Now()
	since := start.Add(-a.window)
	snapshot := &Snapshot{GeneratedAt: start.UTC()}

	var g errgroup.Group
	g.SetLimit(a.maxConcurrency)

	g.Go(func() error {
		snapshot.ActiveSubscriptions = runCollector(ctx, a, MetricActiveSubscriptions,
			a.budgets.SubscriptionCount, 0, a.activeSubscriptionCount)
		return nil
	})
	g.Go(func() error {
		snapshot.TotalSubscriptions = runCollector(ctx, a, MetricTotalSubscriptions,
			a.budgets.SubscriptionScan, 0, a.totalSubscriptionCount)
		return nil
	})
	g.Go(func() error {
		snapshot.CanceledInWindow = runCollector(ctx, a, MetricCanceledInWindow,
			a.budgets.SubscriptionCount, 0, func(ctx context.Context) (int, error) {
				return a.canceledInWindow(ctx, since)
			})
		return nil
	})
	g.Go(func() error {
		mrr := runCollector(ctx, a, MetricMRR,
			a.budgets.SubscriptionScan, decimal.Zero, a.monthlyRecurringRevenue)
		snapshot.MRR = mrr.Round(0).IntPart()
		return nil
	})
	g.Go(func() error {
		total := runCollector(ctx, a, MetricTotalRevenue,
			a.budgets.PaymentScan, 0, a.totalRevenue)
		snapshot.TotalRevenue = majorUnits(total)
		return nil
	})
	g.Go(func() error {
		oneTime := runCollector(ctx, a, MetricOneTimeRevenue,
			a.budgets.PaymentScan, 0, a.oneTimeRevenue)
		snapshot.OneTimeRevenue = majorUnits(oneTime)
		return nil
	})
	g.Go(func() error {
		credit := runCollector(ctx, a, MetricCreditRevenue,
			a.budgets.PaymentScan, 0, a.creditRevenue)
		snapshot.CreditRevenue = majorUnits(credit)
		return nil
	})
	g.Go(func() error {
		snapshot.NewSubscribers = runCollector(ctx, a, MetricNewSubscribers,
			a.budgets.SubscriptionCount, 0, func(ctx context.Context) (int, error) {
				return a.newSubscribers(ctx, since)
			})
		return nil
	})
	g.Go(func() error {
		snapshot.NewOneTimeBuyers = runCollector(ctx, a, MetricNewOneTimeBuyers,
			a.budgets.PaymentScan, 0, func(ctx context.Context) (int, error) {
				return a.newOneTimeBuyers(ctx, since)
			})
		return nil
	})

	// Collectors never return errors; failures are absorbed per field.
	_ = g.Wait()

	a.metrics.RecordSnapshotBuild(time.Since(start))
	return snapshot
}

// runCollector fences one collector with its timeout budget and maps
// any failure to the collector's default value. Timeouts log as
// warnings, provider errors as errors; neither surfaces to the caller.
func runCollector[T any](ctx context.Context, a *Aggregator, metric string,
	budget time.Duration, fallback T, op func(context.Context) (T, error),
) T {
	start := time.Now()
	value, err := withDefault(ctx, budget, fallback, op)
	a.metrics.RecordCollectorDuration(metric, time.Since(start))

	switch {
	case errors.Is(err, ErrCollectorTimeout):
		a.logger.Warn("metric collector exceeded its budget",
			Field{"metric", metric},
			Field{"budget", budget},
		)
		a.metrics.RecordCollectorFailure(metric, "timeout")
		return fallback
	case err != nil:
		a.logger.Error("metric collector failed",
			Field{"metric", metric},
			Field{"error", err},
		)
		a.metrics.RecordCollectorFailure(metric, "error")
		return fallback
	}
	return value
}

// majorUnits converts a minor-unit sum to whole major units, rounding
// half away from zero. Summation stays in integer minor units; the
// conversion happens only here at the snapshot boundary.
func majorUnits(minor int64) int64 {
	return decimal.NewFromInt(minor).Div(minorUnitsPerMajor).Round(0).IntPart()
}
