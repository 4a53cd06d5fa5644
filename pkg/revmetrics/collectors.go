package revmetrics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// activeSubscriptionCount counts subscriptions currently billing.
func (a *Aggregator) activeSubscriptionCount(ctx context.Context) (int, error) {
	return Count(a.provider.Subscriptions(ctx, SubscriptionFilter{Status: StatusActive}))
}

// totalSubscriptionCount counts subscriptions in every state.
func (a *Aggregator) totalSubscriptionCount(ctx context.Context) (int, error) {
	return Count(a.provider.Subscriptions(ctx, SubscriptionFilter{}))
}

// canceledInWindow counts subscriptions whose cancellation falls
// inside the lookback window. The provider cannot filter on
// cancellation time, so the cut is client-side; the walk stops at the
// first cancellation older than the window since listings come back
// newest-first.
func (a *Aggregator) canceledInWindow(ctx context.Context, since time.Time) (int, error) {
	subs, err := CollectWhile(
		a.provider.Subscriptions(ctx, SubscriptionFilter{Status: StatusCanceled}),
		func(s *Subscription) bool {
			return s.CanceledAt == nil || !s.CanceledAt.Before(since)
		},
	)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, s := range subs {
		if s.CanceledAt != nil {
			n++
		}
	}
	return n, nil
}

// monthlyRecurringRevenue sums every recurring line item on active
// subscriptions, normalized to a monthly amount in major units.
func (a *Aggregator) monthlyRecurringRevenue(ctx context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	filter := SubscriptionFilter{Status: StatusActive, ExpandItems: true}
	for sub, err := range a.provider.Subscriptions(ctx, filter) {
		if err != nil {
			return decimal.Zero, err
		}
		for _, item := range sub.Items {
			if !item.Recurring {
				continue
			}
			quantity := item.Quantity
			if quantity <= 0 {
				quantity = 1
			}
			amount := MonthlyAmount(item.UnitAmount, item.Interval)
			total = total.Add(amount.Mul(decimal.NewFromInt(quantity)))
		}
	}
	return total, nil
}

// totalRevenue is the all-time sum of succeeded charges, in minor
// units. The ledger answers when it can; otherwise the full charge
// history is walked.
func (a *Aggregator) totalRevenue(ctx context.Context) (int64, error) {
	return a.ledgerFirst(ctx, MetricTotalRevenue,
		func(t RevenueTotals) int64 { return t.Total },
		a.walkTotalRevenue)
}

func (a *Aggregator) walkTotalRevenue(ctx context.Context) (int64, error) {
	var sum int64
	for payment, err := range a.provider.Charges(ctx, PaymentFilter{}) {
		if err != nil {
			return 0, err
		}
		if payment.Succeeded {
			sum += payment.Amount
		}
	}
	return sum, nil
}

// oneTimeRevenue is the all-time sum of succeeded one-time purchases,
// excluding credit top-ups and subscription payments.
func (a *Aggregator) oneTimeRevenue(ctx context.Context) (int64, error) {
	return a.ledgerFirst(ctx, MetricOneTimeRevenue,
		func(t RevenueTotals) int64 { return t.OneTime },
		a.walkOneTimeRevenue)
}

func (a *Aggregator) walkOneTimeRevenue(ctx context.Context) (int64, error) {
	var sum int64
	for payment, err := range a.provider.PaymentIntents(ctx, PaymentFilter{}) {
		if err != nil {
			return 0, err
		}
		if !payment.Succeeded {
			continue
		}
		if a.classifier.Classify(ctx, payment) == KindOneTime {
			sum += payment.Amount
		}
	}
	return sum, nil
}

// creditRevenue is the all-time sum of succeeded credit top-ups.
func (a *Aggregator) creditRevenue(ctx context.Context) (int64, error) {
	return a.ledgerFirst(ctx, MetricCreditRevenue,
		func(t RevenueTotals) int64 { return t.CreditTopUp },
		a.walkCreditRevenue)
}

func (a *Aggregator) walkCreditRevenue(ctx context.Context) (int64, error) {
	var sum int64
	for payment, err := range a.provider.PaymentIntents(ctx, PaymentFilter{}) {
		if err != nil {
			return 0, err
		}
		// The credit check is metadata-only, so the full classifier
		// (and its invoice lookups) is unnecessary here.
		if payment.Succeeded && payment.CreditTagged() {
			sum += payment.Amount
		}
	}
	return sum, nil
}

// newSubscribers counts subscriptions created inside the window,
// regardless of their current state.
func (a *Aggregator) newSubscribers(ctx context.Context, since time.Time) (int, error) {
	return Count(a.provider.Subscriptions(ctx, SubscriptionFilter{CreatedAfter: since}))
}

// newOneTimeBuyers counts distinct customers who made a one-time
// purchase inside the window. The same customer buying twice counts
// once.
func (a *Aggregator) newOneTimeBuyers(ctx context.Context, since time.Time) (int, error) {
	buyers := make(map[string]struct{})
	for payment, err := range a.provider.Charges(ctx, PaymentFilter{CreatedAfter: since}) {
		if err != nil {
			return 0, err
		}
		if !payment.Succeeded || payment.CustomerID == "" {
			continue
		}
		if a.classifier.Classify(ctx, payment) != KindOneTime {
			continue
		}
		buyers[payment.CustomerID] = struct{}{}
	}
	return len(buyers), nil
}

// ledgerFirst prefers the pre-aggregated local ledger for a monetary
// metric and falls back to the authoritative provider walk when the
// ledger errors or reports zero. A positive ledger value wins outright;
// zero is indistinguishable from "not yet populated" and always triggers
// the walk, a known accuracy gap accepted for freshness.
func (a *Aggregator) ledgerFirst(ctx context.Context, metric string,
	pick func(RevenueTotals) int64, walk func(context.Context) (int64, error),
) (int64, error) {
	if a.ledger != nil {
		totals, err := a.ledger.RevenueTotals(ctx)
		if err == nil {
			if value := pick(totals); value > 0 {
				return value, nil
			}
			a.logger.Info("ledger reported zero, walking provider",
				Field{"metric", metric},
			)
		} else {
			a.logger.Info("ledger query failed, walking provider",
				Field{"metric", metric},
				Field{"error", err},
			)
		}
		a.metrics.RecordLedgerFallback(metric)
	}
	return walk(ctx)
}
