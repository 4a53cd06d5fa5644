package revmetrics

import (
	"context"
	"iter"
	"sync"
	"time"
)

// fakeProvider serves canned data through the same cursor-paged reads
// a real billing backend would, so collector tests exercise the walker
// as well. Slices must be ordered newest-first, matching provider
// ordering guarantees.
type fakeProvider struct {
	mu sync.Mutex

	subs     []*Subscription
	charges  []*Payment
	intents  []*Payment
	invoices map[string]*Invoice

	pageSize int64

	subErr     error
	chargeErr  error
	intentErr  error
	invoiceErr error

	chargeDelay time.Duration

	subCalls     int
	chargeCalls  int
	intentCalls  int
	invoiceCalls int
}

func (f *fakeProvider) limit() int64 {
	if f.pageSize > 0 {
		return f.pageSize
	}
	return 2
}

func (f *fakeProvider) Subscriptions(ctx context.Context, filter SubscriptionFilter) iter.Seq2[*Subscription, error] {
	f.mu.Lock()
	f.subCalls++
	f.mu.Unlock()

	var matched []*Subscription
	for _, s := range f.subs {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if !filter.CreatedAfter.IsZero() && s.Created.Before(filter.CreatedAfter) {
			continue
		}
		matched = append(matched, s)
	}
	return Pages(ctx, pageFuncFromSlice(matched, f.subErr), f.limit())
}

func (f *fakeProvider) Charges(ctx context.Context, filter PaymentFilter) iter.Seq2[*Payment, error] {
	f.mu.Lock()
	f.chargeCalls++
	f.mu.Unlock()

	fetch := pageFuncFromSlice(f.filterPayments(f.charges, filter), f.chargeErr)
	if f.chargeDelay > 0 {
		inner := fetch
		fetch = func(ctx context.Context, cursor string, limit int64) (Page[*Payment], error) {
			select {
			case <-time.After(f.chargeDelay):
			case <-ctx.Done():
				return Page[*Payment]{}, ctx.Err()
			}
			return inner(ctx, cursor, limit)
		}
	}
	return Pages(ctx, fetch, f.limit())
}

func (f *fakeProvider) PaymentIntents(ctx context.Context, filter PaymentFilter) iter.Seq2[*Payment, error] {
	f.mu.Lock()
	f.intentCalls++
	f.mu.Unlock()

	return Pages(ctx, pageFuncFromSlice(f.filterPayments(f.intents, filter), f.intentErr), f.limit())
}

func (f *fakeProvider) filterPayments(payments []*Payment, filter PaymentFilter) []*Payment {
	var matched []*Payment
	for _, p := range payments {
		if !filter.CreatedAfter.IsZero() && p.Created.Before(filter.CreatedAfter) {
			continue
		}
		matched = append(matched, p)
	}
	return matched
}

func (f *fakeProvider) Invoice(_ context.Context, payment *Payment) (*Invoice, error) {
	f.mu.Lock()
	f.invoiceCalls++
	f.mu.Unlock()

	if f.invoiceErr != nil {
		return nil, f.invoiceErr
	}
	if payment.InvoiceID == "" {
		return nil, ErrNoInvoice
	}
	inv, ok := f.invoices[payment.InvoiceID]
	if !ok {
		return nil, ErrNoInvoice
	}
	return inv, nil
}

type fakeLedger struct {
	mu     sync.Mutex
	totals RevenueTotals
	err    error
	calls  int
}

func (f *fakeLedger) RevenueTotals(context.Context) (RevenueTotals, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return RevenueTotals{}, f.err
	}
	return f.totals, nil
}

// daysAgo keeps test fixtures readable.
func daysAgo(n int) time.Time {
	return time.Now().UTC().Add(-time.Duration(n) * 24 * time.Hour)
}

func daysAgoPtr(n int) *time.Time {
	t := daysAgo(n)
	return &t
}

// testProvider is the canonical dataset most aggregator tests share:
// three active subscriptions with mixed cadences, two cancellations
// (one inside the 30-day window), and a spread of one-time, credit,
// and subscription payments.
func testProvider() *fakeProvider {
	return &fakeProvider{
		subs: []*Subscription{
			{
				ID: "sub_1", Status: StatusActive, Created: daysAgo(5),
				Items: []SubscriptionItem{{Recurring: true, UnitAmount: 2000, Interval: IntervalMonth}},
			},
			{
				ID: "sub_3", Status: StatusActive, Created: daysAgo(10),
				Items: []SubscriptionItem{{Recurring: true, UnitAmount: 500, Interval: IntervalWeek}},
			},
			{
				ID: "sub_2", Status: StatusActive, Created: daysAgo(40),
				Items: []SubscriptionItem{{Recurring: true, UnitAmount: 24000, Interval: IntervalYear}},
			},
			{
				ID: "sub_4", Status: StatusCanceled, Created: daysAgo(60), CanceledAt: daysAgoPtr(3),
			},
			{
				ID: "sub_5", Status: StatusCanceled, Created: daysAgo(90), CanceledAt: daysAgoPtr(45),
			},
		},
		charges: []*Payment{
			{ID: "ch_3", Amount: 2000, Succeeded: true, Created: daysAgo(1), CustomerID: "cus_2",
				Metadata: map[string]string{MetadataProductType: "credits"}},
			{ID: "ch_1", Amount: 5000, Succeeded: true, Created: daysAgo(2), CustomerID: "cus_1"},
			{ID: "ch_4", Amount: 1500, Succeeded: false, Created: daysAgo(4), CustomerID: "cus_3"},
			{ID: "ch_2", Amount: 3000, Succeeded: true, Created: daysAgo(9), CustomerID: "cus_1"},
			{ID: "ch_5", Amount: 10000, Succeeded: true, Created: daysAgo(20), CustomerID: "cus_4",
				InvoiceID: "in_5", PaymentIntentID: "pi_5"},
		},
		intents: []*Payment{
			{ID: "pi_1", Amount: 4000, Succeeded: true, Created: daysAgo(3), CustomerID: "cus_1"},
			{ID: "pi_2", Amount: 2500, Succeeded: true, Created: daysAgo(6), CustomerID: "cus_2",
				Metadata: map[string]string{MetadataPackID: "credit_pack_large"}},
			{ID: "pi_3", Amount: 6000, Succeeded: true, Created: daysAgo(8), CustomerID: "cus_4",
				InvoiceID: "in_5", PaymentIntentID: "pi_3"},
			{ID: "pi_4", Amount: 1000, Succeeded: false, Created: daysAgo(12), CustomerID: "cus_5"},
		},
		invoices: map[string]*Invoice{
			"in_5": {ID: "in_5", SubscriptionID: "sub_2"},
		},
	}
}
