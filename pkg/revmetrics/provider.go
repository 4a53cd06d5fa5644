package revmetrics

import (
	"context"
	"iter"
	"time"
)

// InvoiceResolver looks up the invoice a payment settles, if any.
// Implementations return ErrNoInvoice when the payment is not tied to
// an invoice.
type InvoiceResolver interface {
	Invoice(ctx context.Context, payment *Payment) (*Invoice, error)
}

// Provider is the read-only view of the external billing provider.
// Listings are cursor-paginated by the implementation and surfaced as
// item streams in the provider's default reverse-chronological order;
// a stream yields a non-nil error at most once, as its final element.
//
// The provider is passed in explicitly wherever it is needed so tests
// can substitute fakes without global state.
type Provider interface {
	// Subscriptions streams all subscriptions matching the filter.
	Subscriptions(ctx context.Context, filter SubscriptionFilter) iter.Seq2[*Subscription, error]

	// Charges streams charge events matching the filter.
	Charges(ctx context.Context, filter PaymentFilter) iter.Seq2[*Payment, error]

	// PaymentIntents streams payment-intent events matching the filter.
	PaymentIntents(ctx context.Context, filter PaymentFilter) iter.Seq2[*Payment, error]

	InvoiceResolver
}

// Ledger is the local relational store of pre-aggregated revenue
// figures. It is populated by an out-of-band ingestion pipeline and
// may lag behind the provider or be empty on fresh deployments.
type Ledger interface {
	RevenueTotals(ctx context.Context) (RevenueTotals, error)
}

// SnapshotStore is the shared key-value cache for metrics snapshots.
// Get returns ErrSnapshotNotFound on a miss or an expired entry;
// expiry is checked at read time, there is no eviction loop.
type SnapshotStore interface {
	Get(ctx context.Context, key string) (*Snapshot, error)
	Set(ctx context.Context, key string, snapshot *Snapshot, ttl time.Duration) error
}
