package revmetrics

import (
	"time"
)

// SubscriptionStatus is the closed set of subscription states this
// package distinguishes. Anything the provider reports beyond active
// or canceled collapses into StatusOther.
type SubscriptionStatus string

const (
	// StatusActive marks a subscription that is currently billing.
	StatusActive SubscriptionStatus = "active"
	// StatusCanceled marks a subscription that has been terminated.
	StatusCanceled SubscriptionStatus = "canceled"
	// StatusOther covers every remaining provider state (trialing, past_due, ...).
	StatusOther SubscriptionStatus = "other"
)

// Interval is the billing cadence attached to a recurring line item.
type Interval string

const (
	IntervalDay   Interval = "day"
	IntervalWeek  Interval = "week"
	IntervalMonth Interval = "month"
	IntervalYear  Interval = "year"
)

// SubscriptionItem is a single line item on a subscription.
// UnitAmount is in minor currency units (cents).
type SubscriptionItem struct {
	Recurring  bool
	UnitAmount int64
	Quantity   int64
	Interval   Interval
}

// Subscription is the provider-owned subscription resource, read-only
// to this package.
type Subscription struct {
	ID         string
	Status     SubscriptionStatus
	Created    time.Time
	CanceledAt *time.Time
	Items      []SubscriptionItem
}

// Payment is a charge or payment-intent event from the billing
// provider. Amount is in minor currency units. Metadata carries the
// free-form tags used for classification.
type Payment struct {
	ID              string
	Amount          int64
	Succeeded       bool
	Created         time.Time
	CustomerID      string
	InvoiceID       string
	PaymentIntentID string
	Description     string
	Metadata        map[string]string
}

// Invoice is fetched lazily during classification, only to check
// whether a payment settles a subscription-backed invoice.
type Invoice struct {
	ID             string
	SubscriptionID string
}

// RevenueTotals are the pre-aggregated figures the local ledger
// maintains, in minor currency units.
type RevenueTotals struct {
	Total       int64
	OneTime     int64
	CreditTopUp int64
}

// Snapshot is one full aggregation result. Monetary fields are in
// whole major currency units, rounded at the snapshot boundary.
// A snapshot is immutable once produced; a refresh supersedes it.
type Snapshot struct {
	ActiveSubscriptions int   `json:"active_subscriptions"`
	TotalSubscriptions  int   `json:"total_subscriptions"`
	CanceledInWindow    int   `json:"canceled_in_window"`
	MRR                 int64 `json:"mrr"`
	TotalRevenue        int64 `json:"total_revenue"`
	OneTimeRevenue      int64 `json:"one_time_revenue"`
	CreditRevenue       int64 `json:"credit_revenue"`
	NewSubscribers      int   `json:"new_subscribers"`
	NewOneTimeBuyers    int   `json:"new_one_time_buyers"`

	GeneratedAt time.Time `json:"generated_at"`
	Cached      bool      `json:"cached"`
}

// SubscriptionFilter narrows a subscription listing. The zero value
// lists everything.
type SubscriptionFilter struct {
	// Status limits the listing to one state. Empty lists all states.
	Status SubscriptionStatus

	// CreatedAfter is a creation-time lower bound. Zero means unbounded.
	CreatedAfter time.Time

	// ExpandItems requests line-item prices on each subscription.
	ExpandItems bool
}

// PaymentFilter narrows a charge or payment-intent listing.
// The provider exposes no status filter for payment events; status is
// read per item.
type PaymentFilter struct {
	// CreatedAfter is a creation-time lower bound. Zero means unbounded.
	CreatedAfter time.Time
}
