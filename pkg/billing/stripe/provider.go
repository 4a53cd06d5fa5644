// Package stripe implements the revmetrics.Provider interface against
// the Stripe API.
package stripe

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/stripe/stripe-go/v83"

	"github.com/lumoshot/revmetrics/pkg/revmetrics"
)

const (
	defaultPageSize = 100

	// Without an explicit status the subscriptions endpoint hides
	// canceled subscriptions, so exhaustive listings must ask for all.
	subscriptionStatusAll = "all"
)

// Config holds Stripe provider configuration.
type Config struct {
	// APIKey is the Stripe secret key (required).
	APIKey string

	// BackendURL overrides the Stripe API base URL. Used by tests to
	// point the client at a local fake.
	BackendURL string

	// PageSize bounds each list page. Default: 100 (Stripe's maximum).
	PageSize int64

	// Logger receives structured logs. Default: no-op.
	Logger revmetrics.Logger
}

// Provider implements revmetrics.Provider for Stripe.
type Provider struct {
	client   *stripe.Client
	pageSize int64
	logger   revmetrics.Logger
}

// NewProvider creates a new Stripe billing provider.
func NewProvider(config Config) (*Provider, error) {
	apiKey := strings.TrimSpace(config.APIKey)
	if apiKey == "" {
		return nil, revmetrics.ErrProviderNotConfigured
	}

	pageSize := config.PageSize
	if pageSize <= 0 || pageSize > defaultPageSize {
		pageSize = defaultPageSize
	}

	logger := config.Logger
	if logger == nil {
		logger = &revmetrics.NoopLogger{}
	}

	var opts []stripe.ClientOption
	if config.BackendURL != "" {
		backends := stripe.NewBackendsWithConfig(&stripe.BackendConfig{
			URL: stripe.String(config.BackendURL),
		})
		opts = append(opts, stripe.WithBackends(backends))
	}

	return &Provider{
		client:   stripe.NewClient(apiKey, opts...),
		pageSize: pageSize,
		logger:   logger,
	}, nil
}

// Subscriptions streams subscriptions matching the filter, letting the
// client iterator follow cursors until Stripe reports no more pages.
func (p *Provider) Subscriptions(ctx context.Context, filter revmetrics.SubscriptionFilter) iter.Seq2[*revmetrics.Subscription, error] {
	return func(yield func(*revmetrics.Subscription, error) bool) {
		params := &stripe.SubscriptionListParams{}
		params.Limit = stripe.Int64(p.pageSize)
		if filter.Status != "" {
			params.Status = stripe.String(string(filter.Status))
		} else {
			params.Status = stripe.String(subscriptionStatusAll)
		}
		if !filter.CreatedAfter.IsZero() {
			params.CreatedRange = &stripe.RangeQueryParams{
				GreaterThanOrEqual: filter.CreatedAfter.Unix(),
			}
		}
		if filter.ExpandItems {
			params.AddExpand("data.items.data.price")
		}

		for sub, err := range p.client.V1Subscriptions.List(ctx, params) {
			if err != nil {
				yield(nil, fmt.Errorf("list subscriptions: %w", err))
				return
			}
			if !yield(toSubscription(sub), nil) {
				return
			}
		}
	}
}

// Charges streams charge events matching the filter. Stripe exposes no
// status filter on this endpoint; callers read status per item.
func (p *Provider) Charges(ctx context.Context, filter revmetrics.PaymentFilter) iter.Seq2[*revmetrics.Payment, error] {
	return func(yield func(*revmetrics.Payment, error) bool) {
		params := &stripe.ChargeListParams{}
		params.Limit = stripe.Int64(p.pageSize)
		if !filter.CreatedAfter.IsZero() {
			params.CreatedRange = &stripe.RangeQueryParams{
				GreaterThanOrEqual: filter.CreatedAfter.Unix(),
			}
		}

		for charge, err := range p.client.V1Charges.List(ctx, params) {
			if err != nil {
				yield(nil, fmt.Errorf("list charges: %w", err))
				return
			}
			if !yield(toPaymentFromCharge(charge), nil) {
				return
			}
		}
	}
}

// PaymentIntents streams payment-intent events matching the filter.
func (p *Provider) PaymentIntents(ctx context.Context, filter revmetrics.PaymentFilter) iter.Seq2[*revmetrics.Payment, error] {
	return func(yield func(*revmetrics.Payment, error) bool) {
		params := &stripe.PaymentIntentListParams{}
		params.Limit = stripe.Int64(p.pageSize)
		if !filter.CreatedAfter.IsZero() {
			params.CreatedRange = &stripe.RangeQueryParams{
				GreaterThanOrEqual: filter.CreatedAfter.Unix(),
			}
		}

		for intent, err := range p.client.V1PaymentIntents.List(ctx, params) {
			if err != nil {
				yield(nil, fmt.Errorf("list payment intents: %w", err))
				return
			}
			if !yield(toPaymentFromIntent(intent), nil) {
				return
			}
		}
	}
}

// Invoice resolves the invoice a payment settles. Current API versions
// no longer carry an invoice pointer on charges, so when the payment
// has no invoice id the linkage goes through the invoice-payments
// listing keyed by payment intent.
func (p *Provider) Invoice(ctx context.Context, payment *revmetrics.Payment) (*revmetrics.Invoice, error) {
	invoiceID := payment.InvoiceID
	if invoiceID == "" && payment.PaymentIntentID != "" {
		var err error
		invoiceID, err = p.invoiceIDForPaymentIntent(ctx, payment.PaymentIntentID)
		if err != nil {
			return nil, err
		}
	}
	if invoiceID == "" {
		return nil, revmetrics.ErrNoInvoice
	}

	invoice, err := p.client.V1Invoices.Retrieve(ctx, invoiceID, nil)
	if err != nil {
		return nil, fmt.Errorf("retrieve invoice %s: %w", invoiceID, err)
	}

	return &revmetrics.Invoice{
		ID:             invoice.ID,
		SubscriptionID: invoiceSubscriptionID(invoice),
	}, nil
}

func (p *Provider) invoiceIDForPaymentIntent(ctx context.Context, paymentIntentID string) (string, error) {
	params := &stripe.InvoicePaymentListParams{
		Payment: &stripe.InvoicePaymentListPaymentParams{
			PaymentIntent: stripe.String(paymentIntentID),
			Type:          stripe.String("payment_intent"),
		},
	}
	params.Limit = stripe.Int64(1)

	for payment, err := range p.client.V1InvoicePayments.List(ctx, params) {
		if err != nil {
			return "", fmt.Errorf("list invoice payments: %w", err)
		}
		if payment.Invoice != nil {
			return payment.Invoice.ID, nil
		}
	}
	return "", nil
}
