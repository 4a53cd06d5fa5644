package revmetrics

import (
	"context"
	"errors"
	"strings"
)

// PaymentKind is the closed classification of a succeeded payment
// event. Every payment falls into exactly one kind.
type PaymentKind string

const (
	// KindSubscription is a payment settling a subscription invoice.
	KindSubscription PaymentKind = "subscription"
	// KindOneTime is a standalone purchase (photo packs, upgrades).
	KindOneTime PaymentKind = "one_time"
	// KindCreditTopUp is a purchase of in-app generation credits.
	KindCreditTopUp PaymentKind = "credit_topup"
)

// Metadata keys the checkout flow stamps onto payments.
const (
	MetadataProductType = "product_type"
	MetadataPackID      = "pack_id"

	productTypeCredits    = "credits"
	productTypeMembership = "membership"

	creditMarker = "credit"
)

// CreditTagged reports whether the payment's metadata marks it as a
// credit top-up: a credits product type, a pack id containing
// "credit", or a description mentioning credits.
func (p *Payment) CreditTagged() bool {
	if strings.EqualFold(p.Metadata[MetadataProductType], productTypeCredits) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Metadata[MetadataPackID]), creditMarker) {
		return true
	}
	return strings.Contains(strings.ToLower(p.Description), creditMarker)
}

// SubscriptionTagged reports whether metadata explicitly marks the
// payment as a membership charge.
func (p *Payment) SubscriptionTagged() bool {
	return strings.EqualFold(p.Metadata[MetadataProductType], productTypeMembership)
}

// Classifier decides the kind of a payment event. The credit check is
// metadata-only and short-circuits everything else; a subscription is
// only ever confirmed by resolving the linked invoice and finding a
// subscription reference on it.
type Classifier struct {
	invoices InvoiceResolver
	logger   Logger
}

// NewClassifier creates a classifier backed by the given invoice
// resolver.
func NewClassifier(invoices InvoiceResolver, logger Logger) *Classifier {
	if logger == nil {
		logger = &NoopLogger{}
	}
	return &Classifier{invoices: invoices, logger: logger}
}

// Classify returns the kind of payment. Precedence is fixed:
// credit top-up, then invoice-confirmed subscription, then one-time.
//
// When the invoice lookup fails the payment counts as one-time rather
// than being dropped: an ambiguous payment understates subscription
// revenue but is never silently lost.
func (c *Classifier) Classify(ctx context.Context, payment *Payment) PaymentKind {
	if payment.CreditTagged() {
		return KindCreditTopUp
	}

	if !payment.SubscriptionTagged() && payment.InvoiceID == "" && payment.PaymentIntentID == "" {
		return KindOneTime
	}

	invoice, err := c.invoices.Invoice(ctx, payment)
	if err != nil {
		if !errors.Is(err, ErrNoInvoice) {
			c.logger.Warn("invoice lookup failed, counting payment as one-time",
				Field{"payment", payment.ID},
				Field{"error", err},
			)
		}
		return KindOneTime
	}
	if invoice == nil || invoice.SubscriptionID == "" {
		return KindOneTime
	}
	return KindSubscription
}
