package stripe

import (
	"encoding/json"
	"time"

	"github.com/stripe/stripe-go/v83"

	"github.com/lumoshot/revmetrics/pkg/revmetrics"
)

func toSubscription(sub *stripe.Subscription) *revmetrics.Subscription {
	out := &revmetrics.Subscription{
		ID:      sub.ID,
		Status:  toStatus(sub.Status),
		Created: time.Unix(sub.Created, 0).UTC(),
	}
	if sub.CanceledAt > 0 {
		canceledAt := time.Unix(sub.CanceledAt, 0).UTC()
		out.CanceledAt = &canceledAt
	}
	if sub.Items != nil {
		for _, item := range sub.Items.Data {
			if item.Price == nil {
				continue
			}
			mapped := revmetrics.SubscriptionItem{
				UnitAmount: item.Price.UnitAmount,
				Quantity:   item.Quantity,
			}
			if item.Price.Recurring != nil {
				mapped.Recurring = true
				mapped.Interval = revmetrics.Interval(item.Price.Recurring.Interval)
			}
			out.Items = append(out.Items, mapped)
		}
	}
	return out
}

func toStatus(status stripe.SubscriptionStatus) revmetrics.SubscriptionStatus {
	switch status {
	case stripe.SubscriptionStatusActive:
		return revmetrics.StatusActive
	case stripe.SubscriptionStatusCanceled:
		return revmetrics.StatusCanceled
	default:
		return revmetrics.StatusOther
	}
}

func toPaymentFromCharge(charge *stripe.Charge) *revmetrics.Payment {
	out := &revmetrics.Payment{
		ID:          charge.ID,
		Amount:      charge.Amount,
		Succeeded:   charge.Status == stripe.ChargeStatusSucceeded,
		Created:     time.Unix(charge.Created, 0).UTC(),
		Description: charge.Description,
		Metadata:    charge.Metadata,
	}
	if charge.Customer != nil {
		out.CustomerID = charge.Customer.ID
	}
	if charge.PaymentIntent != nil {
		out.PaymentIntentID = charge.PaymentIntent.ID
	}
	return out
}

func toPaymentFromIntent(intent *stripe.PaymentIntent) *revmetrics.Payment {
	out := &revmetrics.Payment{
		ID:              intent.ID,
		Amount:          intent.Amount,
		Succeeded:       intent.Status == stripe.PaymentIntentStatusSucceeded,
		Created:         time.Unix(intent.Created, 0).UTC(),
		PaymentIntentID: intent.ID,
		Description:     intent.Description,
		Metadata:        intent.Metadata,
	}
	if intent.Customer != nil {
		out.CustomerID = intent.Customer.ID
	}
	return out
}

// invoiceSubscriptionID extracts the subscription id from a retrieved
// invoice. Recent API versions moved the pointer under
// parent.subscription_details and the typed struct might not carry it,
// so both shapes are read from the raw response body. Either location
// may hold a bare id or an expanded object.
func invoiceSubscriptionID(invoice *stripe.Invoice) string {
	if invoice.LastResponse == nil || len(invoice.LastResponse.RawJSON) == 0 {
		return ""
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(invoice.LastResponse.RawJSON, &raw); err != nil {
		return ""
	}
	if id := referenceID(raw["subscription"]); id != "" {
		return id
	}
	if parent, ok := raw["parent"].(map[string]interface{}); ok {
		if details, ok := parent["subscription_details"].(map[string]interface{}); ok {
			return referenceID(details["subscription"])
		}
	}
	return ""
}

// referenceID reads a Stripe reference that may be a bare id or an
// expanded object.
func referenceID(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]interface{}:
		if id, ok := v["id"].(string); ok {
			return id
		}
	}
	return ""
}
