// Package payment wraps the hosted payment processor: intent creation and
// update, and verification of signed webhook events.
package payment

import (
	"context"
	"errors"
	"math"
	"strings"

	"storefront/internal/model"
)

// DefaultCurrency is used when a request names no currency.
const DefaultCurrency = "usd"

// MaxMinorUnits is the largest amount Stripe accepts for a single charge.
const MaxMinorUnits = 99999999

// ErrMissingSignature is returned when a webhook arrives without a signature header.
var ErrMissingSignature = errors.New("no signature provided")

// Intent is the part of a payment intent the storefront cares about.
type Intent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"-"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// CreateIntentParams describes a new charge in major currency units.
type CreateIntentParams struct {
	Amount   float64           `json:"amount"`
	Currency string            `json:"currency,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// UpdateIntentParams is the request body for attaching metadata to an intent.
type UpdateIntentParams struct {
	PaymentIntentID string            `json:"paymentIntentId"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// Event is a verified webhook event. PaymentIntent is set for payment_intent.* events.
type Event struct {
	ID            string
	Type          string
	PaymentIntent *Intent
}

// Gateway is the contract with the payment processor.
type Gateway interface {
	CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error)
	// UpdateIntent merges metadata into an existing intent.
	UpdateIntent(ctx context.Context, id string, metadata map[string]string) (*Intent, error)
	// ConstructEvent verifies signature over payload before decoding it.
	ConstructEvent(payload []byte, signature string) (*Event, error)
}

// ValidateAmount requires a finite amount of at least one cent and at most
// MaxMinorUnits cents.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return model.ErrInvalidAmount
	}
	if amount > float64(MaxMinorUnits)/100 {
		return model.ErrInvalidAmount
	}
	if ToMinorUnits(amount) < 1 {
		return model.ErrInvalidAmount
	}
	return nil
}

// ToMinorUnits converts a major-unit amount to integer cents, rounding
// half away from zero so 0.125 becomes 13 and 29.99 becomes 2999.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// NormalizeCurrency lower-cases currency and applies the default.
func NormalizeCurrency(currency string) string {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		return DefaultCurrency
	}
	return currency
}

// MetadataOrderID is the intent metadata key linking an intent to its order.
const MetadataOrderID = "orderId"

// Event types the storefront acts on.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
	EventPaymentCanceled  = "payment_intent.canceled"
)

// OutcomeForEvent maps a verified event to the order change it implies.
// ok is false for events that do not affect orders.
func OutcomeForEvent(event *Event) (outcome model.PaymentOutcome, ok bool) {
	if event == nil || event.PaymentIntent == nil {
		return model.PaymentOutcome{}, false
	}

	var status model.OrderStatus
	switch event.Type {
	case EventPaymentSucceeded:
		status = model.OrderStatusProcessing
	case EventPaymentFailed, EventPaymentCanceled:
		status = model.OrderStatusCancelled
	default:
		return model.PaymentOutcome{}, false
	}

	paymentStatus := event.PaymentIntent.Status
	if paymentStatus == "" {
		paymentStatus = strings.TrimPrefix(event.Type, "payment_intent.")
	}

	return model.PaymentOutcome{
		OrderID:         event.PaymentIntent.Metadata[MetadataOrderID],
		PaymentIntentID: event.PaymentIntent.ID,
		PaymentStatus:   paymentStatus,
		Status:          status,
		Amount:          event.PaymentIntent.Amount,
	}, true
}
