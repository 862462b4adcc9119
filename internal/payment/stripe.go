package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"storefront/internal/config"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/webhook"
)

type stripeGateway struct {
	webhookSecret string
	currency      string
	logger        zerolog.Logger
}

// NewStripeGateway configures the Stripe client with the secret key and
// returns a Gateway backed by it.
func NewStripeGateway(cfg config.StripeConfig, logger zerolog.Logger) Gateway {
	stripe.Key = cfg.SecretKey
	return &stripeGateway{
		webhookSecret: cfg.WebhookSecret,
		currency:      NormalizeCurrency(cfg.Currency),
		logger:        logger.With().Str("gateway", "stripe").Logger(),
	}
}

func (g *stripeGateway) CreateIntent(ctx context.Context, p CreateIntentParams) (*Intent, error) {
	if err := ValidateAmount(p.Amount); err != nil {
		return nil, err
	}

	currency := g.currency
	if strings.TrimSpace(p.Currency) != "" {
		currency = NormalizeCurrency(p.Currency)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(ToMinorUnits(p.Amount)),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		g.logger.Error().Err(err).Float64("amount", p.Amount).Str("currency", currency).Msg("failed to create payment intent")
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	g.logger.Info().Str("payment_intent_id", pi.ID).Int64("amount", pi.Amount).Msg("payment intent created")
	return fromStripe(pi), nil
}

func (g *stripeGateway) UpdateIntent(ctx context.Context, id string, metadata map[string]string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.Update(id, params)
	if err != nil {
		g.logger.Error().Err(err).Str("payment_intent_id", id).Msg("failed to update payment intent")
		return nil, fmt.Errorf("failed to update payment intent: %w", err)
	}

	return fromStripe(pi), nil
}

func (g *stripeGateway) ConstructEvent(payload []byte, signature string) (*Event, error) {
	return constructEvent(payload, signature, g.webhookSecret)
}

func constructEvent(payload []byte, signature, secret string) (*Event, error) {
	if signature == "" {
		return nil, ErrMissingSignature
	}

	evt, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, err
	}

	event := &Event{ID: evt.ID, Type: string(evt.Type)}
	if strings.HasPrefix(event.Type, "payment_intent.") && evt.Data != nil {
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(evt.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("failed to decode payment intent: %w", err)
		}
		event.PaymentIntent = fromStripe(&pi)
	}
	return event, nil
}

func fromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		Metadata:     pi.Metadata,
	}
}
