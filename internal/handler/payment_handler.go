package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"storefront/internal/payment"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// maxWebhookBytes bounds webhook payloads.
const maxWebhookBytes = 65536

// PaymentHandler bridges the storefront and the payment processor.
type PaymentHandler struct {
	gateway      payment.Gateway
	orderService service.OrderService
	logger       zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(gateway payment.Gateway, orderService service.OrderService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		gateway:      gateway,
		orderService: orderService,
		logger:       logger.With().Str("handler", "payment").Logger(),
	}
}

type createIntentRequest struct {
	Amount   float64        `json:"amount"`
	Currency string         `json:"currency"`
	Metadata map[string]any `json:"metadata"`
}

type updateIntentRequest struct {
	PaymentIntentID string         `json:"paymentIntentId"`
	Metadata        map[string]any `json:"metadata"`
}

// CreateIntent handles POST /api/payment/create-intent.
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req createIntentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", h.logger)
		return
	}
	if err := payment.ValidateAmount(req.Amount); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", h.logger)
		return
	}

	intent, err := h.gateway.CreateIntent(r.Context(), payment.CreateIntentParams{
		Amount:   req.Amount,
		Currency: req.Currency,
		Metadata: stringMetadata(req.Metadata),
	})
	if err != nil {
		h.logger.Error().Err(err).Float64("amount", req.Amount).Msg("failed to create payment intent")
		writeError(w, http.StatusInternalServerError, "Failed to create payment intent", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"clientSecret":    intent.ClientSecret,
		"paymentIntentId": intent.ID,
	})
}

// UpdateIntent handles POST /api/payment/update-intent. When the metadata
// names an order, the intent is also recorded on that order so later webhook
// events can find it.
func (h *PaymentHandler) UpdateIntent(w http.ResponseWriter, r *http.Request) {
	var req updateIntentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Payment intent ID is required", h.logger)
		return
	}
	req.PaymentIntentID = strings.TrimSpace(req.PaymentIntentID)
	if req.PaymentIntentID == "" {
		writeError(w, http.StatusBadRequest, "Payment intent ID is required", h.logger)
		return
	}

	metadata := stringMetadata(req.Metadata)
	intent, err := h.gateway.UpdateIntent(r.Context(), req.PaymentIntentID, metadata)
	if err != nil {
		h.logger.Error().Err(err).Str("payment_intent_id", req.PaymentIntentID).Msg("failed to update payment intent")
		writeError(w, http.StatusInternalServerError, "Failed to update payment intent", h.logger)
		return
	}

	if orderID := metadata[payment.MetadataOrderID]; orderID != "" {
		if err := h.orderService.AttachPaymentIntent(r.Context(), orderID, intent.ID); err != nil {
			h.logger.Warn().Err(err).Str("order_id", orderID).Msg("failed to attach payment intent to order")
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"paymentIntentId": intent.ID,
	})
}

// Webhook handles POST /api/payment/webhook. The signature is verified over
// the raw body before anything is decoded.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		writeError(w, http.StatusBadRequest, "No signature provided", h.logger)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Webhook Error: "+err.Error(), h.logger)
		return
	}

	event, err := h.gateway.ConstructEvent(payload, signature)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Webhook Error: "+err.Error(), h.logger)
		return
	}

	outcome, ok := payment.OutcomeForEvent(event)
	if !ok {
		h.logger.Debug().Str("event_id", event.ID).Str("type", event.Type).Msg("ignoring webhook event")
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	if _, err := h.orderService.ApplyPaymentOutcome(r.Context(), outcome); err != nil {
		h.logger.Error().Err(err).
			Str("event_id", event.ID).
			Str("payment_intent_id", outcome.PaymentIntentID).
			Msg("failed to apply payment outcome")
		writeError(w, http.StatusInternalServerError, "Webhook handler failed", h.logger)
		return
	}

	h.logger.Info().
		Str("event_id", event.ID).
		Str("type", event.Type).
		Str("payment_intent_id", outcome.PaymentIntentID).
		Msg("webhook processed")
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// stringMetadata flattens arbitrary JSON metadata to the string values the
// processor accepts.
func stringMetadata(in map[string]any) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			out[k] = val
		case float64, bool:
			out[k] = fmt.Sprint(val)
		default:
			b, err := json.Marshal(val)
			if err != nil {
				continue
			}
			out[k] = string(b)
		}
	}
	return out
}
