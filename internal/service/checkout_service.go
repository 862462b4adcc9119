package service

import (
	"context"
	"strings"

	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/session"
	"storefront/internal/validation"

	"github.com/rs/zerolog"
)

// checkoutService implements CheckoutService.
type checkoutService struct {
	orders   OrderService
	payments payment.Gateway
	logger   zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(orders OrderService, payments payment.Gateway, logger zerolog.Logger) CheckoutService {
	return &checkoutService{
		orders:   orders,
		payments: payments,
		logger:   logger.With().Str("service", "checkout").Logger(),
	}
}

// Checkout validates the form, places an order for the cart contents, links
// the payment intent to the order and empties the cart. Once the order is
// stored, failures to tag the intent or clear the cart are logged only.
func (s *checkoutService) Checkout(ctx context.Context, cart *session.Cart, id *model.Identity, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	if req == nil {
		return nil, &model.ValidationError{Fields: map[string]string{"form": "Checkout details are required"}}
	}

	country := strings.ToUpper(strings.TrimSpace(req.Country))
	if country == "" {
		country = "US"
	}

	form := validation.ValidateFormData(map[string]string{
		"name":    req.Name,
		"email":   req.Email,
		"phone":   req.Phone,
		"address": req.Address,
		"city":    req.City,
		"zipCode": req.ZipCode,
	}, validation.CheckoutRules(country))
	if !form.Valid {
		return nil, &model.ValidationError{Fields: form.Errors}
	}

	items := cart.Items()
	if len(items) == 0 {
		return nil, model.ErrEmptyCart
	}

	var userID *string
	if id != nil && id.UserID != "" {
		uid := id.UserID
		userID = &uid
	}

	order, err := s.orders.CreateOrder(ctx, &model.CreateOrderRequest{
		UserID:        userID,
		Items:         items,
		Total:         cart.TotalPrice(),
		CustomerName:  validation.SanitizeName(req.Name),
		CustomerEmail: validation.SanitizeEmail(req.Email),
		CustomerPhone: validation.SanitizePhone(req.Phone),
		Shipping: &model.ShippingAddress{
			Address: validation.SanitizeAddress(req.Address),
			City:    validation.SanitizeString(req.City),
			ZipCode: strings.ToUpper(validation.SanitizeString(req.ZipCode)),
			Country: country,
		},
		PaymentIntentID: strings.TrimSpace(req.PaymentIntentID),
	})
	if err != nil {
		return nil, err
	}

	if order.PaymentIntentID != "" {
		_, err := s.payments.UpdateIntent(ctx, order.PaymentIntentID, map[string]string{
			payment.MetadataOrderID: order.ID,
		})
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("order_id", order.ID).
				Str("payment_intent_id", order.PaymentIntentID).
				Msg("failed to tag payment intent with order")
		}
	}

	if err := cart.ClearCart(ctx); err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID).Msg("failed to clear cart after checkout")
	}

	return &model.CheckoutResponse{
		OrderID: order.ID,
		Total:   order.Total,
		Status:  string(order.Status),
	}, nil
}
