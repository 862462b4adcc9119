package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/validation"

	"github.com/rs/zerolog"
)

// OrderHandler handles checkout, order tracking and order administration.
type OrderHandler struct {
	orderService    service.OrderService
	checkoutService service.CheckoutService
	stores          StoreOpener
	logger          zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(
	orderService service.OrderService,
	checkoutService service.CheckoutService,
	stores StoreOpener,
	logger zerolog.Logger,
) *OrderHandler {
	return &OrderHandler{
		orderService:    orderService,
		checkoutService: checkoutService,
		stores:          stores,
		logger:          logger.With().Str("handler", "order").Logger(),
	}
}

// Checkout handles POST /api/checkout.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	id := middleware.IdentityFrom(r.Context())
	cart, err := h.stores.OpenCart(r.Context(), w, r, id)
	if err != nil {
		writeServiceError(w, err, "Failed to load cart", h.logger)
		return
	}

	resp, err := h.checkoutService.Checkout(r.Context(), cart, id, &req)
	if err != nil {
		writeServiceError(w, err, "Failed to place order", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Track handles GET /api/order-tracking?orderId=.
func (h *OrderHandler) Track(w http.ResponseWriter, r *http.Request) {
	orderID := strings.TrimSpace(r.URL.Query().Get("orderId"))
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "Order ID is required", h.logger)
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch order", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

// TrackByEmail handles POST /api/order-tracking. The e-mail must match the
// one the order was placed with.
func (h *OrderHandler) TrackByEmail(w http.ResponseWriter, r *http.Request) {
	var req model.OrderTrackingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.OrderID) == "" {
		writeError(w, http.StatusBadRequest, "Email and order ID are required", h.logger)
		return
	}
	if !validation.ValidateEmail(req.Email).Valid {
		writeError(w, http.StatusBadRequest, "Invalid email address", h.logger)
		return
	}

	order, err := h.orderService.TrackOrder(r.Context(), req.OrderID, req.Email)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch order", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

// ListMine handles GET /api/orders.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFrom(r.Context())
	if id == nil {
		writeError(w, http.StatusUnauthorized, model.ErrUnauthorised.Message, h.logger)
		return
	}

	orders, err := h.orderService.ListUserOrders(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve orders", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// List handles GET /api/admin/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repository.OrderFilter{Status: model.OrderStatus(q.Get("status"))}
	if filter.Status != "" && !filter.Status.Valid() {
		writeError(w, http.StatusBadRequest, model.ErrInvalidStatus.Message, h.logger)
		return
	}

	var err error
	if filter.From, err = parseDate(q.Get("from")); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date", h.logger)
		return
	}
	if filter.To, err = parseDate(q.Get("to")); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date", h.logger)
		return
	}
	if filter.Limit, err = queryInt(r, "limit", 0); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}
	if filter.Offset, err = queryInt(r, "offset", 0); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	orders, err := h.orderService.ListOrders(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve orders", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// Get handles GET /api/admin/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderService.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve order", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PUT /api/admin/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req model.StatusUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	order, err := h.orderService.UpdateOrderStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		writeServiceError(w, err, "Failed to update order status", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Analytics handles GET /api/admin/analytics. The window is either from/to
// or the last N days; the service picks the default when neither is given.
func (h *OrderHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, err := parseDate(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date", h.logger)
		return
	}
	to, err := parseDate(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date", h.logger)
		return
	}

	days, err := queryInt(r, "days", 0)
	if err != nil || days < 0 {
		writeError(w, http.StatusBadRequest, "Invalid days parameter", h.logger)
		return
	}
	if days > 0 && from.IsZero() {
		if to.IsZero() {
			to = time.Now().UTC()
		}
		from = to.AddDate(0, 0, -days)
	}

	analytics, err := h.orderService.Analytics(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, err, "Failed to compute analytics", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, analytics)
}

// parseDate accepts RFC 3339 timestamps or plain YYYY-MM-DD dates. An empty
// value is the zero time.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", raw)
	}
	return t, nil
}
