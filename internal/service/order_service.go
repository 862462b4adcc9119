package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// totalTolerance is how far a caller-supplied total may drift from the
// recomputed one before the order is rejected.
const totalTolerance = 0.005

const (
	defaultAnalyticsWindow = 30 * 24 * time.Hour
	topProductCount        = 5
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "order").Logger(),
		now:         time.Now,
	}
}

// CreateOrder prices the items from the catalogue, checks the caller's total
// and stores a pending order. A confirmation e-mail is queued in the same
// transaction when the customer left an address.
func (s *orderService) CreateOrder(ctx context.Context, req *model.CreateOrderRequest) (*model.Order, error) {
	items, err := s.validateOrderRequest(req)
	if err != nil {
		return nil, err
	}

	items, err = s.priceItems(ctx, items)
	if err != nil {
		return nil, err
	}

	total := orderTotal(items)
	if req.Total != 0 && math.Abs(req.Total-total) > totalTolerance {
		s.logger.Warn().
			Float64("requested_total", req.Total).
			Float64("computed_total", total).
			Msg("order total mismatch")
		return nil, model.ErrTotalMismatch
	}

	now := s.now().UTC()
	order := &model.Order{
		ID:              uuid.NewString(),
		UserID:          req.UserID,
		IsGuest:         req.UserID == nil || *req.UserID == "",
		Items:           items,
		Total:           total,
		Status:          model.OrderStatusPending,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		Shipping:        req.Shipping,
		PaymentIntentID: req.PaymentIntentID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if order.IsGuest {
		order.UserID = nil
	}

	var notification *model.Notification
	if order.CustomerEmail != "" {
		notification, err = newNotification(model.NotificationOrderConfirmation, *order, "")
		if err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Create(ctx, order, notification); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Bool("guest", order.IsGuest).
		Int("item_count", len(items)).
		Float64("total", total).
		Msg("order created successfully")

	return order, nil
}

// GetOrder retrieves an order by its ID.
func (s *orderService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, model.ErrOrderNotFound
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		s.logger.Debug().Str("order_id", id).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}

// TrackOrder compares e-mails case-insensitively.
func (s *orderService) TrackOrder(ctx context.Context, id, email string) (*model.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(strings.TrimSpace(order.CustomerEmail), strings.TrimSpace(email)) {
		s.logger.Warn().Str("order_id", id).Msg("order tracking e-mail mismatch")
		return nil, model.ErrEmailMismatch
	}

	return order, nil
}

func (s *orderService) ListUserOrders(ctx context.Context, userID string) ([]model.Order, error) {
	if userID == "" {
		return nil, model.ErrUnauthorised
	}

	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list user orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, model.ErrInvalidStatus
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, model.ErrInvalidStatus
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.transition(ctx, order, status, "")
}

// ApplyPaymentOutcome locates the order through the intent metadata, falling
// back to the intent id recorded at checkout. Events that the state machine
// does not allow, such as a late success on a shipped order, are logged and
// ignored, as are successes whose amount differs from the order total.
func (s *orderService) ApplyPaymentOutcome(ctx context.Context, outcome model.PaymentOutcome) (*model.Order, error) {
	var (
		order *model.Order
		err   error
	)

	if outcome.OrderID != "" {
		order, err = s.orderRepo.GetByID(ctx, outcome.OrderID)
		if err != nil {
			return nil, fmt.Errorf("failed to get order: %w", err)
		}
	}
	if order == nil && outcome.PaymentIntentID != "" {
		order, err = s.orderRepo.GetByPaymentIntent(ctx, outcome.PaymentIntentID)
		if err != nil {
			return nil, fmt.Errorf("failed to get order by payment intent: %w", err)
		}
	}

	if order == nil {
		s.logger.Warn().
			Str("order_id", outcome.OrderID).
			Str("payment_intent_id", outcome.PaymentIntentID).
			Msg("no order for payment event")
		return nil, nil
	}

	if order.Status != outcome.Status && !order.Status.CanTransitionTo(outcome.Status) {
		s.logger.Warn().
			Str("order_id", order.ID).
			Str("status", string(order.Status)).
			Str("event_status", string(outcome.Status)).
			Msg("ignoring payment event for order in this status")
		return order, nil
	}

	// A success only counts when the intent charged the order total.
	if outcome.Status == model.OrderStatusProcessing && outcome.Amount != payment.ToMinorUnits(order.Total) {
		s.logger.Error().
			Str("order_id", order.ID).
			Str("payment_intent_id", outcome.PaymentIntentID).
			Int64("paid", outcome.Amount).
			Int64("expected", payment.ToMinorUnits(order.Total)).
			Msg("payment amount does not match order total, order left unchanged")
		return order, nil
	}

	return s.transition(ctx, order, outcome.Status, outcome.PaymentStatus)
}

func (s *orderService) AttachPaymentIntent(ctx context.Context, orderID, paymentIntentID string) error {
	if orderID == "" || paymentIntentID == "" {
		return model.ErrOrderNotFound
	}

	if err := s.orderRepo.SetPaymentIntent(ctx, orderID, paymentIntentID); err != nil {
		if errors.Is(err, model.ErrOrderNotFound) {
			return err
		}
		s.logger.Error().Err(err).Str("order_id", orderID).Msg("failed to attach payment intent")
		return fmt.Errorf("failed to attach payment intent: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID).
		Str("payment_intent_id", paymentIntentID).
		Msg("payment intent attached")
	return nil
}

// transition performs a compare-and-set from the order's current status.
func (s *orderService) transition(ctx context.Context, order *model.Order, to model.OrderStatus, paymentStatus string) (*model.Order, error) {
	if order.Status == to {
		return order, nil
	}
	if !order.Status.CanTransitionTo(to) {
		s.logger.Warn().
			Str("order_id", order.ID).
			Str("from", string(order.Status)).
			Str("to", string(to)).
			Msg("invalid status transition")
		return nil, model.ErrInvalidTransition
	}

	change := repository.StatusChange{
		OrderID:       order.ID,
		From:          order.Status,
		To:            to,
		PaymentStatus: paymentStatus,
	}

	if order.CustomerEmail != "" {
		next := *order
		next.Status = to
		next.UpdatedAt = s.now().UTC()
		if paymentStatus != "" {
			next.PaymentStatus = paymentStatus
		}
		n, err := newNotification(model.NotificationOrderStatus, next, order.Status)
		if err != nil {
			return nil, err
		}
		change.Notification = n
	}

	updated, err := s.orderRepo.UpdateStatus(ctx, change)
	if err != nil {
		if errors.Is(err, model.ErrStatusChanged) {
			s.logger.Warn().Str("order_id", order.ID).Msg("order status changed concurrently")
			return nil, err
		}
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Str("from", string(order.Status)).
		Str("to", string(to)).
		Bool("notify", change.Notification != nil).
		Msg("order status updated")

	return updated, nil
}

// Analytics counts every order in the range but only completed orders add
// to revenue and product sales. A zero to means now and a zero from means
// thirty days before to.
func (s *orderService) Analytics(ctx context.Context, from, to time.Time) (*model.Analytics, error) {
	if to.IsZero() {
		to = s.now().UTC()
	}
	if from.IsZero() {
		from = to.Add(-defaultAnalyticsWindow)
	}
	if !from.Before(to) {
		return nil, &model.ValidationError{Fields: map[string]string{"from": "Start date must be before end date"}}
	}

	orders, err := s.orderRepo.List(ctx, repository.OrderFilter{From: from, To: to})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load orders for analytics")
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	a := &model.Analytics{
		From:         from,
		To:           to,
		OrderCount:   len(orders),
		StatusCounts: make(map[model.OrderStatus]int),
		DailyRevenue: make(map[string]float64),
		TopProducts:  []model.ProductSales{},
	}
	for _, status := range []model.OrderStatus{
		model.OrderStatusPending, model.OrderStatusProcessing, model.OrderStatusShipped,
		model.OrderStatusCompleted, model.OrderStatusCancelled,
	} {
		a.StatusCounts[status] = 0
	}

	sales := make(map[string]*model.ProductSales)
	completed := 0
	for _, o := range orders {
		a.StatusCounts[o.Status]++
		if o.Status != model.OrderStatusCompleted {
			continue
		}
		completed++
		a.TotalRevenue += o.Total
		day := o.CreatedAt.UTC().Format("2006-01-02")
		a.DailyRevenue[day] = roundCents(a.DailyRevenue[day] + o.Total)

		for _, item := range o.Items {
			ps, ok := sales[item.Product.ID]
			if !ok {
				ps = &model.ProductSales{ProductID: item.Product.ID, Name: item.Product.Name}
				sales[item.Product.ID] = ps
			}
			ps.Quantity += item.Quantity
			ps.Revenue = roundCents(ps.Revenue + item.Subtotal())
		}
	}

	a.TotalRevenue = roundCents(a.TotalRevenue)
	if completed > 0 {
		a.AverageOrderValue = roundCents(a.TotalRevenue / float64(completed))
	}

	for _, ps := range sales {
		a.TopProducts = append(a.TopProducts, *ps)
	}
	sort.Slice(a.TopProducts, func(i, j int) bool {
		if a.TopProducts[i].Quantity != a.TopProducts[j].Quantity {
			return a.TopProducts[i].Quantity > a.TopProducts[j].Quantity
		}
		return a.TopProducts[i].ProductID < a.TopProducts[j].ProductID
	})
	if len(a.TopProducts) > topProductCount {
		a.TopProducts = a.TopProducts[:topProductCount]
	}

	return a, nil
}

// validateOrderRequest checks the request shape and merges repeated
// products into one line.
func (s *orderService) validateOrderRequest(req *model.CreateOrderRequest) ([]model.CartItem, error) {
	if req == nil {
		return nil, fmt.Errorf("order request is nil")
	}
	if len(req.Items) == 0 {
		return nil, model.ErrEmptyCart
	}

	merged := make([]model.CartItem, 0, len(req.Items))
	index := make(map[string]int, len(req.Items))
	for i, item := range req.Items {
		if item.Product.ID == "" {
			return nil, fmt.Errorf("item %d: %w", i, model.ErrProductNotFound)
		}
		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.Product.ID).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return nil, model.ErrInvalidQuantity
		}
		if j, ok := index[item.Product.ID]; ok {
			merged[j].Quantity += item.Quantity
			continue
		}
		index[item.Product.ID] = len(merged)
		merged = append(merged, item)
	}

	return merged, nil
}

// priceItems replaces each snapshot with the current catalogue product.
func (s *orderService) priceItems(ctx context.Context, items []model.CartItem) ([]model.CartItem, error) {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.Product.ID
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load order products")
		return nil, fmt.Errorf("failed to retrieve product details: %w", err)
	}

	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	priced := make([]model.CartItem, len(items))
	for i, item := range items {
		p, ok := byID[item.Product.ID]
		if !ok {
			s.logger.Warn().Str("product_id", item.Product.ID).Msg("ordered product not found")
			return nil, model.ErrProductNotFound
		}
		if !p.Available() {
			s.logger.Warn().Str("product_id", p.ID).Msg("ordered product out of stock")
			return nil, model.ErrOutOfStock
		}
		priced[i] = model.CartItem{Product: p, Quantity: item.Quantity}
	}

	return priced, nil
}

func orderTotal(items []model.CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Subtotal()
	}
	return roundCents(total)
}

// roundCents rounds half away from zero to two decimals.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func newNotification(kind model.NotificationKind, order model.Order, old model.OrderStatus) (*model.Notification, error) {
	payload, err := json.Marshal(model.OrderEmailPayload{
		Order:        order,
		CustomerName: order.CustomerName,
		OldStatus:    old,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification payload: %w", err)
	}

	return &model.Notification{
		OrderID:   order.ID,
		Kind:      kind,
		Recipient: order.CustomerEmail,
		Payload:   payload,
	}, nil
}
