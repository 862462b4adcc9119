package model

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition can leave s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusCompleted, OrderStatusCancelled},
}

// CanTransitionTo reports whether an order in s may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ShippingAddress is the delivery address captured at checkout.
type ShippingAddress struct {
	Address string `json:"address"`
	City    string `json:"city"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// Order is a placed order. Items and Total are frozen at creation.
type Order struct {
	ID              string           `json:"id"`
	UserID          *string          `json:"userId"`
	IsGuest         bool             `json:"isGuest"`
	Items           []CartItem       `json:"items"`
	Total           float64          `json:"total"`
	Status          OrderStatus      `json:"status"`
	CustomerName    string           `json:"customerName,omitempty"`
	CustomerEmail   string           `json:"customerEmail,omitempty"`
	CustomerPhone   string           `json:"customerPhone,omitempty"`
	Shipping        *ShippingAddress `json:"shippingAddress,omitempty"`
	PaymentIntentID string           `json:"paymentIntentId,omitempty"`
	PaymentStatus   string           `json:"paymentStatus,omitempty"`
	CreatedAt       time.Time        `json:"date"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// ShortID is the order number shown to customers.
func (o Order) ShortID() string {
	if len(o.ID) > 8 {
		return o.ID[:8]
	}
	return o.ID
}

// CreateOrderRequest holds everything needed to place an order.
type CreateOrderRequest struct {
	UserID          *string
	Items           []CartItem
	Total           float64
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	Shipping        *ShippingAddress
	PaymentIntentID string
}

// StatusUpdateRequest is the admin payload for changing an order status.
type StatusUpdateRequest struct {
	Status OrderStatus `json:"status"`
}

// PaymentOutcome is what a payment webhook tells us about an order.
// OrderID is empty when the intent carries no order metadata. Amount is the
// intent amount in minor units.
type PaymentOutcome struct {
	OrderID         string
	PaymentIntentID string
	PaymentStatus   string
	Status          OrderStatus
	Amount          int64
}

// CheckoutRequest is the checkout form submitted by the shopper.
type CheckoutRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	Address         string `json:"address"`
	City            string `json:"city"`
	ZipCode         string `json:"zipCode"`
	Country         string `json:"country"`
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
}

// CheckoutResponse is returned once the order has been placed.
type CheckoutResponse struct {
	OrderID string  `json:"orderId"`
	Total   float64 `json:"total"`
	Status  string  `json:"status"`
}

// OrderTrackingRequest is the payload for looking up an order by e-mail.
type OrderTrackingRequest struct {
	Email   string `json:"email"`
	OrderID string `json:"orderId"`
}

// ProductSales aggregates units and revenue for one product.
type ProductSales struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

// Analytics summarises orders placed in a date range.
type Analytics struct {
	From              time.Time           `json:"from"`
	To                time.Time           `json:"to"`
	OrderCount        int                 `json:"orderCount"`
	TotalRevenue      float64             `json:"totalRevenue"`
	AverageOrderValue float64             `json:"averageOrderValue"`
	StatusCounts      map[OrderStatus]int `json:"statusCounts"`
	DailyRevenue      map[string]float64  `json:"dailyRevenue"`
	TopProducts       []ProductSales      `json:"topProducts"`
}
