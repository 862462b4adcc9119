package service

import (
	"context"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/session"
)

// ProductService defines operations for the product catalogue.
type ProductService interface {
	// List retrieves products with pagination and an optional category.
	List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// Create adds a product on behalf of the admin actor.
	Create(ctx context.Context, input model.ProductInput, actor string) (*model.Product, error)

	// Update replaces the editable fields of a product.
	Update(ctx context.Context, id string, input model.ProductInput, actor string) (*model.Product, error)

	Delete(ctx context.Context, id string) error
}

// OrderService defines operations for the order lifecycle.
type OrderService interface {
	// CreateOrder stores a new pending order and queues its confirmation.
	CreateOrder(ctx context.Context, req *model.CreateOrderRequest) (*model.Order, error)

	// GetOrder retrieves an order by its ID.
	GetOrder(ctx context.Context, id string) (*model.Order, error)

	// TrackOrder returns the order when email matches the customer e-mail.
	TrackOrder(ctx context.Context, id, email string) (*model.Order, error)

	ListUserOrders(ctx context.Context, userID string) ([]model.Order, error)
	ListOrders(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error)

	// UpdateOrderStatus moves an order to status. Setting the current
	// status again is a no-op.
	UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error)

	// ApplyPaymentOutcome applies a verified payment event. It returns nil
	// when no order matches the outcome.
	ApplyPaymentOutcome(ctx context.Context, outcome model.PaymentOutcome) (*model.Order, error)

	// AttachPaymentIntent records the intent paying for an order.
	AttachPaymentIntent(ctx context.Context, orderID, paymentIntentID string) error

	// Analytics summarises orders placed between from and to.
	Analytics(ctx context.Context, from, to time.Time) (*model.Analytics, error)
}

// CheckoutService turns a shopper's cart into an order.
type CheckoutService interface {
	Checkout(ctx context.Context, cart *session.Cart, id *model.Identity, req *model.CheckoutRequest) (*model.CheckoutResponse, error)
}

// ProfileService manages signed-in user profiles and accounts.
type ProfileService interface {
	// Get returns the caller's profile, or one built from the identity when
	// nothing has been saved yet.
	Get(ctx context.Context, id *model.Identity) (*model.UserProfile, error)
	Save(ctx context.Context, id *model.Identity, req *model.ProfileRequest) (*model.UserProfile, error)

	// DeleteAccount removes the profile, cart and wishlist. Orders are kept.
	DeleteAccount(ctx context.Context, userID string) error

	SetAdmin(ctx context.Context, userID string, isAdmin bool) error
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// ContactService forwards contact form submissions to the shop inbox.
type ContactService interface {
	Submit(ctx context.Context, req *model.ContactRequest) error
}
