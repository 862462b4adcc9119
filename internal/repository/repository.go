package repository

import (
	"context"
	"time"

	"storefront/internal/model"
)

// ProductFilter narrows a catalogue listing.
type ProductFilter struct {
	Category string
	Limit    int
	Offset   int
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List retrieves products ordered by name with pagination support.
	List(ctx context.Context, filter ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. It returns nil when the
	// product does not exist.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// Create inserts a new product.
	Create(ctx context.Context, product *model.Product) error

	// Update replaces the editable fields of an existing product.
	Update(ctx context.Context, product *model.Product) error

	// Delete removes a product. Orders keep their item snapshots.
	Delete(ctx context.Context, id string) error

	// Upsert inserts or refreshes products in one batch and returns how many
	// rows were written.
	Upsert(ctx context.Context, products []model.Product) (int, error)
}

// OrderFilter narrows an admin order listing. Zero values are ignored.
type OrderFilter struct {
	Status model.OrderStatus
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

// StatusChange describes a compare-and-set on an order status. When
// Notification is set it is queued in the same transaction.
type StatusChange struct {
	OrderID       string
	From          model.OrderStatus
	To            model.OrderStatus
	PaymentStatus string
	Notification  *model.Notification
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// Create inserts an order and, when given, its confirmation notification
	// atomically.
	Create(ctx context.Context, order *model.Order, notification *model.Notification) error

	// GetByID retrieves an order by its ID. It returns nil when the order
	// does not exist.
	GetByID(ctx context.Context, id string) (*model.Order, error)

	// GetByPaymentIntent finds the order paid by a payment intent.
	GetByPaymentIntent(ctx context.Context, paymentIntentID string) (*model.Order, error)

	// ListByUser returns a user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)

	// List returns orders matching filter, newest first.
	List(ctx context.Context, filter OrderFilter) ([]model.Order, error)

	// UpdateStatus applies change if the order is still in change.From and
	// returns the updated order. It fails with model.ErrStatusChanged when the
	// status moved in the meantime.
	UpdateStatus(ctx context.Context, change StatusChange) (*model.Order, error)

	// SetPaymentIntent records the payment intent paying for an order.
	SetPaymentIntent(ctx context.Context, orderID, paymentIntentID string) error
}

// ProfileRepository defines access to user profiles.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*model.UserProfile, error)
	// Save creates or updates the display fields. The admin flag is left untouched.
	Save(ctx context.Context, profile *model.UserProfile) error
	SetAdmin(ctx context.Context, userID string, isAdmin bool) error
	Delete(ctx context.Context, userID string) error
}

// OutboxRepository stores notifications waiting for delivery.
type OutboxRepository interface {
	Enqueue(ctx context.Context, n *model.Notification) error

	// ClaimDue returns up to limit pending notifications whose next attempt is
	// due and hides them from other claimers for lease.
	ClaimDue(ctx context.Context, limit int, lease time.Duration) ([]model.Notification, error)

	MarkSent(ctx context.Context, id string) error
	MarkRetry(ctx context.Context, id string, attempts int, next time.Time, lastErr string) error
	MarkFailed(ctx context.Context, id string, attempts int, lastErr string) error
}

// Document is a versioned per-user list kept in the document store.
type Document[T any] struct {
	Version   int64     `json:"version"`
	Items     []T       `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CartRepository stores one cart document per signed-in user.
type CartRepository interface {
	// LoadCart returns the user's cart, or an empty version-0 document.
	LoadCart(ctx context.Context, userID string) (*Document[model.CartItem], error)

	// SaveCart writes items if the stored version still equals version and
	// returns the new version. A concurrent writer yields model.ErrConflict.
	SaveCart(ctx context.Context, userID string, items []model.CartItem, version int64) (int64, error)

	DeleteCart(ctx context.Context, userID string) error
}

// WishlistRepository stores one wishlist document per signed-in user.
type WishlistRepository interface {
	LoadWishlist(ctx context.Context, userID string) (*Document[model.Product], error)
	SaveWishlist(ctx context.Context, userID string, items []model.Product, version int64) (int64, error)
	DeleteWishlist(ctx context.Context, userID string) error
}
