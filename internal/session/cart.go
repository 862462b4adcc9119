package session

import (
	"context"
	"sync"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// Cart is a shopper's cart bound to one persistence backend.
//
// A new Cart is loading until Load completes. Mutations made while loading
// change memory only and are replaced by the load. After that every mutation
// that changes the cart is saved exactly once.
type Cart struct {
	mu      sync.Mutex
	backend Backend[model.CartItem]
	items   []model.CartItem
	loading bool
	logger  zerolog.Logger
}

// NewCart returns an empty cart that has not loaded yet.
func NewCart(backend Backend[model.CartItem], logger zerolog.Logger) *Cart {
	return &Cart{
		backend: backend,
		items:   []model.CartItem{},
		loading: true,
		logger:  logger.With().Str("store", "cart").Logger(),
	}
}

// Load replaces the in-memory cart with the backend's copy.
func (c *Cart) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

func (c *Cart) load(ctx context.Context) error {
	c.loading = true
	items, err := c.backend.Load(ctx)
	c.loading = false
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to load cart")
		c.items = []model.CartItem{}
		return err
	}
	if items == nil {
		items = []model.CartItem{}
	}
	c.items = items
	return nil
}

// SwitchBackend rebinds the cart after a sign-in or sign-out and reloads.
// Nothing from the previous backend is carried over.
func (c *Cart) SwitchBackend(ctx context.Context, backend Backend[model.CartItem]) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.backend = backend
	return c.load(ctx)
}

// persist saves the current items. Failures are logged and returned; the
// in-memory cart is kept either way.
func (c *Cart) persist(ctx context.Context) error {
	if c.loading {
		return nil
	}
	if err := c.backend.Save(ctx, c.snapshot()); err != nil {
		c.logger.Error().Err(err).Int("items", len(c.items)).Msg("failed to persist cart")
		return err
	}
	return nil
}

func (c *Cart) index(productID string) int {
	for i, item := range c.items {
		if item.Product.ID == productID {
			return i
		}
	}
	return -1
}

// AddToCart sums quantity into an existing line, keeping its position, or
// appends a new line. A non-positive quantity never creates a line.
func (c *Cart) AddToCart(ctx context.Context, product model.Product, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.index(product.ID); i >= 0 {
		if quantity == 0 {
			return nil
		}
		c.items[i].Quantity += quantity
		if c.items[i].Quantity <= 0 {
			c.items = append(c.items[:i], c.items[i+1:]...)
		}
		return c.persist(ctx)
	}

	if quantity <= 0 {
		return nil
	}
	c.items = append(c.items, model.CartItem{Product: product, Quantity: quantity})
	return c.persist(ctx)
}

// RemoveFromCart drops the line for productID, if any.
func (c *Cart) RemoveFromCart(ctx context.Context, productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(productID)
	if i < 0 {
		return nil
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return c.persist(ctx)
}

// UpdateQuantity sets the quantity of an existing line in place. Zero or
// less removes the line.
func (c *Cart) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(productID)
	if i < 0 {
		return nil
	}
	if quantity <= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
		return c.persist(ctx)
	}
	if c.items[i].Quantity == quantity {
		return nil
	}
	c.items[i].Quantity = quantity
	return c.persist(ctx)
}

// ClearCart empties the cart and clears the backend copy.
func (c *Cart) ClearCart(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = []model.CartItem{}
	if c.loading {
		return nil
	}
	if err := c.backend.Clear(ctx); err != nil {
		c.logger.Error().Err(err).Msg("failed to clear cart")
		return err
	}
	return nil
}

// Items returns a copy of the cart lines in order.
func (c *Cart) Items() []model.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Cart) snapshot() []model.CartItem {
	out := make([]model.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// TotalPrice is the sum of price times quantity over all lines.
func (c *Cart) TotalPrice() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total float64
	for _, item := range c.items {
		total += item.Subtotal()
	}
	return total
}

// TotalItems is the number of units in the cart.
func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

// Loading reports whether the initial load is still pending.
func (c *Cart) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Response is the JSON view of the cart.
func (c *Cart) Response() model.CartResponse {
	return model.CartResponse{
		Items:      c.Items(),
		TotalPrice: c.TotalPrice(),
		TotalItems: c.TotalItems(),
	}
}
