package session

import (
	"context"
	"sync"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// Wishlist is a set of products keyed by ID. It follows the same load and
// save protocol as Cart.
type Wishlist struct {
	mu      sync.Mutex
	backend Backend[model.Product]
	items   []model.Product
	loading bool
	logger  zerolog.Logger
}

// NewWishlist returns an empty wishlist that has not loaded yet.
func NewWishlist(backend Backend[model.Product], logger zerolog.Logger) *Wishlist {
	return &Wishlist{
		backend: backend,
		items:   []model.Product{},
		loading: true,
		logger:  logger.With().Str("store", "wishlist").Logger(),
	}
}

// Load replaces the in-memory wishlist with the backend's copy.
func (w *Wishlist) Load(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.load(ctx)
}

func (w *Wishlist) load(ctx context.Context) error {
	w.loading = true
	items, err := w.backend.Load(ctx)
	w.loading = false
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to load wishlist")
		w.items = []model.Product{}
		return err
	}
	w.items = dedupe(items)
	return nil
}

// SwitchBackend rebinds the wishlist and reloads from the new backend.
func (w *Wishlist) SwitchBackend(ctx context.Context, backend Backend[model.Product]) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.backend = backend
	return w.load(ctx)
}

func (w *Wishlist) persist(ctx context.Context) error {
	if w.loading {
		return nil
	}
	if err := w.backend.Save(ctx, w.snapshot()); err != nil {
		w.logger.Error().Err(err).Int("items", len(w.items)).Msg("failed to persist wishlist")
		return err
	}
	return nil
}

func (w *Wishlist) index(productID string) int {
	for i, p := range w.items {
		if p.ID == productID {
			return i
		}
	}
	return -1
}

// AddToWishlist is a no-op when the product is already present.
func (w *Wishlist) AddToWishlist(ctx context.Context, product model.Product) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.index(product.ID) >= 0 {
		return nil
	}
	w.items = append(w.items, product)
	return w.persist(ctx)
}

// RemoveFromWishlist is a no-op when the product is absent.
func (w *Wishlist) RemoveFromWishlist(ctx context.Context, productID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	i := w.index(productID)
	if i < 0 {
		return nil
	}
	w.items = append(w.items[:i], w.items[i+1:]...)
	return w.persist(ctx)
}

// IsInWishlist reports whether productID is in the wishlist.
func (w *Wishlist) IsInWishlist(productID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.index(productID) >= 0
}

// ClearWishlist empties the wishlist and clears the backend copy.
func (w *Wishlist) ClearWishlist(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.items = []model.Product{}
	if w.loading {
		return nil
	}
	if err := w.backend.Clear(ctx); err != nil {
		w.logger.Error().Err(err).Msg("failed to clear wishlist")
		return err
	}
	return nil
}

// Items returns a copy of the wishlist in insertion order.
func (w *Wishlist) Items() []model.Product {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot()
}

func (w *Wishlist) snapshot() []model.Product {
	out := make([]model.Product, len(w.items))
	copy(out, w.items)
	return out
}

// Loading reports whether the first load is still outstanding.
func (w *Wishlist) Loading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loading
}

// dedupe keeps the first occurrence of each product ID.
func dedupe(items []model.Product) []model.Product {
	seen := make(map[string]struct{}, len(items))
	out := make([]model.Product, 0, len(items))
	for _, p := range items {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
