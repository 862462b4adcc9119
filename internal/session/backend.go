// Package session holds the per-request cart and wishlist stores and the
// backends they persist to: a device session for anonymous shoppers and a
// per-user document for signed-in ones.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/gorilla/sessions"
)

// Backend loads and persists one list. Implementations are not safe for
// concurrent use; the owning store serialises calls.
type Backend[T any] interface {
	Load(ctx context.Context) ([]T, error)
	Save(ctx context.Context, items []T) error
	Clear(ctx context.Context) error
}

// remoteBackend persists to the per-user document store and remembers the
// version it last saw for compare-and-set writes.
type remoteBackend[T any] struct {
	userID  string
	version int64

	load func(ctx context.Context, userID string) (*repository.Document[T], error)
	save func(ctx context.Context, userID string, items []T, version int64) (int64, error)
	del  func(ctx context.Context, userID string) error
}

// NewRemoteCartBackend binds the cart of userID in repo.
func NewRemoteCartBackend(repo repository.CartRepository, userID string) Backend[model.CartItem] {
	return &remoteBackend[model.CartItem]{
		userID: userID,
		load:   repo.LoadCart,
		save:   repo.SaveCart,
		del:    repo.DeleteCart,
	}
}

// NewRemoteWishlistBackend binds the wishlist of userID in repo.
func NewRemoteWishlistBackend(repo repository.WishlistRepository, userID string) Backend[model.Product] {
	return &remoteBackend[model.Product]{
		userID: userID,
		load:   repo.LoadWishlist,
		save:   repo.SaveWishlist,
		del:    repo.DeleteWishlist,
	}
}

func (b *remoteBackend[T]) Load(ctx context.Context) ([]T, error) {
	doc, err := b.load(ctx, b.userID)
	if err != nil {
		return nil, err
	}
	b.version = doc.Version
	return doc.Items, nil
}

func (b *remoteBackend[T]) Save(ctx context.Context, items []T) error {
	next, err := b.save(ctx, b.userID, items, b.version)
	if err != nil {
		return err
	}
	b.version = next
	return nil
}

func (b *remoteBackend[T]) Clear(ctx context.Context) error {
	if err := b.del(ctx, b.userID); err != nil {
		return err
	}
	b.version = 0
	return nil
}

// ProductLookup resolves product IDs against the current catalogue. Unknown
// IDs are left out of the result.
type ProductLookup interface {
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)
}

// deviceLine is one list entry as kept in a device session. Only the product
// ID travels in the cookie; details come back from the catalogue on load.
type deviceLine struct {
	ID       string `json:"id"`
	Quantity int    `json:"q,omitempty"`
}

// deviceBackend keeps the list as compact JSON inside the shopper's device
// session, one session per list.
type deviceBackend[T any] struct {
	store    sessions.Store
	name     string
	key      string
	products ProductLookup
	r        *http.Request
	w        http.ResponseWriter

	lines  func(items []T) []deviceLine
	expand func(line deviceLine, p model.Product) (T, bool)
}

func newDeviceCartBackend(store sessions.Store, name string, products ProductLookup, w http.ResponseWriter, r *http.Request) Backend[model.CartItem] {
	return &deviceBackend[model.CartItem]{
		store:    store,
		name:     name,
		key:      cartSessionKey,
		products: products,
		r:        r,
		w:        w,
		lines: func(items []model.CartItem) []deviceLine {
			out := make([]deviceLine, len(items))
			for i, item := range items {
				out[i] = deviceLine{ID: item.Product.ID, Quantity: item.Quantity}
			}
			return out
		},
		expand: func(line deviceLine, p model.Product) (model.CartItem, bool) {
			if line.Quantity <= 0 {
				return model.CartItem{}, false
			}
			return model.CartItem{Product: p, Quantity: line.Quantity}, true
		},
	}
}

func newDeviceWishlistBackend(store sessions.Store, name string, products ProductLookup, w http.ResponseWriter, r *http.Request) Backend[model.Product] {
	return &deviceBackend[model.Product]{
		store:    store,
		name:     name,
		key:      wishlistSessionKey,
		products: products,
		r:        r,
		w:        w,
		lines: func(items []model.Product) []deviceLine {
			out := make([]deviceLine, len(items))
			for i, p := range items {
				out[i] = deviceLine{ID: p.ID}
			}
			return out
		},
		expand: func(_ deviceLine, p model.Product) (model.Product, bool) {
			return p, true
		},
	}
}

func (b *deviceBackend[T]) session() *sessions.Session {
	// Get returns a fresh session alongside the error when the stored one
	// cannot be decoded; an unreadable cookie just means an empty list.
	sess, _ := b.store.Get(b.r, b.name)
	return sess
}

// Load decodes the stored lines and resolves them against the catalogue.
// Lines whose product no longer exists are dropped.
func (b *deviceBackend[T]) Load(ctx context.Context) ([]T, error) {
	items := []T{}
	sess := b.session()
	if sess == nil {
		return items, nil
	}
	raw, ok := sess.Values[b.key].(string)
	if !ok || raw == "" {
		return items, nil
	}
	var lines []deviceLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		// Same as an unreadable cookie.
		return items, nil
	}

	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if line.ID != "" {
			ids = append(ids, line.ID)
		}
	}
	if len(ids) == 0 {
		return items, nil
	}

	found, err := b.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s products: %w", b.key, err)
	}
	byID := make(map[string]model.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	for _, line := range lines {
		p, ok := byID[line.ID]
		if !ok {
			continue
		}
		if item, ok := b.expand(line, p); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func (b *deviceBackend[T]) Save(ctx context.Context, items []T) error {
	sess := b.session()
	if sess == nil {
		return fmt.Errorf("device session %q unavailable", b.name)
	}
	data, err := json.Marshal(b.lines(items))
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", b.key, err)
	}
	sess.Values[b.key] = string(data)
	if err := sess.Save(b.r, b.w); err != nil {
		return fmt.Errorf("failed to save device session: %w", err)
	}
	return nil
}

func (b *deviceBackend[T]) Clear(ctx context.Context) error {
	sess := b.session()
	if sess == nil {
		return nil
	}
	delete(sess.Values, b.key)
	if err := sess.Save(b.r, b.w); err != nil {
		return fmt.Errorf("failed to save device session: %w", err)
	}
	return nil
}
