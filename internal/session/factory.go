package session

import (
	"context"
	"net/http"
	"os"

	"storefront/internal/config"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
)

const (
	cartSessionKey     = "cart"
	wishlistSessionKey = "wishlist"
)

// NewDeviceStore builds the session store used for anonymous shoppers.
// Sessions live on disk when cfg.StoreDir is set and in a signed cookie
// otherwise.
func NewDeviceStore(cfg config.SessionConfig) (sessions.Store, error) {
	opts := &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	if cfg.StoreDir != "" {
		if err := os.MkdirAll(cfg.StoreDir, 0o700); err != nil {
			return nil, err
		}
		store := sessions.NewFilesystemStore(cfg.StoreDir, []byte(cfg.Secret))
		// Carts easily outgrow the default 4096 byte limit.
		store.MaxLength(0)
		store.Options = opts
		return store, nil
	}

	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = opts
	return store, nil
}

// Factory opens cart and wishlist stores bound to the backend that matches
// the caller: the per-user document for signed-in users, the device session
// otherwise.
type Factory struct {
	carts       repository.CartRepository
	wishlists   repository.WishlistRepository
	products    ProductLookup
	device      sessions.Store
	sessionName string
	logger      zerolog.Logger
}

// NewFactory returns a Factory. Device sessions are stored under
// sessionName with a per-list suffix; products resolves their entries.
func NewFactory(
	carts repository.CartRepository,
	wishlists repository.WishlistRepository,
	products ProductLookup,
	device sessions.Store,
	sessionName string,
	logger zerolog.Logger,
) *Factory {
	if sessionName == "" {
		sessionName = "storefront"
	}
	return &Factory{
		carts:       carts,
		wishlists:   wishlists,
		products:    products,
		device:      device,
		sessionName: sessionName,
		logger:      logger,
	}
}

// CartBackend selects the cart backend for id. A nil id is anonymous.
func (f *Factory) CartBackend(w http.ResponseWriter, r *http.Request, id *model.Identity) Backend[model.CartItem] {
	if id != nil {
		return NewRemoteCartBackend(f.carts, id.UserID)
	}
	return newDeviceCartBackend(f.device, f.sessionName+"-"+cartSessionKey, f.products, w, r)
}

// WishlistBackend selects the wishlist backend for id.
func (f *Factory) WishlistBackend(w http.ResponseWriter, r *http.Request, id *model.Identity) Backend[model.Product] {
	if id != nil {
		return NewRemoteWishlistBackend(f.wishlists, id.UserID)
	}
	return newDeviceWishlistBackend(f.device, f.sessionName+"-"+wishlistSessionKey, f.products, w, r)
}

// OpenCart returns a loaded cart for the caller.
func (f *Factory) OpenCart(ctx context.Context, w http.ResponseWriter, r *http.Request, id *model.Identity) (*Cart, error) {
	cart := NewCart(f.CartBackend(w, r, id), f.logger)
	if err := cart.Load(ctx); err != nil {
		return nil, err
	}
	return cart, nil
}

// OpenWishlist returns a loaded wishlist for the caller.
func (f *Factory) OpenWishlist(ctx context.Context, w http.ResponseWriter, r *http.Request, id *model.Identity) (*Wishlist, error) {
	wishlist := NewWishlist(f.WishlistBackend(w, r, id), f.logger)
	if err := wishlist.Load(ctx); err != nil {
		return nil, err
	}
	return wishlist, nil
}

// DeleteUserData removes the stored cart and wishlist of a signed-in user.
func (f *Factory) DeleteUserData(ctx context.Context, userID string) error {
	if err := f.carts.DeleteCart(ctx, userID); err != nil {
		return err
	}
	return f.wishlists.DeleteWishlist(ctx, userID)
}
