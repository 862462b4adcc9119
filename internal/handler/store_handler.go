package handler

import (
	"context"
	"net/http"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"
	"storefront/internal/session"

	"github.com/rs/zerolog"
)

// StoreOpener opens the caller's cart and wishlist.
type StoreOpener interface {
	OpenCart(ctx context.Context, w http.ResponseWriter, r *http.Request, id *model.Identity) (*session.Cart, error)
	OpenWishlist(ctx context.Context, w http.ResponseWriter, r *http.Request, id *model.Identity) (*session.Wishlist, error)
}

// StoreHandler serves the cart and wishlist of the current caller. Signed-in
// callers use their remote documents; anonymous callers use the device session.
type StoreHandler struct {
	stores   StoreOpener
	products service.ProductService
	logger   zerolog.Logger
}

// NewStoreHandler creates a cart and wishlist handler.
func NewStoreHandler(stores StoreOpener, products service.ProductService, logger zerolog.Logger) *StoreHandler {
	return &StoreHandler{
		stores:   stores,
		products: products,
		logger:   logger.With().Str("handler", "store").Logger(),
	}
}

func (h *StoreHandler) openCart(w http.ResponseWriter, r *http.Request) (*session.Cart, bool) {
	cart, err := h.stores.OpenCart(r.Context(), w, r, middleware.IdentityFrom(r.Context()))
	if err != nil {
		writeServiceError(w, err, "Failed to load cart", h.logger)
		return nil, false
	}
	return cart, true
}

func (h *StoreHandler) openWishlist(w http.ResponseWriter, r *http.Request) (*session.Wishlist, bool) {
	wishlist, err := h.stores.OpenWishlist(r.Context(), w, r, middleware.IdentityFrom(r.Context()))
	if err != nil {
		writeServiceError(w, err, "Failed to load wishlist", h.logger)
		return nil, false
	}
	return wishlist, true
}

// product resolves a catalogue product, writing 404 when it does not exist.
func (h *StoreHandler) product(w http.ResponseWriter, r *http.Request, id string) (*model.Product, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		writeError(w, http.StatusBadRequest, "Product ID is required", h.logger)
		return nil, false
	}
	product, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve product", h.logger)
		return nil, false
	}
	return product, true
}

// GetCart handles GET /api/cart.
func (h *StoreHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.openCart(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, cart.Response())
}

// AddCartItem handles POST /api/cart/items.
func (h *StoreHandler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req model.CartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity <= 0 {
		writeError(w, http.StatusBadRequest, model.ErrInvalidQuantity.Message, h.logger)
		return
	}

	product, ok := h.product(w, r, req.ProductID)
	if !ok {
		return
	}
	if !product.Available() {
		writeError(w, http.StatusBadRequest, model.ErrOutOfStock.Message, h.logger)
		return
	}

	cart, ok := h.openCart(w, r)
	if !ok {
		return
	}
	if err := cart.AddToCart(r.Context(), *product, quantity); err != nil {
		writeServiceError(w, err, "Failed to update cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart.Response())
}

// UpdateCartItem handles PUT /api/cart/items/{productId}. Zero or less removes
// the line.
func (h *StoreHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req model.QuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	cart, ok := h.openCart(w, r)
	if !ok {
		return
	}
	if err := cart.UpdateQuantity(r.Context(), r.PathValue("productId"), req.Quantity); err != nil {
		writeServiceError(w, err, "Failed to update cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart.Response())
}

// RemoveCartItem handles DELETE /api/cart/items/{productId}.
func (h *StoreHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.openCart(w, r)
	if !ok {
		return
	}
	if err := cart.RemoveFromCart(r.Context(), r.PathValue("productId")); err != nil {
		writeServiceError(w, err, "Failed to update cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart.Response())
}

// ClearCart handles DELETE /api/cart.
func (h *StoreHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.openCart(w, r)
	if !ok {
		return
	}
	if err := cart.ClearCart(r.Context()); err != nil {
		writeServiceError(w, err, "Failed to clear cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart.Response())
}

// GetWishlist handles GET /api/wishlist.
func (h *StoreHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	wishlist, ok := h.openWishlist(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, model.WishlistResponse{Items: wishlist.Items()})
}

// AddWishlistItem handles POST /api/wishlist/items.
func (h *StoreHandler) AddWishlistItem(w http.ResponseWriter, r *http.Request) {
	var req model.WishlistItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	product, ok := h.product(w, r, req.ProductID)
	if !ok {
		return
	}

	wishlist, ok := h.openWishlist(w, r)
	if !ok {
		return
	}
	if err := wishlist.AddToWishlist(r.Context(), *product); err != nil {
		writeServiceError(w, err, "Failed to update wishlist", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.WishlistResponse{Items: wishlist.Items()})
}

// HasWishlistItem handles GET /api/wishlist/items/{productId}.
func (h *StoreHandler) HasWishlistItem(w http.ResponseWriter, r *http.Request) {
	wishlist, ok := h.openWishlist(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{
		"inWishlist": wishlist.IsInWishlist(r.PathValue("productId")),
	})
}

// RemoveWishlistItem handles DELETE /api/wishlist/items/{productId}.
func (h *StoreHandler) RemoveWishlistItem(w http.ResponseWriter, r *http.Request) {
	wishlist, ok := h.openWishlist(w, r)
	if !ok {
		return
	}
	if err := wishlist.RemoveFromWishlist(r.Context(), r.PathValue("productId")); err != nil {
		writeServiceError(w, err, "Failed to update wishlist", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.WishlistResponse{Items: wishlist.Items()})
}

// ClearWishlist handles DELETE /api/wishlist.
func (h *StoreHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	wishlist, ok := h.openWishlist(w, r)
	if !ok {
		return
	}
	if err := wishlist.ClearWishlist(r.Context()); err != nil {
		writeServiceError(w, err, "Failed to clear wishlist", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.WishlistResponse{Items: wishlist.Items()})
}
