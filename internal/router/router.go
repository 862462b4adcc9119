package router

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Health   *handler.HealthHandler
	Products *handler.ProductHandler
	Store    *handler.StoreHandler
	Orders   *handler.OrderHandler
	Payments *handler.PaymentHandler
	Profile  *handler.ProfileHandler
	Contact  *handler.ContactHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(
	h Handlers,
	admins middleware.AdminChecker,
	serverCfg config.ServerConfig,
	authCfg config.AuthConfig,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	auth := func(fn http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(fn)
	}
	requireAdmin := middleware.RequireAdmin(admins, logger)
	admin := func(fn http.HandlerFunc) http.Handler {
		return requireAdmin(fn)
	}

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", h.Health.Health)

	// Catalogue
	mux.HandleFunc("GET /api/products", h.Products.List)
	mux.HandleFunc("GET /api/products/{id}", h.Products.Get)

	// Cart and wishlist work for signed-in and anonymous shoppers alike
	mux.HandleFunc("GET /api/cart", h.Store.GetCart)
	mux.HandleFunc("DELETE /api/cart", h.Store.ClearCart)
	mux.HandleFunc("POST /api/cart/items", h.Store.AddCartItem)
	mux.HandleFunc("PUT /api/cart/items/{productId}", h.Store.UpdateCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{productId}", h.Store.RemoveCartItem)
	mux.HandleFunc("GET /api/wishlist", h.Store.GetWishlist)
	mux.HandleFunc("DELETE /api/wishlist", h.Store.ClearWishlist)
	mux.HandleFunc("POST /api/wishlist/items", h.Store.AddWishlistItem)
	mux.HandleFunc("GET /api/wishlist/items/{productId}", h.Store.HasWishlistItem)
	mux.HandleFunc("DELETE /api/wishlist/items/{productId}", h.Store.RemoveWishlistItem)

	// Checkout and guest order tracking
	mux.HandleFunc("POST /api/checkout", h.Orders.Checkout)
	mux.HandleFunc("GET /api/order-tracking", h.Orders.Track)
	mux.HandleFunc("POST /api/order-tracking", h.Orders.TrackByEmail)
	mux.HandleFunc("POST /api/contact", h.Contact.Submit)

	// Payment bridge
	mux.HandleFunc("POST /api/payment/create-intent", h.Payments.CreateIntent)
	mux.HandleFunc("POST /api/payment/update-intent", h.Payments.UpdateIntent)
	mux.HandleFunc("POST /api/payment/webhook", h.Payments.Webhook)

	// Signed-in user
	mux.Handle("GET /api/orders", auth(h.Orders.ListMine))
	mux.Handle("GET /api/profile", auth(h.Profile.Get))
	mux.Handle("PUT /api/profile", auth(h.Profile.Save))
	mux.Handle("DELETE /api/account", auth(h.Profile.DeleteAccount))

	// Administration
	mux.Handle("GET /api/admin/orders", admin(h.Orders.List))
	mux.Handle("GET /api/admin/orders/{id}", admin(h.Orders.Get))
	mux.Handle("PUT /api/admin/orders/{id}/status", admin(h.Orders.UpdateStatus))
	mux.Handle("GET /api/admin/analytics", admin(h.Orders.Analytics))
	mux.Handle("POST /api/admin/products", admin(h.Products.Create))
	mux.Handle("PUT /api/admin/products/{id}", admin(h.Products.Update))
	mux.Handle("DELETE /api/admin/products/{id}", admin(h.Products.Delete))

	// Apply middleware in order: Recovery -> Logging -> CORS -> Authenticate
	var handler http.Handler = mux
	handler = middleware.Authenticate(authCfg, logger)(handler)
	handler = middleware.CORS(serverCfg.AllowedOrigins)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
