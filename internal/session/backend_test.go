package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/config"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCartRepo is an in-memory CartRepository with version checks.
type memoryCartRepo struct {
	docs map[string]*repository.Document[model.CartItem]
}

func newMemoryCartRepo() *memoryCartRepo {
	return &memoryCartRepo{docs: map[string]*repository.Document[model.CartItem]{}}
}

func (m *memoryCartRepo) LoadCart(ctx context.Context, userID string) (*repository.Document[model.CartItem], error) {
	if doc, ok := m.docs[userID]; ok {
		copied := *doc
		return &copied, nil
	}
	return &repository.Document[model.CartItem]{Items: []model.CartItem{}}, nil
}

func (m *memoryCartRepo) SaveCart(ctx context.Context, userID string, items []model.CartItem, version int64) (int64, error) {
	current := int64(0)
	if doc, ok := m.docs[userID]; ok {
		current = doc.Version
	}
	if current != version {
		return 0, model.ErrConflict
	}
	m.docs[userID] = &repository.Document[model.CartItem]{Version: version + 1, Items: items}
	return version + 1, nil
}

func (m *memoryCartRepo) DeleteCart(ctx context.Context, userID string) error {
	delete(m.docs, userID)
	return nil
}

// catalogue is an in-memory ProductLookup.
type catalogue struct {
	products map[string]model.Product
	err      error
}

func newCatalogue(products ...model.Product) *catalogue {
	c := &catalogue{products: map[string]model.Product{}}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *catalogue) GetByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	out := []model.Product{}
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// fullProduct has the description and images a real catalogue entry carries.
func fullProduct(i int) model.Product {
	return model.Product{
		ID:          fmt.Sprintf("prod-%02d-4f1c9a7e-8d2b-4e55-b1a3-%012d", i, i),
		Name:        fmt.Sprintf("Organic Cotton Crew Tee %d", i),
		Price:       29.99,
		Description: strings.Repeat("Soft, breathable organic cotton with a relaxed fit. ", 4),
		Images: []string{
			fmt.Sprintf("https://cdn.example.com/products/%d/front-large.jpg", i),
			fmt.Sprintf("https://cdn.example.com/products/%d/back-large.jpg", i),
		},
	}
}

// withCookies replays cookies onto req. A later Set-Cookie for the same
// name wins, as in a browser.
func withCookies(req *http.Request, cookies []*http.Cookie) *http.Request {
	latest := map[string]*http.Cookie{}
	var order []string
	for _, c := range cookies {
		if _, ok := latest[c.Name]; !ok {
			order = append(order, c.Name)
		}
		latest[c.Name] = c
	}
	for _, name := range order {
		req.AddCookie(latest[name])
	}
	return req
}

func TestRemoteBackend_TracksVersion(t *testing.T) {
	repo := newMemoryCartRepo()
	ctx := context.Background()

	first := NewCart(NewRemoteCartBackend(repo, "u-1"), zerolog.Nop())
	second := NewCart(NewRemoteCartBackend(repo, "u-1"), zerolog.Nop())
	require.NoError(t, first.Load(ctx))
	require.NoError(t, second.Load(ctx))

	require.NoError(t, first.AddToCart(ctx, product("A", 1), 1))
	require.NoError(t, first.AddToCart(ctx, product("A", 1), 1))
	assert.Equal(t, int64(2), repo.docs["u-1"].Version)

	// The second session loaded before the writes above.
	err := second.AddToCart(ctx, product("B", 1), 1)
	assert.ErrorIs(t, err, model.ErrConflict)

	require.NoError(t, second.Load(ctx))
	require.NoError(t, second.AddToCart(ctx, product("B", 1), 1))
	assert.Len(t, repo.docs["u-1"].Items, 2)

	require.NoError(t, second.ClearCart(ctx))
	assert.NotContains(t, repo.docs, "u-1")
}

func TestDeviceBackend_RoundTripThroughCookie(t *testing.T) {
	store, err := NewDeviceStore(config.SessionConfig{Secret: "0123456789abcdef0123456789abcdef", MaxAge: 3600})
	require.NoError(t, err)
	factory := NewFactory(nil, nil, newCatalogue(product("A", 29.99)), store, "test", zerolog.Nop())
	ctx := context.Background()

	// First request: add an item and capture the cookie.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", nil)
	cart, err := factory.OpenCart(ctx, rec, req, nil)
	require.NoError(t, err)
	require.NoError(t, cart.AddToCart(ctx, product("A", 29.99), 2))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	// Second request carries the cookie back.
	req2 := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	for _, c := range cookies {
		req2.AddCookie(c)
	}
	cart2, err := factory.OpenCart(ctx, httptest.NewRecorder(), req2, nil)
	require.NoError(t, err)

	items := cart2.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0].Product.ID)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestDeviceBackend_GarbageCookieIsEmpty(t *testing.T) {
	store, err := NewDeviceStore(config.SessionConfig{Secret: "secret", MaxAge: 3600})
	require.NoError(t, err)
	factory := NewFactory(nil, nil, newCatalogue(), store, "test", zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/wishlist", nil)
	req.AddCookie(&http.Cookie{Name: "test-wishlist", Value: "not-a-valid-cookie"})

	wishlist, err := factory.OpenWishlist(context.Background(), httptest.NewRecorder(), req, nil)
	require.NoError(t, err)
	assert.Empty(t, wishlist.Items())
}

func TestFactory_SelectsBackendByIdentity(t *testing.T) {
	store, err := NewDeviceStore(config.SessionConfig{Secret: "secret"})
	require.NoError(t, err)
	factory := NewFactory(newMemoryCartRepo(), nil, newCatalogue(), store, "", zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	_, anonymous := factory.CartBackend(rec, req, nil).(*deviceBackend[model.CartItem])
	_, remote := factory.CartBackend(rec, req, &model.Identity{UserID: "u-1"}).(*remoteBackend[model.CartItem])
	assert.True(t, anonymous)
	assert.True(t, remote)
}

func TestDeviceBackend_ManyProductsFitInCookies(t *testing.T) {
	store, err := NewDeviceStore(config.SessionConfig{Secret: "0123456789abcdef0123456789abcdef", MaxAge: 3600})
	require.NoError(t, err)

	products := make([]model.Product, 20)
	for i := range products {
		products[i] = fullProduct(i)
	}
	factory := NewFactory(nil, nil, newCatalogue(products...), store, "storefront", zerolog.Nop())
	ctx := context.Background()

	var cookies []*http.Cookie
	for i, p := range products {
		rec := httptest.NewRecorder()
		req := withCookies(httptest.NewRequest(http.MethodPost, "/api/cart/items", nil), cookies)
		cart, err := factory.OpenCart(ctx, rec, req, nil)
		require.NoError(t, err)
		require.NoError(t, cart.AddToCart(ctx, p, i%3+1), "product %d", i)

		wishlist, err := factory.OpenWishlist(ctx, rec, req, nil)
		require.NoError(t, err)
		require.NoError(t, wishlist.AddToWishlist(ctx, p), "product %d", i)

		cookies = rec.Result().Cookies()
		require.Len(t, cookies, 2)
	}

	req := withCookies(httptest.NewRequest(http.MethodGet, "/api/cart", nil), cookies)
	cart, err := factory.OpenCart(ctx, httptest.NewRecorder(), req, nil)
	require.NoError(t, err)
	items := cart.Items()
	require.Len(t, items, len(products))
	for i, item := range items {
		assert.Equal(t, products[i], item.Product)
		assert.Equal(t, i%3+1, item.Quantity)
	}

	wishlist, err := factory.OpenWishlist(ctx, httptest.NewRecorder(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, products, wishlist.Items())
}

func TestDeviceBackend_ResolvesCurrentCatalogue(t *testing.T) {
	store, err := NewDeviceStore(config.SessionConfig{Secret: "secret", MaxAge: 3600})
	require.NoError(t, err)
	products := newCatalogue(product("A", 10), product("B", 5))
	factory := NewFactory(nil, nil, products, store, "test", zerolog.Nop())
	ctx := context.Background()

	rec := httptest.NewRecorder()
	cart, err := factory.OpenCart(ctx, rec, httptest.NewRequest(http.MethodPost, "/", nil), nil)
	require.NoError(t, err)
	require.NoError(t, cart.AddToCart(ctx, product("A", 10), 1))
	require.NoError(t, cart.AddToCart(ctx, product("B", 5), 2))
	cookies := rec.Result().Cookies()

	before, err := factory.OpenCart(ctx, httptest.NewRecorder(), withCookies(httptest.NewRequest(http.MethodGet, "/", nil), cookies), nil)
	require.NoError(t, err)
	require.Len(t, before.Items(), 2)

	// B leaves the catalogue and A changes price.
	delete(products.products, "B")
	products.products["A"] = product("A", 12)

	reloaded, err := factory.OpenCart(ctx, httptest.NewRecorder(), withCookies(httptest.NewRequest(http.MethodGet, "/", nil), cookies), nil)
	require.NoError(t, err)
	require.Len(t, reloaded.Items(), 1)
	assert.Equal(t, "A", reloaded.Items()[0].Product.ID)
	assert.Equal(t, 12.0, reloaded.Items()[0].Product.Price)

	products.err = errors.New("db down")
	_, err = factory.OpenCart(ctx, httptest.NewRecorder(), withCookies(httptest.NewRequest(http.MethodGet, "/", nil), cookies), nil)
	assert.Error(t, err)
}
