package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/repository"
	"storefront/internal/session"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) GetByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, input model.ProductInput, actor string) (*model.Product, error) {
	args := m.Called(ctx, input, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id string, input model.ProductInput, actor string) (*model.Product, error) {
	args := m.Called(ctx, id, input, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, req *model.CreateOrderRequest) (*model.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) TrackOrder(ctx context.Context, id, email string) (*model.Order, error) {
	args := m.Called(ctx, id, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) ListUserOrders(ctx context.Context, userID string) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) ApplyPaymentOutcome(ctx context.Context, outcome model.PaymentOutcome) (*model.Order, error) {
	args := m.Called(ctx, outcome)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) AttachPaymentIntent(ctx context.Context, orderID, paymentIntentID string) error {
	return m.Called(ctx, orderID, paymentIntentID).Error(0)
}

func (m *MockOrderService) Analytics(ctx context.Context, from, to time.Time) (*model.Analytics, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Analytics), args.Error(1)
}

// MockCheckoutService is a mock implementation of CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Checkout(ctx context.Context, cart *session.Cart, id *model.Identity, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	args := m.Called(ctx, cart, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutResponse), args.Error(1)
}

// MockProfileService is a mock implementation of ProfileService.
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Get(ctx context.Context, id *model.Identity) (*model.UserProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserProfile), args.Error(1)
}

func (m *MockProfileService) Save(ctx context.Context, id *model.Identity, req *model.ProfileRequest) (*model.UserProfile, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserProfile), args.Error(1)
}

func (m *MockProfileService) DeleteAccount(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockProfileService) SetAdmin(ctx context.Context, userID string, isAdmin bool) error {
	return m.Called(ctx, userID, isAdmin).Error(0)
}

func (m *MockProfileService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

// MockContactService is a mock implementation of ContactService.
type MockContactService struct {
	mock.Mock
}

func (m *MockContactService) Submit(ctx context.Context, req *model.ContactRequest) error {
	return m.Called(ctx, req).Error(0)
}

// MockGateway is a mock implementation of payment.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateIntent(ctx context.Context, params payment.CreateIntentParams) (*payment.Intent, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockGateway) UpdateIntent(ctx context.Context, id string, metadata map[string]string) (*payment.Intent, error) {
	args := m.Called(ctx, id, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockGateway) ConstructEvent(payload []byte, signature string) (*payment.Event, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Event), args.Error(1)
}

// memoryBackend keeps documents in memory. saveErr fails every save.
type memoryBackend[T any] struct {
	items   []T
	saves   int
	saveErr error
}

func (b *memoryBackend[T]) Load(ctx context.Context) ([]T, error) {
	return append([]T(nil), b.items...), nil
}

func (b *memoryBackend[T]) Save(ctx context.Context, items []T) error {
	if b.saveErr != nil {
		return b.saveErr
	}
	b.saves++
	b.items = append([]T(nil), items...)
	return nil
}

func (b *memoryBackend[T]) Clear(ctx context.Context) error {
	b.items = nil
	return nil
}

// fakeStores hands out stores over shared memory backends and records the
// identity each request was opened with.
type fakeStores struct {
	cart     *memoryBackend[model.CartItem]
	wishlist *memoryBackend[model.Product]
	openErr  error
	lastID   *model.Identity
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		cart:     &memoryBackend[model.CartItem]{},
		wishlist: &memoryBackend[model.Product]{},
	}
}

func (f *fakeStores) OpenCart(ctx context.Context, w http.ResponseWriter, r *http.Request, id *model.Identity) (*session.Cart, error) {
	f.lastID = id
	if f.openErr != nil {
		return nil, f.openErr
	}
	cart := session.NewCart(f.cart, zerolog.Nop())
	if err := cart.Load(ctx); err != nil {
		return nil, err
	}
	return cart, nil
}

func (f *fakeStores) OpenWishlist(ctx context.Context, w http.ResponseWriter, r *http.Request, id *model.Identity) (*session.Wishlist, error) {
	f.lastID = id
	if f.openErr != nil {
		return nil, f.openErr
	}
	wishlist := session.NewWishlist(f.wishlist, zerolog.Nop())
	if err := wishlist.Load(ctx); err != nil {
		return nil, err
	}
	return wishlist, nil
}

var testIdentity = &model.Identity{UserID: "user-1", Email: "ada@example.com", Name: "Ada Lovelace"}

// newRequest builds a request with an optional JSON body and identity.
func newRequest(method, target, body string, id *model.Identity) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if id != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), id))
	}
	return req
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func boolPtr(b bool) *bool {
	return &b
}
