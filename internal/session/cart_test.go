package session

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend records calls and serves a fixed list.
type fakeBackend[T any] struct {
	stored  []T
	loadErr error
	saveErr error

	loads  int
	saves  int
	clears int
}

func (b *fakeBackend[T]) Load(ctx context.Context) ([]T, error) {
	b.loads++
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	out := make([]T, len(b.stored))
	copy(out, b.stored)
	return out, nil
}

func (b *fakeBackend[T]) Save(ctx context.Context, items []T) error {
	b.saves++
	if b.saveErr != nil {
		return b.saveErr
	}
	b.stored = items
	return nil
}

func (b *fakeBackend[T]) Clear(ctx context.Context) error {
	b.clears++
	b.stored = nil
	return nil
}

func product(id string, price float64) model.Product {
	return model.Product{ID: id, Name: "Product " + id, Price: price}
}

func loadedCart(t *testing.T, backend *fakeBackend[model.CartItem]) *Cart {
	cart := NewCart(backend, zerolog.Nop())
	require.NoError(t, cart.Load(context.Background()))
	return cart
}

func TestCart_AddToCartMergesQuantities(t *testing.T) {
	backend := &fakeBackend[model.CartItem]{}
	cart := loadedCart(t, backend)
	ctx := context.Background()

	require.NoError(t, cart.AddToCart(ctx, product("A", 10), 1))
	require.NoError(t, cart.AddToCart(ctx, product("B", 5), 1))
	require.NoError(t, cart.AddToCart(ctx, product("A", 10), 2))

	items := cart.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].Product.ID, "merged line keeps its position")
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 1, backend.loads)
	assert.Equal(t, 3, backend.saves)
	assert.Equal(t, items, backend.stored)
}

func TestCart_AddZeroQuantity(t *testing.T) {
	backend := &fakeBackend[model.CartItem]{}
	cart := loadedCart(t, backend)
	ctx := context.Background()

	require.NoError(t, cart.AddToCart(ctx, product("A", 10), 0))
	assert.Empty(t, cart.Items())

	require.NoError(t, cart.AddToCart(ctx, product("A", 10), 2))
	require.NoError(t, cart.AddToCart(ctx, product("A", 10), 0))
	assert.Equal(t, 2, cart.Items()[0].Quantity)
	assert.Equal(t, 1, backend.saves)
}

func TestCart_UpdateQuantity(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		wantLen  int
	}{
		{name: "Positive sets in place", quantity: 7, wantLen: 2},
		{name: "Zero removes", quantity: 0, wantLen: 1},
		{name: "Negative removes", quantity: -1, wantLen: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend[model.CartItem]{stored: []model.CartItem{
				{Product: product("A", 1), Quantity: 1},
				{Product: product("B", 1), Quantity: 1},
			}}
			cart := loadedCart(t, backend)

			require.NoError(t, cart.UpdateQuantity(context.Background(), "A", tt.quantity))

			items := cart.Items()
			assert.Len(t, items, tt.wantLen)
			if tt.quantity > 0 {
				assert.Equal(t, "A", items[0].Product.ID)
				assert.Equal(t, tt.quantity, items[0].Quantity)
			} else {
				assert.Equal(t, "B", items[0].Product.ID)
			}
			assert.Equal(t, 1, backend.saves)
		})
	}
}

func TestCart_RemoveAbsentIsNoOp(t *testing.T) {
	backend := &fakeBackend[model.CartItem]{stored: []model.CartItem{{Product: product("A", 1), Quantity: 1}}}
	cart := loadedCart(t, backend)

	require.NoError(t, cart.RemoveFromCart(context.Background(), "missing"))
	require.NoError(t, cart.UpdateQuantity(context.Background(), "missing", 4))

	assert.Len(t, cart.Items(), 1)
	assert.Zero(t, backend.saves)

	require.NoError(t, cart.RemoveFromCart(context.Background(), "A"))
	assert.Empty(t, cart.Items())
	assert.Equal(t, 1, backend.saves)
}

func TestCart_Totals(t *testing.T) {
	cart := loadedCart(t, &fakeBackend[model.CartItem]{})
	ctx := context.Background()

	require.NoError(t, cart.AddToCart(ctx, product("A", 29.99), 2))
	require.NoError(t, cart.AddToCart(ctx, product("B", 49.99), 1))

	assert.InDelta(t, 109.97, cart.TotalPrice(), 1e-9)
	assert.Equal(t, 3, cart.TotalItems())

	resp := cart.Response()
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, 3, resp.TotalItems)
}

func TestCart_MutationsBeforeLoadAreNotPersisted(t *testing.T) {
	backend := &fakeBackend[model.CartItem]{stored: []model.CartItem{{Product: product("S", 3), Quantity: 4}}}
	cart := NewCart(backend, zerolog.Nop())
	ctx := context.Background()

	assert.True(t, cart.Loading())
	require.NoError(t, cart.AddToCart(ctx, product("A", 1), 1))
	assert.Len(t, cart.Items(), 1)
	assert.Zero(t, backend.saves)

	require.NoError(t, cart.Load(ctx))
	assert.False(t, cart.Loading())

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "S", items[0].Product.ID, "load replaces memory wholesale")
}

func TestCart_PersistFailureKeepsMemory(t *testing.T) {
	saveErr := errors.New("store unavailable")
	backend := &fakeBackend[model.CartItem]{saveErr: saveErr}
	cart := loadedCart(t, backend)

	err := cart.AddToCart(context.Background(), product("A", 2), 1)
	assert.ErrorIs(t, err, saveErr)
	assert.Len(t, cart.Items(), 1)
}

func TestCart_LoadFailure(t *testing.T) {
	loadErr := errors.New("timeout")
	cart := NewCart(&fakeBackend[model.CartItem]{loadErr: loadErr}, zerolog.Nop())

	err := cart.Load(context.Background())
	assert.ErrorIs(t, err, loadErr)
	assert.Empty(t, cart.Items())
	assert.False(t, cart.Loading())
}

func TestCart_SwitchBackendDoesNotMerge(t *testing.T) {
	device := &fakeBackend[model.CartItem]{stored: []model.CartItem{{Product: product("D", 1), Quantity: 1}}}
	remote := &fakeBackend[model.CartItem]{stored: []model.CartItem{{Product: product("R", 1), Quantity: 2}}}
	cart := loadedCart(t, device)
	ctx := context.Background()

	require.NoError(t, cart.SwitchBackend(ctx, remote))

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "R", items[0].Product.ID)
	assert.Equal(t, 1, remote.loads)

	require.NoError(t, cart.AddToCart(ctx, product("X", 1), 1))
	assert.Equal(t, 1, remote.saves)
	assert.Zero(t, device.saves)
}

func TestCart_ClearCart(t *testing.T) {
	backend := &fakeBackend[model.CartItem]{stored: []model.CartItem{{Product: product("A", 1), Quantity: 1}}}
	cart := loadedCart(t, backend)

	require.NoError(t, cart.ClearCart(context.Background()))

	assert.Empty(t, cart.Items())
	assert.Equal(t, 1, backend.clears)
	assert.Nil(t, backend.stored)
}
