package session

import (
	"context"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlist_AddIsIdempotent(t *testing.T) {
	backend := &fakeBackend[model.Product]{}
	wishlist := NewWishlist(backend, zerolog.Nop())
	ctx := context.Background()
	require.NoError(t, wishlist.Load(ctx))

	require.NoError(t, wishlist.AddToWishlist(ctx, product("A", 1)))
	require.NoError(t, wishlist.AddToWishlist(ctx, product("A", 1)))
	require.NoError(t, wishlist.AddToWishlist(ctx, product("B", 1)))

	assert.Len(t, wishlist.Items(), 2)
	assert.True(t, wishlist.IsInWishlist("A"))
	assert.False(t, wishlist.IsInWishlist("C"))
	assert.Equal(t, 2, backend.saves)
}

func TestWishlist_RemoveAndClear(t *testing.T) {
	backend := &fakeBackend[model.Product]{stored: []model.Product{product("A", 1), product("B", 1)}}
	wishlist := NewWishlist(backend, zerolog.Nop())
	ctx := context.Background()
	require.NoError(t, wishlist.Load(ctx))

	require.NoError(t, wishlist.RemoveFromWishlist(ctx, "missing"))
	assert.Zero(t, backend.saves)

	require.NoError(t, wishlist.RemoveFromWishlist(ctx, "A"))
	assert.False(t, wishlist.IsInWishlist("A"))
	assert.Equal(t, 1, backend.saves)

	require.NoError(t, wishlist.ClearWishlist(ctx))
	assert.Empty(t, wishlist.Items())
	assert.Equal(t, 1, backend.clears)
}

func TestWishlist_LoadDeduplicates(t *testing.T) {
	backend := &fakeBackend[model.Product]{stored: []model.Product{product("A", 1), product("A", 2), product("B", 1)}}
	wishlist := NewWishlist(backend, zerolog.Nop())
	require.NoError(t, wishlist.Load(context.Background()))

	items := wishlist.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 1.0, items[0].Price)
}
