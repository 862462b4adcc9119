package repository

import (
	"context"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository_List(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewProductRepository(pool, logger)

	testProducts := []model.Product{
		{ID: "P001", Name: "Product A", Price: 10.00, Category: strPtr("Cat1")},
		{ID: "P002", Name: "Product B", Price: 20.00, Category: strPtr("Cat2")},
		{ID: "P003", Name: "Product C", Price: 30.00, Category: strPtr("Cat1")},
		{ID: "P004", Name: "Product D", Price: 40.00},
		{ID: "P005", Name: "Product E", Price: 50.00, Category: strPtr("Cat2")},
	}
	seedProducts(t, pool, testProducts)

	tests := []struct {
		name     string
		filter   ProductFilter
		expected int
	}{
		{
			name:     "Get all products",
			filter:   ProductFilter{Limit: 10},
			expected: 5,
		},
		{
			name:     "Get first page",
			filter:   ProductFilter{Limit: 2},
			expected: 2,
		},
		{
			name:     "Get last page",
			filter:   ProductFilter{Limit: 2, Offset: 4},
			expected: 1,
		},
		{
			name:     "Offset beyond results",
			filter:   ProductFilter{Limit: 10, Offset: 10},
			expected: 0,
		},
		{
			name:     "Filter by category",
			filter:   ProductFilter{Category: "Cat1", Limit: 10},
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := repo.List(context.Background(), tt.filter)

			require.NoError(t, err)
			assert.Len(t, products, tt.expected)

			// Verify products are ordered by name
			for i := 1; i < len(products); i++ {
				assert.LessOrEqual(t, products[i-1].Name, products[i].Name)
			}
		})
	}
}

func TestProductRepository_GetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())
	seedProducts(t, pool, []model.Product{
		{ID: "P001", Name: "Test Product", Price: 99.99, InStock: boolPtr(false), Images: []string{"a.jpg", "b.jpg"}},
	})

	ctx := context.Background()

	product, err := repo.GetByID(ctx, "P001")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "Test Product", product.Name)
	assert.InDelta(t, 99.99, product.Price, 0.0001)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, product.Images)
	assert.Nil(t, product.Category)
	assert.False(t, product.Available())

	missing, err := repo.GetByID(ctx, "P999")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProductRepository_GetByIDs(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())
	seedProducts(t, pool, []model.Product{
		{ID: "P001", Name: "A", Price: 1},
		{ID: "P002", Name: "B", Price: 2},
	})

	products, err := repo.GetByIDs(context.Background(), []string{"P002", "P001", "P404"})
	require.NoError(t, err)
	assert.Len(t, products, 2)

	empty, err := repo.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestProductRepository_CreateUpdateDelete(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())
	ctx := context.Background()

	p := &model.Product{ID: "P100", Name: "Lamp", Price: 29.99, CreatedBy: "admin-1"}
	require.NoError(t, repo.Create(ctx, p))
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, "admin-1", p.UpdatedBy)

	p.Price = 24.99
	p.UpdatedBy = "admin-2"
	require.NoError(t, repo.Update(ctx, p))
	assert.Equal(t, "admin-1", p.CreatedBy)

	stored, err := repo.GetByID(ctx, "P100")
	require.NoError(t, err)
	assert.InDelta(t, 24.99, stored.Price, 0.0001)
	assert.Equal(t, "admin-2", stored.UpdatedBy)

	require.NoError(t, repo.Delete(ctx, "P100"))
	assert.ErrorIs(t, repo.Delete(ctx, "P100"), model.ErrProductNotFound)
	assert.ErrorIs(t, repo.Update(ctx, p), model.ErrProductNotFound)
}

func TestProductRepository_Upsert(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())
	ctx := context.Background()

	n, err := repo.Upsert(ctx, []model.Product{
		{ID: "P001", Name: "Mug", Price: 9.5},
		{ID: "P002", Name: "Cup", Price: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.Upsert(ctx, []model.Product{{ID: "P001", Name: "Big Mug", Price: 12}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := repo.GetByID(ctx, "P001")
	require.NoError(t, err)
	assert.Equal(t, "Big Mug", stored.Name)

	all, err := repo.List(ctx, ProductFilter{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
