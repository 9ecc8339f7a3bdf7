package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/clothing_shop/internal/models"
	"github.com/Skotchmaster/clothing_shop/internal/repo"
)

func seedCatalog(t *testing.T, env *testEnv) (models.Product, models.Product, models.Product) {
	t.Helper()
	denim := env.createProduct(t, models.Product{Name: "Slim Denim Jacket", Brand: "Penshoppe", Category: "jacket", Description: "stonewashed denim", Price: 1299, Stock: 10})
	tee := env.createProduct(t, models.Product{Name: "Graphic Tee", Brand: "Bench", Category: "t-shirt", Description: "cotton crew neck", Price: 349, Stock: 25})
	hoodie := env.createProduct(t, models.Product{Name: "Zip Hoodie", Brand: "Bench", Category: "hoodie", Description: "fleece lined", Price: 899, Stock: 8})
	return denim, tee, hoodie
}

func TestCatalogGetProduct(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	denim, _, _ := seedCatalog(t, env)

	p, err := env.Catalog.GetProduct(ctx, denim.ID)
	require.NoError(t, err)
	assert.Equal(t, "Slim Denim Jacket", p.Name)

	_, err = env.Catalog.GetProduct(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogSubstringSearch(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	seedCatalog(t, env)

	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{name: "matches name", search: "denim", want: []string{"Slim Denim Jacket"}},
		{name: "matches description", search: "fleece", want: []string{"Zip Hoodie"}},
		{name: "matches brand", search: "bench", want: []string{"Zip Hoodie", "Graphic Tee"}},
		{name: "case insensitive", search: "HOODIE", want: []string{"Zip Hoodie"}},
		{name: "no match", search: "sneaker", want: nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			total, items, err := env.Catalog.ListProducts(ctx, repo.ProductFilter{Search: tt.search}, 0, 20)
			require.NoError(t, err)
			assert.EqualValues(t, len(tt.want), total)

			var names []string
			for _, p := range items {
				names = append(names, p.Name)
			}
			assert.ElementsMatch(t, tt.want, names)
		})
	}
}

func TestCatalogFilters(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	seedCatalog(t, env)

	total, items, err := env.Catalog.ListProducts(ctx, repo.ProductFilter{Brand: "Bench"}, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)

	total, items, err = env.Catalog.ListProducts(ctx, repo.ProductFilter{Brand: "Bench", Category: "hoodie"}, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Zip Hoodie", items[0].Name)

	// pagination: total counts every match even when the page is smaller
	total, items, err = env.Catalog.ListProducts(ctx, repo.ProductFilter{}, 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, items, 2)
}

func TestCatalogFacets(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	seedCatalog(t, env)

	brands, categories, err := env.Catalog.Facets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Bench", "Penshoppe"}, brands)
	assert.Equal(t, []string{"hoodie", "jacket", "t-shirt"}, categories)
}

func TestCatalogCreateValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		product models.Product
	}{
		{name: "missing name", product: models.Product{Brand: "B", Category: "c", Price: 1, Stock: 1}},
		{name: "missing brand", product: models.Product{Name: "n", Category: "c", Price: 1, Stock: 1}},
		{name: "missing category", product: models.Product{Name: "n", Brand: "B", Price: 1, Stock: 1}},
		{name: "negative price", product: models.Product{Name: "n", Brand: "B", Category: "c", Price: -1, Stock: 1}},
		{name: "negative stock", product: models.Product{Name: "n", Brand: "B", Category: "c", Price: 1, Stock: -1}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			p := tt.product
			err := env.Catalog.CreateProduct(ctx, &p)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCatalogUpdateProduct(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	denim, _, _ := seedCatalog(t, env)

	updated, err := env.Catalog.UpdateProduct(ctx, denim.ID, models.Product{
		Name:     "Slim Denim Jacket v2",
		Brand:    "Penshoppe",
		Category: "jacket",
		Price:    1499,
		Stock:    12,
	})
	require.NoError(t, err)
	assert.Equal(t, "Slim Denim Jacket v2", updated.Name)
	assert.InDelta(t, 1499, updated.Price, 1e-9)
	assert.Equal(t, 12, env.productStock(t, denim.ID))

	_, err = env.Catalog.UpdateProduct(ctx, 999, models.Product{Name: "n", Brand: "B", Category: "c", Price: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogDeleteProduct(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	denim, _, _ := seedCatalog(t, env)

	require.NoError(t, env.Catalog.DeleteProduct(ctx, denim.ID))
	_, err := env.Catalog.GetProduct(ctx, denim.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = env.Catalog.DeleteProduct(ctx, denim.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

// The conditional decrement never takes stock below zero: an oversized
// request matches no row and reports false.
func TestDecrementStockFloor(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProduct(t, models.Product{Name: "Tee", Brand: "B", Category: "t-shirt", Price: 100, Stock: 3})

	ok, err := env.Repo.DecrementStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, env.productStock(t, p.ID))

	ok, err = env.Repo.DecrementStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, env.productStock(t, p.ID))

	// draining to exactly zero is allowed
	ok, err = env.Repo.DecrementStock(ctx, p.ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, env.productStock(t, p.ID))
}

func TestOrderListing(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProduct(t, models.Product{Name: "Tee", Brand: "B", Category: "t-shirt", Price: 100, Stock: 10})

	for i := 0; i < 3; i++ {
		_, err := env.Checkout.PlaceOrder(ctx, 1, BuyNowInput{ProductID: p.ID, Size: "M", Color: "Black", Quantity: 1, Details: validDetails()})
		require.NoError(t, err)
	}
	_, err := env.Checkout.PlaceOrder(ctx, 2, BuyNowInput{ProductID: p.ID, Size: "M", Color: "Black", Quantity: 1, Details: validDetails()})
	require.NoError(t, err)

	orders, err := env.Orders.ListOrders(ctx, 1, 0, 10)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	for _, o := range orders {
		assert.EqualValues(t, 1, o.UserID)
	}

	// newest first
	assert.GreaterOrEqual(t, orders[0].ID, orders[1].ID)
	assert.GreaterOrEqual(t, orders[1].ID, orders[2].ID)

	orders, err = env.Orders.ListOrders(ctx, 1, 0, 2)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}
