package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Lixing-Zhang/fast-order/internal/models"
	"github.com/Lixing-Zhang/fast-order/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingCart counts mutations issued against the wrapped cart
type recordingCart struct {
	*models.Cart
	setCalls int
	addCalls int
}

func (c *recordingCart) SetQuantity(lineItemID string, quantity int) error {
	c.setCalls++
	return c.Cart.SetQuantity(lineItemID, quantity)
}

func (c *recordingCart) AddLineItems(items []models.NewLineItem) error {
	c.addCalls++
	return c.Cart.AddLineItems(items)
}

func (c *recordingCart) mutations() int {
	return c.setCalls + c.addCalls
}

type failingCatalog struct{ err error }

func (c failingCatalog) FindByProductNumber(ctx context.Context, number string) (*models.Product, error) {
	return nil, c.err
}

func testCatalog() *repository.InMemoryProductRepository {
	return repository.NewInMemoryProductRepositoryWith([]models.Product{
		{ID: "id-a", ProductNumber: "A", Name: "Product A", AvailableStock: 10, Available: true},
		{ID: "id-b", ProductNumber: "B", Name: "Product B", AvailableStock: 5, Available: true},
		{ID: "id-c", ProductNumber: "C", Name: "Product C", AvailableStock: 2, Available: true},
	})
}

func cartWith(items ...models.LineItem) *recordingCart {
	cart := models.NewCart("session")
	cart.Items = append(cart.Items, items...)
	return &recordingCart{Cart: cart}
}

func TestCartReconciler_AddsNewLineItem(t *testing.T) {
	r := NewCartReconciler(testCatalog(), zap.NewNop())
	cart := cartWith()

	violations, err := r.Reconcile(context.Background(), map[string]int{"B": 3}, cart)
	require.NoError(t, err)
	assert.Empty(t, violations)

	items := cart.LineItems()
	require.Len(t, items, 1)
	assert.Equal(t, "id-b", items[0].ReferenceID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.NotEmpty(t, items[0].ID)
}

func TestCartReconciler_UpdatesExistingLineItem(t *testing.T) {
	r := NewCartReconciler(testCatalog(), zap.NewNop())
	cart := cartWith(models.LineItem{ID: "li-1", ReferenceID: "id-a", Quantity: 4})

	violations, err := r.Reconcile(context.Background(), map[string]int{"A": 6}, cart)
	require.NoError(t, err)
	assert.Empty(t, violations)

	assert.Equal(t, []models.LineItem{{ID: "li-1", ReferenceID: "id-a", Quantity: 10}}, cart.LineItems())
	assert.Equal(t, 1, cart.setCalls)
	assert.Equal(t, 0, cart.addCalls)
}

func TestCartReconciler_CombinedStockViolation(t *testing.T) {
	r := NewCartReconciler(testCatalog(), zap.NewNop())
	cart := cartWith(models.LineItem{ID: "li-1", ReferenceID: "id-a", Quantity: 4})
	before := cart.LineItems()

	violations, err := r.Reconcile(context.Background(), map[string]int{"A": 7}, cart)
	require.NoError(t, err)
	require.Len(t, violations, 1)

	v := violations[0]
	assert.Equal(t, models.KindCombinedExceedingStock, v.Kind)
	assert.Equal(t, "A", v.ProductNumber)
	assert.Equal(t, "Product A", v.ProductName)
	assert.Equal(t, 4, v.CartQuantity)
	assert.Equal(t, 7, v.Requested)
	assert.Equal(t, 10, v.Available)

	assert.Equal(t, before, cart.LineItems())
	assert.Zero(t, cart.mutations())
}

func TestCartReconciler_AllOrNothing(t *testing.T) {
	r := NewCartReconciler(testCatalog(), zap.NewNop())
	cart := cartWith(models.LineItem{ID: "li-1", ReferenceID: "id-a", Quantity: 1})
	before := cart.LineItems()

	// A alone would be a valid update, C exceeds its stock
	merged := map[string]int{"A": 2, "C": 3}

	violations, err := r.Reconcile(context.Background(), merged, cart)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, models.KindExceedingStock, violations[0].Kind)
	assert.Equal(t, "C", violations[0].ProductNumber)
	assert.Equal(t, 3, violations[0].Requested)
	assert.Equal(t, 2, violations[0].Available)

	assert.Equal(t, before, cart.LineItems())
	assert.Zero(t, cart.mutations())
}

func TestCartReconciler_ReportsEveryViolation(t *testing.T) {
	r := NewCartReconciler(testCatalog(), zap.NewNop())
	cart := cartWith(models.LineItem{ID: "li-1", ReferenceID: "id-a", Quantity: 9})

	merged := map[string]int{"A": 2, "B": 6, "C": 1}

	violations, err := r.Reconcile(context.Background(), merged, cart)
	require.NoError(t, err)
	require.Len(t, violations, 2)

	assert.Equal(t, "A", violations[0].ProductNumber)
	assert.Equal(t, models.KindCombinedExceedingStock, violations[0].Kind)
	assert.Equal(t, "B", violations[1].ProductNumber)
	assert.Equal(t, models.KindExceedingStock, violations[1].Kind)
	assert.Zero(t, cart.mutations())
}

func TestCartReconciler_UpdatesBeforeAdditions(t *testing.T) {
	r := NewCartReconciler(testCatalog(), zap.NewNop())
	cart := cartWith(models.LineItem{ID: "li-1", ReferenceID: "id-a", Quantity: 1})

	violations, err := r.Reconcile(context.Background(), map[string]int{"A": 1, "B": 2, "C": 2}, cart)
	require.NoError(t, err)
	assert.Empty(t, violations)

	items := cart.LineItems()
	require.Len(t, items, 3)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "id-b", items[1].ReferenceID)
	assert.Equal(t, "id-c", items[2].ReferenceID)
	assert.Equal(t, 1, cart.setCalls)
	assert.Equal(t, 1, cart.addCalls)
}

func TestCartReconciler_EmptyInput(t *testing.T) {
	r := NewCartReconciler(testCatalog(), zap.NewNop())
	cart := cartWith(models.LineItem{ID: "li-1", ReferenceID: "id-a", Quantity: 1})

	violations, err := r.Reconcile(context.Background(), map[string]int{}, cart)
	require.NoError(t, err)
	assert.Empty(t, violations)
	assert.Zero(t, cart.mutations())
}

func TestCartReconciler_UnresolvedProduct(t *testing.T) {
	r := NewCartReconciler(testCatalog(), zap.NewNop())
	cart := cartWith()

	violations, err := r.Reconcile(context.Background(), map[string]int{"A": 1, "GONE": 1}, cart)
	assert.ErrorIs(t, err, ErrUnresolvedProduct)
	assert.Nil(t, violations)
	assert.Zero(t, cart.mutations())
}

func TestCartReconciler_CatalogFailure(t *testing.T) {
	boom := errors.New("catalog down")
	r := NewCartReconciler(failingCatalog{err: boom}, zap.NewNop())
	cart := cartWith()

	_, err := r.Reconcile(context.Background(), map[string]int{"A": 1}, cart)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUnresolvedProduct)
	assert.Zero(t, cart.mutations())
}

func TestCartReconciler_ExactStockIsAllowed(t *testing.T) {
	r := NewCartReconciler(testCatalog(), zap.NewNop())
	cart := cartWith(models.LineItem{ID: "li-1", ReferenceID: "id-c", Quantity: 1})

	violations, err := r.Reconcile(context.Background(), map[string]int{"C": 1, "B": 5}, cart)
	require.NoError(t, err)
	assert.Empty(t, violations)
	assert.Equal(t, 2, cart.LineItems()[0].Quantity)
}
