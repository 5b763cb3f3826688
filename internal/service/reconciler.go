package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Lixing-Zhang/fast-order/internal/models"
	"github.com/Lixing-Zhang/fast-order/internal/repository"
	"go.uber.org/zap"
)

// ErrUnresolvedProduct means a product number that passed field validation
// no longer resolves. It is not a user error.
var ErrUnresolvedProduct = errors.New("product number does not resolve")

// Catalog resolves product numbers to products
type Catalog interface {
	FindByProductNumber(ctx context.Context, number string) (*models.Product, error)
}

// Cart is the mutable cart a fast order is merged into
type Cart interface {
	LineItems() []models.LineItem
	SetQuantity(lineItemID string, quantity int) error
	AddLineItems(items []models.NewLineItem) error
}

type quantityUpdate struct {
	lineItemID string
	quantity   int
}

// CartReconciler merges deduplicated order lines into a cart
type CartReconciler struct {
	catalog Catalog
	log     *zap.Logger
}

// NewCartReconciler creates a reconciler resolving products through catalog
func NewCartReconciler(catalog Catalog, log *zap.Logger) *CartReconciler {
	return &CartReconciler{
		catalog: catalog,
		log:     log,
	}
}

// Reconcile checks every merged line against the available stock, taking the
// quantity already in the cart into account. If any line violates the stock
// the cart is left untouched and all violations are returned. Otherwise
// existing line items are updated and new ones added.
func (r *CartReconciler) Reconcile(ctx context.Context, merged map[string]int, cart Cart) ([]models.QuantityViolation, error) {
	if len(merged) == 0 {
		return nil, nil
	}

	inCart := make(map[string]models.LineItem)
	for _, item := range cart.LineItems() {
		inCart[item.ReferenceID] = item
	}

	numbers := make([]string, 0, len(merged))
	for number := range merged {
		numbers = append(numbers, number)
	}
	sort.Strings(numbers)

	var (
		violations []models.QuantityViolation
		updates    []quantityUpdate
		additions  []models.NewLineItem
	)

	for _, number := range numbers {
		requested := merged[number]

		product, err := r.catalog.FindByProductNumber(ctx, number)
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnresolvedProduct, number)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve product %s: %w", number, err)
		}

		if existing, ok := inCart[product.ID]; ok {
			combined := existing.Quantity + requested
			if combined > product.AvailableStock {
				violations = append(violations, models.QuantityViolation{
					Kind:          models.KindCombinedExceedingStock,
					ProductID:     product.ID,
					ProductNumber: number,
					ProductName:   product.Name,
					Requested:     requested,
					CartQuantity:  existing.Quantity,
					Available:     product.AvailableStock,
				})
				continue
			}
			updates = append(updates, quantityUpdate{lineItemID: existing.ID, quantity: combined})
			continue
		}

		if requested > product.AvailableStock {
			violations = append(violations, models.QuantityViolation{
				Kind:          models.KindExceedingStock,
				ProductID:     product.ID,
				ProductNumber: number,
				ProductName:   product.Name,
				Requested:     requested,
				Available:     product.AvailableStock,
			})
			continue
		}
		additions = append(additions, models.NewLineItem{ReferencedID: product.ID, Quantity: requested})
	}

	if len(violations) > 0 {
		r.log.Debug("order lines rejected", zap.Int("violations", len(violations)), zap.Int("lines", len(merged)))
		return violations, nil
	}

	// updates and additions never touch the same product
	for _, u := range updates {
		if err := cart.SetQuantity(u.lineItemID, u.quantity); err != nil {
			return nil, fmt.Errorf("failed to update line item %s: %w", u.lineItemID, err)
		}
	}
	if len(additions) > 0 {
		if err := cart.AddLineItems(additions); err != nil {
			return nil, fmt.Errorf("failed to add line items: %w", err)
		}
	}

	r.log.Debug("order lines applied", zap.Int("updated", len(updates)), zap.Int("added", len(additions)))
	return nil, nil
}
