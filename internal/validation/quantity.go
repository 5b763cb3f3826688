package validation

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lixing-Zhang/fast-order/internal/fastorder"
	"github.com/Lixing-Zhang/fast-order/internal/repository"
)

// QuantityCheck validates the quantity paired with productNumber. Rows
// without a product number are not checked. The stock comparison ignores the
// cart; combined quantities are checked when the order is merged into the cart.
func QuantityCheck(catalog Catalog, productNumber string) CheckFunc {
	return func(ctx context.Context, value string) (*FieldViolation, error) {
		if productNumber == "" {
			return nil, nil
		}

		quantity, err := fastorder.ParseQuantity(value)
		switch {
		case errors.Is(err, fastorder.ErrMissingQuantity):
			return &FieldViolation{
				Code:    CodeMissingQuantity,
				Value:   value,
				Message: "Please enter a quantity for this product",
			}, nil
		case err != nil:
			return &FieldViolation{
				Code:    CodeInvalidQuantity,
				Value:   value,
				Message: fmt.Sprintf("The quantity %q is invalid for this product", value),
			}, nil
		}

		product, err := catalog.FindByProductNumber(ctx, productNumber)
		if errors.Is(err, repository.ErrProductNotFound) {
			// reported by the product number check
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		if quantity > product.AvailableStock {
			available := product.AvailableStock
			return &FieldViolation{
				Code:      CodeExceedingStock,
				Value:     value,
				Available: &available,
				Message:   fmt.Sprintf("The quantity %d exceeds the available stock of %d", quantity, available),
			}, nil
		}

		return nil, nil
	}
}
