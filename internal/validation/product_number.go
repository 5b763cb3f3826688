package validation

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lixing-Zhang/fast-order/internal/fastorder"
	"github.com/Lixing-Zhang/fast-order/internal/repository"
)

// ProductNumberCheck rejects product numbers that do not resolve in the
// catalog or resolve to a product that cannot be bought. Empty values belong
// to unused rows and pass.
func ProductNumberCheck(catalog Catalog) CheckFunc {
	return func(ctx context.Context, value string) (*FieldViolation, error) {
		productNumber := fastorder.NormalizeProductNumber(value)
		if productNumber == "" {
			return nil, nil
		}

		product, err := catalog.FindByProductNumber(ctx, productNumber)
		if errors.Is(err, repository.ErrProductNotFound) {
			return &FieldViolation{
				Code:    CodeUnknownProductNumber,
				Value:   value,
				Message: fmt.Sprintf("The product %s does not exist or is unavailable", productNumber),
			}, nil
		}
		if err != nil {
			return nil, err
		}

		if !product.Available {
			return &FieldViolation{
				Code:    CodeProductUnavailable,
				Value:   value,
				Message: fmt.Sprintf("The product %s does not exist or is unavailable", productNumber),
			}, nil
		}

		return nil, nil
	}
}
