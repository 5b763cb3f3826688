// Package validation holds the per-field checks that run on a fast order
// submission before it is merged. Each field set contributes one product
// number check and one quantity check; all violations are collected.
package validation

import (
	"context"
	"fmt"

	"github.com/Lixing-Zhang/fast-order/internal/fastorder"
	"github.com/Lixing-Zhang/fast-order/internal/models"
)

// Violation codes reported per field
const (
	CodeUnknownProductNumber = "UNKNOWN_PRODUCT_NUMBER"
	CodeProductUnavailable   = "PRODUCT_UNAVAILABLE"
	CodeMissingQuantity      = "MISSING_QUANTITY"
	CodeInvalidQuantity      = "INVALID_QUANTITY"
	CodeExceedingStock       = "EXCEEDING_STOCK"
)

// FieldViolation describes why a single form field was rejected
type FieldViolation struct {
	Field     string `json:"field"`
	Code      string `json:"code"`
	Value     string `json:"value"`
	Available *int   `json:"available,omitempty"`
	Message   string `json:"message"`
}

// Catalog resolves product numbers
type Catalog interface {
	FindByProductNumber(ctx context.Context, number string) (*models.Product, error)
}

// CheckFunc validates one field value. A nil violation means the value is fine;
// an error means the check itself could not run.
type CheckFunc func(ctx context.Context, value string) (*FieldViolation, error)

// Check binds a check to the field it validates
type Check struct {
	Field string
	Value string
	Run   CheckFunc
}

// BuildChecks creates the checks for every field set found in data
func BuildChecks(schema *fastorder.Schema, data map[string]string, catalog Catalog) []Check {
	indices := schema.FieldSetIndices(data)
	checks := make([]Check, 0, 2*len(indices))

	for _, i := range indices {
		articleField := schema.ArticleField(i)
		quantityField := schema.QuantityField(i)
		productNumber := fastorder.NormalizeProductNumber(data[articleField])

		checks = append(checks,
			Check{Field: articleField, Value: data[articleField], Run: ProductNumberCheck(catalog)},
			Check{Field: quantityField, Value: data[quantityField], Run: QuantityCheck(catalog, productNumber)},
		)
	}

	return checks
}

// Run executes all checks and returns every violation found
func Run(ctx context.Context, checks []Check) ([]FieldViolation, error) {
	var violations []FieldViolation

	for _, check := range checks {
		violation, err := check.Run(ctx, check.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to validate %s: %w", check.Field, err)
		}
		if violation != nil {
			violation.Field = check.Field
			violations = append(violations, *violation)
		}
	}

	return violations, nil
}

// Validate builds and runs all checks for a submission
func Validate(ctx context.Context, schema *fastorder.Schema, data map[string]string, catalog Catalog) ([]FieldViolation, error) {
	return Run(ctx, BuildChecks(schema, data, catalog))
}
