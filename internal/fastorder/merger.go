package fastorder

import (
	"errors"
	"fmt"
)

// ErrMalformedFieldSet signals that a populated article field reached the merger
// without a valid quantity. Field validation must have rejected such input
// before, so this is a broken contract and not a user error.
var ErrMalformedFieldSet = errors.New("malformed field set")

// Merger turns raw form data into product number -> total quantity
type Merger struct {
	schema *Schema
}

// NewMerger creates a merger for the given form schema
func NewMerger(schema *Schema) *Merger {
	return &Merger{schema: schema}
}

// Merge collects all filled field sets, sums quantities per product number and
// returns the deduplicated order lines. Empty article fields are skipped.
// Any malformed quantity aborts the whole merge.
func (m *Merger) Merge(data map[string]string) (map[string]int, error) {
	merged := make(map[string]int)

	for _, index := range m.schema.FieldSetIndices(data) {
		productNumber := NormalizeProductNumber(data[m.schema.ArticleField(index)])
		if productNumber == "" {
			continue
		}

		raw, ok := data[m.schema.QuantityField(index)]
		if !ok {
			return nil, fmt.Errorf("%w: field set %d has no quantity field", ErrMalformedFieldSet, index)
		}

		quantity, err := ParseQuantity(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: field set %d quantity %q: %w", ErrMalformedFieldSet, index, raw, err)
		}

		merged[productNumber] += quantity
	}

	return merged, nil
}
