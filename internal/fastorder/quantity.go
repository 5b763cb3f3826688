package fastorder

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrMissingQuantity = errors.New("quantity is missing")
	ErrInvalidQuantity = errors.New("quantity is not a positive integer")
)

// ParseQuantity parses a submitted quantity. Field validation and merging
// share it so both agree on what a valid quantity is.
func ParseQuantity(raw string) (int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, ErrMissingQuantity
	}

	quantity, err := strconv.Atoi(value)
	if err != nil || quantity <= 0 {
		return 0, ErrInvalidQuantity
	}

	return quantity, nil
}

// NormalizeProductNumber trims surrounding whitespace from a submitted product number
func NormalizeProductNumber(raw string) string {
	return strings.TrimSpace(raw)
}
