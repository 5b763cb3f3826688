package models

import "fmt"

// ViolationKind identifies why a requested quantity cannot be put into the cart
type ViolationKind string

const (
	// KindExceedingStock means the requested quantity alone exceeds the available stock
	KindExceedingStock ViolationKind = "EXCEEDING_STOCK"
	// KindCombinedExceedingStock means requested plus cart quantity exceeds the available stock
	KindCombinedExceedingStock ViolationKind = "COMBINED_EXCEEDING_STOCK"
)

// QuantityViolation reports one merged order line that could not be applied to the cart
type QuantityViolation struct {
	Kind          ViolationKind `json:"kind"`
	ProductID     string        `json:"productId"`
	ProductNumber string        `json:"productNumber"`
	ProductName   string        `json:"productName"`
	Requested     int           `json:"requested"`
	CartQuantity  int           `json:"cartQuantity,omitempty"`
	Available     int           `json:"available"`
}

// Message renders the violation for display
func (v QuantityViolation) Message() string {
	if v.Kind == KindCombinedExceedingStock {
		return fmt.Sprintf("%s (%s): %d already in cart plus %d requested exceeds the available stock of %d",
			v.ProductName, v.ProductNumber, v.CartQuantity, v.Requested, v.Available)
	}
	return fmt.Sprintf("%s (%s): %d requested exceeds the available stock of %d",
		v.ProductName, v.ProductNumber, v.Requested, v.Available)
}
