package models

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrLineItemNotFound = errors.New("line item not found")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
)

var validate = validator.New()

// LineItem is one product entry of a cart
type LineItem struct {
	ID          string `json:"id"`
	ReferenceID string `json:"referenceId"`
	Quantity    int    `json:"quantity"`
}

// NewLineItem describes a line item that should be added to a cart
type NewLineItem struct {
	ReferencedID string `json:"referencedId" validate:"required"`
	Quantity     int    `json:"quantity" validate:"gt=0"`
}

// Cart holds the line items of one shopper session
type Cart struct {
	SessionID string     `json:"sessionId"`
	Items     []LineItem `json:"lineItems"`
}

// NewCart creates an empty cart for the given session
func NewCart(sessionID string) *Cart {
	return &Cart{
		SessionID: sessionID,
		Items:     []LineItem{},
	}
}

// LineItems returns a copy of the current line items
func (c *Cart) LineItems() []LineItem {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	return items
}

// SetQuantity replaces the quantity of an existing line item
func (c *Cart) SetQuantity(lineItemID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("line item %s: %w", lineItemID, ErrInvalidQuantity)
	}

	for i := range c.Items {
		if c.Items[i].ID == lineItemID {
			c.Items[i].Quantity = quantity
			return nil
		}
	}

	return fmt.Errorf("line item %s: %w", lineItemID, ErrLineItemNotFound)
}

// AddLineItems adds the given items to the cart. Items referencing a product
// that is already in the cart increase that line item's quantity.
// Nothing is added when any of the items is invalid.
func (c *Cart) AddLineItems(items []NewLineItem) error {
	for _, item := range items {
		if err := validate.Struct(item); err != nil {
			return fmt.Errorf("invalid line item for %q: %w", item.ReferencedID, err)
		}
	}

	for _, item := range items {
		if idx := c.indexOf(item.ReferencedID); idx >= 0 {
			c.Items[idx].Quantity += item.Quantity
			continue
		}

		c.Items = append(c.Items, LineItem{
			ID:          uuid.New().String(),
			ReferenceID: item.ReferencedID,
			Quantity:    item.Quantity,
		})
	}

	return nil
}

// Clone returns a deep copy of the cart
func (c *Cart) Clone() *Cart {
	return &Cart{
		SessionID: c.SessionID,
		Items:     c.LineItems(),
	}
}

func (c *Cart) indexOf(referenceID string) int {
	for i, item := range c.Items {
		if item.ReferenceID == referenceID {
			return i
		}
	}
	return -1
}
