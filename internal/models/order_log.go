package models

import (
	"time"

	"github.com/google/uuid"
)

// EventAddToCart tags audit entries written after a fast order reached the cart
const EventAddToCart = "add-to-cart"

// OrderLogEntry is one append-only audit record of a fast order event
type OrderLogEntry struct {
	ID        uuid.UUID      `json:"id"`
	Type      string         `json:"type"`
	SessionID string         `json:"sessionId"`
	OrderInfo map[string]int `json:"orderInfo"`
	CreatedAt time.Time      `json:"createdAt"`
}

// NewOrderLogEntry creates an audit entry for the given session and merged order lines
func NewOrderLogEntry(eventType, sessionID string, orderInfo map[string]int) *OrderLogEntry {
	return &OrderLogEntry{
		ID:        uuid.New(),
		Type:      eventType,
		SessionID: sessionID,
		OrderInfo: orderInfo,
		CreatedAt: time.Now().UTC(),
	}
}
