package handlers

import (
	"net/http"

	"github.com/Lixing-Zhang/fast-order/internal/middleware"
	"github.com/Lixing-Zhang/fast-order/internal/service"
	"go.uber.org/zap"
)

// CartHandler exposes the session cart
type CartHandler struct {
	service *service.FastOrderService
	logger  *zap.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(service *service.FastOrderService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger,
	}
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionID(r.Context())
	if !ok {
		h.logger.Error("cart requested without session")
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	cart, err := h.service.Cart(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to load cart", zap.String("session_id", sessionID), zap.Error(err))
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, cart, h.logger)
}
