package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Lixing-Zhang/fast-order/internal/repository"
	"github.com/Lixing-Zhang/fast-order/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	service *service.ProductService
	logger  *zap.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// ListProducts handles GET /api/product
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", zap.Error(err))
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, products, h.logger)
}

// GetProduct handles GET /api/product/{productNumber}
//   - 200: product found
//   - 400: blank product number
//   - 404: product not found
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productNumber := strings.TrimSpace(chi.URLParam(r, "productNumber"))
	if productNumber == "" {
		WriteError(w, http.StatusBadRequest, "Invalid product number supplied", h.logger)
		return
	}

	product, err := h.service.GetProduct(r.Context(), productNumber)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			h.logger.Info("product not found", zap.String("product_number", productNumber))
			WriteError(w, http.StatusNotFound, "Product not found", h.logger)
			return
		}

		h.logger.Error("failed to get product", zap.String("product_number", productNumber), zap.Error(err))
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, product, h.logger)
}
