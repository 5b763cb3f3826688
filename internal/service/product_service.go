package service

import (
	"context"

	"github.com/Lixing-Zhang/fast-order/internal/models"
	"github.com/Lixing-Zhang/fast-order/internal/repository"
)

// ProductService handles business logic for products
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// ListProducts returns all catalog products
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProduct returns a product by its product number
func (s *ProductService) GetProduct(ctx context.Context, number string) (*models.Product, error) {
	return s.repo.FindByProductNumber(ctx, number)
}
