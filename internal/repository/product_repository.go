package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/Lixing-Zhang/fast-order/internal/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for catalog access
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	FindByProductNumber(ctx context.Context, number string) (*models.Product, error)
}

// InMemoryProductRepository implements ProductRepository with in-memory storage
type InMemoryProductRepository struct {
	products map[string]models.Product
}

// NewInMemoryProductRepository creates a new in-memory product repository with seed data
func NewInMemoryProductRepository() *InMemoryProductRepository {
	return NewInMemoryProductRepositoryWith(SeedProducts())
}

// NewInMemoryProductRepositoryWith creates an in-memory repository holding the given products
func NewInMemoryProductRepositoryWith(products []models.Product) *InMemoryProductRepository {
	byNumber := make(map[string]models.Product, len(products))
	for _, p := range products {
		byNumber[p.ProductNumber] = p
	}

	return &InMemoryProductRepository{
		products: byNumber,
	}
}

// SeedProducts returns the demo catalog
func SeedProducts() []models.Product {
	return []models.Product{
		{ID: "0191c5a1e5f47d6b9a3b2f1c0e9d8a01", ProductNumber: "SW10001", Name: "Main product", AvailableStock: 50, Available: true},
		{ID: "0191c5a1e5f47d6b9a3b2f1c0e9d8a02", ProductNumber: "SW10002", Name: "Variant product red", AvailableStock: 12, Available: true},
		{ID: "0191c5a1e5f47d6b9a3b2f1c0e9d8a03", ProductNumber: "SW10003", Name: "Variant product blue", AvailableStock: 5, Available: true},
		{ID: "0191c5a1e5f47d6b9a3b2f1c0e9d8a04", ProductNumber: "SW10004", Name: "Clearance item", AvailableStock: 1, Available: true},
		{ID: "0191c5a1e5f47d6b9a3b2f1c0e9d8a05", ProductNumber: "SW10005", Name: "Discontinued item", AvailableStock: 0, Available: false},
		{ID: "0191c5a1e5f47d6b9a3b2f1c0e9d8a06", ProductNumber: "SW10006", Name: "Bulk screws 100pcs", AvailableStock: 1000, Available: true},
		{ID: "0191c5a1e5f47d6b9a3b2f1c0e9d8a07", ProductNumber: "SW10007", Name: "Bulk nuts 100pcs", AvailableStock: 800, Available: true},
		{ID: "0191c5a1e5f47d6b9a3b2f1c0e9d8a08", ProductNumber: "SW10008", Name: "Preorder item", AvailableStock: 20, Available: false},
	}
}

// GetAll returns all products ordered by product number
func (r *InMemoryProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	products := make([]models.Product, 0, len(r.products))
	for _, product := range r.products {
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].ProductNumber < products[j].ProductNumber
	})
	return products, nil
}

// FindByProductNumber returns a product by its product number
func (r *InMemoryProductRepository) FindByProductNumber(ctx context.Context, number string) (*models.Product, error) {
	product, exists := r.products[number]
	if !exists {
		return nil, ErrProductNotFound
	}
	return &product, nil
}
