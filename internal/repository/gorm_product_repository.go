package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lixing-Zhang/fast-order/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductModel is the database row of a catalog product
type ProductModel struct {
	ID             string `gorm:"type:varchar(64);primaryKey"`
	ProductNumber  string `gorm:"type:varchar(64);uniqueIndex;not null"`
	Name           string `gorm:"type:varchar(255);not null"`
	AvailableStock int    `gorm:"not null;default:0"`
	Available      bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

func (m *ProductModel) toDomain() models.Product {
	return models.Product{
		ID:             m.ID,
		ProductNumber:  m.ProductNumber,
		Name:           m.Name,
		AvailableStock: m.AvailableStock,
		Available:      m.Available,
	}
}

// GormProductRepository implements ProductRepository on top of GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a product repository backed by db
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// GetAll returns all products ordered by product number
func (r *GormProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	var rows []ProductModel
	if err := r.db.WithContext(ctx).Order("product_number").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]models.Product, 0, len(rows))
	for i := range rows {
		products = append(products, rows[i].toDomain())
	}
	return products, nil
}

// FindByProductNumber returns a product by its product number
func (r *GormProductRepository) FindByProductNumber(ctx context.Context, number string) (*models.Product, error) {
	var row ProductModel
	err := r.db.WithContext(ctx).Where("product_number = ?", number).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product %s: %w", number, err)
	}

	product := row.toDomain()
	return &product, nil
}

// Upsert inserts the products or updates the existing rows with the same id
func (r *GormProductRepository) Upsert(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}

	rows := make([]ProductModel, 0, len(products))
	for _, p := range products {
		rows = append(rows, ProductModel{
			ID:             p.ID,
			ProductNumber:  p.ProductNumber,
			Name:           p.Name,
			AvailableStock: p.AvailableStock,
			Available:      p.Available,
		})
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"product_number", "name", "available_stock", "available"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to upsert products: %w", err)
	}
	return nil
}

var _ ProductRepository = (*GormProductRepository)(nil)
