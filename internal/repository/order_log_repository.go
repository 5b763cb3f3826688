package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Lixing-Zhang/fast-order/internal/models"
	"gorm.io/gorm"
)

// OrderLogModel is the database row of a fast order audit entry
type OrderLogModel struct {
	ID        string         `gorm:"type:varchar(36);primaryKey"`
	Type      string         `gorm:"type:varchar(255);not null"`
	SessionID string         `gorm:"type:varchar(255);not null;index"`
	OrderInfo map[string]int `gorm:"serializer:json;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderLogModel) TableName() string {
	return "fast_order_log"
}

// OrderLogRepository appends fast order audit entries. Entries are never
// updated or read back by the order flow.
type OrderLogRepository interface {
	Append(ctx context.Context, entry *models.OrderLogEntry) error
}

// GormOrderLogRepository implements OrderLogRepository on top of GORM
type GormOrderLogRepository struct {
	db *gorm.DB
}

// NewGormOrderLogRepository creates an audit log repository backed by db
func NewGormOrderLogRepository(db *gorm.DB) *GormOrderLogRepository {
	return &GormOrderLogRepository{db: db}
}

// Append stores a new audit entry
func (r *GormOrderLogRepository) Append(ctx context.Context, entry *models.OrderLogEntry) error {
	row := OrderLogModel{
		ID:        entry.ID.String(),
		Type:      entry.Type,
		SessionID: entry.SessionID,
		OrderInfo: entry.OrderInfo,
		CreatedAt: entry.CreatedAt,
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to append order log entry: %w", err)
	}
	return nil
}

// CountBySession returns how many entries were written for a session
func (r *GormOrderLogRepository) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&OrderLogModel{}).Where("session_id = ?", sessionID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count order log entries: %w", err)
	}
	return count, nil
}

var _ OrderLogRepository = (*GormOrderLogRepository)(nil)
