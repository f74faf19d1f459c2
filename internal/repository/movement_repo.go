package repository

import (
	"context"

	"vitalexa/internal/dto"
	"vitalexa/internal/model"

	"gorm.io/gorm"
)

type MovementRepository interface {
	// CreateTx inserts the audit row inside the caller's transaction.
	// A failure here must abort the whole business operation.
	CreateTx(tx *gorm.DB, m *model.InventoryMovement) error
	List(ctx context.Context, filter dto.MovementFilter) ([]model.InventoryMovement, int64, error)
}

type movementRepo struct{ db *gorm.DB }

func NewMovementRepository(db *gorm.DB) MovementRepository { return &movementRepo{db: db} }

func (r *movementRepo) CreateTx(tx *gorm.DB, m *model.InventoryMovement) error {
	return tx.Create(m).Error
}

func (r *movementRepo) List(ctx context.Context, filter dto.MovementFilter) ([]model.InventoryMovement, int64, error) {
	var movs []model.InventoryMovement
	var total int64

	q := r.db.WithContext(ctx).Model(&model.InventoryMovement{})
	if filter.ProductID != "" {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.Desde != "" {
		q = q.Where("DATE(created_at) >= ?", filter.Desde)
	}
	if filter.Hasta != "" {
		q = q.Where("DATE(created_at) <= ?", filter.Hasta)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&movs).Error
	return movs, total, err
}
