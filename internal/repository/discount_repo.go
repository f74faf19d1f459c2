package repository

import (
	"context"

	"vitalexa/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DiscountRepository interface {
	CreateTx(tx *gorm.DB, d *model.OrderDiscount) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.OrderDiscount, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.OrderDiscount, error)
	SaveTx(tx *gorm.DB, d *model.OrderDiscount) error
	DB() *gorm.DB
}

type discountRepo struct{ db *gorm.DB }

func NewDiscountRepository(db *gorm.DB) DiscountRepository { return &discountRepo{db: db} }

func (r *discountRepo) CreateTx(tx *gorm.DB, d *model.OrderDiscount) error {
	return tx.Create(d).Error
}

func (r *discountRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.OrderDiscount, error) {
	var d model.OrderDiscount
	err := r.db.WithContext(ctx).First(&d, id).Error
	return &d, err
}

func (r *discountRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.OrderDiscount, error) {
	var discounts []model.OrderDiscount
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).
		Order("applied_at ASC").Find(&discounts).Error
	return discounts, err
}

func (r *discountRepo) SaveTx(tx *gorm.DB, d *model.OrderDiscount) error {
	return tx.Save(d).Error
}

func (r *discountRepo) DB() *gorm.DB { return r.db }
