package repository

import (
	"context"

	"vitalexa/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PromotionRepository interface {
	Create(ctx context.Context, p *model.Promotion) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Promotion, error)
	List(ctx context.Context, activeOnly bool) ([]model.Promotion, error)
	Update(ctx context.Context, p *model.Promotion) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	ReplaceGiftItems(ctx context.Context, promotionID uuid.UUID, items []model.PromotionGiftItem) error

	CreateSpecial(ctx context.Context, sp *model.SpecialPromotion) error
	FindSpecialByID(ctx context.Context, id uuid.UUID) (*model.SpecialPromotion, error)
	ListSpecial(ctx context.Context, vendorID *uuid.UUID) ([]model.SpecialPromotion, error)
	UpdateSpecial(ctx context.Context, sp *model.SpecialPromotion) error
}

type promotionRepo struct{ db *gorm.DB }

func NewPromotionRepository(db *gorm.DB) PromotionRepository { return &promotionRepo{db: db} }

func (r *promotionRepo) Create(ctx context.Context, p *model.Promotion) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *promotionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Promotion, error) {
	var p model.Promotion
	err := r.db.WithContext(ctx).
		Preload("MainProduct").Preload("GiftItems.Product").
		First(&p, id).Error
	return &p, err
}

func (r *promotionRepo) List(ctx context.Context, activeOnly bool) ([]model.Promotion, error) {
	var promos []model.Promotion
	q := r.db.WithContext(ctx).Preload("MainProduct").Preload("GiftItems.Product")
	if activeOnly {
		q = q.Where("activo = true")
	}
	err := q.Order("nombre ASC").Find(&promos).Error
	return promos, err
}

func (r *promotionRepo) Update(ctx context.Context, p *model.Promotion) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *promotionRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Promotion{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *promotionRepo) ReplaceGiftItems(ctx context.Context, promotionID uuid.UUID, items []model.PromotionGiftItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("promotion_id = ?", promotionID).Delete(&model.PromotionGiftItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].PromotionID = promotionID
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (r *promotionRepo) CreateSpecial(ctx context.Context, sp *model.SpecialPromotion) error {
	return r.db.WithContext(ctx).Create(sp).Error
}

func (r *promotionRepo) FindSpecialByID(ctx context.Context, id uuid.UUID) (*model.SpecialPromotion, error) {
	var sp model.SpecialPromotion
	err := r.db.WithContext(ctx).
		Preload("ParentPromotion.GiftItems.Product").
		Preload("ParentPromotion.MainProduct").
		Preload("AllowedVendors").
		First(&sp, id).Error
	return &sp, err
}

func (r *promotionRepo) ListSpecial(ctx context.Context, vendorID *uuid.UUID) ([]model.SpecialPromotion, error) {
	var sps []model.SpecialPromotion
	err := r.db.WithContext(ctx).
		Preload("ParentPromotion").Preload("AllowedVendors").
		Where("activo = true").Order("nombre ASC").Find(&sps).Error
	if err != nil {
		return nil, err
	}
	if vendorID == nil {
		return sps, nil
	}
	filtered := sps[:0]
	for i := range sps {
		if sps[i].VendorAllowed(*vendorID) {
			filtered = append(filtered, sps[i])
		}
	}
	return filtered, nil
}

func (r *promotionRepo) UpdateSpecial(ctx context.Context, sp *model.SpecialPromotion) error {
	return r.db.WithContext(ctx).Save(sp).Error
}
