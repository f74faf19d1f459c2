package repository

import (
	"context"

	"vitalexa/internal/dto"
	"vitalexa/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository defines the data access contract for the catalog and its
// stock ledger. All stock mutations go through the Tx variants so the service
// can pair them with an inventory movement in the same transaction.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	Update(ctx context.Context, p *model.Product) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	LowStock(ctx context.Context) ([]model.Product, error)

	// LockForUpdateTx reloads the product under a row lock so that
	// concurrent decrements serialize on the same row.
	LockForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error
	SetStockTx(tx *gorm.DB, id uuid.UUID, newStock int) error

	// Tags
	CreateTag(ctx context.Context, t *model.ProductTag) error
	FindTagByID(ctx context.Context, id uuid.UUID) (*model.ProductTag, error)
	FindTagByName(ctx context.Context, name string) (*model.ProductTag, error)
	ListTags(ctx context.Context) ([]model.ProductTag, error)

	// Special products
	CreateSpecial(ctx context.Context, sp *model.SpecialProduct) error
	FindSpecialByID(ctx context.Context, id uuid.UUID) (*model.SpecialProduct, error)
	ListSpecial(ctx context.Context, vendorID *uuid.UUID) ([]model.SpecialProduct, error)
	UpdateSpecial(ctx context.Context, sp *model.SpecialProduct) error
	UpdateSpecialOwnStockTx(tx *gorm.DB, id uuid.UUID, delta int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Tag").First(&p, id).Error
	return &p, err
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{})

	switch filter.Activo {
	case "false":
		q = q.Where("activo = false")
	case "all":
		// no filter
	default:
		q = q.Where("activo = true")
	}
	if filter.Hidden != "all" {
		q = q.Where("hidden = false")
	}
	if filter.Nombre != "" {
		q = q.Where("nombre ILIKE ?", "%"+filter.Nombre+"%")
	}
	if filter.TagID != "" {
		q = q.Where("tag_id = ?", filter.TagID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Tag").Order("nombre ASC").Limit(filter.Limit).Offset(offset).Find(&products).Error
	return products, total, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *productRepo) LowStock(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("activo = true AND reorder_point IS NOT NULL AND stock <= reorder_point").
		Order("stock ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) LockForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error
	return &p, err
}

func (r *productRepo) UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", delta)).Error
}

func (r *productRepo) SetStockTx(tx *gorm.DB, id uuid.UUID, newStock int) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).Update("stock", newStock).Error
}

func (r *productRepo) CreateTag(ctx context.Context, t *model.ProductTag) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *productRepo) FindTagByID(ctx context.Context, id uuid.UUID) (*model.ProductTag, error) {
	var t model.ProductTag
	err := r.db.WithContext(ctx).First(&t, id).Error
	return &t, err
}

func (r *productRepo) FindTagByName(ctx context.Context, name string) (*model.ProductTag, error) {
	var t model.ProductTag
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&t).Error
	return &t, err
}

func (r *productRepo) ListTags(ctx context.Context) ([]model.ProductTag, error) {
	var tags []model.ProductTag
	err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error
	return tags, err
}

func (r *productRepo) CreateSpecial(ctx context.Context, sp *model.SpecialProduct) error {
	return r.db.WithContext(ctx).Create(sp).Error
}

func (r *productRepo) FindSpecialByID(ctx context.Context, id uuid.UUID) (*model.SpecialProduct, error) {
	var sp model.SpecialProduct
	err := r.db.WithContext(ctx).
		Preload("ParentProduct").Preload("AllowedVendors").
		First(&sp, id).Error
	return &sp, err
}

func (r *productRepo) ListSpecial(ctx context.Context, vendorID *uuid.UUID) ([]model.SpecialProduct, error) {
	var sps []model.SpecialProduct
	q := r.db.WithContext(ctx).Preload("ParentProduct").Preload("AllowedVendors").
		Where("activo = true")
	if err := q.Order("nombre ASC").Find(&sps).Error; err != nil {
		return nil, err
	}
	if vendorID == nil {
		return sps, nil
	}
	// Allow-list filtering happens in memory: the list is short and the
	// m2m shape makes the SQL noisier than it is worth.
	filtered := sps[:0]
	for i := range sps {
		if sps[i].VendorAllowed(*vendorID) {
			filtered = append(filtered, sps[i])
		}
	}
	return filtered, nil
}

func (r *productRepo) UpdateSpecial(ctx context.Context, sp *model.SpecialProduct) error {
	return r.db.WithContext(ctx).Save(sp).Error
}

func (r *productRepo) UpdateSpecialOwnStockTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	return tx.Model(&model.SpecialProduct{}).Where("id = ? AND own_stock IS NOT NULL", id).
		Update("own_stock", gorm.Expr("own_stock + ?", delta)).Error
}
