package repository

import (
	"context"

	"vitalexa/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ClientRepository interface {
	Create(ctx context.Context, c *model.Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	// FindByUserID resolves the client behind a CLIENTE login.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Client, error)
	List(ctx context.Context, nombre string, page, limit int) ([]model.Client, int64, error)
	ListAll(ctx context.Context) ([]model.Client, error)
	ListByVendedor(ctx context.Context, vendorID uuid.UUID) ([]model.Client, error)
	Update(ctx context.Context, c *model.Client) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// AddToTotalComprasTx adjusts the client's lifetime purchase counter
	// inside the caller's transaction. Delta may be negative.
	AddToTotalComprasTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error
}

type clientRepo struct{ db *gorm.DB }

func NewClientRepository(db *gorm.DB) ClientRepository { return &clientRepo{db: db} }

func (r *clientRepo) Create(ctx context.Context, c *model.Client) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clientRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var c model.Client
	err := r.db.WithContext(ctx).Preload("VendedorAsignado").First(&c, id).Error
	return &c, err
}

func (r *clientRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Client, error) {
	var c model.Client
	err := r.db.WithContext(ctx).Preload("VendedorAsignado").
		Where("user_id = ?", userID).First(&c).Error
	return &c, err
}

func (r *clientRepo) ListAll(ctx context.Context) ([]model.Client, error) {
	var clients []model.Client
	err := r.db.WithContext(ctx).Preload("VendedorAsignado").
		Where("activo = true").Order("nombre ASC").Find(&clients).Error
	return clients, err
}

func (r *clientRepo) ListByVendedor(ctx context.Context, vendorID uuid.UUID) ([]model.Client, error) {
	var clients []model.Client
	err := r.db.WithContext(ctx).Preload("VendedorAsignado").
		Where("activo = true AND vendedor_asignado_id = ?", vendorID).
		Order("nombre ASC").Find(&clients).Error
	return clients, err
}

func (r *clientRepo) List(ctx context.Context, nombre string, page, limit int) ([]model.Client, int64, error) {
	var clients []model.Client
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Client{}).Where("activo = true")
	if nombre != "" {
		q = q.Where("nombre ILIKE ?", "%"+nombre+"%")
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("nombre ASC").Limit(limit).Offset((page - 1) * limit).Find(&clients).Error
	return clients, total, err
}

func (r *clientRepo) Update(ctx context.Context, c *model.Client) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *clientRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Client{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *clientRepo) AddToTotalComprasTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	return tx.Model(&model.Client{}).Where("id = ?", id).
		Update("total_compras", gorm.Expr("total_compras + ?", delta)).Error
}
