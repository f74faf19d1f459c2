package repository

import (
	"context"
	"time"

	"vitalexa/internal/dto"
	"vitalexa/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, o *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	LockForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Order, error)
	Save(ctx context.Context, o *model.Order) error
	SaveTx(tx *gorm.DB, o *model.Order) error
	List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error)
	// ListByClient returns every order of one client, newest first.
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Order, error)

	// NextInvoiceNumber pulls from the Postgres sequence — strictly
	// monotonic, gap-tolerant, never reused.
	NextInvoiceNumber(tx *gorm.DB) (int64, error)
	// SyncInvoiceSequence moves the sequence past the highest assigned
	// invoice number (historical backfill can jump ahead of it).
	SyncInvoiceSequence(tx *gorm.DB) error
	InvoiceNumberExists(ctx context.Context, n int64, excludeID *uuid.UUID) (bool, error)

	// CommittedStock sums item quantities of open orders for one product:
	// estados outside {COMPLETADO, CANCELADO, ANULADA}, excluding freight,
	// bonified and free lines.
	CommittedStock(ctx context.Context, productID uuid.UUID) (int, error)

	// SumCompletedTotals adds effective totals of COMPLETADO orders with
	// fecha in [from, to) for the given vendors.
	SumCompletedTotals(ctx context.Context, vendorIDs []uuid.UUID, from, to time.Time) (decimal.Decimal, error)
	SumCompletedTotalsAll(ctx context.Context, from, to time.Time) (decimal.Decimal, error)

	SaveItemTx(tx *gorm.DB, it *model.OrderItem) error
	DeleteItemTx(tx *gorm.DB, itemID uuid.UUID) error

	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

func (r *orderRepo) Create(ctx context.Context, tx *gorm.DB, o *model.Order) error {
	return tx.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("Items.Product").Preload("Items.SpecialProduct").
		Preload("Cliente").Preload("Vendedor").
		First(&o, id).Error
	return &o, err
}

func (r *orderRepo) LockForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, id).Error; err != nil {
		return nil, err
	}
	// Items loaded after the lock so the snapshot is consistent.
	if err := tx.Preload("Product").Preload("SpecialProduct").
		Where("order_id = ?", id).Find(&o.Items).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) Save(ctx context.Context, o *model.Order) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *orderRepo) SaveTx(tx *gorm.DB, o *model.Order) error {
	return tx.Save(o).Error
}

func (r *orderRepo) List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Order{})
	if filter.VendedorID != "" {
		q = q.Where("vendedor_id = ?", filter.VendedorID)
	}
	if filter.ClienteID != "" {
		q = q.Where("cliente_id = ?", filter.ClienteID)
	}
	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.InvoiceKind != "" {
		q = q.Where("invoice_kind = ?", filter.InvoiceKind)
	}
	if filter.Desde != "" {
		q = q.Where("DATE(fecha) >= ?", filter.Desde)
	}
	if filter.Hasta != "" {
		q = q.Where("DATE(fecha) <= ?", filter.Hasta)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items.Product").Preload("Cliente").
		Order("fecha DESC").Limit(filter.Limit).Offset(offset).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).Preload("Items.Product").
		Where("cliente_id = ?", clientID).
		Order("fecha DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepo) NextInvoiceNumber(tx *gorm.DB) (int64, error) {
	var num int64
	err := tx.Raw("SELECT nextval('orders_invoice_number_seq')").Scan(&num).Error
	return num, err
}

func (r *orderRepo) SyncInvoiceSequence(tx *gorm.DB) error {
	return tx.Exec(`SELECT setval('orders_invoice_number_seq',
		GREATEST((SELECT COALESCE(MAX(invoice_number), 0) FROM orders), 1))`).Error
}

func (r *orderRepo) InvoiceNumberExists(ctx context.Context, n int64, excludeID *uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{}).Where("invoice_number = ?", n)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *orderRepo) CommittedStock(ctx context.Context, productID uuid.UUID) (int, error) {
	var committed int
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(oi.cantidad), 0)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE oi.product_id = ?
		  AND o.estado NOT IN (?, ?, ?)
		  AND oi.is_freight_item = false
		  AND oi.is_bonified = false
		  AND oi.is_free_item = false`,
		productID, model.EstadoCompletado, model.EstadoCancelado, model.EstadoAnulada,
	).Scan(&committed).Error
	return committed, err
}

func (r *orderRepo) SumCompletedTotals(ctx context.Context, vendorIDs []uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	if len(vendorIDs) == 0 {
		return decimal.Zero, nil
	}
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(COALESCE(discounted_total, total)), 0)
		FROM orders
		WHERE estado = ?
		  AND vendedor_id IN ?
		  AND fecha >= ? AND fecha < ?`,
		model.EstadoCompletado, vendorIDs, from, to,
	).Scan(&sum).Error
	return sum, err
}

func (r *orderRepo) SumCompletedTotalsAll(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(COALESCE(discounted_total, total)), 0)
		FROM orders
		WHERE estado = ? AND fecha >= ? AND fecha < ?`,
		model.EstadoCompletado, from, to,
	).Scan(&sum).Error
	return sum, err
}

func (r *orderRepo) SaveItemTx(tx *gorm.DB, it *model.OrderItem) error {
	return tx.Save(it).Error
}

func (r *orderRepo) DeleteItemTx(tx *gorm.DB, itemID uuid.UUID) error {
	return tx.Delete(&model.OrderItem{}, itemID).Error
}
