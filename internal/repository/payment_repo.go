package repository

import (
	"context"
	"time"

	"vitalexa/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository interface {
	CreateTx(tx *gorm.DB, p *model.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	// LockForUpdateTx serializes transfer creation against the payment row.
	LockForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Payment, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Payment, error)
	SaveTx(tx *gorm.DB, p *model.Payment) error
	// SumActiveByOrderTx totals non-cancelled payments of one order.
	SumActiveByOrderTx(tx *gorm.DB, orderID uuid.UUID) (decimal.Decimal, error)

	// SumCollectedForInvoices totals active payments whose value date falls
	// in [from, to) against COMPLETADO invoices of the given vendors whose
	// fecha falls in [invFrom, invTo). Payroll's collection window.
	SumCollectedForInvoices(ctx context.Context, vendorIDs []uuid.UUID, invFrom, invTo, from, to time.Time) (decimal.Decimal, error)

	DB() *gorm.DB
}

type paymentRepo struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) PaymentRepository { return &paymentRepo{db: db} }

func (r *paymentRepo) DB() *gorm.DB { return r.db }

func (r *paymentRepo) CreateTx(tx *gorm.DB, p *model.Payment) error {
	return tx.Create(p).Error
}

func (r *paymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var p model.Payment
	err := r.db.WithContext(ctx).Preload("Order").First(&p, id).Error
	return &p, err
}

func (r *paymentRepo) LockForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Payment, error) {
	var p model.Payment
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error
	return &p, err
}

func (r *paymentRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).
		Order("payment_date ASC").Find(&payments).Error
	return payments, err
}

func (r *paymentRepo) SaveTx(tx *gorm.DB, p *model.Payment) error {
	return tx.Save(p).Error
}

func (r *paymentRepo) SumActiveByOrderTx(tx *gorm.DB, orderID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := tx.Raw(`
		SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE order_id = ? AND is_cancelled = false`, orderID).Scan(&sum).Error
	return sum, err
}

func (r *paymentRepo) SumCollectedForInvoices(ctx context.Context, vendorIDs []uuid.UUID, invFrom, invTo, from, to time.Time) (decimal.Decimal, error) {
	if len(vendorIDs) == 0 {
		return decimal.Zero, nil
	}
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(p.amount), 0)
		FROM payments p
		JOIN orders o ON o.id = p.order_id
		WHERE p.is_cancelled = false
		  AND p.actual_payment_date >= ? AND p.actual_payment_date < ?
		  AND o.estado = ?
		  AND o.vendedor_id IN ?
		  AND o.fecha >= ? AND o.fecha < ?`,
		from, to, model.EstadoCompletado, vendorIDs, invFrom, invTo,
	).Scan(&sum).Error
	return sum, err
}
