package repository

import (
	"context"

	"vitalexa/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransferRepository interface {
	CreateTx(tx *gorm.DB, t *model.PaymentTransfer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PaymentTransfer, error)
	ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]model.PaymentTransfer, error)
	ListByDestVendor(ctx context.Context, vendorID uuid.UUID, month, year int) ([]model.PaymentTransfer, error)
	SaveTx(tx *gorm.DB, t *model.PaymentTransfer) error

	// SumActiveByPaymentTx totals non-revoked transfers over one payment.
	// Runs inside the caller's transaction while the payment row is locked.
	SumActiveByPaymentTx(tx *gorm.DB, paymentID uuid.UUID) (decimal.Decimal, error)

	// SumActiveForVendorMonth totals non-revoked transfers credited to the
	// given vendors for one payroll month.
	SumActiveForVendorMonth(ctx context.Context, vendorIDs []uuid.UUID, month, year int) (decimal.Decimal, error)
}

type transferRepo struct{ db *gorm.DB }

func NewTransferRepository(db *gorm.DB) TransferRepository { return &transferRepo{db: db} }

func (r *transferRepo) CreateTx(tx *gorm.DB, t *model.PaymentTransfer) error {
	return tx.Create(t).Error
}

func (r *transferRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PaymentTransfer, error) {
	var t model.PaymentTransfer
	err := r.db.WithContext(ctx).Preload("Payment").First(&t, id).Error
	return &t, err
}

func (r *transferRepo) ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]model.PaymentTransfer, error) {
	var transfers []model.PaymentTransfer
	err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).
		Order("created_at ASC").Find(&transfers).Error
	return transfers, err
}

func (r *transferRepo) ListByDestVendor(ctx context.Context, vendorID uuid.UUID, month, year int) ([]model.PaymentTransfer, error) {
	var transfers []model.PaymentTransfer
	err := r.db.WithContext(ctx).
		Where("dest_vendor_id = ? AND target_month = ? AND target_year = ? AND is_revoked = false",
			vendorID, month, year).
		Order("created_at ASC").Find(&transfers).Error
	return transfers, err
}

func (r *transferRepo) SaveTx(tx *gorm.DB, t *model.PaymentTransfer) error {
	return tx.Save(t).Error
}

func (r *transferRepo) SumActiveByPaymentTx(tx *gorm.DB, paymentID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := tx.Raw(`
		SELECT COALESCE(SUM(amount), 0) FROM payment_transfers
		WHERE payment_id = ? AND is_revoked = false`, paymentID).Scan(&sum).Error
	return sum, err
}

func (r *transferRepo) SumActiveForVendorMonth(ctx context.Context, vendorIDs []uuid.UUID, month, year int) (decimal.Decimal, error) {
	if len(vendorIDs) == 0 {
		return decimal.Zero, nil
	}
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(amount), 0) FROM payment_transfers
		WHERE dest_vendor_id IN ? AND target_month = ? AND target_year = ?
		  AND is_revoked = false`, vendorIDs, month, year).Scan(&sum).Error
	return sum, err
}
