package dto

import (
	"time"

	"vitalexa/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RegisterPaymentRequest struct {
	Amount            decimal.Decimal `json:"amount" validate:"required,gt=0"`
	ActualPaymentDate *time.Time      `json:"actual_payment_date"`
	Method            string          `json:"method" validate:"required"`
	Notes             string          `json:"notes"`
}

type CancelPaymentRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type PaymentResponse struct {
	ID                uuid.UUID       `json:"id"`
	OrderID           uuid.UUID       `json:"order_id"`
	Amount            decimal.Decimal `json:"amount"`
	PaymentDate       time.Time       `json:"payment_date"`
	ActualPaymentDate time.Time       `json:"actual_payment_date"`
	Method            string          `json:"method"`
	RegisteredBy      uuid.UUID       `json:"registered_by"`
	Notes             string          `json:"notes,omitempty"`
	IsCancelled       bool            `json:"is_cancelled"`
	CancelledAt       *time.Time      `json:"cancelled_at,omitempty"`
	CancellationReason *string        `json:"cancellation_reason,omitempty"`
}

// PaymentToResponse converts a payment row to its API shape.
func PaymentToResponse(p *model.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                 p.ID,
		OrderID:            p.OrderID,
		Amount:             p.Amount,
		PaymentDate:        p.PaymentDate,
		ActualPaymentDate:  p.ActualPaymentDate,
		Method:             p.Method,
		RegisteredBy:       p.RegisteredByID,
		Notes:              p.Notes,
		IsCancelled:        p.IsCancelled,
		CancelledAt:        p.CancelledAt,
		CancellationReason: p.CancellationReason,
	}
}

// OrderBalanceResponse surfaces the pending balance of an order. Pending may
// be negative: overpayment is allowed and flagged.
type OrderBalanceResponse struct {
	OrderID        uuid.UUID       `json:"order_id"`
	EffectiveTotal decimal.Decimal `json:"effective_total"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	Pending        decimal.Decimal `json:"pending"`
	Overpaid       bool            `json:"overpaid"`
	PaymentStatus  string          `json:"payment_status"`
}

type CreateTransferRequest struct {
	DestVendorID uuid.UUID       `json:"dest_vendor_id" validate:"required"`
	Amount       decimal.Decimal `json:"amount" validate:"required,gt=0"`
	TargetMonth  int             `json:"target_month" validate:"required,min=1,max=12"`
	TargetYear   int             `json:"target_year" validate:"required,min=2020"`
	Reason       string          `json:"reason" validate:"required"`
}

type RevokeTransferRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type TransferResponse struct {
	ID             uuid.UUID       `json:"id"`
	PaymentID      uuid.UUID       `json:"payment_id"`
	OriginVendorID uuid.UUID       `json:"origin_vendor_id"`
	DestVendorID   uuid.UUID       `json:"dest_vendor_id"`
	Amount         decimal.Decimal `json:"amount"`
	TargetMonth    int             `json:"target_month"`
	TargetYear     int             `json:"target_year"`
	Reason         string          `json:"reason"`
	IsRevoked      bool            `json:"is_revoked"`
	RevokedAt      *time.Time      `json:"revoked_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TransferToResponse converts a transfer row to its API shape.
func TransferToResponse(t *model.PaymentTransfer) TransferResponse {
	return TransferResponse{
		ID:             t.ID,
		PaymentID:      t.PaymentID,
		OriginVendorID: t.OriginVendorID,
		DestVendorID:   t.DestVendorID,
		Amount:         t.Amount,
		TargetMonth:    t.TargetMonth,
		TargetYear:     t.TargetYear,
		Reason:         t.Reason,
		IsRevoked:      t.IsRevoked,
		RevokedAt:      t.RevokedAt,
		CreatedAt:      t.CreatedAt,
	}
}

// TransferAvailabilityResponse reports how much of a payment is still
// transferable.
type TransferAvailabilityResponse struct {
	PaymentID   uuid.UUID       `json:"payment_id"`
	Amount      decimal.Decimal `json:"amount"`
	Transferred decimal.Decimal `json:"transferred"`
	Available   decimal.Decimal `json:"available"`
}
