package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is one collection against a completed order. PaymentDate is when it
// was registered; ActualPaymentDate is the value date the money arrived —
// payroll collection windows run on the value date.
type Payment struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount             decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	PaymentDate        time.Time       `gorm:"not null"`
	ActualPaymentDate  time.Time       `gorm:"not null;index"`
	Method             string          `gorm:"type:varchar(30);not null"`
	RegisteredByID     uuid.UUID       `gorm:"type:uuid;not null"`
	Notes              string
	IsCancelled        bool `gorm:"not null;default:false"`
	CancelledAt        *time.Time
	CancelledByID      *uuid.UUID `gorm:"type:uuid"`
	CancellationReason *string
	CreatedAt          time.Time

	Order        *Order `gorm:"foreignKey:OrderID"`
	RegisteredBy *User  `gorm:"foreignKey:RegisteredByID"`
}

// PaymentTransfer reassigns part of a payment's credit from one vendor's
// payroll month to another's. Active transfers over a payment never exceed
// the payment amount.
type PaymentTransfer struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PaymentID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	OriginVendorID   uuid.UUID       `gorm:"type:uuid;not null"`
	DestVendorID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount           decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	TargetMonth      int             `gorm:"not null"`
	TargetYear       int             `gorm:"not null"`
	Reason           string          `gorm:"not null"`
	IsRevoked        bool            `gorm:"not null;default:false"`
	RevokedAt        *time.Time
	RevokedByID      *uuid.UUID `gorm:"type:uuid"`
	RevocationReason *string
	CreatedByID      uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt        time.Time

	Payment    *Payment `gorm:"foreignKey:PaymentID"`
	DestVendor *User    `gorm:"foreignKey:DestVendorID"`
}
