package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de descuento.
const (
	DiscountAdmin10        = "ADMIN_10"
	DiscountAdmin12        = "ADMIN_12"
	DiscountAdmin15        = "ADMIN_15"
	DiscountAdminCustom    = "ADMIN_CUSTOM"
	DiscountOwnerAdditional = "OWNER_ADDITIONAL"
)

// Estados de un descuento.
const (
	DiscountApplied = "APPLIED"
	DiscountRevoked = "REVOKED"
)

// OrderDiscount is one applied (or revoked) percentage on an order. The
// effective discount of an order is the sum of its APPLIED rows, clamped
// at 100; revocation flips the status and keeps the audit trail.
type OrderDiscount struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Percentage  decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Tipo        string          `gorm:"type:varchar(20);not null"`
	Status      string          `gorm:"type:varchar(10);not null;default:'APPLIED'"`
	AppliedByID uuid.UUID       `gorm:"type:uuid;not null"`
	RevokedByID *uuid.UUID      `gorm:"type:uuid"`
	Reason      *string
	AppliedAt   time.Time `gorm:"not null"`
	RevokedAt   *time.Time

	AppliedBy *User `gorm:"foreignKey:AppliedByID"`
	RevokedBy *User `gorm:"foreignKey:RevokedByID"`
}

// PresetPercentage returns the fixed percentage for preset discount types,
// or false for free-form types.
func PresetPercentage(tipo string) (decimal.Decimal, bool) {
	switch tipo {
	case DiscountAdmin10:
		return decimal.NewFromInt(10), true
	case DiscountAdmin12:
		return decimal.NewFromInt(12), true
	case DiscountAdmin15:
		return decimal.NewFromInt(15), true
	}
	return decimal.Zero, false
}
