package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client is a buyer account. VendedorAsignadoID links the client to the
// vendor who owns the relationship; historical invoices without an explicit
// vendor fall back to it.
type Client struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre             string    `gorm:"index;not null"`
	Telefono           *string
	Email              *string
	Direccion          *string
	VendedorAsignadoID *uuid.UUID      `gorm:"type:uuid;index"`
	TotalCompras       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Activo             bool            `gorm:"not null;default:true"`

	// UserID links the client to its CLIENTE login, when the client uses
	// the self-service portal.
	UserID *uuid.UUID `gorm:"type:uuid;uniqueIndex"`

	// InitialBalance is debt carried over from before the system existed.
	// It can be set exactly once; InitialBalanceSet guards the second write.
	InitialBalance    decimal.Decimal  `gorm:"type:decimal(14,2);not null;default:0"`
	InitialBalanceSet bool             `gorm:"not null;default:false"`
	CreditLimit       *decimal.Decimal `gorm:"type:decimal(14,2)"`

	CreatedAt time.Time
	UpdatedAt time.Time

	VendedorAsignado *User `gorm:"foreignKey:VendedorAsignadoID"`
	User             *User `gorm:"foreignKey:UserID"`
}
