package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TagSinRegistro marks products whose sales are split into a separate
// off-ledger order (invoiceKind SIN_REGISTRO).
const TagSinRegistro = "S/R"

// Product is a catalog entry backed by the stock ledger. Stock is a signed
// quantity: promotion gift lines and administrative adjustments may drive it
// negative, plain order items may not.
type Product struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre       string    `gorm:"index;not null"`
	Descripcion  *string
	Precio       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Stock        int             `gorm:"not null;default:0"`
	ReorderPoint *int
	TagID        *uuid.UUID `gorm:"type:uuid;index"`
	ImageURL     *string
	Hidden       bool `gorm:"not null;default:false"`
	Activo       bool `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Tag *ProductTag `gorm:"foreignKey:TagID"`
}

// ProductTag classifies products. The S/R tag is system-defined.
type ProductTag struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Description *string
	CreatedAt   time.Time
}

// SpecialProduct is a vendor-restricted catalog entry. When linked to a
// parent product it has no stock of its own: every decrement and restore
// flows through the parent's ledger.
type SpecialProduct struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre          string    `gorm:"index;not null"`
	Descripcion     *string
	Precio          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	OwnStock        *int
	ParentProductID *uuid.UUID `gorm:"type:uuid;index"`
	TagID           *uuid.UUID `gorm:"type:uuid"`
	Activo          bool       `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	ParentProduct  *Product `gorm:"foreignKey:ParentProductID"`
	AllowedVendors []User   `gorm:"many2many:special_product_vendors;"`
}

// EffectiveStock returns the parent's stock when linked, otherwise OwnStock
// (zero when neither is set).
func (sp *SpecialProduct) EffectiveStock() int {
	if sp.ParentProduct != nil {
		return sp.ParentProduct.Stock
	}
	if sp.OwnStock != nil {
		return *sp.OwnStock
	}
	return 0
}

// VendorAllowed reports whether the vendor may sell this special product.
// An empty allow list means no restriction.
func (sp *SpecialProduct) VendorAllowed(vendorID uuid.UUID) bool {
	if len(sp.AllowedVendors) == 0 {
		return true
	}
	for _, v := range sp.AllowedVendors {
		if v.ID == vendorID {
			return true
		}
	}
	return false
}
