package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de promoción.
const (
	PromoPack       = "PACK"
	PromoBuyGetFree = "BUY_GET_FREE"
)

// Promotion defines either a fixed-price pack or a buy-N-get-M-free deal.
// BUY_GET_FREE gifts come from GiftItems unless RequiresAssortmentSelection,
// in which case the buyer picks the gifts after order creation.
type Promotion struct {
	ID                          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre                      string    `gorm:"not null"`
	Descripcion                 *string
	Tipo                        string `gorm:"type:varchar(20);not null"`
	BuyQuantity                 int    `gorm:"not null;default:1"`
	FreeQuantity                int    `gorm:"not null;default:0"`
	PackPrice                   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	MainProductID               *uuid.UUID       `gorm:"type:uuid;index"`
	RequiresAssortmentSelection bool             `gorm:"not null;default:false"`
	AllowStackWithDiscounts     bool             `gorm:"not null;default:true"`
	Activo                      bool             `gorm:"not null;default:true"`
	ValidFrom                   *time.Time
	ValidUntil                  *time.Time
	CreatedAt                   time.Time
	UpdatedAt                   time.Time

	MainProduct *Product            `gorm:"foreignKey:MainProductID"`
	GiftItems   []PromotionGiftItem `gorm:"foreignKey:PromotionID"`
}

// PromotionGiftItem is one fixed gift line of a BUY_GET_FREE promotion.
type PromotionGiftItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PromotionID uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null"`
	Cantidad    int       `gorm:"not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

// IsValidAt reports whether the promotion is active and inside its validity
// window. Nil bounds are open.
func (p *Promotion) IsValidAt(now time.Time) bool {
	if !p.Activo {
		return false
	}
	if p.ValidFrom != nil && now.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidUntil != nil && now.After(*p.ValidUntil) {
		return false
	}
	return true
}

// SpecialPromotion is a vendor-restricted variant of a promotion. Unset
// fields fall back to the parent via the Effective* resolvers.
type SpecialPromotion struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre            string    `gorm:"not null"`
	Tipo              *string   `gorm:"type:varchar(20)"`
	BuyQuantity       *int
	FreeQuantity      *int
	PackPrice         *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ParentPromotionID *uuid.UUID       `gorm:"type:uuid;index"`
	Activo            bool             `gorm:"not null;default:true"`
	ValidFrom         *time.Time
	ValidUntil        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time

	ParentPromotion *Promotion `gorm:"foreignKey:ParentPromotionID"`
	AllowedVendors  []User     `gorm:"many2many:special_promotion_vendors;"`
}

func (sp *SpecialPromotion) EffectiveTipo() string {
	if sp.Tipo != nil {
		return *sp.Tipo
	}
	if sp.ParentPromotion != nil {
		return sp.ParentPromotion.Tipo
	}
	return ""
}

func (sp *SpecialPromotion) EffectiveBuyQuantity() int {
	if sp.BuyQuantity != nil {
		return *sp.BuyQuantity
	}
	if sp.ParentPromotion != nil {
		return sp.ParentPromotion.BuyQuantity
	}
	return 0
}

func (sp *SpecialPromotion) EffectiveFreeQuantity() int {
	if sp.FreeQuantity != nil {
		return *sp.FreeQuantity
	}
	if sp.ParentPromotion != nil {
		return sp.ParentPromotion.FreeQuantity
	}
	return 0
}

func (sp *SpecialPromotion) EffectivePackPrice() *decimal.Decimal {
	if sp.PackPrice != nil {
		return sp.PackPrice
	}
	if sp.ParentPromotion != nil {
		return sp.ParentPromotion.PackPrice
	}
	return nil
}

// IsValidAt mirrors Promotion.IsValidAt over the special promotion's own
// window; the parent's window does not apply.
func (sp *SpecialPromotion) IsValidAt(now time.Time) bool {
	if !sp.Activo {
		return false
	}
	if sp.ValidFrom != nil && now.Before(*sp.ValidFrom) {
		return false
	}
	if sp.ValidUntil != nil && now.After(*sp.ValidUntil) {
		return false
	}
	return true
}

// VendorAllowed reports whether the vendor may use this special promotion.
func (sp *SpecialPromotion) VendorAllowed(vendorID uuid.UUID) bool {
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
