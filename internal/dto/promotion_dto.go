package dto

import (
	"time"

	"vitalexa/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type GiftItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Cantidad  int       `json:"cantidad" validate:"required,gt=0"`
}

type CreatePromotionRequest struct {
	Nombre                      string           `json:"nombre" validate:"required"`
	Descripcion                 *string          `json:"descripcion"`
	Tipo                        string           `json:"tipo" validate:"required,oneof=PACK BUY_GET_FREE"`
	BuyQuantity                 int              `json:"buy_quantity" validate:"required,gt=0"`
	FreeQuantity                int              `json:"free_quantity" validate:"min=0"`
	PackPrice                   *decimal.Decimal `json:"pack_price"`
	MainProductID               *uuid.UUID       `json:"main_product_id"`
	GiftItems                   []GiftItemRequest `json:"gift_items" validate:"dive"`
	RequiresAssortmentSelection bool             `json:"requires_assortment_selection"`
	AllowStackWithDiscounts     *bool            `json:"allow_stack_with_discounts"`
	ValidFrom                   *time.Time       `json:"valid_from"`
	ValidUntil                  *time.Time       `json:"valid_until"`
}

type PromotionResponse struct {
	ID                          uuid.UUID        `json:"id"`
	Nombre                      string           `json:"nombre"`
	Tipo                        string           `json:"tipo"`
	BuyQuantity                 int              `json:"buy_quantity"`
	FreeQuantity                int              `json:"free_quantity"`
	PackPrice                   *decimal.Decimal `json:"pack_price,omitempty"`
	MainProductID               *uuid.UUID       `json:"main_product_id,omitempty"`
	GiftItems                   []GiftItemResponse `json:"gift_items,omitempty"`
	RequiresAssortmentSelection bool             `json:"requires_assortment_selection"`
	AllowStackWithDiscounts     bool             `json:"allow_stack_with_discounts"`
	Activo                      bool             `json:"activo"`
	ValidFrom                   *time.Time       `json:"valid_from,omitempty"`
	ValidUntil                  *time.Time       `json:"valid_until,omitempty"`
}

type GiftItemResponse struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	Cantidad    int       `json:"cantidad"`
}

// PromotionToResponse converts a promotion model to its API shape.
func PromotionToResponse(p *model.Promotion) PromotionResponse {
	resp := PromotionResponse{
		ID:                          p.ID,
		Nombre:                      p.Nombre,
		Tipo:                        p.Tipo,
		BuyQuantity:                 p.BuyQuantity,
		FreeQuantity:                p.FreeQuantity,
		PackPrice:                   p.PackPrice,
		MainProductID:               p.MainProductID,
		RequiresAssortmentSelection: p.RequiresAssortmentSelection,
		AllowStackWithDiscounts:     p.AllowStackWithDiscounts,
		Activo:                      p.Activo,
		ValidFrom:                   p.ValidFrom,
		ValidUntil:                  p.ValidUntil,
	}
	for i := range p.GiftItems {
		gi := &p.GiftItems[i]
		g := GiftItemResponse{ProductID: gi.ProductID, Cantidad: gi.Cantidad}
		if gi.Product != nil {
			g.ProductName = gi.Product.Nombre
		}
		resp.GiftItems = append(resp.GiftItems, g)
	}
	return resp
}

type CreateSpecialPromotionRequest struct {
	Nombre            string           `json:"nombre" validate:"required"`
	Tipo              *string          `json:"tipo" validate:"omitempty,oneof=PACK BUY_GET_FREE"`
	BuyQuantity       *int             `json:"buy_quantity" validate:"omitempty,gt=0"`
	FreeQuantity      *int             `json:"free_quantity" validate:"omitempty,min=0"`
	PackPrice         *decimal.Decimal `json:"pack_price"`
	ParentPromotionID *uuid.UUID       `json:"parent_promotion_id"`
	AllowedVendorIDs  []uuid.UUID      `json:"allowed_vendor_ids"`
	ValidFrom         *time.Time       `json:"valid_from"`
	ValidUntil        *time.Time       `json:"valid_until"`
}

type SpecialPromotionResponse struct {
	ID                uuid.UUID        `json:"id"`
	Nombre            string           `json:"nombre"`
	EffectiveTipo     string           `json:"effective_tipo"`
	EffectiveBuyQty   int              `json:"effective_buy_quantity"`
	EffectiveFreeQty  int              `json:"effective_free_quantity"`
	EffectivePack     *decimal.Decimal `json:"effective_pack_price,omitempty"`
	ParentPromotionID *uuid.UUID       `json:"parent_promotion_id,omitempty"`
	Activo            bool             `json:"activo"`
}

// SpecialPromotionToResponse resolves the parent fallbacks explicitly.
func SpecialPromotionToResponse(sp *model.SpecialPromotion) SpecialPromotionResponse {
	return SpecialPromotionResponse{
		ID:                sp.ID,
		Nombre:            sp.Nombre,
		EffectiveTipo:     sp.EffectiveTipo(),
		EffectiveBuyQty:   sp.EffectiveBuyQuantity(),
		EffectiveFreeQty:  sp.EffectiveFreeQuantity(),
		EffectivePack:     sp.EffectivePackPrice(),
		ParentPromotionID: sp.ParentPromotionID,
		Activo:            sp.Activo,
	}
}
