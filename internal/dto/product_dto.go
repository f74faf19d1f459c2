package dto

import (
	"vitalexa/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	Nombre       string          `json:"nombre" validate:"required"`
	Descripcion  *string         `json:"descripcion"`
	Precio       decimal.Decimal `json:"precio" validate:"required,gt=0"`
	Stock        int             `json:"stock"`
	ReorderPoint *int            `json:"reorder_point" validate:"omitempty,min=0"`
	TagID        *uuid.UUID      `json:"tag_id"`
	ImageURL     *string         `json:"image_url"`
	Hidden       bool            `json:"hidden"`
}

type UpdateProductRequest struct {
	Nombre       *string          `json:"nombre"`
	Descripcion  *string          `json:"descripcion"`
	Precio       *decimal.Decimal `json:"precio" validate:"omitempty,gt=0"`
	ReorderPoint *int             `json:"reorder_point" validate:"omitempty,min=0"`
	TagID        *uuid.UUID       `json:"tag_id"`
	ImageURL     *string          `json:"image_url"`
	Hidden       *bool            `json:"hidden"`
}

// AdjustStockRequest sets an absolute stock value or applies a delta.
// Exactly one of NewStock / Delta must be present.
type AdjustStockRequest struct {
	NewStock *int   `json:"new_stock"`
	Delta    *int   `json:"delta"`
	Reason   string `json:"reason" validate:"required"`
}

type RestockRequest struct {
	Cantidad int    `json:"cantidad" validate:"required,gt=0"`
	Reason   string `json:"reason"`
}

type ProductFilter struct {
	Nombre string
	TagID  string
	Activo string // "true" (default) | "false" | "all"
	Hidden string // "" = visible only | "all"
	Page   int
	Limit  int
}

type ProductResponse struct {
	ID           uuid.UUID       `json:"id"`
	Nombre       string          `json:"nombre"`
	Descripcion  *string         `json:"descripcion,omitempty"`
	Precio       decimal.Decimal `json:"precio"`
	Stock        int             `json:"stock"`
	ReorderPoint *int            `json:"reorder_point,omitempty"`
	Tag          *string         `json:"tag,omitempty"`
	ImageURL     *string         `json:"image_url,omitempty"`
	Hidden       bool            `json:"hidden"`
	Activo       bool            `json:"activo"`
}

// ProductToResponse converts a product model to its API shape.
func ProductToResponse(p *model.Product) ProductResponse {
	resp := ProductResponse{
		ID:           p.ID,
		Nombre:       p.Nombre,
		Descripcion:  p.Descripcion,
		Precio:       p.Precio,
		Stock:        p.Stock,
		ReorderPoint: p.ReorderPoint,
		ImageURL:     p.ImageURL,
		Hidden:       p.Hidden,
		Activo:       p.Activo,
	}
	if p.Tag != nil {
		resp.Tag = &p.Tag.Name
	}
	return resp
}

// StockSummaryResponse is the reconciliation view of one product.
type StockSummaryResponse struct {
	ProductID      uuid.UUID `json:"product_id"`
	Nombre         string    `json:"nombre"`
	Stock          int       `json:"stock"`
	CommittedStock int       `json:"committed_stock"`
	PhysicalStock  int       `json:"physical_stock"`
}

type CreateSpecialProductRequest struct {
	Nombre          string          `json:"nombre" validate:"required"`
	Descripcion     *string         `json:"descripcion"`
	Precio          decimal.Decimal `json:"precio" validate:"required,gt=0"`
	OwnStock        *int            `json:"own_stock"`
	ParentProductID *uuid.UUID      `json:"parent_product_id"`
	TagID           *uuid.UUID      `json:"tag_id"`
	AllowedVendorIDs []uuid.UUID    `json:"allowed_vendor_ids"`
}

type UpdateSpecialProductRequest struct {
	Nombre           *string          `json:"nombre"`
	Descripcion      *string          `json:"descripcion"`
	Precio           *decimal.Decimal `json:"precio" validate:"omitempty,gt=0"`
	TagID            *uuid.UUID       `json:"tag_id"`
	AllowedVendorIDs []uuid.UUID      `json:"allowed_vendor_ids"`
}

type SpecialProductResponse struct {
	ID              uuid.UUID       `json:"id"`
	Nombre          string          `json:"nombre"`
	Precio          decimal.Decimal `json:"precio"`
	EffectiveStock  int             `json:"effective_stock"`
	ParentProductID *uuid.UUID      `json:"parent_product_id,omitempty"`
	AllowedVendors  []UserResponse  `json:"allowed_vendors,omitempty"`
	Activo          bool            `json:"activo"`
}

// SpecialProductToResponse converts a special product, resolving effective stock.
func SpecialProductToResponse(sp *model.SpecialProduct) SpecialProductResponse {
	resp := SpecialProductResponse{
		ID:              sp.ID,
		Nombre:          sp.Nombre,
		Precio:          sp.Precio,
		EffectiveStock:  sp.EffectiveStock(),
		ParentProductID: sp.ParentProductID,
		Activo:          sp.Activo,
	}
	for i := range sp.AllowedVendors {
		resp.AllowedVendors = append(resp.AllowedVendors, UserToResponse(&sp.AllowedVendors[i]))
	}
	return resp
}

type CreateTagRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}
