package dto

import (
	"time"

	"vitalexa/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItemRequest is one requested line. Exactly one of ProductID /
// SpecialProductID / PromotionID / SpecialPromotionID drives the line kind.
type OrderItemRequest struct {
	ProductID          *uuid.UUID `json:"product_id"`
	SpecialProductID   *uuid.UUID `json:"special_product_id"`
	PromotionID        *uuid.UUID `json:"promotion_id"`
	SpecialPromotionID *uuid.UUID `json:"special_promotion_id"`
	Cantidad           int        `json:"cantidad" validate:"required,gt=0"`
	IsBonified         bool       `json:"is_bonified"`
}

type CreateOrderRequest struct {
	ClienteID         *uuid.UUID         `json:"cliente_id"`
	Items             []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Notas             string             `json:"notas"`
	IncludeFreight    bool               `json:"include_freight"`
	IsFreightBonified bool               `json:"is_freight_bonified"`
}

// CustomerOrderRequest is the portal's order shape: plain catalog lines only,
// no promotions, freight or bonifications.
type CustomerOrderRequest struct {
	Items []CustomerOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Notas string                     `json:"notas"`
}

type CustomerOrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Cantidad  int       `json:"cantidad" validate:"required,gt=0"`
}

type ChangeStatusRequest struct {
	Estado string `json:"estado" validate:"required,oneof=PENDIENTE CONFIRMADO PENDING_PROMOTION_COMPLETION COMPLETADO CANCELADO"`
}

type CancelOrderRequest struct {
	Reason *string `json:"reason"`
}

type AnnulOrderRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// AssortmentSelection is one chosen gift line when completing an assortment
// promotion. The quantities must add up exactly to the pending free quantity.
type AssortmentSelection struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Cantidad  int       `json:"cantidad" validate:"required,gt=0"`
}

type CompleteAssortmentRequest struct {
	Selections []AssortmentSelection `json:"selections" validate:"required,min=1,dive"`
}

type UpdateItemETARequest struct {
	EstimatedArrivalDate *time.Time `json:"estimated_arrival_date"`
	EstimatedArrivalNote *string    `json:"estimated_arrival_note"`
}

// HistoricalInvoiceRequest backfills a pre-system invoice. The order is born
// COMPLETADO with the given fecha and invoice number; stock is not touched.
type HistoricalInvoiceRequest struct {
	ClienteID     uuid.UUID       `json:"cliente_id" validate:"required"`
	VendedorID    *uuid.UUID      `json:"vendedor_id"`
	Fecha         time.Time       `json:"fecha" validate:"required"`
	InvoiceNumber int64           `json:"invoice_number" validate:"required,gt=0"`
	TotalValue    decimal.Decimal `json:"total_value" validate:"required,gt=0"`
	AmountPaid    decimal.Decimal `json:"amount_paid" validate:"min=0"`
	Notas         string          `json:"notas"`
}

type EditHistoricalInvoiceRequest struct {
	Fecha         *time.Time       `json:"fecha"`
	InvoiceNumber *int64           `json:"invoice_number" validate:"omitempty,gt=0"`
	TotalValue    *decimal.Decimal `json:"total_value" validate:"omitempty,gt=0"`
	Notas         *string          `json:"notas"`
}

type OrderFilter struct {
	VendedorID  string
	ClienteID   string
	Estado      string
	InvoiceKind string
	Desde       string // YYYY-MM-DD
	Hasta       string // YYYY-MM-DD
	Page        int
	Limit       int
}

type OrderItemResponse struct {
	ID                  uuid.UUID        `json:"id"`
	ProductID           *uuid.UUID       `json:"product_id,omitempty"`
	SpecialProductID    *uuid.UUID       `json:"special_product_id,omitempty"`
	ProductName         string           `json:"product_name,omitempty"`
	Cantidad            int              `json:"cantidad"`
	PrecioUnitario      decimal.Decimal  `json:"precio_unitario"`
	Subtotal            decimal.Decimal  `json:"subtotal"`
	IsBonified          bool             `json:"is_bonified"`
	IsFreeItem          bool             `json:"is_free_item"`
	IsFreightItem       bool             `json:"is_freight_item"`
	IsPromotionItem     bool             `json:"is_promotion_item"`
	OutOfStock          bool             `json:"out_of_stock"`
	PromotionInstanceID *uuid.UUID       `json:"promotion_instance_id,omitempty"`
	PromotionGroupIndex int              `json:"promotion_group_index,omitempty"`
	PromotionPackPrice  *decimal.Decimal `json:"promotion_pack_price,omitempty"`
	CantidadDescontada  int              `json:"cantidad_descontada,omitempty"`
	CantidadPendiente   int              `json:"cantidad_pendiente,omitempty"`
	EstimatedArrivalDate *time.Time      `json:"estimated_arrival_date,omitempty"`
	EstimatedArrivalNote *string         `json:"estimated_arrival_note,omitempty"`
}

type OrderResponse struct {
	ID                 uuid.UUID           `json:"id"`
	Fecha              time.Time           `json:"fecha"`
	VendedorID         uuid.UUID           `json:"vendedor_id"`
	ClienteID          *uuid.UUID          `json:"cliente_id,omitempty"`
	Estado             string              `json:"estado"`
	InvoiceKind        string              `json:"invoice_kind"`
	InvoiceNumber      *int64              `json:"invoice_number,omitempty"`
	Total              decimal.Decimal     `json:"total"`
	DiscountPercentage decimal.Decimal     `json:"discount_percentage"`
	DiscountedTotal    *decimal.Decimal    `json:"discounted_total,omitempty"`
	PaymentStatus      string              `json:"payment_status"`
	Notas              string              `json:"notas,omitempty"`
	IsHistorical       bool                `json:"is_historical"`
	CompletedAt        *time.Time          `json:"completed_at,omitempty"`
	Items              []OrderItemResponse `json:"items"`
}

// OrderItemToResponse converts one order line.
func OrderItemToResponse(it *model.OrderItem) OrderItemResponse {
	resp := OrderItemResponse{
		ID:                   it.ID,
		ProductID:            it.ProductID,
		SpecialProductID:     it.SpecialProductID,
		Cantidad:             it.Cantidad,
		PrecioUnitario:       it.PrecioUnitario,
		Subtotal:             it.Subtotal,
		IsBonified:           it.IsBonified,
		IsFreeItem:           it.IsFreeItem,
		IsFreightItem:        it.IsFreightItem,
		IsPromotionItem:      it.IsPromotionItem,
		OutOfStock:           it.OutOfStock,
		PromotionInstanceID:  it.PromotionInstanceID,
		PromotionGroupIndex:  it.PromotionGroupIndex,
		PromotionPackPrice:   it.PromotionPackPrice,
		CantidadDescontada:   it.CantidadDescontada,
		CantidadPendiente:    it.CantidadPendiente,
		EstimatedArrivalDate: it.EstimatedArrivalDate,
		EstimatedArrivalNote: it.EstimatedArrivalNote,
	}
	if it.Product != nil {
		resp.ProductName = it.Product.Nombre
	} else if it.SpecialProduct != nil {
		resp.ProductName = it.SpecialProduct.Nombre
	}
	return resp
}

// OrderToResponse converts an order with its items.
func OrderToResponse(o *model.Order) OrderResponse {
	resp := OrderResponse{
		ID:                 o.ID,
		Fecha:              o.Fecha,
		VendedorID:         o.VendedorID,
		ClienteID:          o.ClienteID,
		Estado:             o.Estado,
		InvoiceKind:        o.InvoiceKind,
		InvoiceNumber:      o.InvoiceNumber,
		Total:              o.Total,
		DiscountPercentage: o.DiscountPercentage,
		DiscountedTotal:    o.DiscountedTotal,
		PaymentStatus:      o.PaymentStatus,
		Notas:              o.Notas,
		IsHistorical:       o.IsHistorical,
		CompletedAt:        o.CompletedAt,
	}
	for i := range o.Items {
		resp.Items = append(resp.Items, OrderItemToResponse(&o.Items[i]))
	}
	return resp
}

// CreateOrderResponse carries the main order plus any split sub-orders
// produced by the same request.
type CreateOrderResponse struct {
	Order     OrderResponse   `json:"order"`
	SubOrders []OrderResponse `json:"sub_orders,omitempty"`
}
