package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de una orden.
const (
	EstadoPendiente                  = "PENDIENTE"
	EstadoConfirmado                 = "CONFIRMADO"
	EstadoPendingPromotionCompletion = "PENDING_PROMOTION_COMPLETION"
	EstadoCompletado                 = "COMPLETADO"
	EstadoCancelado                  = "CANCELADO"
	EstadoAnulada                    = "ANULADA"
)

// Invoice kinds. Split sub-orders carry SIN_REGISTRO or PROMOCION; everything
// else is STANDARD.
const (
	InvoiceStandard    = "STANDARD"
	InvoiceSinRegistro = "SIN_REGISTRO"
	InvoicePromocion   = "PROMOCION"
)

// Payment status of an order, recomputed after every payment mutation.
const (
	PaymentPending = "PENDING"
	PaymentPartial = "PARTIAL"
	PaymentPaid    = "PAID"
)

// orderTransitions is the forward state machine. COMPLETADO, CANCELADO and
// ANULADA are terminal for status changes; COMPLETADO → ANULADA goes through
// Annul, never ChangeStatus.
var orderTransitions = map[string][]string{
	EstadoPendiente:                  {EstadoConfirmado, EstadoPendingPromotionCompletion, EstadoCancelado},
	EstadoPendingPromotionCompletion: {EstadoConfirmado, EstadoCancelado},
	EstadoConfirmado:                 {EstadoCompletado, EstadoCancelado},
}

// Order is the aggregate root of the sales ledger.
type Order struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Fecha              time.Time `gorm:"not null;index"`
	VendedorID         uuid.UUID `gorm:"type:uuid;not null;index"`
	ClienteID          *uuid.UUID `gorm:"type:uuid;index"`
	Estado             string     `gorm:"type:varchar(30);not null;index"`
	InvoiceKind        string     `gorm:"type:varchar(15);not null;default:'STANDARD'"`
	InvoiceNumber      *int64     `gorm:"uniqueIndex"`
	Total              decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	DiscountedTotal    *decimal.Decimal `gorm:"type:decimal(14,2)"`
	PaymentStatus      string           `gorm:"type:varchar(10);not null;default:'PENDING'"`
	Notas              string
	IncludeFreight     bool `gorm:"not null;default:false"`
	IsFreightBonified  bool `gorm:"not null;default:false"`
	IsHistorical       bool `gorm:"not null;default:false"`
	CompletedAt        *time.Time
	CancellationReason *string
	AnnulmentReason    *string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Vendedor *User       `gorm:"foreignKey:VendedorID"`
	Cliente  *Client     `gorm:"foreignKey:ClienteID"`
	Items    []OrderItem `gorm:"foreignKey:OrderID"`
}

// OrderItem is one line of an order. Promotion lines carry the instance and
// group bookkeeping that the total recalculation and stock restore depend on.
type OrderItem struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID        *uuid.UUID `gorm:"type:uuid;index"`
	SpecialProductID *uuid.UUID `gorm:"type:uuid"`
	Cantidad         int        `gorm:"not null"`
	PrecioUnitario   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	IsBonified       bool            `gorm:"not null;default:false"`
	IsFreeItem       bool            `gorm:"not null;default:false"`
	IsFreightItem    bool            `gorm:"not null;default:false"`
	IsPromotionItem  bool            `gorm:"not null;default:false"`
	OutOfStock       bool            `gorm:"not null;default:false"`

	PromotionID         *uuid.UUID `gorm:"type:uuid"`
	SpecialPromotionID  *uuid.UUID `gorm:"type:uuid"`
	PromotionInstanceID *uuid.UUID `gorm:"type:uuid;index"`
	PromotionGroupIndex int        `gorm:"not null;default:0"`
	PromotionPackPrice  *decimal.Decimal `gorm:"type:decimal(12,2)"`

	// Assortment bookkeeping: Descontada units already taken from stock,
	// Pendiente units still to be chosen by the buyer.
	CantidadDescontada int `gorm:"not null;default:0"`
	CantidadPendiente  int `gorm:"not null;default:0"`

	EstimatedArrivalDate *time.Time
	EstimatedArrivalNote *string
	CreatedAt            time.Time

	Product        *Product        `gorm:"foreignKey:ProductID"`
	SpecialProduct *SpecialProduct `gorm:"foreignKey:SpecialProductID"`
}

// CanTransitionTo validates the order state machine.
func (o *Order) CanTransitionTo(to string) bool {
	for _, allowed := range orderTransitions[o.Estado] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the order accepts no further status changes.
func (o *Order) IsTerminal() bool {
	return o.Estado == EstadoCompletado || o.Estado == EstadoCancelado || o.Estado == EstadoAnulada
}

// RecalculateTotal rebuilds Total from the items. Pack instances are charged
// their pack price exactly once per PromotionInstanceID regardless of how many
// lines the instance produced; free, bonified and out-of-stock pending lines
// contribute nothing.
func (o *Order) RecalculateTotal() {
	total := decimal.Zero
	seenPacks := make(map[uuid.UUID]bool)
	for i := range o.Items {
		it := &o.Items[i]
		if it.PromotionPackPrice != nil && it.PromotionInstanceID != nil {
			if !seenPacks[*it.PromotionInstanceID] {
				seenPacks[*it.PromotionInstanceID] = true
				total = total.Add(*it.PromotionPackPrice)
			}
			continue
		}
		if it.IsFreeItem || it.IsBonified {
			continue
		}
		total = total.Add(it.Subtotal)
	}
	o.Total = total.Round(2)
}

// EffectiveTotal is the amount a payer owes: the discounted total when a
// discount applies, the raw total otherwise.
func (o *Order) EffectiveTotal() decimal.Decimal {
	if o.DiscountedTotal != nil {
		return *o.DiscountedTotal
	}
	return o.Total
}
