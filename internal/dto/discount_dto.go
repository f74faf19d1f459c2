package dto

import (
	"time"

	"vitalexa/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ApplyDiscountRequest struct {
	Tipo string `json:"tipo" validate:"required,oneof=ADMIN_10 ADMIN_12 ADMIN_15 ADMIN_CUSTOM OWNER_ADDITIONAL"`
	// Percentage is required for ADMIN_CUSTOM and OWNER_ADDITIONAL,
	// ignored for presets.
	Percentage *decimal.Decimal `json:"percentage"`
	Reason     *string          `json:"reason"`
}

type RevokeDiscountRequest struct {
	Reason *string `json:"reason"`
}

type DiscountResponse struct {
	ID         uuid.UUID       `json:"id"`
	OrderID    uuid.UUID       `json:"order_id"`
	Percentage decimal.Decimal `json:"percentage"`
	Tipo       string          `json:"tipo"`
	Status     string          `json:"status"`
	AppliedBy  uuid.UUID       `json:"applied_by"`
	RevokedBy  *uuid.UUID      `json:"revoked_by,omitempty"`
	Reason     *string         `json:"reason,omitempty"`
	AppliedAt  time.Time       `json:"applied_at"`
	RevokedAt  *time.Time      `json:"revoked_at,omitempty"`
}

// DiscountToResponse converts a discount row to its API shape.
func DiscountToResponse(d *model.OrderDiscount) DiscountResponse {
	return DiscountResponse{
		ID:         d.ID,
		OrderID:    d.OrderID,
		Percentage: d.Percentage,
		Tipo:       d.Tipo,
		Status:     d.Status,
		AppliedBy:  d.AppliedByID,
		RevokedBy:  d.RevokedByID,
		Reason:     d.Reason,
		AppliedAt:  d.AppliedAt,
		RevokedAt:  d.RevokedAt,
	}
}
