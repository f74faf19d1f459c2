package dto

import (
	"time"

	"vitalexa/internal/model"

	"github.com/google/uuid"
)

type MovementFilter struct {
	ProductID string
	Tipo      string
	Desde     string // YYYY-MM-DD
	Hasta     string // YYYY-MM-DD
	Page      int
	Limit     int
}

type MovementResponse struct {
	ID            uuid.UUID  `json:"id"`
	ProductID     *uuid.UUID `json:"product_id,omitempty"`
	ProductName   string     `json:"product_name"`
	Tipo          string     `json:"tipo"`
	Cantidad      int        `json:"cantidad"`
	StockAnterior int        `json:"stock_anterior"`
	StockNuevo    int        `json:"stock_nuevo"`
	Motivo        string     `json:"motivo,omitempty"`
	Username      string     `json:"username"`
	CreatedAt     time.Time  `json:"created_at"`
}

// MovementToResponse converts an inventory movement to its API shape.
func MovementToResponse(m *model.InventoryMovement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		ProductName:   m.ProductName,
		Tipo:          m.Tipo,
		Cantidad:      m.Cantidad,
		StockAnterior: m.StockAnterior,
		StockNuevo:    m.StockNuevo,
		Motivo:        m.Motivo,
		Username:      m.Username,
		CreatedAt:     m.CreatedAt,
	}
}
