package model

import (
	"time"

	"github.com/google/uuid"
)

// Tipos de movimiento de inventario.
const (
	MovCreation         = "CREATION"
	MovUpdate           = "UPDATE"
	MovStockAdjustment  = "STOCK_ADJUSTMENT"
	MovSale             = "SALE"
	MovRestock          = "RESTOCK"
	MovDeletion         = "DELETION"
	MovReturn           = "RETURN"
	MovOrderItemRemoval = "ORDER_ITEM_REMOVAL"
)

// InventoryMovement registra cada cambio de stock. Every mutation of
// Product.Stock writes exactly one row in the same transaction; if the audit
// insert fails the whole operation fails.
type InventoryMovement struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// ProductID is nullable so history survives hard product deletion;
	// ProductName keeps the label either way.
	ProductID     *uuid.UUID `gorm:"type:uuid;index"`
	ProductName   string     `gorm:"not null"`
	Tipo          string     `gorm:"type:varchar(30);not null;index"`
	Cantidad      int        `gorm:"not null"` // positive = entrada, negative = salida
	StockAnterior int        `gorm:"not null"`
	StockNuevo    int        `gorm:"not null"`
	Motivo        string
	Username      string    `gorm:"not null"`
	CreatedAt     time.Time `gorm:"index"`
}

func (InventoryMovement) TableName() string { return "inventory_movements" }
