package dto

import (
	"vitalexa/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateClientRequest struct {
	Nombre             string     `json:"nombre" validate:"required"`
	Telefono           *string    `json:"telefono"`
	Email              *string    `json:"email" validate:"omitempty,email"`
	Direccion          *string    `json:"direccion"`
	VendedorAsignadoID *uuid.UUID `json:"vendedor_asignado_id"`
}

type ClientResponse struct {
	ID                 uuid.UUID        `json:"id"`
	Nombre             string           `json:"nombre"`
	Telefono           *string          `json:"telefono,omitempty"`
	Email              *string          `json:"email,omitempty"`
	Direccion          *string          `json:"direccion,omitempty"`
	VendedorAsignadoID *uuid.UUID       `json:"vendedor_asignado_id,omitempty"`
	TotalCompras       decimal.Decimal  `json:"total_compras"`
	InitialBalance     decimal.Decimal  `json:"initial_balance"`
	CreditLimit        *decimal.Decimal `json:"credit_limit,omitempty"`
	Activo             bool             `json:"activo"`
}

type SetInitialBalanceRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type SetCreditLimitRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

// ClientBalanceResponse is the per-client account statement: completed
// invoices against active payments, plus debt carried from before the system.
type ClientBalanceResponse struct {
	ClientID           uuid.UUID        `json:"client_id"`
	Nombre             string           `json:"nombre"`
	VendedorAsignado   *string          `json:"vendedor_asignado,omitempty"`
	CreditLimit        *decimal.Decimal `json:"credit_limit,omitempty"`
	InitialBalance     decimal.Decimal  `json:"initial_balance"`
	TotalOrders        decimal.Decimal  `json:"total_orders"`
	TotalPaid          decimal.Decimal  `json:"total_paid"`
	PendingBalance     decimal.Decimal  `json:"pending_balance"`
	PendingOrdersCount int              `json:"pending_orders_count"`
	OverCreditLimit    bool             `json:"over_credit_limit"`
}

// ClientMeResponse is the portal's view of the caller's own client record.
type ClientMeResponse struct {
	ID        uuid.UUID `json:"id"`
	Nombre    string    `json:"nombre"`
	Email     *string   `json:"email,omitempty"`
	Telefono  *string   `json:"telefono,omitempty"`
	Direccion *string   `json:"direccion,omitempty"`
	Activo    bool      `json:"activo"`
}

type UpdateClientMeRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	Telefono  *string `json:"telefono"`
	Direccion *string `json:"direccion"`
}

// ClientToResponse converts a client model to its API shape.
func ClientToResponse(c *model.Client) ClientResponse {
	return ClientResponse{
		ID:                 c.ID,
		Nombre:             c.Nombre,
		Telefono:           c.Telefono,
		Email:              c.Email,
		Direccion:          c.Direccion,
		VendedorAsignadoID: c.VendedorAsignadoID,
		TotalCompras:       c.TotalCompras,
		InitialBalance:     c.InitialBalance,
		CreditLimit:        c.CreditLimit,
		Activo:             c.Activo,
	}
}

func ClientToMeResponse(c *model.Client) ClientMeResponse {
	return ClientMeResponse{
		ID:        c.ID,
		Nombre:    c.Nombre,
		Email:     c.Email,
		Telefono:  c.Telefono,
		Direccion: c.Direccion,
		Activo:    c.Activo,
	}
}
