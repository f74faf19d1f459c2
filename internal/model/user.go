package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles del sistema. CLIENTE is the self-service portal login linked to a
// Client record; it never sees other clients' data.
const (
	RoleVendedor = "VENDEDOR"
	RoleAdmin    = "ADMIN"
	RoleOwner    = "OWNER"
	RoleCliente  = "CLIENTE"
)

// User stores system users with role-based access.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"type:varchar(20);not null"`
	Activo       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
