package dto

import (
	"vitalexa/internal/model"

	"github.com/google/uuid"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	User        UserResponse `json:"user"`
}

type CreateUserRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Nombre   string  `json:"nombre" validate:"required"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Role     string  `json:"role" validate:"required,oneof=VENDEDOR ADMIN OWNER CLIENTE"`
	// ClienteID binds a CLIENTE login to its client record. Required for
	// that role, ignored for the rest.
	ClienteID *uuid.UUID `json:"cliente_id"`
}

type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Nombre   string    `json:"nombre"`
	Email    *string   `json:"email,omitempty"`
	Role     string    `json:"role"`
	Activo   bool      `json:"activo"`
}

// UserToResponse converts a user model to its API shape.
func UserToResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Nombre:   u.Nombre,
		Email:    u.Email,
		Role:     u.Role,
		Activo:   u.Activo,
	}
}
