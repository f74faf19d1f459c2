package service

import (
	"context"
	"time"

	"vitalexa/internal/config"
	"vitalexa/internal/dto"
	"vitalexa/internal/middleware"
	"vitalexa/internal/model"
	"vitalexa/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	ListVendors(ctx context.Context) ([]dto.UserResponse, error)
	DeactivateUser(ctx context.Context, id uuid.UUID) error
}

type authService struct {
	repo    repository.UserRepository
	clients repository.ClientRepository
	cfg     *config.Config
}

func NewAuthService(repo repository.UserRepository, clients repository.ClientRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, clients: clients, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil || !user.Activo {
		return nil, errForbidden("credenciales invalidas")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errForbidden("credenciales invalidas")
	}

	token, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   s.cfg.JWTExpirationHours * 3600,
		User:        dto.UserToResponse(user),
	}, nil
}

func (s *authService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	if _, err := s.repo.FindByUsername(ctx, req.Username); err == nil {
		return nil, errConflict("el username ya existe")
	}

	// CLIENTE logins always point at a client record.
	var cliente *model.Client
	if req.Role == model.RoleCliente {
		if req.ClienteID == nil {
			return nil, errInvalid("un usuario CLIENTE requiere cliente_id")
		}
		c, err := s.clients.FindByID(ctx, *req.ClienteID)
		if err != nil {
			return nil, errNotFound("cliente no encontrado")
		}
		if c.UserID != nil {
			return nil, errConflict("el cliente ya tiene un usuario asociado")
		}
		cliente = c
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username:     req.Username,
		Nombre:       req.Nombre,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	if cliente != nil {
		cliente.UserID = &user.ID
		if err := s.clients.Update(ctx, cliente); err != nil {
			return nil, err
		}
	}
	resp := dto.UserToResponse(user)
	return &resp, nil
}

func (s *authService) ListVendors(ctx context.Context) ([]dto.UserResponse, error) {
	vendors, err := s.repo.ListByRole(ctx, model.RoleVendedor)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(vendors))
	for i := range vendors {
		out = append(out, dto.UserToResponse(&vendors[i]))
	}
	return out, nil
}

func (s *authService) DeactivateUser(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetActivo(ctx, id, false)
}

func (s *authService) generateToken(user *model.User, ttl time.Duration) (string, error) {
	claims := middleware.JWTClaims{
		UserID:   user.ID.String(),
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   user.ID.String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
