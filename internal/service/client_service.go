package service

import (
	"context"

	"vitalexa/internal/dto"
	"vitalexa/internal/model"
	"vitalexa/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ClientService interface {
	Create(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error)
	List(ctx context.Context, nombre string, page, limit int) ([]dto.ClientResponse, int64, error)
	Update(ctx context.Context, id uuid.UUID, req dto.CreateClientRequest) (*dto.ClientResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error

	// SetInitialBalance records debt predating the system. It works exactly
	// once per client; a second set is rejected.
	SetInitialBalance(ctx context.Context, id uuid.UUID, req dto.SetInitialBalanceRequest) (*dto.ClientResponse, error)
	SetCreditLimit(ctx context.Context, id uuid.UUID, req dto.SetCreditLimitRequest) (*dto.ClientResponse, error)
	RemoveCreditLimit(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error)

	Balance(ctx context.Context, id uuid.UUID) (*dto.ClientBalanceResponse, error)
	ListBalances(ctx context.Context) ([]dto.ClientBalanceResponse, error)
	ListBalancesByVendedor(ctx context.Context, vendorID uuid.UUID) ([]dto.ClientBalanceResponse, error)
}

type clientService struct {
	clients  repository.ClientRepository
	users    repository.UserRepository
	orders   repository.OrderRepository
	payments repository.PaymentRepository
}

func NewClientService(clients repository.ClientRepository, users repository.UserRepository, orders repository.OrderRepository, payments repository.PaymentRepository) ClientService {
	return &clientService{clients: clients, users: users, orders: orders, payments: payments}
}

func (s *clientService) Create(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error) {
	if err := s.checkVendor(ctx, req.VendedorAsignadoID); err != nil {
		return nil, err
	}
	c := &model.Client{
		Nombre:             req.Nombre,
		Telefono:           req.Telefono,
		Email:              req.Email,
		Direccion:          req.Direccion,
		VendedorAsignadoID: req.VendedorAsignadoID,
		Activo:             true,
	}
	if err := s.clients.Create(ctx, c); err != nil {
		return nil, err
	}
	resp := dto.ClientToResponse(c)
	return &resp, nil
}

func (s *clientService) Get(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error) {
	c, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, errNotFound("cliente no encontrado")
	}
	resp := dto.ClientToResponse(c)
	return &resp, nil
}

func (s *clientService) List(ctx context.Context, nombre string, page, limit int) ([]dto.ClientResponse, int64, error) {
	if limit <= 0 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}
	rows, total, err := s.clients.List(ctx, nombre, page, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.ClientResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.ClientToResponse(&rows[i]))
	}
	return out, total, nil
}

func (s *clientService) Update(ctx context.Context, id uuid.UUID, req dto.CreateClientRequest) (*dto.ClientResponse, error) {
	c, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, errNotFound("cliente no encontrado")
	}
	if err := s.checkVendor(ctx, req.VendedorAsignadoID); err != nil {
		return nil, err
	}
	c.Nombre = req.Nombre
	c.Telefono = req.Telefono
	c.Email = req.Email
	c.Direccion = req.Direccion
	c.VendedorAsignadoID = req.VendedorAsignadoID
	if err := s.clients.Update(ctx, c); err != nil {
		return nil, err
	}
	resp := dto.ClientToResponse(c)
	return &resp, nil
}

func (s *clientService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.clients.FindByID(ctx, id); err != nil {
		return errNotFound("cliente no encontrado")
	}
	return s.clients.SoftDelete(ctx, id)
}

func (s *clientService) SetInitialBalance(ctx context.Context, id uuid.UUID, req dto.SetInitialBalanceRequest) (*dto.ClientResponse, error) {
	c, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, errNotFound("cliente no encontrado")
	}
	if c.InitialBalanceSet {
		return nil, errConflict("el saldo inicial ya fue establecido y no puede modificarse")
	}
	if req.Amount.IsNegative() {
		return nil, errInvalid("el saldo inicial no puede ser negativo")
	}
	c.InitialBalance = req.Amount
	c.InitialBalanceSet = true
	if err := s.clients.Update(ctx, c); err != nil {
		return nil, err
	}
	resp := dto.ClientToResponse(c)
	return &resp, nil
}

func (s *clientService) SetCreditLimit(ctx context.Context, id uuid.UUID, req dto.SetCreditLimitRequest) (*dto.ClientResponse, error) {
	c, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, errNotFound("cliente no encontrado")
	}
	if !req.Amount.IsPositive() {
		return nil, errInvalid("el tope de credito debe ser mayor a cero")
	}
	limit := req.Amount
	c.CreditLimit = &limit
	if err := s.clients.Update(ctx, c); err != nil {
		return nil, err
	}
	resp := dto.ClientToResponse(c)
	return &resp, nil
}

func (s *clientService) RemoveCreditLimit(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error) {
	c, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, errNotFound("cliente no encontrado")
	}
	c.CreditLimit = nil
	if err := s.clients.Update(ctx, c); err != nil {
		return nil, err
	}
	resp := dto.ClientToResponse(c)
	return &resp, nil
}

func (s *clientService) Balance(ctx context.Context, id uuid.UUID) (*dto.ClientBalanceResponse, error) {
	c, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, errNotFound("cliente no encontrado")
	}
	return s.computeBalance(ctx, c)
}

func (s *clientService) ListBalances(ctx context.Context) ([]dto.ClientBalanceResponse, error) {
	clients, err := s.clients.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.balancesFor(ctx, clients)
}

func (s *clientService) ListBalancesByVendedor(ctx context.Context, vendorID uuid.UUID) ([]dto.ClientBalanceResponse, error) {
	if _, err := s.users.FindByID(ctx, vendorID); err != nil {
		return nil, errNotFound("vendedor no encontrado")
	}
	clients, err := s.clients.ListByVendedor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	return s.balancesFor(ctx, clients)
}

func (s *clientService) balancesFor(ctx context.Context, clients []model.Client) ([]dto.ClientBalanceResponse, error) {
	out := make([]dto.ClientBalanceResponse, 0, len(clients))
	for i := range clients {
		b, err := s.computeBalance(ctx, &clients[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, nil
}

// computeBalance sums the client's completed invoices against their active
// payments. Pending = invoiced − paid + initial balance.
func (s *clientService) computeBalance(ctx context.Context, c *model.Client) (*dto.ClientBalanceResponse, error) {
	rows, err := s.orders.ListByClient(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	totalOrders := decimal.Zero
	totalPaid := decimal.Zero
	pendingCount := 0
	for i := range rows {
		o := &rows[i]
		if o.Estado != model.EstadoCompletado {
			continue
		}
		totalOrders = totalOrders.Add(o.EffectiveTotal())
		paid, err := s.payments.SumActiveByOrderTx(s.payments.DB(), o.ID)
		if err != nil {
			return nil, err
		}
		totalPaid = totalPaid.Add(paid)
		if o.PaymentStatus != model.PaymentPaid {
			pendingCount++
		}
	}

	pending := totalOrders.Sub(totalPaid).Add(c.InitialBalance)
	var vendorName *string
	if c.VendedorAsignado != nil {
		vendorName = &c.VendedorAsignado.Username
	}
	return &dto.ClientBalanceResponse{
		ClientID:           c.ID,
		Nombre:             c.Nombre,
		VendedorAsignado:   vendorName,
		CreditLimit:        c.CreditLimit,
		InitialBalance:     c.InitialBalance,
		TotalOrders:        totalOrders,
		TotalPaid:          totalPaid,
		PendingBalance:     pending,
		PendingOrdersCount: pendingCount,
		OverCreditLimit:    c.CreditLimit != nil && pending.GreaterThan(*c.CreditLimit),
	}, nil
}

func (s *clientService) checkVendor(ctx context.Context, vendorID *uuid.UUID) error {
	if vendorID == nil {
		return nil
	}
	u, err := s.users.FindByID(ctx, *vendorID)
	if err != nil {
		return errNotFound("vendedor asignado no encontrado")
	}
	if u.Role != model.RoleVendedor {
		return errConflict("el usuario asignado no es un vendedor")
	}
	return nil
}
