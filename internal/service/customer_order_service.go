package service

import (
	"context"
	"fmt"

	"vitalexa/internal/dto"
	"vitalexa/internal/model"
	"vitalexa/internal/repository"

	"github.com/google/uuid"
)

// CustomerOrderService is the self-service portal behind CLIENTE logins.
// Every operation resolves the caller's own client record first; orders of
// other clients are never reachable.
type CustomerOrderService interface {
	Me(ctx context.Context, userID uuid.UUID) (*dto.ClientMeResponse, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, req dto.UpdateClientMeRequest) (*dto.ClientMeResponse, error)

	CreateOrder(ctx context.Context, userID uuid.UUID, username string, req dto.CustomerOrderRequest) (*dto.CreateOrderResponse, error)
	MyOrders(ctx context.Context, userID uuid.UUID) ([]dto.OrderResponse, error)
	MyOrderDetail(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*dto.OrderResponse, error)
	CancelOrder(ctx context.Context, userID uuid.UUID, username string, orderID uuid.UUID) (*dto.OrderResponse, error)
	Reorder(ctx context.Context, userID uuid.UUID, username string, orderID uuid.UUID) (*dto.CreateOrderResponse, error)
}

type customerOrderService struct {
	clients  repository.ClientRepository
	orders   repository.OrderRepository
	orderSvc OrderService
}

func NewCustomerOrderService(clients repository.ClientRepository, orders repository.OrderRepository, orderSvc OrderService) CustomerOrderService {
	return &customerOrderService{clients: clients, orders: orders, orderSvc: orderSvc}
}

func (s *customerOrderService) Me(ctx context.Context, userID uuid.UUID) (*dto.ClientMeResponse, error) {
	c, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.ClientToMeResponse(c)
	return &resp, nil
}

func (s *customerOrderService) UpdateMe(ctx context.Context, userID uuid.UUID, req dto.UpdateClientMeRequest) (*dto.ClientMeResponse, error) {
	c, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Telefono != nil {
		c.Telefono = req.Telefono
	}
	if req.Direccion != nil {
		c.Direccion = req.Direccion
	}
	if err := s.clients.Update(ctx, c); err != nil {
		return nil, err
	}
	resp := dto.ClientToMeResponse(c)
	return &resp, nil
}

func (s *customerOrderService) CreateOrder(ctx context.Context, userID uuid.UUID, username string, req dto.CustomerOrderRequest) (*dto.CreateOrderResponse, error) {
	c, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.VendedorAsignadoID == nil {
		return nil, errConflict("el cliente no tiene vendedor asignado")
	}

	items := make([]dto.OrderItemRequest, 0, len(req.Items))
	for i := range req.Items {
		pid := req.Items[i].ProductID
		items = append(items, dto.OrderItemRequest{
			ProductID: &pid,
			Cantidad:  req.Items[i].Cantidad,
		})
	}
	// The full order pipeline applies: stock guards, invoice numbering and
	// the client's purchase counter all behave as if the vendor loaded it.
	return s.orderSvc.Create(ctx, *c.VendedorAsignadoID, dto.CreateOrderRequest{
		ClienteID: &c.ID,
		Items:     items,
		Notas:     req.Notas,
	}, username)
}

func (s *customerOrderService) MyOrders(ctx context.Context, userID uuid.UUID) ([]dto.OrderResponse, error) {
	c, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.orders.ListByClient(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.OrderToResponse(&rows[i]))
	}
	return out, nil
}

func (s *customerOrderService) MyOrderDetail(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*dto.OrderResponse, error) {
	c, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	o, err := s.ownedOrder(ctx, c, orderID)
	if err != nil {
		return nil, err
	}
	resp := dto.OrderToResponse(o)
	return &resp, nil
}

func (s *customerOrderService) CancelOrder(ctx context.Context, userID uuid.UUID, username string, orderID uuid.UUID) (*dto.OrderResponse, error) {
	c, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	o, err := s.ownedOrder(ctx, c, orderID)
	if err != nil {
		return nil, err
	}
	if o.Estado == model.EstadoCompletado {
		return nil, errConflict("no se puede cancelar una orden completada")
	}
	return s.orderSvc.Cancel(ctx, orderID, nil, username)
}

// Reorder places a fresh order with the same plain catalog lines. Promotion,
// freight and gift rows of the original are not copied; they belong to the
// context in which the original was sold.
func (s *customerOrderService) Reorder(ctx context.Context, userID uuid.UUID, username string, orderID uuid.UUID) (*dto.CreateOrderResponse, error) {
	c, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.VendedorAsignadoID == nil {
		return nil, errConflict("el cliente no tiene vendedor asignado")
	}
	o, err := s.ownedOrder(ctx, c, orderID)
	if err != nil {
		return nil, err
	}

	var items []dto.OrderItemRequest
	for i := range o.Items {
		it := &o.Items[i]
		if it.ProductID == nil || it.IsFreightItem || it.IsFreeItem || it.IsBonified || it.IsPromotionItem {
			continue
		}
		pid := *it.ProductID
		items = append(items, dto.OrderItemRequest{ProductID: &pid, Cantidad: it.Cantidad})
	}
	if len(items) == 0 {
		return nil, errConflict("la orden no tiene productos para reordenar")
	}

	return s.orderSvc.Create(ctx, *c.VendedorAsignadoID, dto.CreateOrderRequest{
		ClienteID: &c.ID,
		Items:     items,
		Notas:     fmt.Sprintf("Reorden de: %.8s", o.ID.String()),
	}, username)
}

func (s *customerOrderService) clientFor(ctx context.Context, userID uuid.UUID) (*model.Client, error) {
	c, err := s.clients.FindByUserID(ctx, userID)
	if err != nil {
		return nil, errNotFound("el usuario no tiene cliente asociado")
	}
	if !c.Activo {
		return nil, errConflict("el cliente esta inactivo")
	}
	return c, nil
}

func (s *customerOrderService) ownedOrder(ctx context.Context, c *model.Client, orderID uuid.UUID) (*model.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, errNotFound("orden no encontrada")
	}
	if o.ClienteID == nil || *o.ClienteID != c.ID {
		return nil, errForbidden("la orden pertenece a otro cliente")
	}
	return o, nil
}
