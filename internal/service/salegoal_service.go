package service

import (
	"context"
	"time"

	"vitalexa/internal/dto"
	"vitalexa/internal/model"
	"vitalexa/internal/repository"

	"github.com/google/uuid"
)

type SaleGoalService interface {
	Create(ctx context.Context, req dto.CreateSaleGoalRequest) (*dto.SaleGoalResponse, error)
	Get(ctx context.Context, vendorID uuid.UUID, month, year int) (*dto.SaleGoalResponse, error)
	ListMonth(ctx context.Context, month, year int) ([]dto.SaleGoalResponse, error)
}

type saleGoalService struct {
	payroll repository.PayrollRepository
	orders  repository.OrderRepository
	users   repository.UserRepository
}

func NewSaleGoalService(payroll repository.PayrollRepository, orders repository.OrderRepository, users repository.UserRepository) SaleGoalService {
	return &saleGoalService{payroll: payroll, orders: orders, users: users}
}

func (s *saleGoalService) Create(ctx context.Context, req dto.CreateSaleGoalRequest) (*dto.SaleGoalResponse, error) {
	vendor, err := s.users.FindByID(ctx, req.VendedorID)
	if err != nil {
		return nil, errNotFound("vendedor no encontrado")
	}
	if vendor.Role != model.RoleVendedor {
		return nil, errConflict("las metas de venta solo aplican a vendedores")
	}

	now := time.Now()
	if req.Year < now.Year() || (req.Year == now.Year() && req.Month < int(now.Month())) {
		return nil, errInvalid("no se pueden crear metas para meses pasados")
	}

	goal, err := s.payroll.FindGoal(ctx, req.VendedorID, req.Month, req.Year)
	if err == nil {
		// Re-targeting keeps the accumulated progress.
		goal.TargetAmount = req.TargetAmount
		if err := s.payroll.SaveGoal(ctx, goal); err != nil {
			return nil, err
		}
		resp := dto.SaleGoalToResponse(goal)
		return &resp, nil
	}

	goal = &model.SaleGoal{
		VendedorID:   req.VendedorID,
		Month:        req.Month,
		Year:         req.Year,
		TargetAmount: req.TargetAmount,
	}
	// A goal opened mid-month starts from what was already sold in it.
	if req.Year == now.Year() && req.Month == int(now.Month()) {
		from := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
		sold, err := s.orders.SumCompletedTotals(ctx, []uuid.UUID{req.VendedorID}, from, from.AddDate(0, 1, 0))
		if err != nil {
			return nil, err
		}
		goal.CurrentAmount = sold
	}
	if err := s.payroll.CreateGoal(ctx, goal); err != nil {
		return nil, err
	}
	resp := dto.SaleGoalToResponse(goal)
	return &resp, nil
}

func (s *saleGoalService) Get(ctx context.Context, vendorID uuid.UUID, month, year int) (*dto.SaleGoalResponse, error) {
	goal, err := s.payroll.FindGoal(ctx, vendorID, month, year)
	if err != nil {
		return nil, errNotFound("meta de venta no encontrada")
	}
	resp := dto.SaleGoalToResponse(goal)
	return &resp, nil
}

func (s *saleGoalService) ListMonth(ctx context.Context, month, year int) ([]dto.SaleGoalResponse, error) {
	rows, err := s.payroll.ListGoals(ctx, month, year)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaleGoalResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.SaleGoalToResponse(&rows[i]))
	}
	return out, nil
}
