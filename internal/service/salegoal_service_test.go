package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"vitalexa/internal/dto"
	"vitalexa/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) goalSvc() SaleGoalService {
	return NewSaleGoalService(e.payroll, e.orders, e.users)
}

func TestCreateSaleGoalRejectsPastMonths(t *testing.T) {
	e := newTestEnv()
	svc := e.goalSvc()

	_, err := svc.Create(context.Background(), dto.CreateSaleGoalRequest{
		VendedorID: e.vendor.ID, Month: 1, Year: 2021, TargetAmount: dec("50000"),
	})
	requireBusinessStatus(t, err, http.StatusBadRequest)
}

func TestCreateSaleGoalOnlyForVendors(t *testing.T) {
	e := newTestEnv()
	svc := e.goalSvc()
	admin := e.users.add(&model.User{Username: "admin", Nombre: "Admin", Role: model.RoleAdmin, Activo: true})

	_, err := svc.Create(context.Background(), dto.CreateSaleGoalRequest{
		VendedorID: admin.ID, Month: 1, Year: 2100, TargetAmount: dec("50000"),
	})
	requireBusinessStatus(t, err, http.StatusConflict)
}

func TestCreateSaleGoalCurrentMonthSeedsProgress(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	svc := e.goalSvc()

	now := time.Now().UTC()
	e.addCompletedOrder(e.vendor.ID, "15000", now)

	goal, err := svc.Create(ctx, dto.CreateSaleGoalRequest{
		VendedorID: e.vendor.ID, Month: int(now.Month()), Year: now.Year(), TargetAmount: dec("100000"),
	})
	require.NoError(t, err)
	requireDecimal(t, "15000", goal.CurrentAmount)
	assert.False(t, goal.Achieved)
}

func TestCreateSaleGoalRetargetKeepsProgress(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	svc := e.goalSvc()

	require.NoError(t, e.payroll.CreateGoal(ctx, &model.SaleGoal{
		VendedorID: e.vendor.ID, Month: 6, Year: 2100,
		TargetAmount: dec("100000"), CurrentAmount: dec("42000"),
	}))

	goal, err := svc.Create(ctx, dto.CreateSaleGoalRequest{
		VendedorID: e.vendor.ID, Month: 6, Year: 2100, TargetAmount: dec("60000"),
	})
	require.NoError(t, err)
	requireDecimal(t, "60000", goal.TargetAmount)
	requireDecimal(t, "42000", goal.CurrentAmount)
}

func TestSaleGoalGetAndListMonth(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	svc := e.goalSvc()

	_, err := svc.Get(ctx, e.vendor.ID, 6, 2100)
	requireBusinessStatus(t, err, http.StatusNotFound)

	_, err = svc.Create(ctx, dto.CreateSaleGoalRequest{
		VendedorID: e.vendor.ID, Month: 6, Year: 2100, TargetAmount: dec("100000"),
	})
	require.NoError(t, err)

	goal, err := svc.Get(ctx, e.vendor.ID, 6, 2100)
	require.NoError(t, err)
	requireDecimal(t, "100000", goal.TargetAmount)

	rows, err := svc.ListMonth(ctx, 6, 2100)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
