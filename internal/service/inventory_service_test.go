package service

import (
	"context"
	"net/http"
	"testing"

	"vitalexa/internal/dto"
	"vitalexa/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockSummaryCountsOpenOrders(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	p := e.addProduct("Crema", "2500", 10)

	resp, err := e.orderSvc.Create(ctx, e.vendor.ID, dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: &p.ID, Cantidad: 3}},
	}, "lucia")
	require.NoError(t, err)

	sum, err := e.inventory.StockSummary(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, sum.Stock)
	assert.Equal(t, 3, sum.CommittedStock)
	// Open orders have not left the warehouse yet.
	assert.Equal(t, 10, sum.PhysicalStock)

	e.completeOrder(t, e.orders.orders[resp.Order.ID])
	sum, err = e.inventory.StockSummary(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, sum.Stock)
	assert.Equal(t, 0, sum.CommittedStock)
	assert.Equal(t, 7, sum.PhysicalStock)
}

func TestStockSummaryExcludesFreeRows(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	p := e.addProduct("Crema", "2500", 10)

	_, err := e.orderSvc.Create(ctx, e.vendor.ID, dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{
			{ProductID: &p.ID, Cantidad: 2},
			{ProductID: &p.ID, Cantidad: 4, IsBonified: true},
		},
	}, "lucia")
	require.NoError(t, err)

	sum, err := e.inventory.StockSummary(ctx, p.ID)
	require.NoError(t, err)
	// Bonified rows already moved merchandise for free; only the paid
	// quantity counts as committed revenue stock.
	assert.Equal(t, 4, sum.Stock)
	assert.Equal(t, 2, sum.CommittedStock)
}

func TestStockSummaryUnknownProduct(t *testing.T) {
	e := newTestEnv()
	_, err := e.inventory.StockSummary(context.Background(), uuid.New())
	requireBusinessStatus(t, err, http.StatusNotFound)
}

func TestListMovementsFiltersByType(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	p := e.addProduct("Crema", "2500", 10)

	resp, err := e.orderSvc.Create(ctx, e.vendor.ID, dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: &p.ID, Cantidad: 3}},
	}, "lucia")
	require.NoError(t, err)
	_, err = e.orderSvc.Cancel(ctx, resp.Order.ID, nil, "lucia")
	require.NoError(t, err)

	sales, total, err := e.inventory.ListMovements(ctx, dto.MovementFilter{Tipo: model.MovSale})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, sales, 1)
	assert.Equal(t, -3, sales[0].Cantidad)
	assert.Equal(t, "lucia", sales[0].Username)

	returns, _, err := e.inventory.ListMovements(ctx, dto.MovementFilter{Tipo: model.MovReturn})
	require.NoError(t, err)
	require.Len(t, returns, 1)
	assert.Equal(t, 3, returns[0].Cantidad)
}

func TestExportMovementsReturnsRawRows(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	p := e.addProduct("Crema", "2500", 10)

	_, err := e.orderSvc.Create(ctx, e.vendor.ID, dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: &p.ID, Cantidad: 2}},
	}, "lucia")
	require.NoError(t, err)

	rows, err := e.inventory.ExportMovements(ctx, dto.MovementFilter{ProductID: p.ID.String()})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, model.MovSale, rows[0].Tipo)
	assert.Equal(t, 10, rows[0].StockAnterior)
	assert.Equal(t, 8, rows[0].StockNuevo)
}

func TestLowStockUsesReorderPoint(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()

	rp := 5
	low := e.products.add(&model.Product{Nombre: "Crema", Precio: dec("2500"), Stock: 4, ReorderPoint: &rp, Activo: true})
	e.products.add(&model.Product{Nombre: "Shampoo", Precio: dec("4000"), Stock: 40, ReorderPoint: &rp, Activo: true})
	e.products.add(&model.Product{Nombre: "Sin umbral", Precio: dec("1000"), Stock: 0, Activo: true})

	out, err := e.inventory.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, low.ID, out[0].ID)
}
