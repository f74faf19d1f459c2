package service

import (
	"context"
	"net/http"
	"testing"

	"vitalexa/internal/dto"
	"vitalexa/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestSpecialProductConsumesParentStock(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	parent := e.addProduct("Crema base", "2000", 10)
	sp := e.products.addSpecial(&model.SpecialProduct{
		Nombre: "Crema edicion limitada", Precio: dec("3500"),
		ParentProductID: &parent.ID, ParentProduct: parent, Activo: true,
	})

	resp, err := e.orderSvc.Create(ctx, e.vendor.ID, dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{SpecialProductID: &sp.ID, Cantidad: 3}},
	}, "lucia")
	require.NoError(t, err)

	// Priced as the special, decremented on the parent's ledger.
	requireDecimal(t, "10500", resp.Order.Total)
	assert.Equal(t, 7, parent.Stock)

	// Cancellation restores the parent too.
	_, err = e.orderSvc.Cancel(ctx, resp.Order.ID, nil, "lucia")
	require.NoError(t, err)
	assert.Equal(t, 10, parent.Stock)
}

func TestSpecialProductOwnStock(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	sp := e.products.addSpecial(&model.SpecialProduct{
		Nombre: "Combo mayorista", Precio: dec("9000"),
		OwnStock: intPtr(5), Activo: true,
	})

	_, err := e.orderSvc.Create(ctx, e.vendor.ID, dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{SpecialProductID: &sp.ID, Cantidad: 2}},
	}, "lucia")
	require.NoError(t, err)
	assert.Equal(t, 3, *sp.OwnStock)

	// The movement rows carry the name with no product id, so history
	// survives even when the special has no catalog backing.
	sales := e.movements.byTipo(model.MovSale)
	require.Len(t, sales, 1)
	assert.Nil(t, sales[0].ProductID)
	assert.Equal(t, "Combo mayorista", sales[0].ProductName)

	_, err = e.orderSvc.Create(ctx, e.vendor.ID, dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{SpecialProductID: &sp.ID, Cantidad: 4}},
	}, "lucia")
	requireBusinessStatus(t, err, http.StatusConflict)
}

func TestSpecialProductVendorRestriction(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	allowed := e.users.add(&model.User{Username: "marcos", Nombre: "Marcos", Role: model.RoleVendedor, Activo: true})
	sp := e.products.addSpecial(&model.SpecialProduct{
		Nombre: "Solo Marcos", Precio: dec("1000"),
		OwnStock: intPtr(10), Activo: true,
		AllowedVendors: []model.User{*allowed},
	})

	_, err := e.orderSvc.Create(ctx, e.vendor.ID, dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{SpecialProductID: &sp.ID, Cantidad: 1}},
	}, "lucia")
	requireBusinessStatus(t, err, http.StatusForbidden)

	_, err = e.orderSvc.Create(ctx, allowed.ID, dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{SpecialProductID: &sp.ID, Cantidad: 1}},
	}, "marcos")
	require.NoError(t, err)
}
