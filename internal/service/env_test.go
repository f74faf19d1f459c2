package service

import (
	"context"
	"testing"

	"vitalexa/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// testEnv wires every service against the in-memory repositories.
type testEnv struct {
	users     *stubUserRepo
	clients   *stubClientRepo
	products  *stubProductRepo
	movements *stubMovementRepo
	promoRepo *stubPromotionRepo
	orders    *stubOrderRepo
	discounts *stubDiscountRepo
	payments  *stubPaymentRepo
	transfers *stubTransferRepo
	payroll   *stubPayrollRepo

	inventory InventoryService
	promos    PromotionService
	orderSvc  OrderService
	discSvc   DiscountService
	paySvc    PaymentService
	clientSvc ClientService
	portal    CustomerOrderService

	vendor *model.User
}

func newTestEnv() *testEnv {
	e := &testEnv{
		users:     newStubUserRepo(),
		clients:   newStubClientRepo(),
		products:  newStubProductRepo(),
		movements: newStubMovementRepo(),
		promoRepo: newStubPromotionRepo(),
		orders:    newStubOrderRepo(),
		discounts: newStubDiscountRepo(),
		transfers: newStubTransferRepo(),
		payroll:   newStubPayrollRepo(),
	}
	e.payments = newStubPaymentRepo(e.orders)

	e.inventory = NewInventoryService(e.movements, e.products, e.orders, nil)
	e.promos = NewPromotionService(e.promoRepo, e.products, e.users)
	e.orderSvc = NewOrderService(e.orders, e.products, e.clients, e.users, e.payments, e.payroll,
		e.promos, e.inventory, nil, dec("1500"))
	e.discSvc = NewDiscountService(e.discounts, e.orders, e.promoRepo)
	e.paySvc = NewPaymentService(e.payments, e.transfers, e.orders, e.users)
	e.clientSvc = NewClientService(e.clients, e.users, e.orders, e.payments)
	e.portal = NewCustomerOrderService(e.clients, e.orders, e.orderSvc)

	e.vendor = e.users.add(&model.User{Username: "lucia", Nombre: "Lucia", Role: model.RoleVendedor, Activo: true})
	return e
}

func (e *testEnv) addProduct(nombre string, precio string, stock int) *model.Product {
	return e.products.add(&model.Product{
		Nombre: nombre,
		Precio: dec(precio),
		Stock:  stock,
		Activo: true,
	})
}

// completeOrder walks a fresh order to COMPLETADO through the state machine.
func (e *testEnv) completeOrder(t *testing.T, o *model.Order) *model.Order {
	t.Helper()
	ctx := context.Background()
	if o.Estado == model.EstadoPendiente {
		_, err := e.orderSvc.ChangeStatus(ctx, o.ID, model.EstadoConfirmado, "tester")
		require.NoError(t, err)
	}
	_, err := e.orderSvc.ChangeStatus(ctx, o.ID, model.EstadoCompletado, "tester")
	require.NoError(t, err)
	return e.orders.orders[o.ID]
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(dec(want)), "expected %s, got %s", want, got)
}
