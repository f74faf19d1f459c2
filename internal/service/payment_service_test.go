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

func (e *testEnv) registerPayment(t *testing.T, orderID uuid.UUID, amount string) dto.PaymentResponse {
	t.Helper()
	resp, err := e.paySvc.Register(context.Background(), orderID, uuid.New(), dto.RegisterPaymentRequest{
		Amount: dec(amount),
		Method: "EFECTIVO",
	})
	require.NoError(t, err)
	return *resp
}

func TestRegisterPaymentRequiresCompletedOrder(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()

	for _, estado := range []string{model.EstadoPendiente, model.EstadoConfirmado, model.EstadoCancelado} {
		o := e.addOrder("10000", estado)
		_, err := e.paySvc.Register(ctx, o.ID, uuid.New(), dto.RegisterPaymentRequest{
			Amount: dec("5000"), Method: "EFECTIVO",
		})
		requireBusinessStatus(t, err, http.StatusConflict)
	}
}

func TestRegisterPaymentTracksStatus(t *testing.T) {
	e := newTestEnv()
	o := e.addOrder("50000", model.EstadoCompletado)

	e.registerPayment(t, o.ID, "20000")
	assert.Equal(t, model.PaymentPartial, o.PaymentStatus)

	e.registerPayment(t, o.ID, "30000")
	assert.Equal(t, model.PaymentPaid, o.PaymentStatus)
}

func TestOverpaymentAllowedAndFlagged(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	o := e.addOrder("50000", model.EstadoCompletado)

	e.registerPayment(t, o.ID, "60000")
	assert.Equal(t, model.PaymentPaid, o.PaymentStatus)

	balance, err := e.paySvc.Balance(ctx, o.ID)
	require.NoError(t, err)
	requireDecimal(t, "50000", balance.EffectiveTotal)
	requireDecimal(t, "60000", balance.TotalPaid)
	requireDecimal(t, "-10000", balance.Pending)
	assert.True(t, balance.Overpaid)
}

func TestPaymentsSettleAgainstDiscountedTotal(t *testing.T) {
	e := newTestEnv()
	o := e.addOrder("100000", model.EstadoCompletado)
	discounted := dec("90000")
	o.DiscountedTotal = &discounted

	e.registerPayment(t, o.ID, "90000")
	assert.Equal(t, model.PaymentPaid, o.PaymentStatus)
}

func TestCancelPaymentRecomputesStatus(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	o := e.addOrder("50000", model.EstadoCompletado)
	p := e.registerPayment(t, o.ID, "50000")
	require.Equal(t, model.PaymentPaid, o.PaymentStatus)

	_, err := e.paySvc.Cancel(ctx, p.ID, uuid.New(), dto.CancelPaymentRequest{})
	requireBusinessStatus(t, err, http.StatusBadRequest)

	cancelled, err := e.paySvc.Cancel(ctx, p.ID, uuid.New(), dto.CancelPaymentRequest{Reason: "pago duplicado"})
	require.NoError(t, err)
	assert.True(t, cancelled.IsCancelled)
	assert.Equal(t, model.PaymentPending, o.PaymentStatus)

	_, err = e.paySvc.Cancel(ctx, p.ID, uuid.New(), dto.CancelPaymentRequest{Reason: "otra vez"})
	requireBusinessStatus(t, err, http.StatusConflict)
}

func TestCancelPaymentBlockedByActiveTransfers(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	dest := e.users.add(&model.User{Username: "marcos", Nombre: "Marcos", Role: model.RoleVendedor, Activo: true})
	o := e.addOrder("50000", model.EstadoCompletado)
	p := e.registerPayment(t, o.ID, "50000")

	transfer, err := e.paySvc.CreateTransfer(ctx, p.ID, uuid.New(), dto.CreateTransferRequest{
		DestVendorID: dest.ID, Amount: dec("10000"),
		TargetMonth: 3, TargetYear: 2026, Reason: "venta compartida",
	})
	require.NoError(t, err)

	_, err = e.paySvc.Cancel(ctx, p.ID, uuid.New(), dto.CancelPaymentRequest{Reason: "error"})
	requireBusinessStatus(t, err, http.StatusConflict)

	_, err = e.paySvc.RevokeTransfer(ctx, transfer.ID, uuid.New(), dto.RevokeTransferRequest{Reason: "acuerdo deshecho"})
	require.NoError(t, err)

	_, err = e.paySvc.Cancel(ctx, p.ID, uuid.New(), dto.CancelPaymentRequest{Reason: "error"})
	require.NoError(t, err)
}

func TestCreateTransferHonorsPaymentCap(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	dest := e.users.add(&model.User{Username: "marcos", Nombre: "Marcos", Role: model.RoleVendedor, Activo: true})
	o := e.addOrder("80000", model.EstadoCompletado)
	p := e.registerPayment(t, o.ID, "50000")

	_, err := e.paySvc.CreateTransfer(ctx, p.ID, uuid.New(), dto.CreateTransferRequest{
		DestVendorID: dest.ID, Amount: dec("20000"),
		TargetMonth: 3, TargetYear: 2026, Reason: "venta compartida",
	})
	require.NoError(t, err)

	// 20000 + 35000 exceeds the 50000 payment.
	_, err = e.paySvc.CreateTransfer(ctx, p.ID, uuid.New(), dto.CreateTransferRequest{
		DestVendorID: dest.ID, Amount: dec("35000"),
		TargetMonth: 3, TargetYear: 2026, Reason: "venta compartida",
	})
	requireBusinessStatus(t, err, http.StatusConflict)
	// The rejected transfer leaves no trace in the ledger.
	require.Len(t, e.transfers.transfers, 1)

	avail, err := e.paySvc.TransferAvailability(ctx, p.ID)
	require.NoError(t, err)
	requireDecimal(t, "50000", avail.Amount)
	requireDecimal(t, "20000", avail.Transferred)
	requireDecimal(t, "30000", avail.Available)

	// Exactly the remainder still fits.
	_, err = e.paySvc.CreateTransfer(ctx, p.ID, uuid.New(), dto.CreateTransferRequest{
		DestVendorID: dest.ID, Amount: dec("30000"),
		TargetMonth: 3, TargetYear: 2026, Reason: "venta compartida",
	})
	require.NoError(t, err)
}

func TestRevokeTransferFreesCapacity(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	dest := e.users.add(&model.User{Username: "marcos", Nombre: "Marcos", Role: model.RoleVendedor, Activo: true})
	o := e.addOrder("50000", model.EstadoCompletado)
	p := e.registerPayment(t, o.ID, "50000")

	first, err := e.paySvc.CreateTransfer(ctx, p.ID, uuid.New(), dto.CreateTransferRequest{
		DestVendorID: dest.ID, Amount: dec("40000"),
		TargetMonth: 3, TargetYear: 2026, Reason: "venta compartida",
	})
	require.NoError(t, err)

	_, err = e.paySvc.RevokeTransfer(ctx, first.ID, uuid.New(), dto.RevokeTransferRequest{})
	requireBusinessStatus(t, err, http.StatusBadRequest)

	_, err = e.paySvc.RevokeTransfer(ctx, first.ID, uuid.New(), dto.RevokeTransferRequest{Reason: "acuerdo deshecho"})
	require.NoError(t, err)
	_, err = e.paySvc.RevokeTransfer(ctx, first.ID, uuid.New(), dto.RevokeTransferRequest{Reason: "de nuevo"})
	requireBusinessStatus(t, err, http.StatusConflict)

	_, err = e.paySvc.CreateTransfer(ctx, p.ID, uuid.New(), dto.CreateTransferRequest{
		DestVendorID: dest.ID, Amount: dec("45000"),
		TargetMonth: 3, TargetYear: 2026, Reason: "venta compartida",
	})
	require.NoError(t, err)
}

func TestCreateTransferDestinationRules(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	o := e.addOrder("50000", model.EstadoCompletado)
	p := e.registerPayment(t, o.ID, "50000")

	_, err := e.paySvc.CreateTransfer(ctx, p.ID, uuid.New(), dto.CreateTransferRequest{
		DestVendorID: uuid.New(), Amount: dec("1000"),
		TargetMonth: 3, TargetYear: 2026, Reason: "x",
	})
	requireBusinessStatus(t, err, http.StatusNotFound)

	// The order's own vendor cannot receive the credit back.
	_, err = e.paySvc.CreateTransfer(ctx, p.ID, uuid.New(), dto.CreateTransferRequest{
		DestVendorID: e.vendor.ID, Amount: dec("1000"),
		TargetMonth: 3, TargetYear: 2026, Reason: "x",
	})
	requireBusinessStatus(t, err, http.StatusConflict)

	inactive := e.users.add(&model.User{Username: "baja", Nombre: "Baja", Role: model.RoleVendedor, Activo: false})
	_, err = e.paySvc.CreateTransfer(ctx, p.ID, uuid.New(), dto.CreateTransferRequest{
		DestVendorID: inactive.ID, Amount: dec("1000"),
		TargetMonth: 3, TargetYear: 2026, Reason: "x",
	})
	requireBusinessStatus(t, err, http.StatusConflict)
}

func TestCreateTransferOnCancelledPaymentRejected(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	dest := e.users.add(&model.User{Username: "marcos", Nombre: "Marcos", Role: model.RoleVendedor, Activo: true})
	o := e.addOrder("50000", model.EstadoCompletado)
	p := e.registerPayment(t, o.ID, "50000")

	_, err := e.paySvc.Cancel(ctx, p.ID, uuid.New(), dto.CancelPaymentRequest{Reason: "error"})
	require.NoError(t, err)

	_, err = e.paySvc.CreateTransfer(ctx, p.ID, uuid.New(), dto.CreateTransferRequest{
		DestVendorID: dest.ID, Amount: dec("1000"),
		TargetMonth: 3, TargetYear: 2026, Reason: "x",
	})
	requireBusinessStatus(t, err, http.StatusConflict)
}

func TestRestorePaymentRecoversStatus(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	o := e.addOrder("50000", model.EstadoCompletado)
	p := e.registerPayment(t, o.ID, "50000")
	assert.Equal(t, model.PaymentPaid, o.PaymentStatus)

	actor := uuid.New()
	_, err := e.paySvc.Cancel(ctx, p.ID, actor, dto.CancelPaymentRequest{Reason: "pago duplicado"})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, o.PaymentStatus)

	restored, err := e.paySvc.Restore(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsCancelled)
	assert.Nil(t, restored.CancelledAt)
	assert.Equal(t, model.PaymentPaid, o.PaymentStatus)

	// Only a cancelled payment can be restored.
	_, err = e.paySvc.Restore(ctx, p.ID)
	requireBusinessStatus(t, err, http.StatusConflict)
}
