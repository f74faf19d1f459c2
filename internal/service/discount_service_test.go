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

func (e *testEnv) addOrder(total string, estado string) *model.Order {
	return e.orders.add(&model.Order{
		VendedorID:    e.vendor.ID,
		Estado:        estado,
		InvoiceKind:   model.InvoiceStandard,
		Total:         dec(total),
		PaymentStatus: model.PaymentPending,
	})
}

func TestApplyDiscountPresetAndCustomAreAdditive(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	admin := uuid.New()
	o := e.addOrder("100000", model.EstadoConfirmado)

	first, err := e.discSvc.Apply(ctx, o.ID, admin, model.RoleAdmin, dto.ApplyDiscountRequest{Tipo: model.DiscountAdmin10})
	require.NoError(t, err)
	requireDecimal(t, "10", first.Percentage)
	require.NotNil(t, o.DiscountedTotal)
	requireDecimal(t, "90000", *o.DiscountedTotal)

	pct := dec("5")
	second, err := e.discSvc.Apply(ctx, o.ID, admin, model.RoleAdmin, dto.ApplyDiscountRequest{
		Tipo:       model.DiscountAdminCustom,
		Percentage: &pct,
	})
	require.NoError(t, err)
	requireDecimal(t, "85000", *o.DiscountedTotal)

	// Revoking the custom row rebuilds the total from the surviving rows.
	revoked, err := e.discSvc.Revoke(ctx, o.ID, second.ID, admin, dto.RevokeDiscountRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.DiscountRevoked, revoked.Status)
	requireDecimal(t, "90000", *o.DiscountedTotal)

	_, err = e.discSvc.Revoke(ctx, o.ID, second.ID, admin, dto.RevokeDiscountRequest{})
	requireBusinessStatus(t, err, http.StatusConflict)

	// Removing the last applied row clears the discounted total.
	_, err = e.discSvc.Revoke(ctx, o.ID, first.ID, admin, dto.RevokeDiscountRequest{})
	require.NoError(t, err)
	assert.Nil(t, o.DiscountedTotal)
}

func TestApplyDiscountOrderInvariance(t *testing.T) {
	ctx := context.Background()
	pct := dec("5")

	run := func(tipos ...dto.ApplyDiscountRequest) string {
		e := newTestEnv()
		o := e.addOrder("100000", model.EstadoConfirmado)
		for _, req := range tipos {
			_, err := e.discSvc.Apply(ctx, o.ID, uuid.New(), model.RoleAdmin, req)
			require.NoError(t, err)
		}
		return o.DiscountedTotal.String()
	}

	custom := dto.ApplyDiscountRequest{Tipo: model.DiscountAdminCustom, Percentage: &pct}
	preset := dto.ApplyDiscountRequest{Tipo: model.DiscountAdmin10}
	assert.Equal(t, run(preset, custom), run(custom, preset))
}

func TestApplyDiscountClampsAtHundred(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	o := e.addOrder("50000", model.EstadoConfirmado)

	pct := dec("95")
	_, err := e.discSvc.Apply(ctx, o.ID, uuid.New(), model.RoleAdmin, dto.ApplyDiscountRequest{Tipo: model.DiscountAdmin15})
	require.NoError(t, err)
	_, err = e.discSvc.Apply(ctx, o.ID, uuid.New(), model.RoleAdmin, dto.ApplyDiscountRequest{
		Tipo: model.DiscountAdminCustom, Percentage: &pct,
	})
	require.NoError(t, err)

	require.NotNil(t, o.DiscountedTotal)
	requireDecimal(t, "0", *o.DiscountedTotal)
}

func TestApplyDiscountValidation(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	o := e.addOrder("10000", model.EstadoConfirmado)

	_, err := e.discSvc.Apply(ctx, o.ID, uuid.New(), model.RoleAdmin, dto.ApplyDiscountRequest{Tipo: model.DiscountAdminCustom})
	requireBusinessStatus(t, err, http.StatusBadRequest)

	over := dec("150")
	_, err = e.discSvc.Apply(ctx, o.ID, uuid.New(), model.RoleAdmin, dto.ApplyDiscountRequest{
		Tipo: model.DiscountAdminCustom, Percentage: &over,
	})
	requireBusinessStatus(t, err, http.StatusBadRequest)

	zero := dec("0")
	_, err = e.discSvc.Apply(ctx, o.ID, uuid.New(), model.RoleAdmin, dto.ApplyDiscountRequest{
		Tipo: model.DiscountAdminCustom, Percentage: &zero,
	})
	requireBusinessStatus(t, err, http.StatusBadRequest)
}

func TestOwnerAdditionalDiscountRequiresOwner(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	o := e.addOrder("10000", model.EstadoConfirmado)
	pct := dec("3")

	_, err := e.discSvc.Apply(ctx, o.ID, uuid.New(), model.RoleAdmin, dto.ApplyDiscountRequest{
		Tipo: model.DiscountOwnerAdditional, Percentage: &pct,
	})
	requireBusinessStatus(t, err, http.StatusForbidden)

	_, err = e.discSvc.Apply(ctx, o.ID, uuid.New(), model.RoleOwner, dto.ApplyDiscountRequest{
		Tipo: model.DiscountOwnerAdditional, Percentage: &pct,
	})
	require.NoError(t, err)
	requireDecimal(t, "9700", *o.DiscountedTotal)
}

func TestApplyDiscountOnTerminalOrderRejected(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()

	for _, estado := range []string{model.EstadoCancelado, model.EstadoAnulada} {
		o := e.addOrder("10000", estado)
		_, err := e.discSvc.Apply(ctx, o.ID, uuid.New(), model.RoleAdmin, dto.ApplyDiscountRequest{Tipo: model.DiscountAdmin10})
		requireBusinessStatus(t, err, http.StatusConflict)
	}
}

func TestApplyDiscountRejectedByNonStackingPromotion(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	promo := e.promoRepo.add(&model.Promotion{
		Nombre: "Exclusiva", Tipo: model.PromoPack,
		AllowStackWithDiscounts: false, Activo: true,
	})
	o := e.addOrder("30000", model.EstadoConfirmado)
	o.Items = []model.OrderItem{{
		ID:              uuid.New(),
		OrderID:         o.ID,
		IsPromotionItem: true,
		PromotionID:     &promo.ID,
		Cantidad:        1,
	}}

	_, err := e.discSvc.Apply(ctx, o.ID, uuid.New(), model.RoleAdmin, dto.ApplyDiscountRequest{Tipo: model.DiscountAdmin10})
	requireBusinessStatus(t, err, http.StatusConflict)
	assert.Nil(t, o.DiscountedTotal)
}

func TestListDiscountsKeepsRevokedAudit(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	admin := uuid.New()
	o := e.addOrder("10000", model.EstadoConfirmado)

	applied, err := e.discSvc.Apply(ctx, o.ID, admin, model.RoleAdmin, dto.ApplyDiscountRequest{Tipo: model.DiscountAdmin12})
	require.NoError(t, err)
	_, err = e.discSvc.Revoke(ctx, o.ID, applied.ID, admin, dto.RevokeDiscountRequest{Reason: strPtr("error de carga")})
	require.NoError(t, err)

	rows, err := e.discSvc.ListByOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, model.DiscountRevoked, rows[0].Status)
	require.NotNil(t, rows[0].Reason)
	assert.Equal(t, "error de carga", *rows[0].Reason)
}
