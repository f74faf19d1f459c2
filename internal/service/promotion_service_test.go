package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"vitalexa/internal/dto"
	"vitalexa/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePtr(t time.Time) *time.Time { return &t }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestCreatePromotionValidation(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	main := e.addProduct("Shampoo", "4000", 50)

	_, err := e.promos.Create(ctx, dto.CreatePromotionRequest{
		Nombre: "Pack sin precio", Tipo: model.PromoPack,
		BuyQuantity: 5, MainProductID: &main.ID,
	})
	requireBusinessStatus(t, err, http.StatusBadRequest)

	_, err = e.promos.Create(ctx, dto.CreatePromotionRequest{
		Nombre: "Regalo sin cantidad", Tipo: model.PromoBuyGetFree,
		BuyQuantity: 10, FreeQuantity: 0, MainProductID: &main.ID,
	})
	requireBusinessStatus(t, err, http.StatusBadRequest)

	ghost := uuid.New()
	_, err = e.promos.Create(ctx, dto.CreatePromotionRequest{
		Nombre: "Producto fantasma", Tipo: model.PromoPack,
		BuyQuantity: 5, PackPrice: decPtr("18000"), MainProductID: &ghost,
	})
	requireBusinessStatus(t, err, http.StatusBadRequest)

	resp, err := e.promos.Create(ctx, dto.CreatePromotionRequest{
		Nombre: "Pack x5", Tipo: model.PromoPack,
		BuyQuantity: 5, PackPrice: decPtr("18000"), MainProductID: &main.ID,
	})
	require.NoError(t, err)
	assert.True(t, resp.Activo)
	// Stacking with discounts defaults to allowed.
	assert.True(t, resp.AllowStackWithDiscounts)
}

func TestExpandPackChargesPerInstance(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	main := e.addProduct("Crema", "5000", 100)
	promo := e.promoRepo.add(&model.Promotion{
		Nombre: "Pack x5", Tipo: model.PromoPack,
		BuyQuantity: 5, PackPrice: decPtr("20000"),
		MainProductID: &main.ID, MainProduct: main,
		AllowStackWithDiscounts: true, Activo: true,
	})

	apps, err := e.promos.Expand(ctx, promo.ID, 2, 3, time.Now())
	require.NoError(t, err)
	require.Len(t, apps, 2)

	for i, app := range apps {
		require.Len(t, app.Lines, 1)
		assert.True(t, app.Lines[0].IsMain)
		assert.Equal(t, 5, app.Lines[0].Cantidad)
		requireDecimal(t, "5000", app.Lines[0].UnitPrice)
		require.NotNil(t, app.PackPrice)
		requireDecimal(t, "20000", *app.PackPrice)
		assert.Equal(t, 3+i, app.GroupIndex)
	}
	assert.NotEqual(t, apps[0].InstanceID, apps[1].InstanceID)
}

func TestExpandBuyGetFreeAddsGiftLines(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	main := e.addProduct("Shampoo", "4000", 100)
	gift := e.addProduct("Acondicionador", "3500", 100)
	promo := e.promoRepo.add(&model.Promotion{
		Nombre: "10+2", Tipo: model.PromoBuyGetFree,
		BuyQuantity: 10, FreeQuantity: 2,
		MainProductID: &main.ID, MainProduct: main,
		GiftItems: []model.PromotionGiftItem{
			{ProductID: gift.ID, Cantidad: 2, Product: gift},
		},
		AllowStackWithDiscounts: true, Activo: true,
	})

	apps, err := e.promos.Expand(ctx, promo.ID, 1, 0, time.Now())
	require.NoError(t, err)
	require.Len(t, apps, 1)
	require.Len(t, apps[0].Lines, 2)

	assert.True(t, apps[0].Lines[0].IsMain)
	assert.False(t, apps[0].Lines[0].IsFree)
	assert.True(t, apps[0].Lines[1].IsFree)
	assert.Equal(t, "Acondicionador", apps[0].Lines[1].ProductName)
	assert.Equal(t, 2, apps[0].Lines[1].Cantidad)
	assert.True(t, apps[0].Lines[1].UnitPrice.IsZero())
	assert.Nil(t, apps[0].PackPrice)
	assert.Zero(t, apps[0].PendingAssortment)
}

func TestExpandAssortmentDefersGiftChoice(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	main := e.addProduct("Jabon", "1200", 100)
	promo := e.promoRepo.add(&model.Promotion{
		Nombre: "12+3 surtido", Tipo: model.PromoBuyGetFree,
		BuyQuantity: 12, FreeQuantity: 3,
		MainProductID: &main.ID, MainProduct: main,
		RequiresAssortmentSelection: true,
		AllowStackWithDiscounts:     true, Activo: true,
	})

	apps, err := e.promos.Expand(ctx, promo.ID, 1, 0, time.Now())
	require.NoError(t, err)
	require.Len(t, apps, 1)
	// No gift rows yet: the buyer still owes a selection.
	require.Len(t, apps[0].Lines, 1)
	assert.Equal(t, 3, apps[0].PendingAssortment)
}

func TestExpandRejections(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	main := e.addProduct("Crema", "5000", 100)
	now := time.Now()

	_, err := e.promos.Expand(ctx, uuid.New(), 1, 0, now)
	requireBusinessStatus(t, err, http.StatusNotFound)

	expired := e.promoRepo.add(&model.Promotion{
		Nombre: "Vencida", Tipo: model.PromoPack,
		BuyQuantity: 5, PackPrice: decPtr("20000"),
		MainProductID: &main.ID, MainProduct: main,
		Activo: true, ValidUntil: timePtr(now.Add(-24 * time.Hour)),
	})
	_, err = e.promos.Expand(ctx, expired.ID, 1, 0, now)
	requireBusinessStatus(t, err, http.StatusConflict)

	inactive := e.promoRepo.add(&model.Promotion{
		Nombre: "Apagada", Tipo: model.PromoPack,
		BuyQuantity: 5, PackPrice: decPtr("20000"),
		MainProductID: &main.ID, MainProduct: main,
	})
	_, err = e.promos.Expand(ctx, inactive.ID, 1, 0, now)
	requireBusinessStatus(t, err, http.StatusConflict)

	headless := e.promoRepo.add(&model.Promotion{
		Nombre: "Sin principal", Tipo: model.PromoPack,
		BuyQuantity: 5, PackPrice: decPtr("20000"), Activo: true,
	})
	_, err = e.promos.Expand(ctx, headless.ID, 1, 0, now)
	requireBusinessStatus(t, err, http.StatusConflict)

	valid := e.promoRepo.add(&model.Promotion{
		Nombre: "Pack", Tipo: model.PromoPack,
		BuyQuantity: 5, PackPrice: decPtr("20000"),
		MainProductID: &main.ID, MainProduct: main, Activo: true,
	})
	_, err = e.promos.Expand(ctx, valid.ID, 0, 0, now)
	requireBusinessStatus(t, err, http.StatusBadRequest)
}

func TestExpandSpecialResolvesOverrides(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	main := e.addProduct("Crema", "5000", 100)
	parent := e.promoRepo.add(&model.Promotion{
		Nombre: "Pack x5", Tipo: model.PromoPack,
		BuyQuantity: 5, PackPrice: decPtr("20000"),
		MainProductID: &main.ID, MainProduct: main,
		AllowStackWithDiscounts: true, Activo: true,
	})
	buy := 8
	sp := e.promoRepo.addSpecial(&model.SpecialPromotion{
		Nombre: "Pack mayorista", BuyQuantity: &buy, PackPrice: decPtr("28000"),
		ParentPromotionID: &parent.ID, ParentPromotion: parent, Activo: true,
	})

	apps, err := e.promos.ExpandSpecial(ctx, sp.ID, e.vendor.ID, 1, 0, time.Now())
	require.NoError(t, err)
	require.Len(t, apps, 1)

	// Overridden quantity and price, everything else inherited.
	assert.Equal(t, 8, apps[0].Lines[0].Cantidad)
	requireDecimal(t, "28000", *apps[0].PackPrice)
	require.NotNil(t, apps[0].SpecialPromotionID)
	assert.Equal(t, sp.ID, *apps[0].SpecialPromotionID)
	assert.Equal(t, parent.ID, apps[0].PromotionID)
}

func TestExpandSpecialVendorRestriction(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	main := e.addProduct("Crema", "5000", 100)
	parent := e.promoRepo.add(&model.Promotion{
		Nombre: "Pack x5", Tipo: model.PromoPack,
		BuyQuantity: 5, PackPrice: decPtr("20000"),
		MainProductID: &main.ID, MainProduct: main, Activo: true,
	})
	chosen := e.users.add(&model.User{Username: "marcos", Nombre: "Marcos", Role: model.RoleVendedor, Activo: true})
	sp := e.promoRepo.addSpecial(&model.SpecialPromotion{
		Nombre: "Exclusiva", ParentPromotionID: &parent.ID, ParentPromotion: parent,
		AllowedVendors: []model.User{*chosen}, Activo: true,
	})

	_, err := e.promos.ExpandSpecial(ctx, sp.ID, e.vendor.ID, 1, 0, time.Now())
	requireBusinessStatus(t, err, http.StatusForbidden)

	_, err = e.promos.ExpandSpecial(ctx, sp.ID, chosen.ID, 1, 0, time.Now())
	require.NoError(t, err)
}

func TestExpandSpecialWindowIsIndependent(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	main := e.addProduct("Crema", "5000", 100)
	now := time.Now()

	// The parent's window already closed, the special's own window rules.
	parent := e.promoRepo.add(&model.Promotion{
		Nombre: "Pack x5", Tipo: model.PromoPack,
		BuyQuantity: 5, PackPrice: decPtr("20000"),
		MainProductID: &main.ID, MainProduct: main,
		Activo: true, ValidUntil: timePtr(now.Add(-48 * time.Hour)),
	})
	sp := e.promoRepo.addSpecial(&model.SpecialPromotion{
		Nombre: "Extendida", ParentPromotionID: &parent.ID, ParentPromotion: parent,
		Activo: true, ValidUntil: timePtr(now.Add(48 * time.Hour)),
	})

	apps, err := e.promos.ExpandSpecial(ctx, sp.ID, e.vendor.ID, 1, 0, now)
	require.NoError(t, err)
	require.Len(t, apps, 1)

	orphan := e.promoRepo.addSpecial(&model.SpecialPromotion{
		Nombre: "Sin base", Activo: true,
	})
	_, err = e.promos.ExpandSpecial(ctx, orphan.ID, e.vendor.ID, 1, 0, now)
	requireBusinessStatus(t, err, http.StatusConflict)
}

func TestCreateSpecialPromotionValidation(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()

	ghost := uuid.New()
	_, err := e.promos.CreateSpecial(ctx, dto.CreateSpecialPromotionRequest{
		Nombre: "Huerfana", ParentPromotionID: &ghost,
	})
	requireBusinessStatus(t, err, http.StatusBadRequest)

	main := e.addProduct("Crema", "5000", 100)
	parent := e.promoRepo.add(&model.Promotion{
		Nombre: "Pack x5", Tipo: model.PromoPack,
		BuyQuantity: 5, PackPrice: decPtr("20000"),
		MainProductID: &main.ID, MainProduct: main, Activo: true,
	})
	_, err = e.promos.CreateSpecial(ctx, dto.CreateSpecialPromotionRequest{
		Nombre: "Vendedor fantasma", ParentPromotionID: &parent.ID,
		AllowedVendorIDs: []uuid.UUID{uuid.New()},
	})
	requireBusinessStatus(t, err, http.StatusBadRequest)

	resp, err := e.promos.CreateSpecial(ctx, dto.CreateSpecialPromotionRequest{
		Nombre: "Para Lucia", ParentPromotionID: &parent.ID,
		AllowedVendorIDs: []uuid.UUID{e.vendor.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, model.PromoPack, resp.EffectiveTipo)
	assert.Equal(t, 5, resp.EffectiveBuyQty)
}
