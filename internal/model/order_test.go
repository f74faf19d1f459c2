package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{EstadoPendiente, EstadoConfirmado, true},
		{EstadoPendiente, EstadoPendingPromotionCompletion, true},
		{EstadoPendiente, EstadoCancelado, true},
		{EstadoPendiente, EstadoCompletado, false},
		{EstadoPendingPromotionCompletion, EstadoConfirmado, true},
		{EstadoPendingPromotionCompletion, EstadoCancelado, true},
		{EstadoPendingPromotionCompletion, EstadoCompletado, false},
		{EstadoConfirmado, EstadoCompletado, true},
		{EstadoConfirmado, EstadoCancelado, true},
		{EstadoConfirmado, EstadoPendiente, false},
		{EstadoCompletado, EstadoCancelado, false},
		{EstadoCompletado, EstadoAnulada, false}, // annulment is its own operation
		{EstadoCancelado, EstadoPendiente, false},
		{EstadoAnulada, EstadoConfirmado, false},
	}
	for _, c := range cases {
		o := &Order{Estado: c.from}
		assert.Equal(t, c.ok, o.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestIsTerminal(t *testing.T) {
	for _, estado := range []string{EstadoCompletado, EstadoCancelado, EstadoAnulada} {
		assert.True(t, (&Order{Estado: estado}).IsTerminal(), estado)
	}
	for _, estado := range []string{EstadoPendiente, EstadoConfirmado, EstadoPendingPromotionCompletion} {
		assert.False(t, (&Order{Estado: estado}).IsTerminal(), estado)
	}
}

func TestRecalculateTotalSkipsFreeAndBonified(t *testing.T) {
	o := &Order{Items: []OrderItem{
		{Cantidad: 2, Subtotal: d("5000")},
		{Cantidad: 1, Subtotal: d("9999"), IsBonified: true},
		{Cantidad: 3, Subtotal: d("7777"), IsFreeItem: true},
	}}
	o.RecalculateTotal()
	assert.True(t, o.Total.Equal(d("5000")), o.Total.String())
}

func TestRecalculateTotalChargesPackOncePerInstance(t *testing.T) {
	packA := uuid.New()
	packB := uuid.New()
	price := d("20000")
	o := &Order{Items: []OrderItem{
		// Two rows of the same instance: main plus a chosen assortment gift.
		{Cantidad: 5, Subtotal: d("25000"), PromotionInstanceID: &packA, PromotionPackPrice: &price},
		{Cantidad: 2, Subtotal: d("0"), PromotionInstanceID: &packA, PromotionPackPrice: &price},
		{Cantidad: 5, Subtotal: d("25000"), PromotionInstanceID: &packB, PromotionPackPrice: &price},
		// Plain line alongside the packs.
		{Cantidad: 1, Subtotal: d("3000")},
	}}
	o.RecalculateTotal()
	assert.True(t, o.Total.Equal(d("43000")), o.Total.String())
}

func TestRecalculateTotalEmptyOrder(t *testing.T) {
	o := &Order{Total: d("99")}
	o.RecalculateTotal()
	assert.True(t, o.Total.IsZero())
}

func TestEffectiveTotal(t *testing.T) {
	o := &Order{Total: d("100000")}
	assert.True(t, o.EffectiveTotal().Equal(d("100000")))

	discounted := d("85000")
	o.DiscountedTotal = &discounted
	assert.True(t, o.EffectiveTotal().Equal(d("85000")))
}
