package ratetable_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/caktopay/capture-engine/internal/domain/ratetable"
)

func TestGetRate(t *testing.T) {
	rt := ratetable.Default()

	assert.True(t, rt.GetRate(ratetable.PIX, 1).Equal(decimal.Zero))
	assert.True(t, rt.GetRate(ratetable.CARD, 1).Equal(decimal.RequireFromString("0.0399")))
	assert.True(t, rt.GetRate(ratetable.CARD, 2).Equal(decimal.RequireFromString("0.0699")))
	assert.True(t, rt.GetRate(ratetable.CARD, 3).Equal(decimal.RequireFromString("0.0899")))
	assert.True(t, rt.GetRate(ratetable.CARD, 12).Equal(decimal.RequireFromString("0.2699")))
}

func TestMonotonicityAcrossInstallments(t *testing.T) {
	rt := ratetable.Default()

	prev := rt.GetRate(ratetable.CARD, 1)
	for n := 2; n <= 12; n++ {
		cur := rt.GetRate(ratetable.CARD, n)
		assert.True(t, cur.GreaterThan(prev), "rate should strictly increase at installments=%d", n)
		prev = cur
	}
}
