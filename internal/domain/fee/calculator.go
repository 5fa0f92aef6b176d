// Package fee computes the platform fee for a captured payment.
package fee

import (
	"github.com/shopspring/decimal"

	"github.com/caktopay/capture-engine/internal/domain/money"
	"github.com/caktopay/capture-engine/internal/domain/ratetable"
)

// Calculator resolves a rate via the given RateTable and applies it to a
// gross amount.
type Calculator struct {
	Rates ratetable.RateTable
}

// New builds a Calculator bound to rates.
func New(rates ratetable.RateTable) Calculator {
	return Calculator{Rates: rates}
}

// Calculate returns gross × rate, half-away-from-zero rounded to the
// cent. Returns zero immediately when the resolved rate is zero (PIX).
// The result never exceeds gross.
func (c Calculator) Calculate(gross money.Money, method ratetable.PaymentMethod, installments int) money.Money {
	rate := c.Rates.GetRate(method, installments)
	if rate.Equal(decimal.Zero) {
		return money.Zero
	}

	return gross.MulRate(rate)
}
