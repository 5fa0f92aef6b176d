// Package ratetable resolves the platform fee rate for a payment method and
// installment count. Rates are pure configuration: no persistence, no
// external calls, safe to share across every worker.
package ratetable

import "github.com/shopspring/decimal"

// PaymentMethod enumerates the capture methods this system accepts.
type PaymentMethod string

const (
	PIX  PaymentMethod = "PIX"
	CARD PaymentMethod = "CARD"
)

// RateTable maps (method, installments) to a platform rate. Every field
// can be overridden at startup via internal/config, defaulting to the
// values below.
type RateTable struct {
	PixRate               decimal.Decimal
	CardBaseRate          decimal.Decimal
	CardInstallmentBase   decimal.Decimal
	CardInstallmentExtra  decimal.Decimal
}

// Default returns the RateTable with the rates named in the platform
// pricing sheet.
func Default() RateTable {
	return RateTable{
		PixRate:              decimal.Zero,
		CardBaseRate:         decimal.RequireFromString("0.0399"),
		CardInstallmentBase:  decimal.RequireFromString("0.0499"),
		CardInstallmentExtra: decimal.RequireFromString("0.02"),
	}
}

// FromStrings builds a RateTable from the four decimal-string overrides
// read from environment configuration (pix rate, card base rate, card
// installment base rate, card installment extra rate).
func FromStrings(pixRate, cardBase, cardInstallmentBase, cardInstallmentExtra string) (RateTable, error) {
	pix, err := decimal.NewFromString(pixRate)
	if err != nil {
		return RateTable{}, err
	}

	base, err := decimal.NewFromString(cardBase)
	if err != nil {
		return RateTable{}, err
	}

	installmentBase, err := decimal.NewFromString(cardInstallmentBase)
	if err != nil {
		return RateTable{}, err
	}

	installmentExtra, err := decimal.NewFromString(cardInstallmentExtra)
	if err != nil {
		return RateTable{}, err
	}

	return RateTable{
		PixRate:              pix,
		CardBaseRate:         base,
		CardInstallmentBase:  installmentBase,
		CardInstallmentExtra: installmentExtra,
	}, nil
}

// GetRate returns the platform rate for method/installments. Callers are
// expected to have already validated method and installments range;
// GetRate itself never returns an error, only a rate.
func (t RateTable) GetRate(method PaymentMethod, installments int) decimal.Decimal {
	if method == PIX {
		return t.PixRate
	}

	if installments <= 1 {
		return t.CardBaseRate
	}

	extraInstallments := decimal.NewFromInt(int64(installments - 1))

	return t.CardInstallmentBase.Add(t.CardInstallmentExtra.Mul(extraInstallments))
}
