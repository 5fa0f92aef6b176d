// Package validator checks business rules on a PaymentRequest. Every rule
// runs regardless of earlier failures, so the caller sees the complete
// set of problems in one response instead of one-at-a-time.
package validator

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/caktopay/capture-engine/internal/domain/payment"
	"github.com/caktopay/capture-engine/internal/domain/ratetable"
)

const (
	maxSplits     = 5
	minSplits     = 1
	supportedCurrency = "BRL"
)

// Validate runs every rule in §4.3's fixed order against req, returning a
// BusinessValidationError with one message per failing field, or nil.
func Validate(req payment.Request) error {
	fields := payment.FieldErrors{}

	if !req.Amount.IsPositive() {
		fields["amount"] = "amount must be greater than zero"
	}

	if !isSupportedCurrency(req.Currency) {
		fields["currency"] = "currency must be BRL"
	}

	if req.Method == ratetable.PIX && req.Installments != 1 {
		fields["installments"] = "pix payments must have exactly 1 installment"
	}

	if req.Method == ratetable.CARD && (req.Installments < 1 || req.Installments > 12) {
		fields["installments"] = "card installments must be between 1 and 12"
	}

	if n := len(req.Splits); n < minSplits || n > maxSplits {
		fields["splits"] = "splits must contain between 1 and 5 entries"
	} else if msg, ok := validateSplitPercentages(req.Splits); !ok {
		fields["splits"] = msg
	}

	if len(fields) > 0 {
		return payment.BusinessValidationError{Fields: fields}
	}

	return nil
}

func isSupportedCurrency(currency string) bool {
	return strings.EqualFold(currency, supportedCurrency)
}

func validateSplitPercentages(splits []payment.SplitInput) (string, bool) {
	sum := decimal.Zero

	for _, s := range splits {
		percent, err := decimal.NewFromString(s.Percent)
		if err != nil {
			return "each split percent must be a valid decimal", false
		}

		if percent.LessThanOrEqual(decimal.Zero) || percent.GreaterThan(decimal.NewFromInt(100)) {
			return "each split percent must be greater than 0 and at most 100", false
		}

		sum = sum.Add(percent)
	}

	if !sum.Equal(decimal.NewFromInt(100)) {
		return "split percentages must sum to exactly 100", false
	}

	return "", true
}
