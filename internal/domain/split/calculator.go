// Package split implements the Largest-Remainder (Hamilton) apportionment
// method: net cents are distributed across recipients in proportion to
// their percent share, with the integer-cent rounding error handed to the
// entries with the largest fractional remainder.
package split

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/caktopay/capture-engine/internal/domain/money"
	"github.com/caktopay/capture-engine/internal/domain/payment"
)

type allocation struct {
	index     int
	base      int64
	remainder decimal.Decimal
	input     payment.SplitInput
}

// Calculate distributes net across splits by percent, returning one
// Receivable per split in the same order. Callers must have already
// validated that percentages sum to exactly 100; Calculate does not
// re-check that invariant.
func Calculate(net money.Money, splits []payment.SplitInput) []payment.Receivable {
	total := decimal.NewFromInt(net.Cents())
	hundred := decimal.NewFromInt(100)

	allocations := make([]allocation, len(splits))

	var baseSum int64

	for i, s := range splits {
		percent, _ := decimal.NewFromString(s.Percent)
		exact := total.Mul(percent).Div(hundred)
		base := exact.Truncate(0)

		allocations[i] = allocation{
			index:     i,
			base:      base.IntPart(),
			remainder: exact.Sub(base),
			input:     s,
		}
		baseSum += base.IntPart()
	}

	leftover := net.Cents() - baseSum

	ordered := make([]int, len(allocations))
	for i := range ordered {
		ordered[i] = i
	}

	sort.SliceStable(ordered, func(a, b int) bool {
		ra := allocations[ordered[a]].remainder
		rb := allocations[ordered[b]].remainder

		if ra.Equal(rb) {
			return allocations[ordered[a]].index < allocations[ordered[b]].index
		}

		return ra.GreaterThan(rb)
	})

	for i := int64(0); i < leftover; i++ {
		allocations[ordered[i]].base++
	}

	receivables := make([]payment.Receivable, len(allocations))
	for i, a := range allocations {
		receivables[i] = payment.Receivable{
			RecipientID: a.input.RecipientID,
			Role:        a.input.Role,
			Amount:      money.FromCents(a.base),
		}
	}

	return receivables
}
