package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/caktopay/capture-engine/internal/domain/payment"
)

// HashPayload computes the canonical SHA-256 over req: object keys sorted
// lexicographically, the amount rendered as a fixed two-decimal string,
// split percents as their canonical decimal string (trailing zeros
// dropped, so "70" and "70.00" hash alike), installments as a JSON
// integer, no insignificant whitespace. encoding/json already sorts
// map[string]any keys, so canonicalization reduces to building that map
// from the validated request and marshaling it.
func HashPayload(req payment.Request) string {
	canonical := canonicalize(req)

	b, err := json.Marshal(canonical)
	if err != nil {
		// canonical is built entirely from primitive types below; this
		// can only happen if that invariant is broken.
		panic(err)
	}

	sum := sha256.Sum256(b)

	return hex.EncodeToString(sum[:])
}

func canonicalize(req payment.Request) map[string]any {
	splits := make([]map[string]any, len(req.Splits))
	for i, s := range req.Splits {
		percent := s.Percent
		if d, err := decimal.NewFromString(s.Percent); err == nil {
			percent = d.String()
		}

		splits[i] = map[string]any{
			"recipient_id": s.RecipientID,
			"role":         s.Role,
			"percent":      percent,
		}
	}

	return map[string]any{
		"amount":       req.Amount.String(),
		"currency":     req.Currency,
		"method":       string(req.Method),
		"installments": req.Installments,
		"splits":       splits,
	}
}
