package httpin

import "encoding/json"

// captureRequestDTO is the wire shape of POST /api/v1/payments, decoded
// with json.Decoder.UseNumber so split percentages keep their exact
// decimal text instead of rounding through float64.
type captureRequestDTO struct {
	Amount        string          `json:"amount" validate:"required"`
	Currency      string          `json:"currency" validate:"required"`
	PaymentMethod string          `json:"payment_method" validate:"required"`
	Installments  int             `json:"installments"`
	Splits        []splitInputDTO `json:"splits" validate:"required,min=1,dive"`
}

type splitInputDTO struct {
	RecipientID string      `json:"recipient_id" validate:"required,max=255"`
	Role        string      `json:"role" validate:"required,max=50"`
	Percent     json.Number `json:"percent" validate:"required"`
}
