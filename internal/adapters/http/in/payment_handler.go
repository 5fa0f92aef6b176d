package httpin

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/caktopay/capture-engine/internal/domain/money"
	"github.com/caktopay/capture-engine/internal/domain/payment"
	"github.com/caktopay/capture-engine/internal/domain/ratetable"
	"github.com/caktopay/capture-engine/internal/logging"
)

const idempotencyKeyHeader = "Idempotency-Key"
const maxIdempotencyKeyBytes = 255

// CaptureProcessor is the subset of capture.Coordinator the HTTP layer
// depends on, kept as a narrow interface so handlers can be tested
// against a fake without a real database.
type CaptureProcessor interface {
	Process(req payment.Request, idempotencyKey string) (payment.Response, error)
}

// PaymentHandler wires CaptureProcessor to the fiber route.
type PaymentHandler struct {
	Processor CaptureProcessor
	Log       logging.Logger
}

// Capture handles POST /api/v1/payments.
func (h PaymentHandler) Capture(c *fiber.Ctx) error {
	key := c.Get(idempotencyKeyHeader)
	if key == "" {
		return WithError(c, h.Log, payment.MalformedRequestError{Detail: "Idempotency-Key header is required."})
	}

	if len(key) > maxIdempotencyKeyBytes {
		return WithError(c, h.Log, payment.MalformedRequestError{Detail: "Idempotency-Key header must be at most 255 bytes."})
	}

	var dto captureRequestDTO

	decoder := json.NewDecoder(bytes.NewReader(c.Body()))
	decoder.UseNumber()

	if err := decoder.Decode(&dto); err != nil {
		return WithError(c, h.Log, payment.MalformedRequestError{Detail: "request body is not valid JSON."})
	}

	if err := validateShape(dto); err != nil {
		return WithError(c, h.Log, payment.MalformedRequestError{Detail: err.Error()})
	}

	req, err := toDomainRequest(dto)
	if err != nil {
		return WithError(c, h.Log, payment.MalformedRequestError{Detail: err.Error()})
	}

	resp, err := h.Processor.Process(req, key)
	if err != nil {
		return WithError(c, h.Log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func toDomainRequest(dto captureRequestDTO) (payment.Request, error) {
	amount, err := money.FromDecimalString(dto.Amount)
	if err != nil {
		return payment.Request{}, err
	}

	splits := make([]payment.SplitInput, len(dto.Splits))
	for i, s := range dto.Splits {
		splits[i] = payment.SplitInput{
			RecipientID: s.RecipientID,
			Role:        s.Role,
			Percent:     s.Percent.String(),
		}
	}

	return payment.Request{
		Amount:       amount,
		Currency:     dto.Currency,
		Method:       ratetable.PaymentMethod(strings.ToUpper(dto.PaymentMethod)),
		Installments: dto.Installments,
		Splits:       splits,
	}, nil
}
