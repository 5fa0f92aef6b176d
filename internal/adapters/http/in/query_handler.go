package httpin

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/caktopay/capture-engine/internal/adapters/postgres"
	"github.com/caktopay/capture-engine/internal/domain/payment"
	"github.com/caktopay/capture-engine/internal/logging"
)

// PaymentReader is the read-model port backing GET /api/v1/payments/{id}.
type PaymentReader interface {
	GetPayment(id uuid.UUID) (payment.Response, error)
}

// QueryHandler wires PaymentReader to the fiber route.
type QueryHandler struct {
	Reader PaymentReader
	Log    logging.Logger
}

// GetByID handles GET /api/v1/payments/:id.
func (h QueryHandler) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "id must be a valid uuid"})
	}

	resp, err := h.Reader.GetPayment(id)
	if errors.Is(err, postgres.ErrPaymentNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "payment not found"})
	}
	if err != nil {
		h.Log.Errorf("read-model query failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "internal server error"})
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}
