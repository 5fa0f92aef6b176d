package httpin

import (
	"github.com/gofiber/fiber/v2"

	"github.com/caktopay/capture-engine/internal/domain/payment"
	"github.com/caktopay/capture-engine/internal/logging"
)

// WithError translates a domain error into its HTTP response.
func WithError(c *fiber.Ctx, log logging.Logger, err error) error {
	switch e := err.(type) {
	case payment.BusinessValidationError:
		return c.Status(fiber.StatusBadRequest).JSON(e.Fields)

	case payment.MalformedRequestError:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": e.Detail})

	case payment.IdempotencyConflictError:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"detail": e.Error()})

	case payment.DuplicateInFlightError:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"detail": e.Error()})

	case payment.InternalError:
		log.Errorf("internal error: %v", e.Cause)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "internal server error"})

	default:
		log.Errorf("unhandled error reaching http boundary: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "internal server error"})
	}
}
