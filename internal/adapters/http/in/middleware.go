package httpin

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/caktopay/capture-engine/internal/logging"
)

// RequestLogger logs method/path/status/latency for every request.
func RequestLogger(log logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		log.Infof("%s %s -> %d (%s)", c.Method(), c.Path(), c.Response().StatusCode(), time.Since(start))

		return err
	}
}

// Recover turns a panic inside a handler into a logged 500 instead of
// crashing the process.
func Recover(log logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("panic recovered: %v", r)
				_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "internal server error"})
			}
		}()

		return c.Next()
	}
}
