package httpin

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is the minimal health-check dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterRoutes mounts every route this service exposes onto app.
func RegisterRoutes(app *fiber.App, payments PaymentHandler, queries QueryHandler, db Pinger) {
	app.Get("/healthz", healthz(db))

	v1 := app.Group("/api/v1")
	v1.Post("/payments", payments.Capture)
	v1.Get("/payments/:id", queries.GetByID)
}

func healthz(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}

		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	}
}
