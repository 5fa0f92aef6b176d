// Command api serves the capture HTTP API: POST /api/v1/payments and
// GET /api/v1/payments/{id}.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	httpin "github.com/caktopay/capture-engine/internal/adapters/http/in"
	"github.com/caktopay/capture-engine/internal/bootstrap"
)

func main() {
	svc, err := bootstrap.Build()
	if err != nil {
		panic(err)
	}
	defer svc.Log.Sync()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(httpin.Recover(svc.Log))
	app.Use(httpin.RequestLogger(svc.Log))

	httpin.RegisterRoutes(app, svc.Payment, svc.Query, svc.DB)

	go func() {
		svc.Log.Infof("listening on :%s", svc.Config.Port)

		if err := app.Listen(":" + svc.Config.Port); err != nil {
			svc.Log.Errorf("server stopped: %v", err)
		}
	}()

	waitForShutdown(app, svc)
}

func waitForShutdown(app *fiber.App, svc *bootstrap.Service) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	svc.Log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		svc.Log.Errorf("graceful shutdown failed: %v", err)
	}
}
