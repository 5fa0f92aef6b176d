// Command outboxpublisher runs as its own process, separate from the
// capture API: it polls outbox_events for rows still PENDING and
// publishes them to RabbitMQ, marking each PUBLISHED once the publish call
// returns without error (the channel is not in confirm mode, so no broker
// acknowledgement is awaited). It never opens the payment transaction and never touches
// idempotency_records or ledger_entries.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caktopay/capture-engine/internal/adapters/postgres"
	"github.com/caktopay/capture-engine/internal/adapters/rabbitmq"
	"github.com/caktopay/capture-engine/internal/config"
	"github.com/caktopay/capture-engine/internal/logging"
)

const (
	pollInterval = 2 * time.Second
	batchSize    = 50
)

func main() {
	cfg := config.Load()

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := postgres.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Errorf("connect postgres: %v", err)
		os.Exit(1)
	}

	publisher, err := rabbitmq.Connect(cfg.RabbitMQURL)
	if err != nil {
		log.Errorf("connect rabbitmq: %v", err)
		os.Exit(1)
	}
	defer publisher.Close()

	poller := postgres.NewOutboxPoller(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infof("outbox publisher started, polling every %s", pollInterval)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("outbox publisher shutting down")
			return
		case <-ticker.C:
			drain(ctx, poller, publisher, log)
		}
	}
}

func drain(ctx context.Context, poller *postgres.OutboxPoller, publisher *rabbitmq.Publisher, log logging.Logger) {
	events, err := poller.FetchPending(ctx, batchSize)
	if err != nil {
		log.Errorf("fetch pending outbox events: %v", err)
		return
	}

	for _, event := range events {
		if err := publisher.Publish(ctx, event.EventType, event.Payload); err != nil {
			log.Errorf("publish outbox event %s: %v", event.ID, err)
			continue
		}

		if err := poller.MarkPublished(ctx, event.ID); err != nil {
			log.Errorf("mark outbox event %s published: %v", event.ID, err)
		}
	}
}
