// Package rabbitmq is the transport for the external outbox publisher:
// a small adapter driven by its own binary (cmd/outboxpublisher), never
// by CaptureCoordinator.
package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/pkg/errors"
)

const exchangeName = "capture.events"

// Publisher publishes outbox events to a durable topic exchange, one
// connection and channel held for the lifetime of the process.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Connect dials url and declares the exchange publishes go to.
func Connect(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "dial rabbitmq")
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "open channel")
	}

	if err := channel.ExchangeDeclare(exchangeName, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, errors.Wrap(err, "declare exchange")
	}

	return &Publisher{conn: conn, channel: channel}, nil
}

// Publish marshals payload and publishes it on exchangeName with
// eventType as the routing key.
func (p *Publisher) Publish(ctx context.Context, eventType string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal outbox payload")
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.channel.PublishWithContext(publishCtx, exchangeName, eventType, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	chErr := p.channel.Close()
	connErr := p.conn.Close()

	if chErr != nil {
		return chErr
	}

	return connErr
}
