package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/caktopay/capture-engine/internal/domain/payment"
)

// PendingEvent is one row the outbox publisher needs to deliver.
type PendingEvent struct {
	ID        uuid.UUID
	EventType string
	Payload   map[string]any
}

// OutboxPoller is used only by cmd/outboxpublisher: a plain *sql.DB
// reader/writer, entirely separate from the write-side stores that run
// inside CaptureCoordinator's transaction.
type OutboxPoller struct {
	conn *Connection
}

// NewOutboxPoller binds an OutboxPoller to conn.
func NewOutboxPoller(conn *Connection) *OutboxPoller {
	return &OutboxPoller{conn: conn}
}

// FetchPending returns up to limit PENDING events, oldest first.
func (p *OutboxPoller) FetchPending(ctx context.Context, limit int) ([]PendingEvent, error) {
	const query = `
		SELECT id, event_type, payload
		FROM outbox_events
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2`

	rows, err := p.conn.DB.QueryContext(ctx, query, string(payment.OutboxPending), limit)
	if err != nil {
		return nil, errors.Wrap(err, "fetch pending outbox events")
	}
	defer rows.Close()

	var events []PendingEvent

	for rows.Next() {
		var (
			id, eventType string
			rawPayload    []byte
		)

		if err := rows.Scan(&id, &eventType, &rawPayload); err != nil {
			return nil, err
		}

		parsedID, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}

		var payloadMap map[string]any
		if err := json.Unmarshal(rawPayload, &payloadMap); err != nil {
			return nil, err
		}

		events = append(events, PendingEvent{ID: parsedID, EventType: eventType, Payload: payloadMap})
	}

	return events, rows.Err()
}

// MarkPublished stamps status=PUBLISHED and published_at=now() on id.
func (p *OutboxPoller) MarkPublished(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE outbox_events SET status = $1, published_at = $2 WHERE id = $3`

	_, err := p.conn.DB.ExecContext(ctx, query, string(payment.OutboxPublished), time.Now(), id.String())

	return errors.Wrap(err, "mark outbox event published")
}
