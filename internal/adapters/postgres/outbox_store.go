package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/caktopay/capture-engine/internal/domain/payment"
)

// OutboxStore implements outbox.Store: the event row is inserted on the
// same *sql.Tx as the payment it describes, so both commit or neither
// does.
type OutboxStore struct {
	tx *sql.Tx
}

// NewOutboxStore binds an OutboxStore to an open transaction.
func NewOutboxStore(tx *sql.Tx) *OutboxStore {
	return &OutboxStore{tx: tx}
}

// Enqueue inserts a PENDING outbox_events row.
func (s *OutboxStore) Enqueue(eventType string, payload map[string]any) (payment.OutboxEvent, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return payment.OutboxEvent{}, errors.Wrap(err, "marshal outbox payload")
	}

	const query = `
		INSERT INTO outbox_events (id, event_type, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, event_type, payload, status, created_at`

	id := uuid.New()

	var (
		rowID, rowEventType, rowStatus string
		rowPayload                     []byte
		rowCreatedAt                   time.Time
	)

	err = s.tx.QueryRowContext(context.Background(), query,
		id.String(), eventType, payloadJSON, string(payment.OutboxPending), time.Now(),
	).Scan(&rowID, &rowEventType, &rowPayload, &rowStatus, &rowCreatedAt)
	if err != nil {
		return payment.OutboxEvent{}, errors.Wrap(err, "insert outbox event")
	}

	parsedID, err := uuid.Parse(rowID)
	if err != nil {
		return payment.OutboxEvent{}, err
	}

	var decoded map[string]any
	if err := json.Unmarshal(rowPayload, &decoded); err != nil {
		return payment.OutboxEvent{}, err
	}

	return payment.OutboxEvent{
		ID:        parsedID,
		EventType: rowEventType,
		Payload:   decoded,
		Status:    payment.OutboxStatus(rowStatus),
		CreatedAt: rowCreatedAt,
	}, nil
}
