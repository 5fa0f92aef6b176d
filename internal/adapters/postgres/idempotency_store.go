package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/caktopay/capture-engine/internal/domain/idempotency"
)

// IdempotencyStore implements idempotency.Store. GetLocked is the
// concurrency primitive the whole handshake rests on: SELECT ... FOR
// UPDATE holds an exclusive row lock for the lifetime of the caller's
// transaction, serializing every concurrent request sharing a key.
type IdempotencyStore struct {
	tx *sql.Tx
}

// NewIdempotencyStore binds an IdempotencyStore to an open transaction.
func NewIdempotencyStore(tx *sql.Tx) *IdempotencyStore {
	return &IdempotencyStore{tx: tx}
}

// GetLocked returns the record for key with a row-level exclusive lock,
// or (nil, nil) if no record exists yet.
func (s *IdempotencyStore) GetLocked(key string) (*idempotency.Record, error) {
	const query = `
		SELECT id, key, payload_hash, status, response_data, created_at
		FROM idempotency_records
		WHERE key = $1
		FOR UPDATE`

	var (
		id, recordKey, payloadHash, status string
		responseData                       []byte
		createdAt                          time.Time
	)

	err := s.tx.QueryRowContext(context.Background(), query, key).Scan(
		&id, &recordKey, &payloadHash, &status, &responseData, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "select idempotency record for update")
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}

	return &idempotency.Record{
		ID:           parsedID,
		Key:          recordKey,
		PayloadHash:  payloadHash,
		Status:       idempotency.Status(status),
		ResponseData: responseData,
		CreatedAt:    createdAt,
	}, nil
}

// Create inserts a new PROCESSING record for key.
func (s *IdempotencyStore) Create(key, payloadHash string) (*idempotency.Record, error) {
	const query = `
		INSERT INTO idempotency_records (id, key, payload_hash, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, key, payload_hash, status, created_at`

	id := uuid.New()
	now := time.Now()

	var (
		rowID, rowKey, rowHash, rowStatus string
		rowCreatedAt                      time.Time
	)

	err := s.tx.QueryRowContext(context.Background(), query,
		id.String(), key, payloadHash, string(idempotency.Processing), now,
	).Scan(&rowID, &rowKey, &rowHash, &rowStatus, &rowCreatedAt)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "insert idempotency record")
	}

	parsedID, err := uuid.Parse(rowID)
	if err != nil {
		return nil, err
	}

	return &idempotency.Record{
		ID:          parsedID,
		Key:         rowKey,
		PayloadHash: rowHash,
		Status:      idempotency.Status(rowStatus),
		CreatedAt:   rowCreatedAt,
	}, nil
}

// MarkCompleted stamps status=COMPLETED and response_data onto the row
// matching record.ID, and mutates record in place to mirror it.
func (s *IdempotencyStore) MarkCompleted(record *idempotency.Record, responseJSON []byte) error {
	const query = `
		UPDATE idempotency_records
		SET status = $1, response_data = $2
		WHERE id = $3`

	_, err := s.tx.ExecContext(context.Background(), query, string(idempotency.Completed), responseJSON, record.ID.String())
	if err != nil {
		return pkgerrors.Wrap(err, "mark idempotency record completed")
	}

	record.Status = idempotency.Completed
	record.ResponseData = responseJSON

	return nil
}
