// Package idempotency implements the key+payload-hash handshake: a
// row-locked record per key, and a three-way protocol (FirstTime /
// Replay / Conflict / InFlight) built on top of it.
package idempotency

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a Record.
type Status string

const (
	Processing Status = "PROCESSING"
	Completed  Status = "COMPLETED"
)

// Record is the persisted idempotency_records row.
type Record struct {
	ID           uuid.UUID
	Key          string
	PayloadHash  string
	Status       Status
	ResponseData []byte // nil until Completed
	CreatedAt    time.Time
}

// Store is the port IdempotencyService needs from persistence. Implemented
// by internal/adapters/postgres, scoped to a single open transaction.
type Store interface {
	// GetLocked returns the record for key with a row-level exclusive
	// lock held until the enclosing transaction ends. Returns
	// (nil, nil) when no record exists yet.
	GetLocked(key string) (*Record, error)
	// Create inserts a new PROCESSING record.
	Create(key, payloadHash string) (*Record, error)
	// MarkCompleted stamps status=COMPLETED and the cached response
	// body onto record.
	MarkCompleted(record *Record, responseJSON []byte) error
}

// Outcome is the three-way (four-way, counting InFlight) handshake result.
type Outcome int

const (
	// OutcomeFirstTime: no prior record, one was just created.
	OutcomeFirstTime Outcome = iota
	// OutcomeReplay: a completed record with the same hash exists;
	// CachedResponse carries the body to return verbatim.
	OutcomeReplay
	// OutcomeConflict: a record exists with a different payload hash.
	OutcomeConflict
	// OutcomeInFlight: a record exists with the same hash but is still
	// PROCESSING (a concurrent first request has not committed yet).
	OutcomeInFlight
)

// CheckResult is what IdempotencyService.Check returns.
type CheckResult struct {
	Outcome        Outcome
	Record         *Record // set on FirstTime; needed by SaveResponse
	CachedResponse []byte  // set on Replay
}
