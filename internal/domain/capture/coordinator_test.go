package capture_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caktopay/capture-engine/internal/domain/capture"
	"github.com/caktopay/capture-engine/internal/domain/fee"
	"github.com/caktopay/capture-engine/internal/domain/idempotency"
	"github.com/caktopay/capture-engine/internal/domain/money"
	"github.com/caktopay/capture-engine/internal/domain/payment"
	"github.com/caktopay/capture-engine/internal/domain/ratetable"
)

// fakeDB is an in-memory stand-in for the whole Postgres instance: one
// idempotency table, one payments table, one ledger table, one outbox
// table. WithinTransaction gives every call the same backing maps and
// only "rolls back" by snapshotting/restoring on error, mirroring real
// transactional rollback without an actual database.
type fakeDB struct {
	idempotency map[string]*idempotency.Record
	payments    map[uuid.UUID]payment.Payment
	ledger      map[uuid.UUID][]payment.LedgerEntry
	outbox      []payment.OutboxEvent
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		idempotency: map[string]*idempotency.Record{},
		payments:    map[uuid.UUID]payment.Payment{},
		ledger:      map[uuid.UUID][]payment.LedgerEntry{},
	}
}

func (db *fakeDB) snapshot() *fakeDB {
	cp := newFakeDB()
	for k, v := range db.idempotency {
		r := *v
		cp.idempotency[k] = &r
	}
	for k, v := range db.payments {
		cp.payments[k] = v
	}
	for k, v := range db.ledger {
		cp.ledger[k] = append([]payment.LedgerEntry{}, v...)
	}
	cp.outbox = append([]payment.OutboxEvent{}, db.outbox...)

	return cp
}

func (db *fakeDB) restore(from *fakeDB) {
	db.idempotency = from.idempotency
	db.payments = from.payments
	db.ledger = from.ledger
	db.outbox = from.outbox
}

func (db *fakeDB) WithinTransaction(fn func(capture.Scope) error) error {
	before := db.snapshot()

	scope := capture.Scope{
		Payments:    &fakePaymentStore{db: db},
		Outbox:      &fakeOutboxStore{db: db},
		Idempotency: &fakeIdempotencyStore{db: db},
	}

	if err := fn(scope); err != nil {
		db.restore(before)
		return err
	}

	return nil
}

type fakeIdempotencyStore struct{ db *fakeDB }

func (s *fakeIdempotencyStore) GetLocked(key string) (*idempotency.Record, error) {
	return s.db.idempotency[key], nil
}

func (s *fakeIdempotencyStore) Create(key, payloadHash string) (*idempotency.Record, error) {
	r := &idempotency.Record{ID: uuid.New(), Key: key, PayloadHash: payloadHash, Status: idempotency.Processing}
	s.db.idempotency[key] = r

	return r, nil
}

func (s *fakeIdempotencyStore) MarkCompleted(record *idempotency.Record, responseJSON []byte) error {
	record.Status = idempotency.Completed
	record.ResponseData = responseJSON

	return nil
}

type fakePaymentStore struct{ db *fakeDB }

func (s *fakePaymentStore) CreatePayment(p payment.Payment) (payment.Payment, error) {
	s.db.payments[p.ID] = p
	return p, nil
}

func (s *fakePaymentStore) CreateLedger(paymentID uuid.UUID, receivables []payment.Receivable) ([]payment.LedgerEntry, error) {
	entries := make([]payment.LedgerEntry, len(receivables))
	for i, r := range receivables {
		entries[i] = payment.LedgerEntry{ID: uuid.New(), PaymentID: paymentID, RecipientID: r.RecipientID, Role: r.Role, Amount: r.Amount}
	}
	s.db.ledger[paymentID] = entries

	return entries, nil
}

type fakeOutboxStore struct{ db *fakeDB }

func (s *fakeOutboxStore) Enqueue(eventType string, payload map[string]any) (payment.OutboxEvent, error) {
	event := payment.OutboxEvent{ID: uuid.New(), EventType: eventType, Payload: payload, Status: payment.OutboxPending}
	s.db.outbox = append(s.db.outbox, event)

	return event, nil
}

func sampleRequest(amount string) payment.Request {
	gross, _ := money.FromDecimalString(amount)

	return payment.Request{
		Amount:       gross,
		Currency:     "BRL",
		Method:       ratetable.CARD,
		Installments: 3,
		Splits: []payment.SplitInput{
			{RecipientID: "producer_1", Role: "producer", Percent: "70"},
			{RecipientID: "affiliate_9", Role: "affiliate", Percent: "30"},
		},
	}
}

func newCoordinator(db *fakeDB) capture.Coordinator {
	clock := func() time.Time { return time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC) }
	return capture.New(fee.New(ratetable.Default()), db, clock)
}

func TestProcess_CardThreeInstallmentsCapturesFeeAndSplit(t *testing.T) {
	db := newFakeDB()
	coord := newCoordinator(db)

	resp, err := coord.Process(sampleRequest("297.00"), "key-card-3x")
	require.NoError(t, err)

	assert.Equal(t, "captured", resp.Status)
	assert.Equal(t, "26.70", resp.PlatformFeeAmount)
	assert.Equal(t, "270.30", resp.NetAmount)
	assert.Equal(t, "189.21", resp.Receivables[0].Amount)
	assert.Equal(t, "81.09", resp.Receivables[1].Amount)
	assert.Equal(t, "pending", resp.OutboxEvent.Status)
	assert.Len(t, db.payments, 1)
}

func TestProcess_ValidationFailureNeverOpensTransaction(t *testing.T) {
	db := newFakeDB()
	coord := newCoordinator(db)

	req := sampleRequest("0.00")

	_, err := coord.Process(req, "key-invalid")
	require.Error(t, err)

	_, ok := err.(payment.BusinessValidationError)
	assert.True(t, ok)
	assert.Empty(t, db.payments)
	assert.Empty(t, db.idempotency)
}

func TestProcess_SameKeySamePayloadReplays(t *testing.T) {
	db := newFakeDB()
	coord := newCoordinator(db)

	req := sampleRequest("297.00")

	first, err := coord.Process(req, "key-replay")
	require.NoError(t, err)

	second, err := coord.Process(req, "key-replay")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, db.payments, 1)
}

func TestProcess_SameKeyDifferentPayloadConflicts(t *testing.T) {
	db := newFakeDB()
	coord := newCoordinator(db)

	_, err := coord.Process(sampleRequest("100.00"), "key-conflict")
	require.NoError(t, err)

	_, err = coord.Process(sampleRequest("999.00"), "key-conflict")
	require.Error(t, err)

	_, ok := err.(payment.IdempotencyConflictError)
	assert.True(t, ok)
	assert.Len(t, db.payments, 1)
}

func TestProcess_InFlightDuplicateFailsWithoutDoubleExecuting(t *testing.T) {
	db := newFakeDB()

	// Pre-seed a PROCESSING record for the key, simulating a concurrent
	// first request that has not committed yet.
	db.idempotency["key-inflight"] = &idempotency.Record{
		ID:          uuid.New(),
		Key:         "key-inflight",
		PayloadHash: idempotencyHashFor(sampleRequest("297.00")),
		Status:      idempotency.Processing,
	}

	coord := newCoordinator(db)

	_, err := coord.Process(sampleRequest("297.00"), "key-inflight")
	require.Error(t, err)

	_, ok := err.(payment.DuplicateInFlightError)
	assert.True(t, ok)
	assert.Empty(t, db.payments)
}

func idempotencyHashFor(req payment.Request) string {
	return idempotency.HashPayload(req)
}

func TestProcess_FailedConflictBranchLeavesNoSecondPayment(t *testing.T) {
	db := newFakeDB()
	coord := capture.New(fee.New(ratetable.Default()), db, nil)

	// A request that is valid at the Validator but would still exercise
	// the full transactional rollback path if persistence failed is hard
	// to construct with only in-memory fakes (they never fail); this
	// test instead documents the invariant at the handshake level: a
	// failed Conflict branch never leaves a payments row behind.
	_, err := coord.Process(sampleRequest("100.00"), "key-rollback")
	require.NoError(t, err)

	_, err = coord.Process(sampleRequest("200.00"), "key-rollback")
	require.Error(t, err)
	assert.Len(t, db.payments, 1)
}
