package idempotency_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caktopay/capture-engine/internal/domain/idempotency"
	"github.com/caktopay/capture-engine/internal/domain/money"
	"github.com/caktopay/capture-engine/internal/domain/payment"
	"github.com/caktopay/capture-engine/internal/domain/ratetable"
)

type fakeStore struct {
	records map[string]*idempotency.Record
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]*idempotency.Record{}}
}

func (f *fakeStore) GetLocked(key string) (*idempotency.Record, error) {
	if r, ok := f.records[key]; ok {
		return r, nil
	}

	return nil, nil
}

func (f *fakeStore) Create(key, payloadHash string) (*idempotency.Record, error) {
	r := &idempotency.Record{
		ID:          uuid.New(),
		Key:         key,
		PayloadHash: payloadHash,
		Status:      idempotency.Processing,
	}
	f.records[key] = r

	return r, nil
}

func (f *fakeStore) MarkCompleted(record *idempotency.Record, responseJSON []byte) error {
	record.Status = idempotency.Completed
	record.ResponseData = responseJSON

	return nil
}

func sampleRequest() payment.Request {
	return payment.Request{
		Amount:       money.FromCents(29700),
		Currency:     "BRL",
		Method:       ratetable.CARD,
		Installments: 3,
		Splits: []payment.SplitInput{
			{RecipientID: "producer_1", Role: "producer", Percent: "70"},
			{RecipientID: "affiliate_9", Role: "affiliate", Percent: "30"},
		},
	}
}

func TestHashPayload_SameInputSameHash(t *testing.T) {
	a := idempotency.HashPayload(sampleRequest())
	b := idempotency.HashPayload(sampleRequest())
	assert.Equal(t, a, b)
}

func TestHashPayload_DifferentInputDifferentHash(t *testing.T) {
	req := sampleRequest()
	a := idempotency.HashPayload(req)

	req.Amount = money.FromCents(99900)
	b := idempotency.HashPayload(req)

	assert.NotEqual(t, a, b)
}

func TestCheck_FirstTime(t *testing.T) {
	svc := idempotency.NewService(newFakeStore())

	result, err := svc.Check("key-1", "hash-a")
	require.NoError(t, err)
	assert.Equal(t, idempotency.OutcomeFirstTime, result.Outcome)
	require.NotNil(t, result.Record)
}

func TestCheck_ReplayAfterCompletion(t *testing.T) {
	store := newFakeStore()
	svc := idempotency.NewService(store)

	first, err := svc.Check("key-1", "hash-a")
	require.NoError(t, err)

	require.NoError(t, svc.SaveResponse(first.Record, []byte(`{"payment_id":"p1"}`)))

	second, err := svc.Check("key-1", "hash-a")
	require.NoError(t, err)
	assert.Equal(t, idempotency.OutcomeReplay, second.Outcome)
	assert.Equal(t, []byte(`{"payment_id":"p1"}`), second.CachedResponse)
}

func TestCheck_Conflict(t *testing.T) {
	store := newFakeStore()
	svc := idempotency.NewService(store)

	first, err := svc.Check("key-1", "hash-a")
	require.NoError(t, err)
	require.NoError(t, svc.SaveResponse(first.Record, []byte(`{}`)))

	second, err := svc.Check("key-1", "hash-b")
	require.NoError(t, err)
	assert.Equal(t, idempotency.OutcomeConflict, second.Outcome)
}

func TestCheck_InFlight(t *testing.T) {
	store := newFakeStore()
	svc := idempotency.NewService(store)

	_, err := svc.Check("key-1", "hash-a")
	require.NoError(t, err)

	second, err := svc.Check("key-1", "hash-a")
	require.NoError(t, err)
	assert.Equal(t, idempotency.OutcomeInFlight, second.Outcome)
}
