package idempotency

// Service implements the four-outcome idempotency handshake on top of a
// transaction-scoped Store.
type Service struct {
	store Store
}

// NewService binds a Service to a Store. The Store must already be scoped
// to the coordinator's open transaction.
func NewService(store Store) Service {
	return Service{store: store}
}

// Check runs the handshake: GetLocked acquires the row lock (or confirms
// none exists), then branches on (existence, hash match, status).
func (s Service) Check(key, payloadHash string) (CheckResult, error) {
	record, err := s.store.GetLocked(key)
	if err != nil {
		return CheckResult{}, err
	}

	if record == nil {
		created, err := s.store.Create(key, payloadHash)
		if err != nil {
			return CheckResult{}, err
		}

		return CheckResult{Outcome: OutcomeFirstTime, Record: created}, nil
	}

	if record.PayloadHash != payloadHash {
		return CheckResult{Outcome: OutcomeConflict}, nil
	}

	if record.Status == Completed {
		return CheckResult{Outcome: OutcomeReplay, CachedResponse: record.ResponseData}, nil
	}

	return CheckResult{Outcome: OutcomeInFlight}, nil
}

// SaveResponse stamps record COMPLETED with responseJSON. Must be called
// on the FirstTime path before the enclosing transaction commits.
func (s Service) SaveResponse(record *Record, responseJSON []byte) error {
	return s.store.MarkCompleted(record, responseJSON)
}
