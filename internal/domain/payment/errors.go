package payment

// FieldErrors accumulates one message per failing field. It is a map, so
// it does not record the order in which the Validator evaluated its rules.
type FieldErrors map[string]string

// BusinessValidationError is returned when Validator rejects a Request.
// It carries every failing field, not just the first.
type BusinessValidationError struct {
	Fields FieldErrors
}

func (e BusinessValidationError) Error() string {
	return "business validation failed"
}

// MalformedRequestError covers JSON parse failures, schema mismatches and
// the missing-Idempotency-Key-header case. Detail is rendered verbatim as
// the response body's "detail" field.
type MalformedRequestError struct {
	Detail string
}

func (e MalformedRequestError) Error() string {
	return e.Detail
}

// IdempotencyConflictError: same key, different payload hash.
type IdempotencyConflictError struct{}

func (e IdempotencyConflictError) Error() string {
	return "Idempotency-Key already used with a different payload."
}

// DuplicateInFlightError: same key, same hash, the first request has not
// committed yet.
type DuplicateInFlightError struct{}

func (e DuplicateInFlightError) Error() string {
	return "A concurrent request with this Idempotency-Key is still being processed."
}

// InternalError wraps any other failure. Its Cause is logged but never
// rendered to the client.
type InternalError struct {
	Cause error
}

func (e InternalError) Error() string {
	return "internal error"
}

func (e InternalError) Unwrap() error {
	return e.Cause
}
