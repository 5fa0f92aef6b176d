package payment

import "github.com/google/uuid"

// Store is the port CaptureCoordinator uses to persist the Payment header
// and its per-recipient ledger. Both operations are expected to run
// inside a transaction the caller already opened.
type Store interface {
	// CreatePayment inserts a new Payment row, status always Captured.
	CreatePayment(p Payment) (Payment, error)
	// CreateLedger bulk-inserts one row per receivable in a single
	// round-trip where the backend supports it.
	CreateLedger(paymentID uuid.UUID, receivables []Receivable) ([]LedgerEntry, error)
}
