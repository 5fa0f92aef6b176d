// Package payment holds the domain types exchanged between the
// CaptureCoordinator and its ports, and the tagged-variant error taxonomy
// that the HTTP boundary translates into status codes.
package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/caktopay/capture-engine/internal/domain/money"
	"github.com/caktopay/capture-engine/internal/domain/ratetable"
)

// Status is the terminal state of a Payment. Only one value exists in
// this version of the system.
type Status string

const Captured Status = "CAPTURED"

// SplitInput is one entry of the caller-supplied split list.
type SplitInput struct {
	RecipientID string
	Role        string
	Percent     string // decimal string, up to 2 fractional digits
}

// Request is the validated, transient input to CaptureCoordinator.Process.
type Request struct {
	Amount       money.Money
	Currency     string
	Method       ratetable.PaymentMethod
	Installments int
	Splits       []SplitInput
}

// Receivable is one computed, ordered split result.
type Receivable struct {
	RecipientID string
	Role        string
	Amount      money.Money
}

// Payment is the persisted capture record. Immutable after creation.
type Payment struct {
	ID                uuid.UUID
	Status            Status
	GrossAmount       money.Money
	PlatformFeeAmount money.Money
	NetAmount         money.Money
	Method            ratetable.PaymentMethod
	Installments      int
	IdempotencyKey    string
	CreatedAt         time.Time
}

// LedgerEntry is one persisted per-recipient row belonging to a Payment.
type LedgerEntry struct {
	ID        uuid.UUID
	PaymentID uuid.UUID
	RecipientID string
	Role        string
	Amount      money.Money
	CreatedAt   time.Time
}

// OutboxEventType is the only event type this system emits.
const OutboxEventType = "payment_captured"

// OutboxStatus is the lifecycle state of an OutboxEvent row.
type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "PENDING"
	OutboxPublished OutboxStatus = "PUBLISHED"
)

// OutboxEvent is the persisted row CaptureCoordinator enqueues atomically
// with the Payment it describes.
type OutboxEvent struct {
	ID          uuid.UUID
	EventType   string
	Payload     map[string]any
	Status      OutboxStatus
	CreatedAt   time.Time
	PublishedAt *time.Time
}

// Response is the exact JSON shape returned on 201 and cached verbatim
// inside the idempotency record for replay.
type Response struct {
	PaymentID         string             `json:"payment_id"`
	Status            string             `json:"status"`
	GrossAmount       string             `json:"gross_amount"`
	PlatformFeeAmount string             `json:"platform_fee_amount"`
	NetAmount         string             `json:"net_amount"`
	Receivables       []ReceivableView   `json:"receivables"`
	OutboxEvent       OutboxEventView    `json:"outbox_event"`
}

// ReceivableView is the JSON shape of one Response.Receivables entry.
type ReceivableView struct {
	RecipientID string `json:"recipient_id"`
	Role        string `json:"role"`
	Amount      string `json:"amount"`
}

// OutboxEventView is the JSON shape of Response.OutboxEvent.
type OutboxEventView struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}
