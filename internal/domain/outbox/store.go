// Package outbox defines the port CaptureCoordinator uses to enqueue an
// event atomically with the payment it describes.
package outbox

import "github.com/caktopay/capture-engine/internal/domain/payment"

// Store appends pending outbox events inside the caller's open
// transaction. The whole point of the outbox pattern is that the insert
// commits or rolls back together with the rest of the capture work.
type Store interface {
	Enqueue(eventType string, payload map[string]any) (payment.OutboxEvent, error)
}
