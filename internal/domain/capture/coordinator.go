// Package capture implements CaptureCoordinator, the single operation
// that composes validation, fee calculation, splitting, persistence,
// outbox enqueue and the idempotency handshake into one ACID transaction.
package capture

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/caktopay/capture-engine/internal/domain/fee"
	"github.com/caktopay/capture-engine/internal/domain/idempotency"
	"github.com/caktopay/capture-engine/internal/domain/outbox"
	"github.com/caktopay/capture-engine/internal/domain/payment"
	"github.com/caktopay/capture-engine/internal/domain/split"
	"github.com/caktopay/capture-engine/internal/domain/validator"
)

// Scope bundles the transaction-scoped stores a single Process call needs.
// TransactionManager constructs one per attempt, bound to the same
// *sql.Tx, and the coordinator never sees the transaction handle itself.
type Scope struct {
	Payments    payment.Store
	Outbox      outbox.Store
	Idempotency idempotency.Store
}

// TransactionManager opens a database transaction, hands the coordinator
// a Scope bound to it, and commits on a nil return or rolls back
// otherwise — including the speculative PROCESSING idempotency row.
type TransactionManager interface {
	WithinTransaction(fn func(Scope) error) error
}

// Coordinator is CaptureCoordinator.
type Coordinator struct {
	Fee fee.Calculator
	Tx  TransactionManager
	Now func() time.Time

	// OnCaptured, if set, runs once the transaction for a brand new
	// capture has committed. It never runs on a replayed or conflicting
	// request. Hooks registered here (cache priming, audit sink writes)
	// are best-effort and must not block or fail the HTTP response.
	OnCaptured func(payment.Payment, payment.Response)
}

// New builds a Coordinator. now defaults to time.Now when nil.
func New(feeCalc fee.Calculator, tx TransactionManager, now func() time.Time) Coordinator {
	if now == nil {
		now = time.Now
	}

	return Coordinator{Fee: feeCalc, Tx: tx, Now: now}
}

// Process is CaptureCoordinator.process(input, key) → response.
func (c Coordinator) Process(req payment.Request, idempotencyKey string) (payment.Response, error) {
	if err := validator.Validate(req); err != nil {
		return payment.Response{}, err
	}

	hash := idempotency.HashPayload(req)

	var response payment.Response
	var capturedPayment payment.Payment
	var freshlyCaptured bool

	err := c.Tx.WithinTransaction(func(scope Scope) error {
		idemSvc := idempotency.NewService(scope.Idempotency)

		result, err := idemSvc.Check(idempotencyKey, hash)
		if err != nil {
			return payment.InternalError{Cause: err}
		}

		switch result.Outcome {
		case idempotency.OutcomeConflict:
			return payment.IdempotencyConflictError{}

		case idempotency.OutcomeInFlight:
			return payment.DuplicateInFlightError{}

		case idempotency.OutcomeReplay:
			if err := json.Unmarshal(result.CachedResponse, &response); err != nil {
				return payment.InternalError{Cause: err}
			}

			return nil

		case idempotency.OutcomeFirstTime:
			p, resp, err := c.captureFirstTime(scope, idemSvc, result.Record, req, idempotencyKey)
			if err != nil {
				return err
			}

			capturedPayment = p
			response = resp
			freshlyCaptured = true

			return nil

		default:
			return payment.InternalError{Cause: errUnknownOutcome(result.Outcome)}
		}
	})
	if err != nil {
		return payment.Response{}, err
	}

	if freshlyCaptured && c.OnCaptured != nil {
		c.OnCaptured(capturedPayment, response)
	}

	return response, nil
}

func (c Coordinator) captureFirstTime(
	scope Scope,
	idemSvc idempotency.Service,
	record *idempotency.Record,
	req payment.Request,
	idempotencyKey string,
) (payment.Payment, payment.Response, error) {
	feeAmount := c.Fee.Calculate(req.Amount, req.Method, req.Installments)
	net := req.Amount.Sub(feeAmount)
	receivables := split.Calculate(net, req.Splits)

	created, err := scope.Payments.CreatePayment(payment.Payment{
		ID:                uuid.New(),
		Status:            payment.Captured,
		GrossAmount:       req.Amount,
		PlatformFeeAmount: feeAmount,
		NetAmount:         net,
		Method:            req.Method,
		Installments:      req.Installments,
		IdempotencyKey:    idempotencyKey,
		CreatedAt:         c.Now(),
	})
	if err != nil {
		return payment.Payment{}, payment.Response{}, payment.InternalError{Cause: err}
	}

	if _, err := scope.Payments.CreateLedger(created.ID, receivables); err != nil {
		return payment.Payment{}, payment.Response{}, payment.InternalError{Cause: err}
	}

	event, err := scope.Outbox.Enqueue(payment.OutboxEventType, map[string]any{
		"payment_id":   created.ID.String(),
		"gross_amount": created.GrossAmount.String(),
		"net_amount":   created.NetAmount.String(),
	})
	if err != nil {
		return payment.Payment{}, payment.Response{}, payment.InternalError{Cause: err}
	}

	response := buildResponse(created, receivables, event)

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return payment.Payment{}, payment.Response{}, payment.InternalError{Cause: err}
	}

	if err := idemSvc.SaveResponse(record, responseJSON); err != nil {
		return payment.Payment{}, payment.Response{}, payment.InternalError{Cause: err}
	}

	return created, response, nil
}

func buildResponse(p payment.Payment, receivables []payment.Receivable, event payment.OutboxEvent) payment.Response {
	views := make([]payment.ReceivableView, len(receivables))
	for i, r := range receivables {
		views[i] = payment.ReceivableView{
			RecipientID: r.RecipientID,
			Role:        r.Role,
			Amount:      r.Amount.String(),
		}
	}

	return payment.Response{
		PaymentID:         p.ID.String(),
		Status:            "captured",
		GrossAmount:       p.GrossAmount.String(),
		PlatformFeeAmount: p.PlatformFeeAmount.String(),
		NetAmount:         p.NetAmount.String(),
		Receivables:       views,
		OutboxEvent: payment.OutboxEventView{
			Type:   event.EventType,
			Status: strings.ToLower(string(event.Status)),
		},
	}
}

type errUnknownOutcome idempotency.Outcome

func (e errUnknownOutcome) Error() string {
	return "idempotency service returned an unrecognized outcome"
}
