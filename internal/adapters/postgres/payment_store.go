package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/caktopay/capture-engine/internal/domain/money"
	"github.com/caktopay/capture-engine/internal/domain/payment"
	"github.com/caktopay/capture-engine/internal/domain/ratetable"
)

// PaymentStore implements payment.Store against a single *sql.Tx, the
// transaction capture.Coordinator already opened. Grounded on the
// teacher's account.postgresql.go: raw positional-placeholder SQL,
// RETURNING clauses, manual Scan into a row model.
type PaymentStore struct {
	tx *sql.Tx
}

// NewPaymentStore binds a PaymentStore to an open transaction.
func NewPaymentStore(tx *sql.Tx) *PaymentStore {
	return &PaymentStore{tx: tx}
}

type paymentRow struct {
	id                string
	status            string
	grossAmount       string
	platformFeeAmount string
	netAmount         string
	method            string
	installments      int
	idempotencyKey    string
	createdAt         time.Time
}

func (r paymentRow) toEntity() (payment.Payment, error) {
	id, err := uuid.Parse(r.id)
	if err != nil {
		return payment.Payment{}, err
	}

	gross, err := money.FromDecimalString(r.grossAmount)
	if err != nil {
		return payment.Payment{}, err
	}

	fee, err := money.FromDecimalString(r.platformFeeAmount)
	if err != nil {
		return payment.Payment{}, err
	}

	net, err := money.FromDecimalString(r.netAmount)
	if err != nil {
		return payment.Payment{}, err
	}

	return payment.Payment{
		ID:                id,
		Status:            payment.Status(r.status),
		GrossAmount:       gross,
		PlatformFeeAmount: fee,
		NetAmount:         net,
		Method:            methodFromRow(r.method),
		Installments:      r.installments,
		IdempotencyKey:    r.idempotencyKey,
		CreatedAt:         r.createdAt,
	}, nil
}

// CreatePayment inserts p and returns the row as persisted.
func (s *PaymentStore) CreatePayment(p payment.Payment) (payment.Payment, error) {
	const query = `
		INSERT INTO payments
			(id, status, gross_amount, platform_fee_amount, net_amount, payment_method, installments, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, status, gross_amount, platform_fee_amount, net_amount, payment_method, installments, idempotency_key, created_at`

	var row paymentRow

	err := s.tx.QueryRowContext(context.Background(), query,
		p.ID.String(), string(p.Status), p.GrossAmount.String(), p.PlatformFeeAmount.String(), p.NetAmount.String(),
		strings.ToLower(string(p.Method)), p.Installments, p.IdempotencyKey, p.CreatedAt,
	).Scan(&row.id, &row.status, &row.grossAmount, &row.platformFeeAmount, &row.netAmount,
		&row.method, &row.installments, &row.idempotencyKey, &row.createdAt)
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "insert payment")
	}

	return row.toEntity()
}

// CreateLedger bulk-inserts one row per receivable using a single
// multi-values INSERT, the Postgres equivalent of a one-round-trip bulk
// insert.
func (s *PaymentStore) CreateLedger(paymentID uuid.UUID, receivables []payment.Receivable) ([]payment.LedgerEntry, error) {
	if len(receivables) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ledger_entries (id, payment_id, recipient_id, role, amount) VALUES ")

	args := make([]any, 0, len(receivables)*5)

	for i, r := range receivables {
		if i > 0 {
			sb.WriteString(", ")
		}

		base := i * 5
		sb.WriteString(placeholderGroup(base+1, 5))

		args = append(args, uuid.New().String(), paymentID.String(), r.RecipientID, r.Role, r.Amount.String())
	}

	sb.WriteString(" RETURNING id, payment_id, recipient_id, role, amount, created_at")

	rows, err := s.tx.QueryContext(context.Background(), sb.String(), args...)
	if err != nil {
		return nil, errors.Wrap(err, "insert ledger entries")
	}
	defer rows.Close()

	var entries []payment.LedgerEntry

	for rows.Next() {
		var (
			id, paymentIDStr, recipientID, role, amount string
			createdAt                                   time.Time
		)

		if err := rows.Scan(&id, &paymentIDStr, &recipientID, &role, &amount, &createdAt); err != nil {
			return nil, errors.Wrap(err, "scan ledger entry")
		}

		entryID, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}

		amt, err := money.FromDecimalString(amount)
		if err != nil {
			return nil, err
		}

		entries = append(entries, payment.LedgerEntry{
			ID:          entryID,
			PaymentID:   paymentID,
			RecipientID: recipientID,
			Role:        role,
			Amount:      amt,
			CreatedAt:   createdAt,
		})
	}

	return entries, rows.Err()
}

func placeholderGroup(start, n int) string {
	var sb strings.Builder

	sb.WriteString("(")

	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString("$")
		sb.WriteString(itoa(start + i))
	}

	sb.WriteString(")")

	return sb.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}

	return string(digits)
}

func methodFromRow(s string) ratetable.PaymentMethod {
	return ratetable.PaymentMethod(strings.ToUpper(s))
}
