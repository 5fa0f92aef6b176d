package postgres

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/caktopay/capture-engine/internal/domain/money"
	"github.com/caktopay/capture-engine/internal/domain/payment"
)

// ErrPaymentNotFound is returned by PaymentQuery.GetByID when no payment
// row matches the given id.
var ErrPaymentNotFound = errors.New("payment not found")

// PaymentQuery is the read-model behind GET /api/v1/payments/{id}.
// Unlike the write-side stores it runs against *sql.DB directly (no open
// transaction) and builds its SQL with squirrel.
type PaymentQuery struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

// NewPaymentQuery builds a PaymentQuery bound to db.
func NewPaymentQuery(db *sql.DB) *PaymentQuery {
	return &PaymentQuery{db: db, builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

// GetByID returns the full 201-shaped response view for a captured
// payment, rebuilt from the payments + ledger_entries + outbox_events
// tables.
func (q *PaymentQuery) GetByID(ctx context.Context, id uuid.UUID) (payment.Response, error) {
	paymentQuery, args, err := q.builder.
		Select("id", "status", "gross_amount", "platform_fee_amount", "net_amount").
		From("payments").
		Where(sq.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return payment.Response{}, pkgerrors.Wrap(err, "build payment query")
	}

	var (
		rowID, rowStatus, gross, feeAmt, net string
	)

	err = q.db.QueryRowContext(ctx, paymentQuery, args...).Scan(&rowID, &rowStatus, &gross, &feeAmt, &net)
	if errors.Is(err, sql.ErrNoRows) {
		return payment.Response{}, ErrPaymentNotFound
	}
	if err != nil {
		return payment.Response{}, pkgerrors.Wrap(err, "query payment")
	}

	grossAmt, err := money.FromDecimalString(gross)
	if err != nil {
		return payment.Response{}, err
	}

	feeAmount, err := money.FromDecimalString(feeAmt)
	if err != nil {
		return payment.Response{}, err
	}

	netAmt, err := money.FromDecimalString(net)
	if err != nil {
		return payment.Response{}, err
	}

	ledgerQuery, ledgerArgs, err := q.builder.
		Select("recipient_id", "role", "amount").
		From("ledger_entries").
		Where(sq.Eq{"payment_id": id.String()}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return payment.Response{}, pkgerrors.Wrap(err, "build ledger query")
	}

	rows, err := q.db.QueryContext(ctx, ledgerQuery, ledgerArgs...)
	if err != nil {
		return payment.Response{}, pkgerrors.Wrap(err, "query ledger entries")
	}
	defer rows.Close()

	var receivables []payment.ReceivableView

	for rows.Next() {
		var recipientID, role, amount string
		if err := rows.Scan(&recipientID, &role, &amount); err != nil {
			return payment.Response{}, err
		}

		receivables = append(receivables, payment.ReceivableView{RecipientID: recipientID, Role: role, Amount: amount})
	}

	if err := rows.Err(); err != nil {
		return payment.Response{}, err
	}

	outboxStatus, err := q.outboxStatusFor(ctx, rowID)
	if err != nil {
		return payment.Response{}, err
	}

	return payment.Response{
		PaymentID:         rowID,
		Status:            toLowerStatus(rowStatus),
		GrossAmount:       grossAmt.String(),
		PlatformFeeAmount: feeAmount.String(),
		NetAmount:         netAmt.String(),
		Receivables:       receivables,
		OutboxEvent: payment.OutboxEventView{
			Type:   payment.OutboxEventType,
			Status: outboxStatus,
		},
	}, nil
}

func (q *PaymentQuery) outboxStatusFor(ctx context.Context, paymentID string) (string, error) {
	query, args, err := q.builder.
		Select("status").
		From("outbox_events").
		Where(sq.Eq{"payload->>'payment_id'": paymentID}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return "", pkgerrors.Wrap(err, "build outbox status query")
	}

	var status string

	err = q.db.QueryRowContext(ctx, query, args...).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return toLowerStatus(string(payment.OutboxPending)), nil
	}
	if err != nil {
		return "", pkgerrors.Wrap(err, "query outbox status")
	}

	return toLowerStatus(status), nil
}

func toLowerStatus(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}

	return string(out)
}
