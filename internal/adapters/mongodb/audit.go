// Package mongodb is a best-effort audit sink: after a capture
// transaction commits, the coordinator's post-commit hook writes a copy
// of the capture to Mongo for analytics. A failure here is logged and
// swallowed — it never affects the ACID outcome already recorded in
// Postgres.
package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/caktopay/capture-engine/internal/logging"
)

// AuditSink writes capture_audit documents to a Mongo collection.
type AuditSink struct {
	collection *mongo.Collection
	log        logging.Logger
}

// Connect dials uri and returns an AuditSink bound to db "capture",
// collection "capture_audit".
func Connect(uri string, log logging.Logger) (*AuditSink, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return &AuditSink{
		collection: client.Database("capture").Collection("capture_audit"),
		log:        log,
	}, nil
}

// AuditRecord is the document shape written per captured payment.
type AuditRecord struct {
	PaymentID    string    `bson:"payment_id"`
	GrossAmount  string    `bson:"gross_amount"`
	FeeAmount    string    `bson:"fee_amount"`
	NetAmount    string    `bson:"net_amount"`
	Method       string    `bson:"method"`
	Installments int       `bson:"installments"`
	CapturedAt   time.Time `bson:"captured_at"`
}

// Record fires a non-blocking write of rec. Errors are logged, never
// returned: the caller's transaction has already committed.
func (s *AuditSink) Record(rec AuditRecord) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := s.collection.InsertOne(ctx, bson.M{
			"payment_id":   rec.PaymentID,
			"gross_amount": rec.GrossAmount,
			"fee_amount":   rec.FeeAmount,
			"net_amount":   rec.NetAmount,
			"method":       rec.Method,
			"installments": rec.Installments,
			"captured_at":  rec.CapturedAt,
		}); err != nil {
			s.log.Errorf("audit sink write failed for payment %s: %v", rec.PaymentID, err)
		}
	}()
}
