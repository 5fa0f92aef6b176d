// Package bootstrap wires every adapter to the capture domain with
// explicit constructor calls, one call per line, no generated DI code.
package bootstrap

import (
	"time"

	httpin "github.com/caktopay/capture-engine/internal/adapters/http/in"
	"github.com/caktopay/capture-engine/internal/adapters/mongodb"
	"github.com/caktopay/capture-engine/internal/adapters/postgres"
	"github.com/caktopay/capture-engine/internal/adapters/redis"
	"github.com/caktopay/capture-engine/internal/config"
	"github.com/caktopay/capture-engine/internal/domain/capture"
	"github.com/caktopay/capture-engine/internal/domain/fee"
	"github.com/caktopay/capture-engine/internal/domain/payment"
	"github.com/caktopay/capture-engine/internal/domain/ratetable"
	"github.com/caktopay/capture-engine/internal/logging"
)

// Service bundles everything cmd/api needs to start serving traffic.
type Service struct {
	Config  config.Config
	Log     logging.Logger
	DB      *postgres.Connection
	Payment httpin.PaymentHandler
	Query   httpin.QueryHandler
}

// Build loads configuration and wires every adapter to the domain layer.
// It connects to Postgres and runs migrations before returning, so a
// failure here means the process should not start serving traffic.
func Build() (*Service, error) {
	cfg := config.Load()

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	db, err := postgres.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := db.RunMigrations(); err != nil {
		return nil, err
	}

	rates, err := ratetable.FromStrings(cfg.PixRate, cfg.CardBaseRate, cfg.CardInstallmentBaseRate, cfg.CardInstallmentExtraRate)
	if err != nil {
		return nil, err
	}

	feeCalc := fee.New(rates)
	txManager := postgres.NewTransactionManager(db)
	coordinator := capture.New(feeCalc, txManager, nil)

	paymentQuery := postgres.NewPaymentQuery(db.DB)
	cachingReader := redis.NewCachingPaymentReader(cfg.RedisAddr, paymentQuery)

	auditSink, err := mongodb.Connect(cfg.MongoDBURI, log)
	if err != nil {
		log.Warnf("audit sink unavailable, continuing without it: %v", err)
		auditSink = nil
	}

	coordinator.OnCaptured = func(p payment.Payment, resp payment.Response) {
		cachingReader.Prime(p.ID, resp)

		if auditSink != nil {
			auditSink.Record(mongodb.AuditRecord{
				PaymentID:    resp.PaymentID,
				GrossAmount:  resp.GrossAmount,
				FeeAmount:    resp.PlatformFeeAmount,
				NetAmount:    resp.NetAmount,
				Method:       string(p.Method),
				Installments: p.Installments,
				CapturedAt:   time.Now(),
			})
		}
	}

	paymentHandler := httpin.PaymentHandler{Processor: coordinator, Log: log}
	queryHandler := httpin.QueryHandler{Reader: cachingReader, Log: log}

	return &Service{
		Config:  cfg,
		Log:     log,
		DB:      db,
		Payment: paymentHandler,
		Query:   queryHandler,
	}, nil
}
