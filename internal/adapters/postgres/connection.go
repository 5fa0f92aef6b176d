// Package postgres is the database/sql + pgx adapter layer: connection
// setup, migrations, and the PaymentStore/OutboxStore/IdempotencyStore
// ports plus the squirrel-built read-model query.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"

	"github.com/caktopay/capture-engine/internal/domain/capture"
)

//go:embed sql/migrations/*.sql
var migrationFiles embed.FS

// Connection wraps a *sql.DB opened against dsn and exposes the pieces
// the rest of the adapter layer needs. A single primary handle is used;
// this service has no read-replica requirement (see DESIGN.md).
type Connection struct {
	DB *sql.DB
}

// Connect opens dsn with the pgx stdlib driver and verifies connectivity
// with a bounded ping.
func Connect(dsn string) (*Connection, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres connection")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "ping postgres")
	}

	return &Connection{DB: db}, nil
}

// RunMigrations applies every migration embedded under sql/migrations.
func (c *Connection) RunMigrations() error {
	source, err := iofs.New(migrationFiles, "sql/migrations")
	if err != nil {
		return errors.Wrap(err, "load embedded migrations")
	}

	driver, err := pgxmigrate.WithInstance(c.DB, &pgxmigrate.Config{})
	if err != nil {
		return errors.Wrap(err, "build migration driver")
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx", driver)
	if err != nil {
		return errors.Wrap(err, "build migrator")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "apply migrations")
	}

	return nil
}

// Ping is used by the /healthz handler.
func (c *Connection) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// TransactionManager implements capture.TransactionManager on top of a
// *sql.DB: one BeginTx per Process call, committed on success, rolled
// back (including the speculative idempotency row) on any error.
type TransactionManager struct {
	DB *sql.DB
}

// NewTransactionManager builds a TransactionManager bound to conn.
func NewTransactionManager(conn *Connection) *TransactionManager {
	return &TransactionManager{DB: conn.DB}
}

var _ capture.TransactionManager = (*TransactionManager)(nil)

// WithinTransaction opens a transaction, builds a capture.Scope bound to
// it, and commits or rolls back based on fn's return.
func (m *TransactionManager) WithinTransaction(fn func(capture.Scope) error) error {
	tx, err := m.DB.BeginTx(context.Background(), nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}

	scope := capture.Scope{
		Payments:    NewPaymentStore(tx),
		Outbox:      NewOutboxStore(tx),
		Idempotency: NewIdempotencyStore(tx),
	}

	if err := fn(scope); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}

	return nil
}
