package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/tankoni/Crulish-sub003/internal/core/errs"
)

// PostgresReporter archives reports in the error_reports table for offline
// analysis. The table ships as a goose migration.
type PostgresReporter struct {
	db  *sqlx.DB
	log *slog.Logger
}

// NewPostgresReporter opens the archive database with pool settings and
// verifies the connection.
func NewPostgresReporter(ctx context.Context, cfg DatabaseConfig) (*PostgresReporter, error) {
	db, err := sqlx.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	} else {
		db.SetMaxOpenConns(10)
	}
	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(cfg.MinConns)
	} else {
		db.SetMaxIdleConns(2)
	}
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresReporter{
		db:  db,
		log: slog.Default().With("component", "telemetry.postgres"),
	}, nil
}

const insertReport = `
INSERT INTO error_reports (id, kind, severity, op_context, message, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO NOTHING`

// Report inserts the record into the archive.
func (r *PostgresReporter) Report(ctx context.Context, rec errs.Record, _ error) {
	_, err := r.db.ExecContext(ctx, insertReport,
		rec.ID,
		string(rec.Kind),
		rec.Severity.String(),
		rec.Context,
		rec.Message,
		rec.Time,
	)
	if err != nil {
		r.log.Warn("failed to archive error report", "err", err)
	}
}

// DB exposes the underlying handle so control can run migrations on it.
func (r *PostgresReporter) DB() *sqlx.DB {
	return r.db
}

// Close closes the database.
func (r *PostgresReporter) Close() error {
	return r.db.Close()
}
