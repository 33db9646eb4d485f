package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // Driver de PostgreSQL
)

// Open crea el pool de conexiones. El pool pertenece a main, que lo cierra al apagar.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         UUID PRIMARY KEY,
		email      TEXT NOT NULL,
		name       TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id         UUID PRIMARY KEY,
		title      TEXT NOT NULL,
		location   TEXT NOT NULL,
		date_time  TIMESTAMPTZ NOT NULL,
		capacity   INTEGER NOT NULL CHECK (capacity BETWEEN 1 AND 1000),
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_date_time ON events (date_time, location)`,
	`CREATE TABLE IF NOT EXISTS registrations (
		user_id    UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		event_id   UUID NOT NULL REFERENCES events (id),
		created_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT registrations_user_event_key UNIQUE (user_id, event_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_registrations_event ON registrations (event_id)`,
	`CREATE TABLE IF NOT EXISTS outbox (
		id             UUID PRIMARY KEY,
		aggregate_type TEXT NOT NULL,
		aggregate_id   TEXT NOT NULL,
		event_type     TEXT NOT NULL,
		payload        JSONB NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL,
		processed      BOOLEAN NOT NULL DEFAULT false
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox (created_at) WHERE processed = false`,
}

// InitSchema crea las tablas si no existen.
func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to init postgres schema: %w", err)
		}
	}
	return nil
}

// IsUniqueViolation detecta el SQLSTATE 23505.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolation detecta el SQLSTATE 23503 (la fila referenciada ya no existe).
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
