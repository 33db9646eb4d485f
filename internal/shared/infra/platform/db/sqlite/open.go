package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	// _ "github.com/mattn/go-sqlite3" // mejor rendimiento pero requiere gcc
	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// Open abre la base SQLite con claves foráneas activas y un único escritor.
//
// SQLite solo admite un escritor a la vez: con una sola conexión en el pool cada
// transacción se serializa, que es lo que necesita la admisión de registros.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", path)
	if path != memoryPath {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		email      TEXT NOT NULL,
		name       TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		location   TEXT NOT NULL,
		date_time  DATETIME NOT NULL,
		capacity   INTEGER NOT NULL CHECK (capacity BETWEEN 1 AND 1000),
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_date_time ON events (date_time, location)`,
	`CREATE TABLE IF NOT EXISTS registrations (
		user_id    TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		event_id   TEXT NOT NULL REFERENCES events (id),
		created_at DATETIME NOT NULL,
		UNIQUE (user_id, event_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_registrations_event ON registrations (event_id)`,
	`CREATE TABLE IF NOT EXISTS outbox (
		id             TEXT PRIMARY KEY,
		aggregate_type TEXT NOT NULL,
		aggregate_id   TEXT NOT NULL,
		event_type     TEXT NOT NULL,
		payload        TEXT NOT NULL,
		created_at     DATETIME NOT NULL,
		processed      BOOLEAN NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox (processed, created_at)`,
}

// InitSchema crea las tablas si no existen.
func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to init sqlite schema: %w", err)
		}
	}
	return nil
}
