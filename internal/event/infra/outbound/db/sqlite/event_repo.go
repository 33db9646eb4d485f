package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/davicafu/eventreg/internal/event/domain"
	sharedDomain "github.com/davicafu/eventreg/internal/shared/domain"
	platformSQLite "github.com/davicafu/eventreg/internal/shared/infra/platform/db/sqlite"
	"github.com/google/uuid"
)

type EventRepoSQLite struct {
	db *sql.DB
}

func NewEventRepoSQLite(db *sql.DB) *EventRepoSQLite {
	return &EventRepoSQLite{db: db}
}

// querier permite leer igual desde *sql.DB o desde una transacción.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Create inserta evento y fila de outbox en transacción
func (r *EventRepoSQLite) Create(ctx context.Context, e *domain.Event, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO events (id, title, location, date_time, capacity, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.Title, e.Location, e.DateTime.UTC(), e.Capacity, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	if err := platformSQLite.InsertOutboxTx(ctx, tx, evt); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *EventRepoSQLite) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	return getEvent(ctx, r.db, id)
}

func getEvent(ctx context.Context, q querier, id uuid.UUID) (*domain.Event, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, title, location, date_time, capacity FROM events WHERE id = ?`, id.String())

	var e domain.Event
	if err := row.Scan(&e.ID, &e.Title, &e.Location, &e.DateTime, &e.Capacity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %s: %w", id, err)
	}
	e.DateTime = e.DateTime.UTC()
	return &e, nil
}

func (r *EventRepoSQLite) ListUpcoming(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, location, date_time, capacity
		 FROM events
		 WHERE date_time > ?
		 ORDER BY date_time ASC, location ASC`, now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}
	defer rows.Close()

	events := []*domain.Event{}
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Location, &e.DateTime, &e.Capacity); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.DateTime = e.DateTime.UTC()
		events = append(events, &e)
	}
	return events, rows.Err()
}

func (r *EventRepoSQLite) GetStats(ctx context.Context, id uuid.UUID) (*domain.EventStats, error) {
	var capacity, total int
	err := r.db.QueryRowContext(ctx,
		`SELECT e.capacity, (SELECT COUNT(*) FROM registrations r WHERE r.event_id = e.id)
		 FROM events e WHERE e.id = ?`, id.String(),
	).Scan(&capacity, &total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get stats for event %s: %w", id, err)
	}
	return domain.NewEventStats(id, capacity, total), nil
}

// GetDetails lee evento e inscritos en la misma transacción para que sean coherentes.
func (r *EventRepoSQLite) GetDetails(ctx context.Context, id uuid.UUID) (*domain.EventDetails, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	event, err := getEvent(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT u.id, u.email, u.name
		 FROM registrations r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.event_id = ?
		 ORDER BY r.created_at ASC, r.rowid ASC`, id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list registered users: %w", err)
	}
	defer rows.Close()

	users := []domain.RegisteredUser{}
	for rows.Next() {
		var u domain.RegisteredUser
		if err := rows.Scan(&u.ID, &u.Email, &u.Name); err != nil {
			return nil, fmt.Errorf("failed to scan registered user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &domain.EventDetails{Event: event, RegisteredUsers: users}, nil
}

var _ domain.EventRepository = (*EventRepoSQLite)(nil)
