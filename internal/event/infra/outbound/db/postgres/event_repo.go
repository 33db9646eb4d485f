package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/davicafu/eventreg/internal/event/domain"
	sharedDomain "github.com/davicafu/eventreg/internal/shared/domain"
	platformPostgres "github.com/davicafu/eventreg/internal/shared/infra/platform/db/postgres"
	"github.com/google/uuid"
)

type EventRepoPostgres struct {
	db *sql.DB
}

func NewEventRepoPostgres(db *sql.DB) *EventRepoPostgres {
	return &EventRepoPostgres{db: db}
}

func (r *EventRepoPostgres) Create(ctx context.Context, e *domain.Event, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO events (id, title, location, date_time, capacity, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.Title, e.Location, e.DateTime.UTC(), e.Capacity, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	if err := platformPostgres.InsertOutboxTx(ctx, tx, evt); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *EventRepoPostgres) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	var e domain.Event
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, location, date_time, capacity FROM events WHERE id = $1`, id,
	).Scan(&e.ID, &e.Title, &e.Location, &e.DateTime, &e.Capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %s: %w", id, err)
	}
	e.DateTime = e.DateTime.UTC()
	return &e, nil
}

func (r *EventRepoPostgres) ListUpcoming(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, location, date_time, capacity
		 FROM events
		 WHERE date_time > $1
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

func (r *EventRepoPostgres) GetStats(ctx context.Context, id uuid.UUID) (*domain.EventStats, error) {
	var capacity, total int
	err := r.db.QueryRowContext(ctx,
		`SELECT e.capacity, COUNT(r.user_id)
		 FROM events e
		 LEFT JOIN registrations r ON r.event_id = e.id
		 WHERE e.id = $1
		 GROUP BY e.id, e.capacity`, id,
	).Scan(&capacity, &total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get stats for event %s: %w", id, err)
	}
	return domain.NewEventStats(id, capacity, total), nil
}

// GetDetails usa REPEATABLE READ para que evento e inscritos salgan de la misma foto.
func (r *EventRepoPostgres) GetDetails(ctx context.Context, id uuid.UUID) (*domain.EventDetails, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var e domain.Event
	err = tx.QueryRowContext(ctx,
		`SELECT id, title, location, date_time, capacity FROM events WHERE id = $1`, id,
	).Scan(&e.ID, &e.Title, &e.Location, &e.DateTime, &e.Capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %s: %w", id, err)
	}
	e.DateTime = e.DateTime.UTC()

	rows, err := tx.QueryContext(ctx,
		`SELECT u.id, u.email, u.name
		 FROM registrations r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.event_id = $1
		 ORDER BY r.created_at ASC, u.id ASC`, id,
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

	return &domain.EventDetails{Event: &e, RegisteredUsers: users}, nil
}

var _ domain.EventRepository = (*EventRepoPostgres)(nil)
