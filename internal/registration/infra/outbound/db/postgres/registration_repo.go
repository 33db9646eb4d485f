package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	eventDomain "github.com/davicafu/eventreg/internal/event/domain"
	"github.com/davicafu/eventreg/internal/registration/domain"
	sharedDomain "github.com/davicafu/eventreg/internal/shared/domain"
	platformPostgres "github.com/davicafu/eventreg/internal/shared/infra/platform/db/postgres"
	userDomain "github.com/davicafu/eventreg/internal/user/domain"
	"github.com/google/uuid"
)

// RegistrationRepoPostgres bloquea la fila del evento (FOR UPDATE) durante la
// admisión: dos altas sobre el mismo evento se ejecutan una detrás de otra.
type RegistrationRepoPostgres struct {
	db *sql.DB
}

func NewRegistrationRepoPostgres(db *sql.DB) *RegistrationRepoPostgres {
	return &RegistrationRepoPostgres{db: db}
}

func (r *RegistrationRepoPostgres) Register(ctx context.Context, reg *domain.Registration, now time.Time, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, reg.UserID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return userDomain.ErrUserNotFound
	}

	var event eventDomain.Event
	err = tx.QueryRowContext(ctx, `SELECT date_time, capacity FROM events WHERE id = $1 FOR UPDATE`, reg.EventID).
		Scan(&event.DateTime, &event.Capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return eventDomain.ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock event: %w", err)
	}

	if event.HasPassed(now) {
		return domain.ErrEventInPast
	}

	var total int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id = $1`, reg.EventID).Scan(&total); err != nil {
		return fmt.Errorf("failed to count registrations: %w", err)
	}
	if total >= event.Capacity {
		return domain.ErrEventFull
	}

	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM registrations WHERE user_id = $1 AND event_id = $2)`,
		reg.UserID, reg.EventID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check registration: %w", err)
	}
	if exists {
		return domain.ErrAlreadyRegistered
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO registrations (user_id, event_id, created_at) VALUES ($1, $2, $3)`,
		reg.UserID, reg.EventID, reg.CreatedAt.UTC(),
	); err != nil {
		return mapInsertError(err)
	}

	if err := platformPostgres.InsertOutboxTx(ctx, tx, evt); err != nil {
		return err
	}

	return tx.Commit()
}

// mapInsertError traduce las violaciones de restricción del insert a errores de dominio.
func mapInsertError(err error) error {
	switch {
	case platformPostgres.IsUniqueViolation(err):
		return domain.ErrAlreadyRegistered
	case platformPostgres.IsForeignKeyViolation(err):
		// el usuario se borró entre la comprobación y el insert
		return userDomain.ErrUserNotFound
	}
	return fmt.Errorf("failed to insert registration: %w", err)
}

func (r *RegistrationRepoPostgres) Cancel(ctx context.Context, userID, eventID uuid.UUID, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM registrations WHERE user_id = $1 AND event_id = $2`, userID, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete registration: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get RowsAffected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotRegistered
	}

	if err := platformPostgres.InsertOutboxTx(ctx, tx, evt); err != nil {
		return err
	}

	return tx.Commit()
}

var _ domain.RegistrationRepository = (*RegistrationRepoPostgres)(nil)
