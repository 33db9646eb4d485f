package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	eventDomain "github.com/davicafu/eventreg/internal/event/domain"
	"github.com/davicafu/eventreg/internal/registration/domain"
	sharedDomain "github.com/davicafu/eventreg/internal/shared/domain"
	platformSQLite "github.com/davicafu/eventreg/internal/shared/infra/platform/db/sqlite"
	userDomain "github.com/davicafu/eventreg/internal/user/domain"
	"github.com/google/uuid"
)

// RegistrationRepoSQLite confía en que el pool tenga una sola conexión
// (platformSQLite.Open): cada transacción de admisión se ejecuta sola.
type RegistrationRepoSQLite struct {
	db *sql.DB
}

func NewRegistrationRepoSQLite(db *sql.DB) *RegistrationRepoSQLite {
	return &RegistrationRepoSQLite{db: db}
}

func (r *RegistrationRepoSQLite) Register(ctx context.Context, reg *domain.Registration, now time.Time, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// 1. usuario
	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, reg.UserID.String()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return userDomain.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}

	// 2. evento
	var event eventDomain.Event
	err = tx.QueryRowContext(ctx, `SELECT date_time, capacity FROM events WHERE id = ?`, reg.EventID.String()).
		Scan(&event.DateTime, &event.Capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return eventDomain.ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check event: %w", err)
	}

	// 3. fecha
	if event.HasPassed(now) {
		return domain.ErrEventInPast
	}

	// 4. aforo
	var total int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id = ?`, reg.EventID.String()).Scan(&total); err != nil {
		return fmt.Errorf("failed to count registrations: %w", err)
	}
	if total >= event.Capacity {
		return domain.ErrEventFull
	}

	// 5. duplicado
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM registrations WHERE user_id = ? AND event_id = ?`,
		reg.UserID.String(), reg.EventID.String()).Scan(&one)
	if err == nil {
		return domain.ErrAlreadyRegistered
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check registration: %w", err)
	}

	// 6. alta + outbox
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO registrations (user_id, event_id, created_at) VALUES (?, ?, ?)`,
		reg.UserID.String(), reg.EventID.String(), reg.CreatedAt.UTC(),
	); err != nil {
		if platformSQLite.IsUniqueViolation(err) {
			return domain.ErrAlreadyRegistered
		}
		return fmt.Errorf("failed to insert registration: %w", err)
	}

	if err := platformSQLite.InsertOutboxTx(ctx, tx, evt); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *RegistrationRepoSQLite) Cancel(ctx context.Context, userID, eventID uuid.UUID, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM registrations WHERE user_id = ? AND event_id = ?`, userID.String(), eventID.String())
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

	if err := platformSQLite.InsertOutboxTx(ctx, tx, evt); err != nil {
		return err
	}

	return tx.Commit()
}

var _ domain.RegistrationRepository = (*RegistrationRepoSQLite)(nil)
