package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/davicafu/eventreg/internal/registration/domain"
)

// ActivityLog implementa domain.ActivityLog sobre ClickHouse.
type ActivityLog struct {
	db *sql.DB
}

func NewActivityLog(ctx context.Context, addr, dbName string) (*ActivityLog, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	})

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}

	return &ActivityLog{db: conn}, nil
}

// Record inserta el lote en una sola transacción: ClickHouse rinde mejor con inserciones agrupadas.
func (r *ActivityLog) Record(ctx context.Context, activities []domain.Activity) error {
	if len(activities) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO registration_activity (kind, event_id, user_id, occurred_at)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, a := range activities {
		if _, err := stmt.ExecContext(ctx, string(a.Kind), a.EventID, a.UserID, a.OccurredAt.UTC()); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to exec statement for event %s: %w", a.EventID, err)
		}
	}

	return tx.Commit()
}

func (r *ActivityLog) DailyTrend(ctx context.Context, from, to time.Time) ([]domain.DailyActivity, error) {
	query := `
		SELECT
			toStartOfDay(occurred_at, 'UTC') AS day,
			countIf(kind = 'registered') AS registrations,
			countIf(kind = 'cancelled') AS cancellations
		FROM registration_activity
		WHERE occurred_at >= ? AND occurred_at < ?
		GROUP BY day
		ORDER BY day
	`
	rows, err := r.db.QueryContext(ctx, query, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trend := []domain.DailyActivity{}
	for rows.Next() {
		var (
			day                          time.Time
			registrations, cancellations uint64
		)
		if err := rows.Scan(&day, &registrations, &cancellations); err != nil {
			return nil, err
		}
		trend = append(trend, domain.DailyActivity{
			Day:           day.UTC(),
			Registrations: int(registrations),
			Cancellations: int(cancellations),
		})
	}
	return trend, rows.Err()
}

// InitSchema crea la tabla si no existe. Particionada por mes y ordenada por fecha.
func (r *ActivityLog) InitSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS registration_activity (
			kind        LowCardinality(String),
			event_id    UUID,
			user_id     UUID,
			occurred_at DateTime64(3, 'UTC')
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(occurred_at)
		ORDER BY (occurred_at, event_id)
	`
	_, err := r.db.ExecContext(ctx, query)
	return err
}

func (r *ActivityLog) Close() error {
	return r.db.Close()
}

var _ domain.ActivityLog = (*ActivityLog)(nil)
