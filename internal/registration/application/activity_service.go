package application

import (
	"context"
	"fmt"
	"time"

	"github.com/davicafu/eventreg/internal/registration/domain"
	sharedEvents "github.com/davicafu/eventreg/internal/shared/domain/events"
	"go.uber.org/zap"
)

// ActivityService proyecta altas y bajas en el almacén analítico.
type ActivityService struct {
	store domain.ActivityLog
	log   *zap.Logger
	now   func() time.Time
}

func NewActivityService(store domain.ActivityLog, log *zap.Logger) *ActivityService {
	return &ActivityService{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Record guarda la actividad de un evento de integración. Los tipos que no son
// de registro se ignoran sin error.
func (s *ActivityService) Record(ctx context.Context, eventType string, data sharedEvents.RegistrationChanged) error {
	kind, ok := domain.ActivityKindFor(eventType)
	if !ok {
		s.log.Debug("Ignoring non-registration event", zap.String("event_type", eventType))
		return nil
	}

	at := data.At
	if at.IsZero() {
		at = s.now()
	}

	activity := domain.Activity{Kind: kind, EventID: data.EventID, UserID: data.UserID, OccurredAt: at.UTC()}
	if err := s.store.Record(ctx, []domain.Activity{activity}); err != nil {
		return fmt.Errorf("failed to record %s activity: %w", kind, err)
	}
	return nil
}

// Trend devuelve un punto por día (UTC) de los últimos days días, hoy incluido,
// rellenando con ceros los días sin actividad.
func (s *ActivityService) Trend(ctx context.Context, days int) ([]domain.DailyActivity, error) {
	if days < domain.MinTrendDays || days > domain.MaxTrendDays {
		return nil, domain.ErrInvalidTrendDays
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := today.AddDate(0, 0, -(days - 1))
	to := today.AddDate(0, 0, 1)

	rows, err := s.store.DailyTrend(ctx, from, to)
	if err != nil {
		return nil, err
	}

	byDay := make(map[time.Time]domain.DailyActivity, len(rows))
	for _, r := range rows {
		day := r.Day.UTC().Truncate(24 * time.Hour)
		acc := byDay[day]
		acc.Registrations += r.Registrations
		acc.Cancellations += r.Cancellations
		byDay[day] = acc
	}

	trend := make([]domain.DailyActivity, 0, days)
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		point := byDay[day]
		point.Day = day
		trend = append(trend, point)
	}
	return trend, nil
}
