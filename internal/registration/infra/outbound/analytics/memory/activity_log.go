package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/davicafu/eventreg/internal/registration/domain"
)

// ActivityLog guarda la actividad en memoria. Es el backend por defecto y se pierde al reiniciar.
type ActivityLog struct {
	mu         sync.RWMutex
	activities []domain.Activity
}

func NewActivityLog() *ActivityLog {
	return &ActivityLog{}
}

func (l *ActivityLog) Record(ctx context.Context, activities []domain.Activity) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.activities = append(l.activities, activities...)
	return nil
}

func (l *ActivityLog) DailyTrend(ctx context.Context, from, to time.Time) ([]domain.DailyActivity, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	byDay := make(map[time.Time]*domain.DailyActivity)
	for _, a := range l.activities {
		at := a.OccurredAt.UTC()
		if at.Before(from) || !at.Before(to) {
			continue
		}
		day := at.Truncate(24 * time.Hour)
		acc, ok := byDay[day]
		if !ok {
			acc = &domain.DailyActivity{Day: day}
			byDay[day] = acc
		}
		switch a.Kind {
		case domain.ActivityRegistered:
			acc.Registrations++
		case domain.ActivityCancelled:
			acc.Cancellations++
		}
	}

	trend := make([]domain.DailyActivity, 0, len(byDay))
	for _, acc := range byDay {
		trend = append(trend, *acc)
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Day.Before(trend[j].Day) })
	return trend, nil
}

var _ domain.ActivityLog = (*ActivityLog)(nil)
