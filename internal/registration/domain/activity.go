package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type ActivityKind string

const (
	ActivityRegistered ActivityKind = "registered"
	ActivityCancelled  ActivityKind = "cancelled"
)

// ActivityKindFor traduce un tipo de evento de integración a su actividad.
func ActivityKindFor(eventType string) (ActivityKind, bool) {
	switch eventType {
	case RegistrationCreated:
		return ActivityRegistered, true
	case RegistrationCancelled:
		return ActivityCancelled, true
	default:
		return "", false
	}
}

// Activity es una entrada del histórico analítico de altas y bajas.
type Activity struct {
	Kind       ActivityKind
	EventID    uuid.UUID
	UserID     uuid.UUID
	OccurredAt time.Time
}

// DailyActivity agrega las actividades de un día (UTC).
type DailyActivity struct {
	Day           time.Time `json:"day"`
	Registrations int       `json:"registrations"`
	Cancellations int       `json:"cancellations"`
}

// ActivityLog es el almacén analítico (ClickHouse, MongoDB o memoria).
type ActivityLog interface {
	Record(ctx context.Context, activities []Activity) error

	// DailyTrend devuelve un DailyActivity por día con actividad en [from, to), ordenado por día.
	DailyTrend(ctx context.Context, from, to time.Time) ([]DailyActivity, error)
}

const (
	MinTrendDays     = 1
	MaxTrendDays     = 90
	DefaultTrendDays = 7
)

var ErrInvalidTrendDays = errors.New("days must be between 1 and 90")
