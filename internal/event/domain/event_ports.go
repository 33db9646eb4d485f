package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	sharedDomain "github.com/davicafu/eventreg/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrInvalidCapacity  = errors.New("capacity must be between 1 and 1000")
	ErrMissingFields    = errors.New("title, location, date_time and capacity are required")
	ErrInvalidDateTime  = errors.New("invalid date_time format")
	ErrEventNotInFuture = errors.New("event date_time must be in the future")
	ErrEventNotFound    = errors.New("event not found")
)

// IsValidationError agrupa los errores que se detectan antes de tocar el almacén.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidCapacity) ||
		errors.Is(err, ErrMissingFields) ||
		errors.Is(err, ErrInvalidDateTime) ||
		errors.Is(err, ErrEventNotInFuture)
}

// EventRepository define el acceso persistente a eventos y a sus vistas de lectura.
type EventRepository interface {
	// Create guarda el evento y su fila de outbox en la misma transacción.
	Create(ctx context.Context, e *Event, evt sharedDomain.OutboxEvent) error

	// Debe devolver ErrEventNotFound si no existe.
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)

	// ListUpcoming devuelve los eventos con date_time > now ordenados por date_time y location.
	ListUpcoming(ctx context.Context, now time.Time) ([]*Event, error)

	// GetStats cuenta registros y capacidad en una sola lectura.
	GetStats(ctx context.Context, id uuid.UUID) (*EventStats, error)

	// GetDetails lee el evento y sus usuarios inscritos en una misma transacción de lectura.
	GetDetails(ctx context.Context, id uuid.UUID) (*EventDetails, error)
}

func EventCacheKeyByID(id uuid.UUID) string {
	return fmt.Sprintf("event:id:%s", id.String())
}

// UpcomingEventsGenerationKey guarda la generación vigente del listado de próximos
// eventos. Cada alta la cambia, así que un listado leído antes del alta queda
// guardado bajo una key que ya nadie consulta.
const UpcomingEventsGenerationKey = "events:upcoming:gen"

// InitialUpcomingGeneration se usa mientras no se ha creado ningún evento.
const InitialUpcomingGeneration = "0"

func UpcomingEventsCacheKey(generation string) string {
	return fmt.Sprintf("events:upcoming:%s", generation)
}
