package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	sharedBus "github.com/davicafu/eventreg/internal/shared/infra/platform/bus"
)

const (
	MinCapacity = 1
	MaxCapacity = 1000
)

// Event es inmutable una vez creado.
type Event struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Location string    `json:"location"`
	DateTime time.Time `json:"date_time"`
	Capacity int       `json:"capacity"`
}

func (e *Event) PartitionKey() string {
	return e.ID.String()
}

// IsUpcoming indica si el evento empieza estrictamente después de now.
func (e *Event) IsUpcoming(now time.Time) bool {
	return e.DateTime.After(now)
}

// HasPassed indica si la fecha del evento ya quedó atrás.
func (e *Event) HasPassed(now time.Time) bool {
	return e.DateTime.Before(now)
}

// NewEvent valida la entrada en este orden: capacidad, campos obligatorios,
// formato de fecha y fecha futura. Cada paso corta con su propio error.
func NewEvent(title, location, dateTime string, capacity *int, now time.Time) (*Event, error) {
	if capacity != nil && (*capacity < MinCapacity || *capacity > MaxCapacity) {
		return nil, ErrInvalidCapacity
	}

	title = strings.TrimSpace(title)
	location = strings.TrimSpace(location)
	dateTime = strings.TrimSpace(dateTime)
	if title == "" || location == "" || dateTime == "" || capacity == nil {
		return nil, ErrMissingFields
	}

	at, err := ParseDateTime(dateTime)
	if err != nil {
		return nil, ErrInvalidDateTime
	}
	if !at.After(now) {
		return nil, ErrEventNotInFuture
	}

	return &Event{
		ID:       uuid.New(),
		Title:    title,
		Location: location,
		DateTime: at,
		Capacity: *capacity,
	}, nil
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDateTime acepta RFC 3339; los formatos sin zona se interpretan en UTC y una
// fecha sola es la medianoche UTC de ese día.
func ParseDateTime(s string) (time.Time, error) {
	var err error
	for _, layout := range dateTimeLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}

// EventStats es la vista agregada de ocupación de un evento.
type EventStats struct {
	EventID             uuid.UUID `json:"event_id"`
	TotalRegistrations  int       `json:"total_registrations"`
	RemainingCapacity   int       `json:"remaining_capacity"`
	CapacityUsedPercent int       `json:"capacity_used_percent"`
}

func NewEventStats(eventID uuid.UUID, capacity, total int) *EventStats {
	return &EventStats{
		EventID:             eventID,
		TotalRegistrations:  total,
		RemainingCapacity:   capacity - total,
		CapacityUsedPercent: CapacityUsedPercent(total, capacity),
	}
}

// CapacityUsedPercent redondea 100*total/capacity con half-up usando aritmética entera.
func CapacityUsedPercent(total, capacity int) int {
	if capacity <= 0 {
		return 0
	}
	return (200*total + capacity) / (2 * capacity)
}

// RegisteredUser es la proyección de usuario que se expone en el detalle de un evento.
type RegisteredUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

type EventDetails struct {
	Event           *Event           `json:"event"`
	RegisteredUsers []RegisteredUser `json:"registered_users"`
}

var _ sharedBus.Keyer = (*Event)(nil)
