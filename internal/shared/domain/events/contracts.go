package events

import (
	"time"

	"github.com/google/uuid"
)

// Contratos de integración, NO entidades del dominio: se definen planos para
// el intercambio entre contextos y servicios externos.

// UserChanged llega desde el servicio de usuarios en user.created y user.updated.
// UpdatedAt es opcional; si llega, permite descartar actualizaciones desordenadas.
type UserChanged struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type UserDeleted struct {
	ID uuid.UUID `json:"id"`
}

// RegistrationChanged se publica en registration.created y registration.cancelled.
type RegistrationChanged struct {
	UserID  uuid.UUID `json:"user_id"`
	EventID uuid.UUID `json:"event_id"`
	At      time.Time `json:"at"`
}
