package domain

import (
	"context"
	"errors"
	"time"

	sharedDomain "github.com/davicafu/eventreg/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrEventInPast       = errors.New("cannot register for an event that has already taken place")
	ErrEventFull         = errors.New("event is full")
	ErrAlreadyRegistered = errors.New("user is already registered for this event")
	ErrNotRegistered     = errors.New("user is not registered for this event")
)

// IsConflictError agrupa los rechazos de admisión sobre entidades que sí existen.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrEventInPast) || errors.Is(err, ErrEventFull) || errors.Is(err, ErrAlreadyRegistered)
}

// Registration une un usuario con un evento. Como mucho una por par (user_id, event_id).
type Registration struct {
	UserID    uuid.UUID `json:"user_id"`
	EventID   uuid.UUID `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Registration) PartitionKey() string {
	return r.EventID.String()
}

// RegistrationRepository ejecuta la admisión completa de forma atómica en el almacén.
type RegistrationRepository interface {
	// Register comprueba, en este orden y dentro de una única transacción: que el usuario
	// existe (userDomain.ErrUserNotFound), que el evento existe (eventDomain.ErrEventNotFound),
	// que no ha pasado respecto a now (ErrEventInPast), que queda aforo (ErrEventFull) y que
	// el par no está ya inscrito (ErrAlreadyRegistered). Después inserta el registro y evt.
	Register(ctx context.Context, r *Registration, now time.Time, evt sharedDomain.OutboxEvent) error

	// Cancel borra el registro si existe; si no, devuelve ErrNotRegistered.
	Cancel(ctx context.Context, userID, eventID uuid.UUID, evt sharedDomain.OutboxEvent) error
}
