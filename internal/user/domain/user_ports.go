package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidUser  = errors.New("invalid user")
)

// UserRepository guarda la réplica local del directorio de usuarios.
type UserRepository interface {
	// Upsert es idempotente: crea o sobrescribe por ID.
	Upsert(ctx context.Context, u *User) error

	// Debe devolver ErrUserNotFound si no existe.
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// Debe devolver ErrUserNotFound si no existe.
	DeleteByID(ctx context.Context, id uuid.UUID) error
}
