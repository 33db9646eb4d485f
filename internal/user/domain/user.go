package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User es dato de referencia: lo gestiona otro servicio y aquí solo se replica.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) Validate() error {
	if u.ID == uuid.Nil || strings.TrimSpace(u.Email) == "" || strings.TrimSpace(u.Name) == "" {
		return ErrInvalidUser
	}
	return nil
}
