package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	userDomain "github.com/davicafu/eventreg/internal/user/domain"
)

// Upserter es la parte del servicio de usuarios que necesita la carga inicial.
type Upserter interface {
	Upsert(ctx context.Context, u *userDomain.User) (bool, error)
}

// JSONUserSeed lee el directorio inicial de usuarios de un fichero JSON
// con la forma [{"id": "...", "email": "...", "name": "..."}].
type JSONUserSeed struct {
	filePath string
}

func NewJSONUserSeed(filePath string) *JSONUserSeed {
	return &JSONUserSeed{filePath: filePath}
}

func (s *JSONUserSeed) Load(ctx context.Context) ([]*userDomain.User, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return nil, err
	}

	var users []*userDomain.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("invalid users seed file %s: %w", s.filePath, err)
	}
	for i, u := range users {
		if u == nil {
			return nil, fmt.Errorf("users seed entry %d: %w", i, userDomain.ErrInvalidUser)
		}
		if err := u.Validate(); err != nil {
			return nil, fmt.Errorf("users seed entry %d: %w", i, err)
		}
	}
	return users, nil
}

// Apply carga el fichero y hace upsert de cada usuario. Devuelve cuántos se aplicaron.
func (s *JSONUserSeed) Apply(ctx context.Context, target Upserter) (int, error) {
	users, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, u := range users {
		ok, err := target.Upsert(ctx, u)
		if err != nil {
			return applied, fmt.Errorf("failed to seed user %s: %w", u.ID, err)
		}
		if ok {
			applied++
		}
	}
	return applied, nil
}
