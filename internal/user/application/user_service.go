package application

import (
	"context"
	"errors"
	"time"

	"github.com/davicafu/eventreg/internal/user/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService mantiene la réplica local del directorio de usuarios.
type UserService struct {
	repo domain.UserRepository
	log  *zap.Logger
	now  func() time.Time
}

func NewUserService(repo domain.UserRepository, log *zap.Logger) *UserService {
	return &UserService{
		repo: repo,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Upsert crea o sobrescribe el usuario. Devuelve (false, nil) si la copia local
// es más reciente que la recibida y por tanto se descarta.
func (s *UserService) Upsert(ctx context.Context, u *domain.User) (bool, error) {
	if err := u.Validate(); err != nil {
		return false, err
	}

	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = s.now()
	} else {
		current, err := s.repo.GetByID(ctx, u.ID)
		switch {
		case err == nil && current.UpdatedAt.After(u.UpdatedAt):
			s.log.Debug("Stale user update ignored", zap.String("user_id", u.ID.String()))
			return false, nil
		case err != nil && !errors.Is(err, domain.ErrUserNotFound):
			return false, err
		}
	}

	if err := s.repo.Upsert(ctx, u); err != nil {
		return false, err
	}
	return true, nil
}

// Remove borra el usuario; sus inscripciones caen en cascada en el almacén.
func (s *UserService) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.log.Info("👤 User removed", zap.String("user_id", id.String()))
	return nil
}
