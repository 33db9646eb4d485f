package application

import (
	"context"
	"testing"
	"time"

	"github.com/davicafu/eventreg/internal/mocks"
	"github.com/davicafu/eventreg/internal/user/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService() (*UserService, *mocks.InMemoryUserRepo) {
	repo := mocks.NewInMemoryUserRepo()
	return NewUserService(repo, zap.NewNop()), repo
}

func TestUpsert_CreatesAndOverwrites(t *testing.T) {
	service, repo := newService()
	id := uuid.New()

	applied, err := service.Upsert(context.Background(), &domain.User{ID: id, Email: "ana@example.com", Name: "Ana"})
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = service.Upsert(context.Background(), &domain.User{ID: id, Email: "ana@new.com", Name: "Ana María"})
	require.NoError(t, err)
	assert.True(t, applied)

	u, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "ana@new.com", u.Email)
	assert.False(t, u.UpdatedAt.IsZero())
}

func TestUpsert_InvalidUser(t *testing.T) {
	service, repo := newService()

	_, err := service.Upsert(context.Background(), &domain.User{ID: uuid.New(), Name: "Sin email"})
	assert.ErrorIs(t, err, domain.ErrInvalidUser)
	assert.Empty(t, repo.Users)
}

func TestUpsert_IgnoresStaleUpdate(t *testing.T) {
	service, repo := newService()
	id := uuid.New()
	newer := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)

	_, err := service.Upsert(context.Background(), &domain.User{ID: id, Email: "new@example.com", Name: "Nuevo", UpdatedAt: newer})
	require.NoError(t, err)

	applied, err := service.Upsert(context.Background(), &domain.User{ID: id, Email: "old@example.com", Name: "Viejo", UpdatedAt: newer.Add(-time.Hour)})
	require.NoError(t, err)
	assert.False(t, applied)

	u, _ := repo.GetByID(context.Background(), id)
	assert.Equal(t, "new@example.com", u.Email)
}

func TestRemove(t *testing.T) {
	service, repo := newService()
	u := &domain.User{ID: uuid.New(), Email: "borrar@example.com", Name: "Borrar"}
	require.NoError(t, repo.Upsert(context.Background(), u))

	require.NoError(t, service.Remove(context.Background(), u.ID))

	_, err := repo.GetByID(context.Background(), u.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	assert.ErrorIs(t, service.Remove(context.Background(), u.ID), domain.ErrUserNotFound)
}
