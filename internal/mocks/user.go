package mocks

import (
	"context"
	"sync"

	userDomain "github.com/davicafu/eventreg/internal/user/domain"
	"github.com/google/uuid"
)

// InMemoryUserRepo simula UserRepository.
type InMemoryUserRepo struct {
	Users map[uuid.UUID]*userDomain.User
	mu    sync.Mutex
}

func NewInMemoryUserRepo(users ...*userDomain.User) *InMemoryUserRepo {
	r := &InMemoryUserRepo{Users: make(map[uuid.UUID]*userDomain.User)}
	for _, u := range users {
		r.Users[u.ID] = u
	}
	return r
}

func (r *InMemoryUserRepo) Upsert(ctx context.Context, u *userDomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *u
	r.Users[u.ID] = &copied
	return nil
}

func (r *InMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[id]
	if !ok {
		return nil, userDomain.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *InMemoryUserRepo) DeleteByID(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Users[id]; !ok {
		return userDomain.ErrUserNotFound
	}
	delete(r.Users, id)
	return nil
}

var _ userDomain.UserRepository = (*InMemoryUserRepo)(nil)
