package mocks

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	eventDomain "github.com/davicafu/eventreg/internal/event/domain"
	regDomain "github.com/davicafu/eventreg/internal/registration/domain"
	sharedDomain "github.com/davicafu/eventreg/internal/shared/domain"
	userDomain "github.com/davicafu/eventreg/internal/user/domain"
	"github.com/google/uuid"
)

type registrationKey struct {
	userID  uuid.UUID
	eventID uuid.UUID
}

// InMemoryRegistrationRepo reproduce la admisión atómica del almacén con un mutex.
type InMemoryRegistrationRepo struct {
	users         *InMemoryUserRepo
	events        *InMemoryEventRepo
	Registrations map[registrationKey]*regDomain.Registration
	Outbox        []sharedDomain.OutboxEvent
	// Err, si no es nil, se devuelve en cualquier operación (fallo de almacén).
	Err error
	mu  sync.Mutex
}

func NewInMemoryRegistrationRepo(users *InMemoryUserRepo, events *InMemoryEventRepo) *InMemoryRegistrationRepo {
	r := &InMemoryRegistrationRepo{
		users:         users,
		events:        events,
		Registrations: make(map[registrationKey]*regDomain.Registration),
	}
	events.Registrants = r
	return r
}

func (r *InMemoryRegistrationRepo) Register(ctx context.Context, reg *regDomain.Registration, now time.Time, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	if _, err := r.users.GetByID(ctx, reg.UserID); err != nil {
		return err
	}
	e, err := r.events.GetByID(ctx, reg.EventID)
	if err != nil {
		return err
	}
	if e.HasPassed(now) {
		return regDomain.ErrEventInPast
	}
	if r.countLocked(reg.EventID) >= e.Capacity {
		return regDomain.ErrEventFull
	}
	key := registrationKey{userID: reg.UserID, eventID: reg.EventID}
	if _, ok := r.Registrations[key]; ok {
		return regDomain.ErrAlreadyRegistered
	}

	copied := *reg
	r.Registrations[key] = &copied
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryRegistrationRepo) Cancel(ctx context.Context, userID, eventID uuid.UUID, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	key := registrationKey{userID: userID, eventID: eventID}
	if _, ok := r.Registrations[key]; !ok {
		return regDomain.ErrNotRegistered
	}
	delete(r.Registrations, key)
	r.Outbox = append(r.Outbox, evt)
	return nil
}

// RegisteredUsers implementa RegistrantSource, ordenado por fecha de alta.
func (r *InMemoryRegistrationRepo) RegisteredUsers(eventID uuid.UUID) []eventDomain.RegisteredUser {
	r.mu.Lock()
	var regs []*regDomain.Registration
	for key, reg := range r.Registrations {
		if key.eventID == eventID {
			regs = append(regs, reg)
		}
	}
	r.mu.Unlock()

	sort.Slice(regs, func(i, j int) bool { return regs[i].CreatedAt.Before(regs[j].CreatedAt) })

	out := []eventDomain.RegisteredUser{}
	for _, reg := range regs {
		u, err := r.users.GetByID(context.Background(), reg.UserID)
		if errors.Is(err, userDomain.ErrUserNotFound) {
			continue
		}
		out = append(out, eventDomain.RegisteredUser{ID: u.ID, Email: u.Email, Name: u.Name})
	}
	return out
}

func (r *InMemoryRegistrationRepo) countLocked(eventID uuid.UUID) int {
	n := 0
	for key := range r.Registrations {
		if key.eventID == eventID {
			n++
		}
	}
	return n
}

var _ regDomain.RegistrationRepository = (*InMemoryRegistrationRepo)(nil)
