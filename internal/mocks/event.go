package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	eventDomain "github.com/davicafu/eventreg/internal/event/domain"
	sharedDomain "github.com/davicafu/eventreg/internal/shared/domain"
	"github.com/google/uuid"
)

// RegistrantSource da al repo de eventos la lista de inscritos sin acoplarlo al de registros.
type RegistrantSource interface {
	RegisteredUsers(eventID uuid.UUID) []eventDomain.RegisteredUser
}

// InMemoryEventRepo simula EventRepository con outbox incluido.
type InMemoryEventRepo struct {
	Events      map[uuid.UUID]*eventDomain.Event
	Outbox      []sharedDomain.OutboxEvent
	Registrants RegistrantSource
	// Calls cuenta las lecturas que llegan al repo, para comprobar la caché.
	Calls map[string]int
	mu    sync.Mutex
}

func NewInMemoryEventRepo() *InMemoryEventRepo {
	return &InMemoryEventRepo{
		Events: make(map[uuid.UUID]*eventDomain.Event),
		Calls:  make(map[string]int),
	}
}

func (r *InMemoryEventRepo) Create(ctx context.Context, e *eventDomain.Event, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *e
	r.Events[e.ID] = &copied
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryEventRepo) GetByID(ctx context.Context, id uuid.UUID) (*eventDomain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["GetByID"]++
	e, ok := r.Events[id]
	if !ok {
		return nil, eventDomain.ErrEventNotFound
	}
	copied := *e
	return &copied, nil
}

func (r *InMemoryEventRepo) ListUpcoming(ctx context.Context, now time.Time) ([]*eventDomain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["ListUpcoming"]++

	list := []*eventDomain.Event{}
	for _, e := range r.Events {
		if e.IsUpcoming(now) {
			copied := *e
			list = append(list, &copied)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].DateTime.Equal(list[j].DateTime) {
			return list[i].DateTime.Before(list[j].DateTime)
		}
		return list[i].Location < list[j].Location
	})
	return list, nil
}

func (r *InMemoryEventRepo) GetStats(ctx context.Context, id uuid.UUID) (*eventDomain.EventStats, error) {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return eventDomain.NewEventStats(e.ID, e.Capacity, len(r.registrants(id))), nil
}

func (r *InMemoryEventRepo) GetDetails(ctx context.Context, id uuid.UUID) (*eventDomain.EventDetails, error) {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &eventDomain.EventDetails{Event: e, RegisteredUsers: r.registrants(id)}, nil
}

func (r *InMemoryEventRepo) registrants(id uuid.UUID) []eventDomain.RegisteredUser {
	if r.Registrants == nil {
		return []eventDomain.RegisteredUser{}
	}
	return r.Registrants.RegisteredUsers(id)
}

var _ eventDomain.EventRepository = (*InMemoryEventRepo)(nil)
