package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/davicafu/eventreg/internal/event/domain"
	"github.com/davicafu/eventreg/internal/mocks"
	regDomain "github.com/davicafu/eventreg/internal/registration/domain"
	sharedDomain "github.com/davicafu/eventreg/internal/shared/domain"
	userDomain "github.com/davicafu/eventreg/internal/user/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestService() (*EventService, *mocks.InMemoryEventRepo, *mocks.DummyCache) {
	repo := mocks.NewInMemoryEventRepo()
	cache := mocks.NewDummyCache()
	svc := NewEventService(repo, cache, time.Minute, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, cache
}

func intPtr(v int) *int { return &v }

func TestCreateEvent_Success(t *testing.T) {
	svc, repo, cache := newTestService()
	require.NoError(t, cache.Set(context.Background(), domain.UpcomingEventsCacheKey(domain.InitialUpcomingGeneration), []*domain.Event{}, 0))

	event, err := svc.CreateEvent(context.Background(), CreateEventInput{
		Title: "Launch", Location: "HQ", DateTime: "2030-06-01T10:00:00Z", Capacity: intPtr(2),
	})

	require.NoError(t, err)
	assert.Equal(t, "Launch", event.Title)
	assert.Equal(t, 2, event.Capacity)

	// Se escribe el evento de outbox en la misma operación
	require.Len(t, repo.Outbox, 1)
	assert.Equal(t, domain.EventCreated, repo.Outbox[0].EventType)
	assert.Equal(t, event.ID.String(), repo.Outbox[0].AggregateID)

	// El listado vacío cacheado antes del alta ya no se sirve
	events, err := svc.ListUpcomingEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.ID, events[0].ID)
}

func TestCreateEvent_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		in   CreateEventInput
		want error
	}{
		{"capacidad cero", CreateEventInput{Title: "A", Location: "B", DateTime: "2030-06-01T10:00:00Z", Capacity: intPtr(0)}, domain.ErrInvalidCapacity},
		{"capacidad 1001", CreateEventInput{Title: "A", Location: "B", DateTime: "2030-06-01T10:00:00Z", Capacity: intPtr(1001)}, domain.ErrInvalidCapacity},
		{"sin título", CreateEventInput{Location: "B", DateTime: "2030-06-01T10:00:00Z", Capacity: intPtr(5)}, domain.ErrMissingFields},
		{"sin capacidad", CreateEventInput{Title: "A", Location: "B", DateTime: "2030-06-01T10:00:00Z"}, domain.ErrMissingFields},
		{"fecha ilegible", CreateEventInput{Title: "A", Location: "B", DateTime: "mañana", Capacity: intPtr(5)}, domain.ErrInvalidDateTime},
		{"fecha pasada", CreateEventInput{Title: "A", Location: "B", DateTime: "2029-06-01T10:00:00Z", Capacity: intPtr(5)}, domain.ErrEventNotInFuture},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService()
			_, err := svc.CreateEvent(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, repo.Events)
			assert.Empty(t, repo.Outbox)
		})
	}
}

func TestGetEvent_CacheAside(t *testing.T) {
	svc, repo, cache := newTestService()
	e := &domain.Event{ID: uuid.New(), Title: "T", Location: "L", DateTime: fixedNow.Add(time.Hour), Capacity: 3}
	require.NoError(t, repo.Create(context.Background(), e, sharedDomain.OutboxEvent{}))

	got, err := svc.GetEvent(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)

	assert.Eventually(t, func() bool { return cache.Has(domain.EventCacheKeyByID(e.ID)) }, time.Second, 10*time.Millisecond)

	_, err = svc.GetEvent(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.Calls["GetByID"], "la segunda lectura sale de la caché")
}

func TestGetEvent_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.GetEvent(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestListUpcomingEvents_OrderAndEmpty(t *testing.T) {
	svc, repo, _ := newTestService()

	events, err := svc.ListUpcomingEvents(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)

	at := fixedNow.Add(24 * time.Hour)
	for _, e := range []*domain.Event{
		{ID: uuid.New(), Title: "b", Location: "Zaragoza", DateTime: at, Capacity: 1},
		{ID: uuid.New(), Title: "a", Location: "Madrid", DateTime: at, Capacity: 1},
		{ID: uuid.New(), Title: "c", Location: "Bilbao", DateTime: at.Add(time.Hour), Capacity: 1},
		{ID: uuid.New(), Title: "old", Location: "Avila", DateTime: fixedNow.Add(-time.Hour), Capacity: 1},
	} {
		require.NoError(t, repo.Create(context.Background(), e, sharedDomain.OutboxEvent{}))
	}
	// Se salta la caché del listado vacío anterior
	svc.cache = mocks.NewDummyCache()

	events, err = svc.ListUpcomingEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "Madrid", events[0].Location)
	assert.Equal(t, "Zaragoza", events[1].Location)
	assert.Equal(t, "Bilbao", events[2].Location)
}

func TestListUpcomingEvents_CachedListIsRefiltered(t *testing.T) {
	svc, repo, cache := newTestService()

	soon := &domain.Event{ID: uuid.New(), Title: "soon", Location: "A", DateTime: fixedNow.Add(time.Minute), Capacity: 1}
	later := &domain.Event{ID: uuid.New(), Title: "later", Location: "B", DateTime: fixedNow.Add(time.Hour), Capacity: 1}
	require.NoError(t, cache.Set(context.Background(), domain.UpcomingEventsCacheKey(domain.InitialUpcomingGeneration), []*domain.Event{soon, later}, 0))

	svc.now = func() time.Time { return fixedNow.Add(2 * time.Minute) }

	events, err := svc.ListUpcomingEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, later.ID, events[0].ID)
	assert.Zero(t, repo.Calls["ListUpcoming"])
}

func TestGetEventStats(t *testing.T) {
	users := mocks.NewInMemoryUserRepo()
	svc, repo, _ := newTestService()
	regs := mocks.NewInMemoryRegistrationRepo(users, repo)

	e := &domain.Event{ID: uuid.New(), Title: "T", Location: "L", DateTime: fixedNow.Add(time.Hour), Capacity: 3}
	require.NoError(t, repo.Create(context.Background(), e, sharedDomain.OutboxEvent{}))

	stats, err := svc.GetEventStats(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalRegistrations)
	assert.Equal(t, 3, stats.RemainingCapacity)
	assert.Equal(t, 0, stats.CapacityUsedPercent)

	u := &userDomain.User{ID: uuid.New(), Email: "ana@example.com", Name: "Ana"}
	require.NoError(t, users.Upsert(context.Background(), u))
	reg := &regDomain.Registration{UserID: u.ID, EventID: e.ID, CreatedAt: fixedNow}
	require.NoError(t, regs.Register(context.Background(), reg, fixedNow, sharedDomain.OutboxEvent{}))

	stats, err = svc.GetEventStats(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalRegistrations)
	assert.Equal(t, 2, stats.RemainingCapacity)
	assert.Equal(t, 33, stats.CapacityUsedPercent)

	_, err = svc.GetEventStats(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestGetEventDetails(t *testing.T) {
	svc, repo, _ := newTestService()
	e := &domain.Event{ID: uuid.New(), Title: "T", Location: "L", DateTime: fixedNow.Add(time.Hour), Capacity: 3}
	require.NoError(t, repo.Create(context.Background(), e, sharedDomain.OutboxEvent{}))

	details, err := svc.GetEventDetails(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, details.Event.ID)
	assert.NotNil(t, details.RegisteredUsers)
	assert.Empty(t, details.RegisteredUsers)

	_, err = svc.GetEventDetails(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

type nilDetailsRepo struct{ *mocks.InMemoryEventRepo }

func (nilDetailsRepo) GetDetails(ctx context.Context, id uuid.UUID) (*domain.EventDetails, error) {
	return &domain.EventDetails{}, nil
}

func TestGetEventDetails_MissingEventIsNotFound(t *testing.T) {
	svc := NewEventService(nilDetailsRepo{mocks.NewInMemoryEventRepo()}, nil, time.Minute, zap.NewNop())
	_, err := svc.GetEventDetails(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

type failingRepo struct{ *mocks.InMemoryEventRepo }

func (failingRepo) ListUpcoming(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	return nil, errors.New("db down")
}

func TestListUpcomingEvents_StoreError(t *testing.T) {
	svc := NewEventService(failingRepo{mocks.NewInMemoryEventRepo()}, nil, time.Minute, zap.NewNop())
	_, err := svc.ListUpcomingEvents(context.Background())
	assert.EqualError(t, err, "db down")
}

// slowListRepo toma la foto del almacén y espera a que se le libere antes de
// devolverla, como una lectura que se solapa con un alta.
type slowListRepo struct {
	*mocks.InMemoryEventRepo
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (r *slowListRepo) ListUpcoming(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	events, err := r.InMemoryEventRepo.ListUpcoming(ctx, now)
	r.once.Do(func() {
		close(r.entered)
		<-r.release
	})
	return events, err
}

func TestListUpcomingEvents_ConcurrentCreateIsNotHidden(t *testing.T) {
	repo := &slowListRepo{
		InMemoryEventRepo: mocks.NewInMemoryEventRepo(),
		entered:           make(chan struct{}),
		release:           make(chan struct{}),
	}
	cache := mocks.NewDummyCache()
	svc := NewEventService(repo, cache, time.Minute, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }

	done := make(chan []*domain.Event)
	go func() {
		events, _ := svc.ListUpcomingEvents(context.Background())
		done <- events
	}()
	<-repo.entered

	created, err := svc.CreateEvent(context.Background(), CreateEventInput{
		Title: "Launch", Location: "HQ", DateTime: "2030-06-01T10:00:00Z", Capacity: intPtr(10),
	})
	require.NoError(t, err)

	close(repo.release)
	assert.Empty(t, <-done)

	// El listado viejo acaba en la caché, pero bajo la generación anterior
	staleKey := domain.UpcomingEventsCacheKey(domain.InitialUpcomingGeneration)
	assert.Eventually(t, func() bool { return cache.Has(staleKey) }, time.Second, 10*time.Millisecond)

	events, err := svc.ListUpcomingEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, created.ID, events[0].ID)
}

func TestListUpcomingEvents_SecondReadIsCached(t *testing.T) {
	svc, repo, cache := newTestService()

	_, err := svc.ListUpcomingEvents(context.Background())
	require.NoError(t, err)
	key := domain.UpcomingEventsCacheKey(domain.InitialUpcomingGeneration)
	assert.Eventually(t, func() bool { return cache.Has(key) }, time.Second, 10*time.Millisecond)

	_, err = svc.ListUpcomingEvents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.Calls["ListUpcoming"])
}
