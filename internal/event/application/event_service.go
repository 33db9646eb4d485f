package application

import (
	"context"
	"time"

	"github.com/davicafu/eventreg/internal/event/domain"
	sharedDomain "github.com/davicafu/eventreg/internal/shared/domain"
	sharedCache "github.com/davicafu/eventreg/internal/shared/infra/platform/cache"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateEventInput llega tal cual del cliente; la validación la hace domain.NewEvent.
type CreateEventInput struct {
	Title    string
	Location string
	DateTime string
	Capacity *int
}

const generationMinTTL = 24 * 60 * 60

// EventService define los casos de uso de lectura y alta de eventos.
type EventService struct {
	repo     domain.EventRepository
	cache    sharedCache.Cache
	cacheTTL int
	log      *zap.Logger
	now      func() time.Time
}

func NewEventService(repo domain.EventRepository, cache sharedCache.Cache, cacheTTL time.Duration, log *zap.Logger) *EventService {
	return &EventService{
		repo:     repo,
		cache:    cache,
		cacheTTL: sharedCache.TTLSeconds(cacheTTL),
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (*domain.Event, error) {
	event, err := domain.NewEvent(in.Title, in.Location, in.DateTime, in.Capacity, s.now())
	if err != nil {
		return nil, err
	}

	evt := sharedDomain.NewOutboxEvent("event", event.ID.String(), domain.EventCreated, event)
	if err := s.repo.Create(ctx, event, evt); err != nil {
		return nil, err
	}

	// El listado cacheado ya no incluye el evento nuevo
	s.bumpUpcomingGeneration(ctx)
	sharedCache.AsyncCacheSet(s.cache, domain.EventCacheKeyByID(event.ID), event, s.cacheTTL, s.log)

	s.log.Info("📅 Event created", zap.String("event_id", event.ID.String()), zap.Int("capacity", event.Capacity))
	return event, nil
}

// GetEvent obtiene un evento (primero intenta desde cache). Los eventos no cambian
// tras crearse, así que la copia cacheada nunca queda obsoleta.
func (s *EventService) GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	if s.cache != nil {
		var e domain.Event
		if ok, _ := s.cache.Get(ctx, domain.EventCacheKeyByID(id), &e); ok {
			return &e, nil
		}
	}

	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	sharedCache.AsyncCacheSet(s.cache, domain.EventCacheKeyByID(id), event, s.cacheTTL, s.log)
	return event, nil
}

// ListUpcomingEvents devuelve los eventos futuros. La copia cacheada se vuelve a
// filtrar con la hora actual para no servir eventos que ya empezaron.
func (s *EventService) ListUpcomingEvents(ctx context.Context) ([]*domain.Event, error) {
	now := s.now()

	// La generación se lee antes que el almacén: si un alta entra en medio, el
	// listado se guarda bajo la generación anterior y no se vuelve a servir.
	generation, cacheable := s.upcomingGeneration(ctx)
	if cacheable {
		var cached []*domain.Event
		if ok, _ := s.cache.Get(ctx, domain.UpcomingEventsCacheKey(generation), &cached); ok {
			return filterUpcoming(cached, now), nil
		}
	}

	events, err := s.repo.ListUpcoming(ctx, now)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []*domain.Event{}
	}

	if cacheable {
		sharedCache.AsyncCacheSet(s.cache, domain.UpcomingEventsCacheKey(generation), events, s.cacheTTL, s.log)
	}
	return events, nil
}

// upcomingGeneration devuelve false si no hay caché o no se puede leer.
func (s *EventService) upcomingGeneration(ctx context.Context) (string, bool) {
	if s.cache == nil {
		return "", false
	}

	var generation string
	ok, err := s.cache.Get(ctx, domain.UpcomingEventsGenerationKey, &generation)
	if err != nil {
		s.log.Warn("Cache read failed", zap.String("key", domain.UpcomingEventsGenerationKey), zap.Error(err))
		return "", false
	}
	if !ok {
		generation = domain.InitialUpcomingGeneration
	}
	return generation, true
}

func (s *EventService) bumpUpcomingGeneration(ctx context.Context) {
	if s.cache == nil {
		return
	}
	// Debe sobrevivir a los listados guardados con la generación anterior
	ttl := max(2*s.cacheTTL, generationMinTTL)
	if err := s.cache.Set(ctx, domain.UpcomingEventsGenerationKey, uuid.NewString(), ttl); err != nil {
		s.log.Warn("Cache update failed", zap.String("key", domain.UpcomingEventsGenerationKey), zap.Error(err))
	}
}

// GetEventStats no se cachea: cambia con cada registro.
func (s *EventService) GetEventStats(ctx context.Context, id uuid.UUID) (*domain.EventStats, error) {
	return s.repo.GetStats(ctx, id)
}

func (s *EventService) GetEventDetails(ctx context.Context, id uuid.UUID) (*domain.EventDetails, error) {
	details, err := s.repo.GetDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if details == nil || details.Event == nil {
		return nil, domain.ErrEventNotFound
	}
	if details.RegisteredUsers == nil {
		details.RegisteredUsers = []domain.RegisteredUser{}
	}
	return details, nil
}

func filterUpcoming(events []*domain.Event, now time.Time) []*domain.Event {
	out := make([]*domain.Event, 0, len(events))
	for _, e := range events {
		if e.IsUpcoming(now) {
			out = append(out, e)
		}
	}
	return out
}
