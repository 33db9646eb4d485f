package relayer

import (
	"context"
	"encoding/json"
	"reflect"
	"time"

	sharedDomain "github.com/davicafu/eventreg/internal/shared/domain"
	sharedEvents "github.com/davicafu/eventreg/internal/shared/domain/events"
	sharedBus "github.com/davicafu/eventreg/internal/shared/infra/platform/bus"
	"go.uber.org/zap"
)

// Worker publica las filas pendientes del outbox en el bus.
type Worker struct {
	repo          sharedDomain.OutboxRepository
	publisher     sharedBus.EventBus
	eventRegistry sharedEvents.Registry
	interval      time.Duration
	batchSize     int
	log           *zap.Logger
}

func NewOutboxWorker(
	repo sharedDomain.OutboxRepository,
	publisher sharedBus.EventBus,
	registry sharedEvents.Registry,
	interval time.Duration,
	batchSize int,
	log *zap.Logger,
) *Worker {
	return &Worker{
		repo:          repo,
		publisher:     publisher,
		eventRegistry: registry,
		interval:      interval,
		batchSize:     batchSize,
		log:           log,
	}
}

// Start bloquea hasta que ctx se cancela.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("🚀 Outbox worker started", zap.Duration("interval", w.interval), zap.Int("batch_size", w.batchSize))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("🛑 Outbox worker stopped")
			return
		case <-ticker.C:
			w.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch devuelve cuántos eventos se publicaron y marcaron.
func (w *Worker) ProcessBatch(ctx context.Context) int {
	events, err := w.repo.FetchPendingOutbox(ctx, w.batchSize)
	if err != nil {
		w.log.Warn("⚠️ Failed to fetch pending outbox events", zap.Error(err))
		return 0
	}
	if len(events) > 0 {
		w.log.Debug("📬 Pending outbox events", zap.Int("count", len(events)))
	}

	published := 0
	for _, evt := range events {
		if w.publishAndMark(ctx, evt) {
			published++
		}
	}
	return published
}

func (w *Worker) publishAndMark(ctx context.Context, evt sharedDomain.OutboxEvent) bool {
	metadata, ok := w.eventRegistry[evt.EventType]
	if !ok {
		// Se deja pendiente: un despliegue con el registro completo lo publicará.
		w.log.Error("Unknown event type in outbox", zap.String("event_type", evt.EventType), zap.String("event_id", evt.ID.String()))
		return false
	}

	integration, err := toIntegrationEvent(evt, metadata.Type)
	if err != nil {
		w.log.Error("Failed to decode outbox payload", zap.String("event_id", evt.ID.String()), zap.Error(err))
		return false
	}

	if err := w.publisher.Publish(ctx, metadata.Topic, integration); err != nil {
		w.log.Warn("⚠️ Failed to publish outbox event",
			zap.String("event_id", evt.ID.String()),
			zap.String("topic", metadata.Topic),
			zap.Error(err),
		)
		return false // queda pendiente para el siguiente tick
	}

	if err := w.repo.MarkOutboxProcessed(ctx, evt.ID); err != nil {
		w.log.Warn("⚠️ Failed to mark outbox event as processed", zap.String("event_id", evt.ID.String()), zap.Error(err))
		return false
	}

	w.log.Debug("✅ Outbox event published", zap.String("event_id", evt.ID.String()), zap.String("event_type", evt.EventType))
	return true
}

// toIntegrationEvent valida el payload contra el tipo registrado antes de ponerlo en el sobre.
func toIntegrationEvent(evt sharedDomain.OutboxEvent, payloadType reflect.Type) (sharedEvents.IntegrationEvent, error) {
	raw, err := json.Marshal(evt.Payload)
	if err != nil {
		return sharedEvents.IntegrationEvent{}, err
	}

	typed := reflect.New(payloadType).Interface()
	if err := json.Unmarshal(raw, typed); err != nil {
		return sharedEvents.IntegrationEvent{}, err
	}

	data, err := json.Marshal(typed)
	if err != nil {
		return sharedEvents.IntegrationEvent{}, err
	}

	return sharedEvents.IntegrationEvent{
		Type:      evt.EventType,
		Key:       evt.AggregateID,
		Timestamp: evt.CreatedAt,
		Data:      data,
	}, nil
}
