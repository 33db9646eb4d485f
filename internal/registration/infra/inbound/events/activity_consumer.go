package events

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	regDomain "github.com/davicafu/eventreg/internal/registration/domain"
	sharedEvents "github.com/davicafu/eventreg/internal/shared/domain/events"
	sharedUtils "github.com/davicafu/eventreg/internal/shared/infra/utils"
)

const recordTimeout = 2 * time.Second

type ActivityRecorder interface {
	Record(ctx context.Context, eventType string, data sharedEvents.RegistrationChanged) error
}

// ActivityConsumer lleva cada alta o baja publicada al almacén analítico.
type ActivityConsumer struct {
	recorder ActivityRecorder
	log      *zap.Logger
}

func NewActivityConsumer(recorder ActivityRecorder, logger *zap.Logger) *ActivityConsumer {
	return &ActivityConsumer{recorder: recorder, log: logger}
}

func (c *ActivityConsumer) HandleMessage(ctx context.Context, key string, payload []byte) {
	var base sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &base); err != nil {
		c.log.Warn("Failed to unmarshal integration event", zap.String("key", key), zap.Error(err))
		return
	}

	switch base.Type {
	case regDomain.RegistrationCreated, regDomain.RegistrationCancelled:
		sharedUtils.UnmarshalAndHandle[sharedEvents.RegistrationChanged](c.log, base.Data, func(evt sharedEvents.RegistrationChanged) {
			ctxRecord, cancel := context.WithTimeout(ctx, recordTimeout)
			defer cancel()

			if err := c.recorder.Record(ctxRecord, base.Type, evt); err != nil {
				c.log.Warn("Failed to record registration activity",
					zap.String("event_id", evt.EventID.String()),
					zap.String("event_type", base.Type),
					zap.Error(err),
				)
				return
			}
			c.log.Debug("📊 Registration activity recorded", zap.String("event_id", evt.EventID.String()), zap.String("event_type", base.Type))
		})

	default:
		c.log.Warn("Unknown event type", zap.String("type", base.Type))
	}
}
