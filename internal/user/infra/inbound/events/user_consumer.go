package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	sharedEvents "github.com/davicafu/eventreg/internal/shared/domain/events"
	sharedUtils "github.com/davicafu/eventreg/internal/shared/infra/utils"
	userDomain "github.com/davicafu/eventreg/internal/user/domain"
)

const handleTimeout = 500 * time.Millisecond

type UserService interface {
	Upsert(ctx context.Context, u *userDomain.User) (bool, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

// UserConsumer replica en local los cambios del servicio de usuarios.
type UserConsumer struct {
	service UserService
	log     *zap.Logger
}

func NewUserConsumer(service UserService, logger *zap.Logger) *UserConsumer {
	return &UserConsumer{
		service: service,
		log:     logger,
	}
}

func (c *UserConsumer) HandleMessage(ctx context.Context, key string, payload []byte) {
	var base sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &base); err != nil {
		c.log.Warn("Failed to unmarshal integration event", zap.String("key", key), zap.Error(err))
		return
	}

	switch base.Type {
	case userDomain.UserCreated, userDomain.UserUpdated:
		// Los dos son un upsert: así un created repetido o un updated sin created previo no fallan
		sharedUtils.UnmarshalAndHandle[sharedEvents.UserChanged](c.log, base.Data, func(evt sharedEvents.UserChanged) {
			c.withContext(ctx, evt.ID, func(ctxUser context.Context) error {
				applied, err := c.service.Upsert(ctxUser, &userDomain.User{
					ID:        evt.ID,
					Email:     evt.Email,
					Name:      evt.Name,
					UpdatedAt: evt.UpdatedAt,
				})
				if err == nil && !applied {
					c.log.Info("Evento de usuario antiguo ignorado", zap.String("user_id", evt.ID.String()))
				}
				return err
			}, "User synced via event", base.Type)
		})

	case userDomain.UserDeleted:
		sharedUtils.UnmarshalAndHandle[sharedEvents.UserDeleted](c.log, base.Data, func(evt sharedEvents.UserDeleted) {
			c.withContext(ctx, evt.ID, func(ctxUser context.Context) error {
				err := c.service.Remove(ctxUser, evt.ID)
				if errors.Is(err, userDomain.ErrUserNotFound) {
					// Ya borrado: el evento llega duplicado
					return nil
				}
				return err
			}, "User removed via event", base.Type)
		})

	default:
		c.log.Warn("Unknown event type", zap.String("type", base.Type))
	}
}

// Helper para ejecutar acción con contexto limitado y log
func (c *UserConsumer) withContext(ctx context.Context, id uuid.UUID, action func(ctx context.Context) error, successMsg, eventType string) {
	ctxUser, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	if err := action(ctxUser); err != nil {
		c.log.Warn("Failed to process user event",
			zap.String("user_id", id.String()),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	c.log.Info(successMsg, zap.String("user_id", id.String()), zap.String("event_type", eventType))
}
