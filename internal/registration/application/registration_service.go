package application

import (
	"context"
	"time"

	"github.com/davicafu/eventreg/internal/registration/domain"
	sharedDomain "github.com/davicafu/eventreg/internal/shared/domain"
	sharedEvents "github.com/davicafu/eventreg/internal/shared/domain/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const registrationAggregate = "registration"

// RegistrationService define los casos de uso de inscripción y cancelación.
// Las comprobaciones de admisión viven en el repositorio porque tienen que
// ejecutarse en la misma transacción que la escritura.
type RegistrationService struct {
	repo domain.RegistrationRepository
	log  *zap.Logger
	now  func() time.Time
}

func NewRegistrationService(repo domain.RegistrationRepository, log *zap.Logger) *RegistrationService {
	return &RegistrationService{
		repo: repo,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *RegistrationService) Register(ctx context.Context, userID, eventID uuid.UUID) (*domain.Registration, error) {
	now := s.now()
	reg := &domain.Registration{UserID: userID, EventID: eventID, CreatedAt: now}

	evt := sharedDomain.NewOutboxEvent(registrationAggregate, eventID.String(), domain.RegistrationCreated,
		sharedEvents.RegistrationChanged{UserID: userID, EventID: eventID, At: now})

	if err := s.repo.Register(ctx, reg, now, evt); err != nil {
		return nil, err
	}

	s.log.Info("🎟️ User registered", zap.String("user_id", userID.String()), zap.String("event_id", eventID.String()))
	return reg, nil
}

func (s *RegistrationService) Cancel(ctx context.Context, userID, eventID uuid.UUID) error {
	evt := sharedDomain.NewOutboxEvent(registrationAggregate, eventID.String(), domain.RegistrationCancelled,
		sharedEvents.RegistrationChanged{UserID: userID, EventID: eventID, At: s.now()})

	if err := s.repo.Cancel(ctx, userID, eventID, evt); err != nil {
		return err
	}

	s.log.Info("Registration cancelled", zap.String("user_id", userID.String()), zap.String("event_id", eventID.String()))
	return nil
}
