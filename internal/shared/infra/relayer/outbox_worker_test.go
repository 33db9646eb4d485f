package relayer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/davicafu/eventreg/internal/mocks"
	regDomain "github.com/davicafu/eventreg/internal/registration/domain"
	sharedDomain "github.com/davicafu/eventreg/internal/shared/domain"
	sharedEvents "github.com/davicafu/eventreg/internal/shared/domain/events"
	sharedBus "github.com/davicafu/eventreg/internal/shared/infra/platform/bus"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func registrationOutbox() sharedDomain.OutboxEvent {
	eventID := uuid.New()
	return sharedDomain.NewOutboxEvent("registration", eventID.String(), regDomain.RegistrationCreated,
		sharedEvents.RegistrationChanged{UserID: uuid.New(), EventID: eventID, At: time.Now().UTC()})
}

func TestOutboxWorker_ProcessBatch_Success(t *testing.T) {
	repo := new(mocks.MockOutboxRepository)
	publisher := new(mocks.MockPublisher)

	evt := registrationOutbox()

	repo.On("FetchPendingOutbox", mock.Anything, 10).Return([]sharedDomain.OutboxEvent{evt}, nil).Once()
	publisher.On("Publish", mock.Anything, regDomain.RegistrationTopic, mock.AnythingOfType("events.IntegrationEvent")).Return(nil).Once()
	repo.On("MarkOutboxProcessed", mock.Anything, evt.ID).Return(nil).Once()

	worker := NewOutboxWorker(repo, publisher, regDomain.NewEventRegistry(), time.Second, 10, zap.NewNop())

	published := worker.ProcessBatch(context.Background())

	assert.Equal(t, 1, published)
	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)

	// El sobre lleva tipo, clave de partición y el payload tipado
	sent := publisher.Calls[0].Arguments.Get(2).(sharedEvents.IntegrationEvent)
	assert.Equal(t, regDomain.RegistrationCreated, sent.Type)
	assert.Equal(t, evt.AggregateID, sent.Key)

	var data sharedEvents.RegistrationChanged
	require.NoError(t, json.Unmarshal(sent.Data, &data))
	assert.Equal(t, evt.AggregateID, data.EventID.String())
}

func TestOutboxWorker_ProcessBatch_PublisherFails(t *testing.T) {
	repo := new(mocks.MockOutboxRepository)
	publisher := new(mocks.MockPublisher)

	evt := registrationOutbox()

	repo.On("FetchPendingOutbox", mock.Anything, 10).Return([]sharedDomain.OutboxEvent{evt}, nil).Once()
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("kafka is down")).Once()

	worker := NewOutboxWorker(repo, publisher, regDomain.NewEventRegistry(), time.Second, 10, zap.NewNop())

	published := worker.ProcessBatch(context.Background())

	assert.Zero(t, published)
	publisher.AssertExpectations(t)
	repo.AssertNotCalled(t, "MarkOutboxProcessed", mock.Anything, mock.Anything)
}

func TestOutboxWorker_ProcessBatch_UnknownEventType(t *testing.T) {
	repo := new(mocks.MockOutboxRepository)
	publisher := new(mocks.MockPublisher)

	evt := sharedDomain.NewOutboxEvent("x", "1", "unregistered.event", map[string]interface{}{})

	repo.On("FetchPendingOutbox", mock.Anything, 10).Return([]sharedDomain.OutboxEvent{evt}, nil).Once()

	worker := NewOutboxWorker(repo, publisher, sharedEvents.Registry{}, time.Second, 10, zap.NewNop())

	worker.ProcessBatch(context.Background())

	repo.AssertExpectations(t)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "MarkOutboxProcessed", mock.Anything, mock.Anything)
}

func TestOutboxWorker_ProcessBatch_FetchFails(t *testing.T) {
	repo := new(mocks.MockOutboxRepository)
	publisher := new(mocks.MockPublisher)

	repo.On("FetchPendingOutbox", mock.Anything, 5).Return(nil, errors.New("db down")).Once()

	worker := NewOutboxWorker(repo, publisher, regDomain.NewEventRegistry(), time.Second, 5, zap.NewNop())

	assert.Zero(t, worker.ProcessBatch(context.Background()))
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

var _ sharedDomain.OutboxRepository = (*mocks.MockOutboxRepository)(nil)
var _ sharedBus.EventBus = (*mocks.MockPublisher)(nil)
