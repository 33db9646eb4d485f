package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	regDomain "github.com/davicafu/eventreg/internal/registration/domain"
	sharedEvents "github.com/davicafu/eventreg/internal/shared/domain/events"
)

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Record(ctx context.Context, eventType string, data sharedEvents.RegistrationChanged) error {
	args := m.Called(ctx, eventType, data)
	return args.Error(0)
}

func buildEvent(t *testing.T, eventType string, data interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	payload, err := json.Marshal(sharedEvents.IntegrationEvent{Type: eventType, Timestamp: time.Now(), Data: raw})
	require.NoError(t, err)
	return payload
}

func TestActivityConsumer_RecordsRegistrationEvents(t *testing.T) {
	recorder := new(mockRecorder)
	consumer := NewActivityConsumer(recorder, zap.NewNop())

	data := sharedEvents.RegistrationChanged{
		UserID:  uuid.New(),
		EventID: uuid.New(),
		At:      time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC),
	}
	recorder.On("Record", mock.Anything, regDomain.RegistrationCreated, data).Return(nil).Once()
	recorder.On("Record", mock.Anything, regDomain.RegistrationCancelled, data).Return(errors.New("store down")).Once()

	consumer.HandleMessage(context.Background(), data.EventID.String(), buildEvent(t, regDomain.RegistrationCreated, data))
	consumer.HandleMessage(context.Background(), data.EventID.String(), buildEvent(t, regDomain.RegistrationCancelled, data))

	recorder.AssertExpectations(t)
}

func TestActivityConsumer_IgnoresOtherMessages(t *testing.T) {
	recorder := new(mockRecorder)
	consumer := NewActivityConsumer(recorder, zap.NewNop())

	consumer.HandleMessage(context.Background(), "", []byte("garbage"))
	consumer.HandleMessage(context.Background(), "", buildEvent(t, "event.created", map[string]string{}))
	consumer.HandleMessage(context.Background(), "", buildEvent(t, regDomain.RegistrationCreated, "not an object"))

	recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything)
}
