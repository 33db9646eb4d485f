package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu       sync.Mutex
	payloads [][]byte
	done     chan struct{}
}

func (h *recordingHandler) HandleMessage(ctx context.Context, key string, payload []byte) {
	h.mu.Lock()
	h.payloads = append(h.payloads, payload)
	h.mu.Unlock()
	h.done <- struct{}{}
}

func TestInMemoryEventBus_PublishReachesTopicSubscribersOnly(t *testing.T) {
	bus := NewInMemoryEventBus()
	defer bus.Close()

	regs := bus.Subscribe("registrations", 1)
	other := bus.Subscribe("users", 1)

	require.NoError(t, bus.Publish(context.Background(), "registrations", map[string]string{"type": "registration.created"}))

	select {
	case payload := <-regs:
		var got map[string]string
		require.NoError(t, json.Unmarshal(payload, &got))
		assert.Equal(t, "registration.created", got["type"])
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive the event")
	}
	assert.Empty(t, other)
}

func TestInMemoryEventBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewInMemoryEventBus()
	assert.NoError(t, bus.Publish(context.Background(), "events", "x"))
}

func TestInMemoryEventBus_FullBufferHonoursContext(t *testing.T) {
	bus := NewInMemoryEventBus()
	_ = bus.Subscribe("events", 0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := bus.Publish(ctx, "events", "x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInMemoryEventBus_ClosedBus(t *testing.T) {
	bus := NewInMemoryEventBus()
	_ = bus.Subscribe("events", 0)
	bus.Close()

	err := bus.Publish(context.Background(), "events", "x")
	assert.ErrorIs(t, err, ErrBusClosed)
}

func TestConsumeChannel_DeliversToHandler(t *testing.T) {
	bus := NewInMemoryEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := &recordingHandler{done: make(chan struct{}, 1)}
	ConsumeChannel(ctx, bus.Subscribe("users", 1), h)

	require.NoError(t, bus.Publish(ctx, "users", "hola"))

	select {
	case <-h.done:
	case <-time.After(time.Second):
		t.Fatal("handler not called")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	assert.Equal(t, `"hola"`, string(h.payloads[0]))
}
