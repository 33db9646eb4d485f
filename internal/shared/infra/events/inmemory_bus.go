package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	sharedBus "github.com/davicafu/eventreg/internal/shared/infra/platform/bus"
)

var ErrBusClosed = errors.New("event bus closed")

// InMemoryEventBus reparte cada evento, serializado en JSON, a todos los suscriptores de su topic.
type InMemoryEventBus struct {
	subscribers map[string][]chan []byte
	mu          sync.RWMutex
	stop        chan struct{}
	once        sync.Once
}

var _ sharedBus.EventBus = (*InMemoryEventBus)(nil)

func NewInMemoryEventBus() *InMemoryEventBus {
	return &InMemoryEventBus{
		subscribers: make(map[string][]chan []byte),
		stop:        make(chan struct{}),
	}
}

// Publish bloquea si un suscriptor tiene el buffer lleno: el relayer hace de backpressure
// y la fila de outbox no se marca hasta que todos lo han recibido.
func (b *InMemoryEventBus) Publish(ctx context.Context, topic string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	b.mu.RLock()
	subs := b.subscribers[topic]
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub <- payload:
		case <-ctx.Done():
			return ctx.Err()
		case <-b.stop:
			return ErrBusClosed
		}
	}
	return nil
}

// Subscribe registra un oyente nuevo para el topic.
func (b *InMemoryEventBus) Subscribe(topic string, bufferSize int) <-chan []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan []byte, bufferSize)
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	return ch
}

// Close desbloquea a los publicadores pendientes. Los canales no se cierran: los
// consumidores terminan por su propio contexto.
func (b *InMemoryEventBus) Close() {
	b.once.Do(func() { close(b.stop) })
}

// ConsumeChannel entrega a handler cada mensaje del canal hasta que ctx se cancela.
func ConsumeChannel(ctx context.Context, ch <-chan []byte, handler MessageHandler) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case payload := <-ch:
				// La key no viaja por el bus en memoria.
				handler.HandleMessage(ctx, "", payload)
			}
		}
	}()
}
