package events

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler lo implementa cada consumidor de dominio (usuarios, actividad...).
type MessageHandler interface {
	HandleMessage(ctx context.Context, key string, payload []byte)
}

// ConsumerAdapter lee de un topic de Kafka y delega en un MessageHandler.
type ConsumerAdapter struct {
	reader  *kafka.Reader
	handler MessageHandler
	log     *zap.Logger
}

func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
}

func NewConsumerAdapter(reader *kafka.Reader, handler MessageHandler, log *zap.Logger) *ConsumerAdapter {
	return &ConsumerAdapter{reader: reader, handler: handler, log: log}
}

// Start lanza el bucle de consumo en una goroutine; termina cuando ctx se cancela.
func (c *ConsumerAdapter) Start(ctx context.Context) {
	topic := c.reader.Config().Topic
	c.log.Info("🎧 Kafka consumer started", zap.String("topic", topic), zap.Strings("brokers", c.reader.Config().Brokers))

	go func() {
		for {
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					c.log.Info("Kafka consumer stopped", zap.String("topic", topic))
					return
				}
				c.log.Error("Error reading Kafka message", zap.String("topic", topic), zap.Error(err))
				continue
			}
			c.handler.HandleMessage(ctx, string(msg.Key), msg.Value)
		}
	}()
}
