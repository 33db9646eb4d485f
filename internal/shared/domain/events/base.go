package events

import (
	"encoding/json"
	"reflect"
	"time"
)

// IntegrationEvent es el sobre común de todo lo que viaja por el bus.
type IntegrationEvent struct {
	Type      string          `json:"type"`
	Key       string          `json:"key,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"` // contenido específico del evento
}

// PartitionKey permite que Kafka agrupe los eventos de un mismo agregado.
func (e IntegrationEvent) PartitionKey() string {
	return e.Key
}

// EventMetadata asocia un tipo de evento con su payload y su topic.
type EventMetadata struct {
	Type  reflect.Type
	Topic string
}

// Registry indexa EventMetadata por tipo de evento ("registration.created", ...).
type Registry map[string]EventMetadata

// MergeRegistries junta los registros de cada contexto en uno solo.
func MergeRegistries(registries ...Registry) Registry {
	merged := make(Registry)
	for _, r := range registries {
		for k, v := range r {
			merged[k] = v
		}
	}
	return merged
}
