package domain

import (
	"reflect"

	sharedEvents "github.com/davicafu/eventreg/internal/shared/domain/events"
)

const EventCreated = "event.created"

const EventTopic = "events"

func NewEventRegistry() sharedEvents.Registry {
	return sharedEvents.Registry{
		EventCreated: {
			Type:  reflect.TypeOf(Event{}),
			Topic: EventTopic,
		},
	}
}
