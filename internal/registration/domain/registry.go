package domain

import (
	"reflect"

	sharedEvents "github.com/davicafu/eventreg/internal/shared/domain/events"
)

const (
	RegistrationCreated   = "registration.created"
	RegistrationCancelled = "registration.cancelled"
)

const RegistrationTopic = "registrations"

func NewEventRegistry() sharedEvents.Registry {
	payload := reflect.TypeOf(sharedEvents.RegistrationChanged{})
	return sharedEvents.Registry{
		RegistrationCreated: {
			Type:  payload,
			Topic: RegistrationTopic,
		},
		RegistrationCancelled: {
			Type:  payload,
			Topic: RegistrationTopic,
		},
	}
}
