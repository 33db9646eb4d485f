package domain

// Tipos de evento que emite el servicio de usuarios.
const (
	UserCreated = "user.created"
	UserUpdated = "user.updated"
	UserDeleted = "user.deleted"
)

const UserTopic = "users"
