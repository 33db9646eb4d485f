package cache

import (
	"context"
	"time"
)

// Cache es una caché clave-valor genérica; los valores se guardan serializados en JSON.
type Cache interface {
	// Get rellena dest (puntero) y devuelve (true, nil) en un hit, (false, nil) en un miss.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set guarda el valor con un TTL en segundos. ttlSecs <= 0 usa el TTL por defecto del adapter.
	Set(ctx context.Context, key string, val interface{}, ttlSecs int) error

	Delete(ctx context.Context, key string) error
}

// TTLSeconds convierte una duración de configuración al formato que espera Set.
func TTLSeconds(d time.Duration) int {
	secs := int(d / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
