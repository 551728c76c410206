// Package cache provee un cliente de cache con backend memory o redis.
// Memory sirve para desarrollo/tests; redis para despliegues multi-réplica.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indica que la key no existe (o expiró).
var ErrNotFound = errors.New("cache: key not found")

// Client define las operaciones de cache que usa el resto del sistema.
type Client interface {
	// Get obtiene un valor. Retorna ErrNotFound si no existe.
	Get(ctx context.Context, key string) (string, error)

	// Set guarda un valor con TTL. Si ttl es 0, no expira.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete elimina una key (idempotente).
	Delete(ctx context.Context, key string) error

	// Ping verifica la conexión al backend.
	Ping(ctx context.Context) error

	// Close libera recursos.
	Close() error
}

// Config para construir un cliente.
type Config struct {
	Kind   string // "memory" | "redis"
	Addr   string // redis: host:port
	DB     int
	Prefix string // prefijo para todas las keys (redis)

	// DefaultTTL aplica cuando Set recibe ttl=0 en el backend memory.
	DefaultTTL time.Duration
}

// New construye el cliente según cfg.Kind. Default: memory.
func New(cfg Config) (Client, error) {
	switch cfg.Kind {
	case "", "memory":
		return NewMemory(cfg.DefaultTTL), nil
	case "redis":
		return NewRedis(cfg)
	default:
		return nil, errors.New("cache: kind desconocido: " + cfg.Kind)
	}
}
