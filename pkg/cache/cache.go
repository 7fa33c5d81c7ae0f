package cache

import (
	"context"
	"time"
)

// Cache is the shared interface over the local and redis backends. It is
// intentionally small: the service uses it for idempotency windows, webhook
// replay suppression and counters.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	// SetNX stores the value only if the key is absent, returning true when
	// it was stored. This is the primitive the idempotency middleware needs.
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)

	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) bool
	Increment(ctx context.Context, key string, delta int64) (int64, error)
	Close() error
}

// Config selects and tunes a backend.
type Config struct {
	// Type: "local" (go-cache), "lru" (bounded) or "redis".
	Type string `json:"type" env:"CACHE_TYPE"`

	Redis RedisConfig `json:"redis"`
	Local LocalConfig `json:"local"`
}

type RedisConfig struct {
	Addr     string `json:"addr" env:"REDIS_ADDR"`
	Password string `json:"password" env:"REDIS_PASSWORD"`
	DB       int    `json:"db" env:"REDIS_DB"`
	PoolSize int    `json:"pool_size" env:"REDIS_POOL_SIZE"`
}

type LocalConfig struct {
	// MaxSize only applies to the bounded "lru" backend.
	MaxSize           int           `json:"max_size" env:"LOCAL_CACHE_MAX_SIZE"`
	DefaultExpiration time.Duration `json:"default_expiration"`
	CleanupInterval   time.Duration `json:"cleanup_interval"`
}
