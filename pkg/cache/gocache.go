package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type goCacheBackend struct {
	cache *gocache.Cache
}

// NewGoCache creates the default in-process backend.
func NewGoCache(config LocalConfig) Cache {
	exp := config.DefaultExpiration
	if exp <= 0 {
		exp = 5 * time.Minute
	}
	cleanup := config.CleanupInterval
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &goCacheBackend{cache: gocache.New(exp, cleanup)}
}

func (gc *goCacheBackend) Get(ctx context.Context, key string) (interface{}, bool) {
	return gc.cache.Get(key)
}

func (gc *goCacheBackend) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	gc.cache.Set(key, value, expiration)
	return nil
}

func (gc *goCacheBackend) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	if err := gc.cache.Add(key, value, expiration); err != nil {
		return false, nil
	}
	return true, nil
}

func (gc *goCacheBackend) Delete(ctx context.Context, key string) error {
	gc.cache.Delete(key)
	return nil
}

func (gc *goCacheBackend) Exists(ctx context.Context, key string) bool {
	_, found := gc.cache.Get(key)
	return found
}

func (gc *goCacheBackend) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	if v, err := gc.cache.IncrementInt64(key, delta); err == nil {
		return v, nil
	}
	gc.cache.Set(key, delta, gocache.DefaultExpiration)
	return delta, nil
}

func (gc *goCacheBackend) Close() error { return nil }
