package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// lruBackend is a bounded local cache. Unlike go-cache it evicts under
// memory pressure, which matters on-device.
type lruBackend struct {
	mu  sync.Mutex
	lru *expirable.LRU[string, interface{}]
}

func NewLRUCache(config LocalConfig) Cache {
	size := config.MaxSize
	if size <= 0 {
		size = 1024
	}
	ttl := config.DefaultExpiration
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &lruBackend{lru: expirable.NewLRU[string, interface{}](size, nil, ttl)}
}

func (lb *lruBackend) Get(ctx context.Context, key string) (interface{}, bool) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.lru.Get(key)
}

func (lb *lruBackend) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	lb.lru.Add(key, value)
	return nil
}

func (lb *lruBackend) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if _, ok := lb.lru.Get(key); ok {
		return false, nil
	}
	lb.lru.Add(key, value)
	return true, nil
}

func (lb *lruBackend) Delete(ctx context.Context, key string) error {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	lb.lru.Remove(key)
	return nil
}

func (lb *lruBackend) Exists(ctx context.Context, key string) bool {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.lru.Contains(key)
}

func (lb *lruBackend) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	cur := int64(0)
	if v, ok := lb.lru.Get(key); ok {
		if n, ok := v.(int64); ok {
			cur = n
		}
	}
	cur += delta
	lb.lru.Add(key, cur)
	return cur, nil
}

func (lb *lruBackend) Close() error { return nil }
