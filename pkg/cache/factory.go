package cache

import "fmt"

// New builds a backend from config. Unknown types fall back to local.
func New(config Config) (Cache, error) {
	switch config.Type {
	case "redis":
		c, err := NewRedisCache(config.Redis)
		if err != nil {
			return nil, fmt.Errorf("create redis cache: %w", err)
		}
		return c, nil
	case "lru":
		return NewLRUCache(config.Local), nil
	default:
		return NewGoCache(config.Local), nil
	}
}
