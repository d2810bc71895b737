package cache

import (
	"context"
	"time"

	pkgcache "CoinSentry/pkg/cache"
)

// TTLCache adapts the shared in-memory cache to the small typed/bytes API the
// analytics layer uses. Values round-trip as-is, no serialization.
type TTLCache struct {
	mem *pkgcache.MemoryCache
}

func NewTTLCache() *TTLCache {
	return &TTLCache{mem: pkgcache.NewMemoryCache()}
}

func (c *TTLCache) Get(key string) (any, bool) {
	var v interface{}
	if err := c.mem.Get(context.Background(), key, &v); err != nil {
		return nil, false
	}
	return v, true
}

func (c *TTLCache) Set(key string, v any, ttl time.Duration) {
	_ = c.mem.Set(context.Background(), key, v, ttl)
}

// Implement BytesCache
func (c *TTLCache) GetBytes(key string) ([]byte, bool, error) {
	if v, ok := c.Get(key); ok {
		if b, ok2 := v.([]byte); ok2 {
			return b, true, nil
		}
		return nil, false, nil
	}
	return nil, false, nil
}

func (c *TTLCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	c.Set(key, value, ttl)
	return nil
}
