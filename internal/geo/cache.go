package geo

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	// maxMemoryEntries bounds the in-memory cache; it is cleared wholesale
	// when exceeded since coordinates are cheap to re-resolve.
	maxMemoryEntries = 1000

	redisKeyPrefix = "geocache:"
	redisTTL       = 30 * 24 * time.Hour
)

// Cache is the process-wide geocoding cache shared across computations. It is
// safe for concurrent use; writes are last-write-wins since coordinates for a
// fixed city are stable. An optional Redis client extends it across
// processes, best-effort.
type Cache struct {
	mu      sync.Mutex
	entries map[string]Coordinates
	rdb     *goredis.Client
}

func NewCache(rdb *goredis.Client) *Cache {
	return &Cache{
		entries: make(map[string]Coordinates),
		rdb:     rdb,
	}
}

func (c *Cache) Get(ctx context.Context, key string) (Coordinates, bool) {
	c.mu.Lock()
	coords, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		return coords, true
	}

	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
		if err == nil {
			var stored Coordinates
			if json.Unmarshal(raw, &stored) == nil {
				c.putMemory(key, stored)
				return stored, true
			}
		}
	}
	return Coordinates{}, false
}

func (c *Cache) Put(ctx context.Context, key string, coords Coordinates) {
	c.putMemory(key, coords)
	if c.rdb != nil {
		if raw, err := json.Marshal(coords); err == nil {
			c.rdb.Set(ctx, redisKeyPrefix+key, raw, redisTTL)
		}
	}
}

func (c *Cache) putMemory(key string, coords Coordinates) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= maxMemoryEntries {
		c.entries = make(map[string]Coordinates)
	}
	c.entries[key] = coords
}
