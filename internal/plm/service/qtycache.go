package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const qtyCacheTTL = 24 * time.Hour

// QuantityCache remembers the last extract quantity used per part so the
// next rollup or export defaults to it. Backed by redis when available;
// otherwise an in-process map, which is also what tests use. Cache
// failures are advisory and never fail the caller.
type QuantityCache struct {
	rdb *redis.Client

	mu    sync.RWMutex
	local map[string]int
}

func NewQuantityCache(rdb *redis.Client) *QuantityCache {
	return &QuantityCache{rdb: rdb, local: make(map[string]int)}
}

func qtyKey(partID string) string {
	return "bomwerk:qty:" + partID
}

// Get returns the cached quantity for a part, false when none is cached.
func (c *QuantityCache) Get(ctx context.Context, partID string) (int, bool) {
	if c == nil {
		return 0, false
	}
	if c.rdb != nil {
		val, err := c.rdb.Get(ctx, qtyKey(partID)).Result()
		if err != nil {
			return 0, false
		}
		qty, err := strconv.Atoi(val)
		if err != nil {
			return 0, false
		}
		return qty, true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	qty, ok := c.local[partID]
	return qty, ok
}

// Set records the quantity last used for a part.
func (c *QuantityCache) Set(ctx context.Context, partID string, qty int) {
	if c == nil {
		return
	}
	if c.rdb != nil {
		c.rdb.Set(ctx, qtyKey(partID), strconv.Itoa(qty), qtyCacheTTL)
		return
	}
	c.mu.Lock()
	c.local[partID] = qty
	c.mu.Unlock()
}
