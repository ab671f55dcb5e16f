package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"freelance-marketplace-backend/internal/delivery/http/response"
	"freelance-marketplace-backend/pkg/redis"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig bounds how often one client may trigger a shortlist
// computation. Each computation can spend external geocoding calls, so the
// limit also protects the upstream provider.
type RateLimitConfig struct {
	Limit     int
	Window    time.Duration
	KeyPrefix string
}

func ComputeRateLimitConfig(limit, windowSeconds int) RateLimitConfig {
	return RateLimitConfig{
		Limit:     limit,
		Window:    time.Duration(windowSeconds) * time.Second,
		KeyPrefix: "rl:compute:",
	}
}

type rateLimitEntry struct {
	count   int
	resetAt time.Time
}

var (
	rateLimitMu    sync.Mutex
	rateLimitStore = map[string]*rateLimitEntry{}
)

// Atomic increment with TTL set on first hit.
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`

// RateLimitMiddleware limits per client IP, using Redis when available and an
// in-memory window otherwise.
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := config.KeyPrefix + c.ClientIP()

		var count int
		if rdb := redis.Client(); rdb != nil {
			n, err := incrRedis(c.Request.Context(), rdb, key, config.Window)
			if err == nil {
				count = n
			} else {
				count = incrMemory(key, config.Window)
			}
		} else {
			count = incrMemory(key, config.Window)
		}

		if count > config.Limit {
			c.Header("Retry-After", strconv.Itoa(int(config.Window.Seconds())))
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func incrRedis(ctx context.Context, rdb *goredis.Client, key string, window time.Duration) (int, error) {
	res, err := rdb.Eval(ctx, rateLimitLuaScript, []string{key}, int(window.Seconds())).Int64()
	if err != nil {
		return 0, err
	}
	return int(res), nil
}

func incrMemory(key string, window time.Duration) int {
	rateLimitMu.Lock()
	defer rateLimitMu.Unlock()
	now := time.Now()
	entry, ok := rateLimitStore[key]
	if !ok || now.After(entry.resetAt) {
		entry = &rateLimitEntry{resetAt: now.Add(window)}
		rateLimitStore[key] = entry
	}
	entry.count++
	return entry.count
}
