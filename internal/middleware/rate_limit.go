package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/kavyapath/kavyapath-web/pkg/logger"
)

// RateLimitConfig configures the rate limiter
type RateLimitConfig struct {
	RequestsPerMinute int
	KeyPrefix         string
	Message           string
}

// DefaultRateLimitConfig returns the assistant rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 20,
		KeyPrefix:         "kavyapath:ratelimit:",
		Message:           "Too many requests. Please wait a moment and try again.",
	}
}

// Decision is the outcome of one limiter check
type Decision struct {
	Allowed   bool
	Remaining int64
	ResetAt   int64 // unix millis, only set when denied
}

// Limiter counts requests per key in a one minute sliding window
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, now time.Time) (Decision, error)
}

const window = time.Minute

// rateLimitScript is an atomic Lua script for sliding window rate limiting
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local window_start = now - window

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
local count = redis.call('ZCARD', key)

if count < limit then
    redis.call('ZADD', key, now, now .. ':' .. math.random(1000000))
    redis.call('EXPIRE', key, math.ceil(window / 1000) + 1)
    return {1, limit - count - 1, 0}
else
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    local reset_at = 0
    if #oldest >= 2 then
        reset_at = tonumber(oldest[2]) + window
    end
    return {0, 0, reset_at}
end
`)

type redisLimiter struct {
	client *redis.Client
}

// NewRedisLimiter shares counters across instances through redis
func NewRedisLimiter(client *redis.Client) Limiter {
	return &redisLimiter{client: client}
}

func (l *redisLimiter) Allow(ctx context.Context, key string, limit int, now time.Time) (Decision, error) {
	res, err := rateLimitScript.Run(ctx, l.client, []string{key},
		limit, window.Milliseconds(), now.UnixMilli(),
	).Int64Slice()
	if err != nil {
		return Decision{}, err
	}
	return Decision{Allowed: res[0] == 1, Remaining: res[1], ResetAt: res[2]}, nil
}

type memoryLimiter struct {
	mu        sync.Mutex
	hits      map[string][]int64
	lastSweep int64
}

// NewMemoryLimiter keeps counters in process, for single-instance deployments
func NewMemoryLimiter() Limiter {
	return &memoryLimiter{hits: make(map[string][]int64)}
}

func (l *memoryLimiter) Allow(_ context.Context, key string, limit int, now time.Time) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	nowMs := now.UnixMilli()
	start := nowMs - window.Milliseconds()
	if l.lastSweep <= start {
		l.sweep(start)
		l.lastSweep = nowMs
	}
	kept := l.hits[key][:0]
	for _, ts := range l.hits[key] {
		if ts > start {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= limit {
		l.hits[key] = kept
		return Decision{ResetAt: kept[0] + window.Milliseconds()}, nil
	}
	kept = append(kept, nowMs)
	l.hits[key] = kept
	return Decision{Allowed: true, Remaining: int64(limit - len(kept))}, nil
}

// sweep drops clients whose newest hit is outside the window
func (l *memoryLimiter) sweep(start int64) {
	for key, hits := range l.hits {
		if len(hits) == 0 || hits[len(hits)-1] <= start {
			delete(l.hits, key)
		}
	}
}

// RateLimit returns a gin middleware that rate limits by client IP.
// A nil limiter disables limiting; limiter errors fail open.
func RateLimit(limiter Limiter, cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || cfg.RequestsPerMinute <= 0 {
			c.Next()
			return
		}

		now := time.Now()
		key := cfg.KeyPrefix + c.ClientIP()
		d, err := limiter.Allow(c.Request.Context(), key, cfg.RequestsPerMinute, now)
		if err != nil {
			logger.GetLogger().Warn().Err(err).Msg("rate limiter unavailable")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerMinute))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", d.Remaining))

		if !d.Allowed {
			retryAfter := (d.ResetAt - now.UnixMilli()) / 1000
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", d.ResetAt/1000))
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   gin.H{"code": "RATE_LIMITED", "message": cfg.Message},
			})
			return
		}

		c.Next()
	}
}
