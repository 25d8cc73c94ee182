package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"quickfolio-backend/internal/delivery/http/response"
	"quickfolio-backend/internal/domain"
	"quickfolio-backend/pkg/audit"
	"quickfolio-backend/pkg/logger"
	"quickfolio-backend/pkg/redis"
)

// RateLimitConfig describes one fixed-window budget.
type RateLimitConfig struct {
	Limit      int
	Window     time.Duration
	KeyFunc    func(*gin.Context) string
	KeyPrefix  string // Redis key namespace, e.g. "rl:ip:"
	FailClosed bool   // reject instead of falling back when Redis errors
}

type rateLimitEntry struct {
	count   int
	resetAt time.Time
	mu      sync.Mutex
}

// In-process counters used when Redis is not configured or fails open.
var (
	rateLimitStore = sync.Map{}
	cleanupOnce    sync.Once
)

// INCR with TTL on first hit, returning {count, ttl}.
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

func startCleanup() {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		for range ticker.C {
			now := time.Now()
			rateLimitStore.Range(func(key, value any) bool {
				entry := value.(*rateLimitEntry)
				entry.mu.Lock()
				if now.After(entry.resetAt) {
					rateLimitStore.Delete(key)
				}
				entry.mu.Unlock()
				return true
			})
		}
	}()
}

// DefaultRateLimitConfig is the global per-IP budget.
func DefaultRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:      limit,
		Window:     window,
		KeyPrefix:  "rl:ip:",
		FailClosed: false,
		KeyFunc:    clientIP,
	}
}

// TrackRateLimitConfig guards the public analytics beacon, which anyone can
// call for any portfolio.
func TrackRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:      60,
		Window:     time.Minute,
		KeyPrefix:  "rl:track:",
		FailClosed: false,
		KeyFunc:    clientIP,
	}
}

// GenerateRateLimitConfig limits content generation per user.
func GenerateRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:      10,
		Window:     time.Minute,
		KeyPrefix:  "rl:generate:",
		FailClosed: false,
		KeyFunc:    userOrIP,
	}
}

// UploadRateLimitConfig limits OG image uploads and export builds per user.
func UploadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:      10,
		Window:     time.Minute,
		KeyPrefix:  "rl:upload:",
		FailClosed: false,
		KeyFunc:    userOrIP,
	}
}

func clientIP(c *gin.Context) string {
	return c.ClientIP()
}

// userOrIP keys authenticated routes by user so shared NATs do not starve
// each other.
func userOrIP(c *gin.Context) string {
	if id := c.GetString(string(domain.KeyUserID)); id != "" {
		return "u:" + id
	}
	return c.ClientIP()
}

// RateLimitMiddleware enforces config per key. Redis is authoritative when
// configured; otherwise each replica counts on its own.
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	cleanupOnce.Do(startCleanup)
	if config.KeyFunc == nil {
		config.KeyFunc = clientIP
	}

	return func(c *gin.Context) {
		fullKey := config.KeyPrefix + config.KeyFunc(c)

		count, resetAt, err := hit(c.Request.Context(), fullKey, config)
		if err != nil {
			if config.FailClosed {
				logRateLimitError(c, "redis_error", err)
				response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
				c.Abort()
				return
			}
			logRateLimitError(c, "redis_error_fallback", err)
			count, resetAt = checkRateLimitInMemory(fullKey, config, time.Now())
		}

		remaining := config.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > config.Limit {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			logRateLimitTriggered(c)

			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

func hit(ctx context.Context, key string, config RateLimitConfig) (int, time.Time, error) {
	if client := redis.Client(); client != nil {
		return checkRateLimitRedis(ctx, client, key, config)
	}
	count, resetAt := checkRateLimitInMemory(key, config, time.Now())
	return count, resetAt, nil
}

func checkRateLimitRedis(ctx context.Context, client *goredis.Client, key string, config RateLimitConfig) (int, time.Time, error) {
	ttlSeconds := int(config.Window.Seconds())
	if ttlSeconds < 1 {
		ttlSeconds = 1
	}

	result, err := client.Eval(ctx, rateLimitLuaScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}

	arr, ok := result.([]any)
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, errors.New("unexpected redis result format")
	}
	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)

	return int(count), time.Now().Add(time.Duration(ttl) * time.Second), nil
}

func checkRateLimitInMemory(key string, config RateLimitConfig, now time.Time) (int, time.Time) {
	entryI, _ := rateLimitStore.LoadOrStore(key, &rateLimitEntry{resetAt: now.Add(config.Window)})
	entry := entryI.(*rateLimitEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if now.After(entry.resetAt) {
		entry.count = 0
		entry.resetAt = now.Add(config.Window)
	}
	entry.count++
	return entry.count, entry.resetAt
}

func logRateLimitTriggered(c *gin.Context) {
	audit.Default().Log(c.Request.Context(), audit.Event{
		Action:    audit.ActionRateLimited,
		UserID:    c.GetString(string(domain.KeyUserID)),
		IP:        c.ClientIP(),
		RequestID: c.GetString(string(domain.KeyRequestID)),
		Details: map[string]any{
			"endpoint":   c.FullPath(),
			"user_agent": c.GetHeader("User-Agent"),
		},
	})
}

func logRateLimitError(c *gin.Context, errorType string, err error) {
	logger.Log.Error("rate limiter unavailable",
		"error_type", errorType,
		"error", err,
		"ip", c.ClientIP(),
		"path", c.FullPath(),
	)
}
