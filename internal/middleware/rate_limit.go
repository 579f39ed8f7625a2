package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the fixed window length
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// KeyPrefix namespaces the Redis keys
	KeyPrefix string
}

// RateLimiter is a fixed-window counter in Redis. A nil client disables
// limiting; every request is allowed and the full quota is reported.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// NewAnalysisRateLimiter limits image analyses to perDay per caller
func NewAnalysisRateLimiter(redisClient *redis.Client, perDay int, logger *zap.Logger) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    24 * time.Hour,
		Limit:     perDay,
		KeyPrefix: "rate_limit:image_analysis",
	}, logger)
}

// Enabled reports whether a Redis backend is attached
func (rl *RateLimiter) Enabled() bool {
	return rl.redis != nil
}

// Limit is the number of requests allowed per window
func (rl *RateLimiter) Limit() int {
	return rl.config.Limit
}

// RateLimitMiddleware counts the request against the caller's window and
// rejects it with 429 once the limit is exceeded. Redis failures let the
// request through.
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ClientKey(c)
		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), key)
		if err != nil {
			rl.logger.Warn("rate limit check failed", zap.String("key", key), zap.Error(err))
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		setRateLimitHeaders(c, rl.config.Limit, remaining, resetTime)

		if !allowed {
			rl.logger.Warn("rate limit exceeded", zap.String("key", key))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":                fmt.Sprintf("일일 분석 한도(%d회)를 초과했습니다. 내일 다시 시도해주세요.", rl.config.Limit),
				"rate_limit_remaining": remaining,
				"rate_limit_reset":     resetTime.Unix(),
				"retry_after":          int(resetTime.Sub(rl.now()).Seconds()),
			})
			return
		}

		c.Next()
	}
}

// IsAllowed increments the caller's counter and reports whether the request
// fits in the current window.
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, key string) (bool, int, time.Time, error) {
	windowKey, resetTime := rl.window(key)
	if rl.redis == nil {
		return true, rl.config.Limit, resetTime, nil
	}

	pipe := rl.redis.TxPipeline()
	incrCmd := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	return count <= rl.config.Limit, remainingFor(rl.config.Limit, count), resetTime, nil
}

// GetRemainingRequests reports the caller's quota without consuming it
func (rl *RateLimiter) GetRemainingRequests(ctx context.Context, key string) (int, time.Time, error) {
	windowKey, resetTime := rl.window(key)
	if rl.redis == nil {
		return rl.config.Limit, resetTime, nil
	}

	count, err := rl.redis.Get(ctx, windowKey).Int()
	if errors.Is(err, redis.Nil) {
		return rl.config.Limit, resetTime, nil
	}
	if err != nil {
		return 0, time.Time{}, err
	}
	return remainingFor(rl.config.Limit, count), resetTime, nil
}

func (rl *RateLimiter) window(key string) (string, time.Time) {
	windowStart := rl.now().Truncate(rl.config.Window)
	return fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix()), windowStart.Add(rl.config.Window)
}

// ClientKey identifies the caller: the user ID when authenticated, the
// client IP otherwise.
func ClientKey(c *gin.Context) string {
	if user, ok := CurrentUser(c); ok {
		return "user:" + user.ID.String()
	}
	return "ip:" + c.ClientIP()
}

func remainingFor(limit, count int) int {
	if remaining := limit - count; remaining > 0 {
		return remaining
	}
	return 0
}

func setRateLimitHeaders(c *gin.Context, limit, remaining int, resetTime time.Time) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))
}
