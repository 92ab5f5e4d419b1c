package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/response"
)

const (
	rateLimitTimeout       = 200 * time.Millisecond
	defaultRateLimitWindow = time.Minute
)

// RateLimiter counts requests per client in fixed windows stored in Redis,
// so the limit holds across API replicas.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewRateLimiter creates a RateLimiter allowing limit requests per window.
// A non-positive window falls back to one minute.
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = defaultRateLimitWindow
	}
	return &RateLimiter{client: client, limit: limit, window: window, prefix: "fintrack:ratelimit:"}
}

// Allow increments the counter for key and reports whether the request fits
// in the current window.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := time.Now().UnixNano() / int64(rl.window)
	redisKey := fmt.Sprintf("%s%s:%d", rl.prefix, key, bucket)

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(rl.limit), nil
}

// Middleware limits by authenticated user when present, else by client IP.
// Redis failures let the request through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if userID := c.GetString(UserIDKey); userID != "" {
			key = "user:" + userID
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), rateLimitTimeout)
		allowed, err := rl.Allow(ctx, key)
		cancel()
		if err != nil {
			logger.Get().Warnw("rate limiter unavailable", "error", err, "key", key)
			c.Next()
			return
		}
		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(rl.window.Seconds())))
			response.Abort(c, apperrors.ErrRateLimited)
			return
		}
		c.Next()
	}
}
