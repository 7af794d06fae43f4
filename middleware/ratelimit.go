package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter reports whether key has gone over limit hits in the current window.
type Limiter interface {
	Exceeded(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type RedisLimiter struct {
	client *redis.Client
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

// Exceeded counts the hit in a fixed window keyed by key. The window starts at
// the first hit.
func (r *RedisLimiter) Exceeded(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	redisKey := fmt.Sprintf("rate_limit:%s", key)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}

	return incr.Val() > int64(limit), nil
}

// RateLimit rejects a client that exceeds limit requests per window on the
// route with 429. Limiter failures let the request through. A nil limiter
// disables the check.
func RateLimit(limiter Limiter, limit int, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		key := c.ClientIP() + ":" + c.FullPath()
		exceeded, err := limiter.Exceeded(c.Request.Context(), key, limit, window)
		if err != nil {
			log.Error("rate limit check failed", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if exceeded {
			log.Warn("rate limit exceeded", zap.String("key", key), zap.String("method", c.Request.Method))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"result":  nil,
				"message": "Too many requests, try again later",
			})
			return
		}

		c.Next()
	}
}
