package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/peerwave/backend/internal/cache"
	"github.com/peerwave/backend/internal/logger"
	"go.uber.org/zap"
)

// RedisRateLimitMiddleware creates a distributed rate limiter using Redis.
// A fixed counter window is shared across instances. When Redis is not
// configured, requests pass through and the in-memory limiter (if stacked)
// still applies.
func RedisRateLimitMiddleware(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		redisClient := cache.GetRedisClient()
		if redisClient == nil {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		key := fmt.Sprintf("rate_limit:%s", clientIP)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		val, err := redisClient.GetInt(ctx, key)
		if err != nil && err.Error() != "redis: nil" {
			// Rejecting on Redis failure keeps a broken limiter from
			// opening the API up.
			logger.Log.Error("rate limit check failed, rejecting request",
				zap.String("client_ip", clientIP),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"message": "service temporarily unavailable",
			})
			return
		}

		if val >= int64(maxRequests) {
			RecordRateLimitExceeded(c.FullPath(), c.Request.Method)
			logger.Log.Warn("rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.Int("max_requests", maxRequests),
				zap.Int64("current_requests", val),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message":     "rate limit exceeded",
				"retry_after": window.Seconds(),
			})
			return
		}

		newVal, err := redisClient.IncrBy(ctx, key, 1)
		if err != nil {
			logger.Log.Error("rate limit increment failed, rejecting request",
				zap.String("client_ip", clientIP),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"message": "service temporarily unavailable",
			})
			return
		}

		// First request in this window starts the clock
		if newVal == 1 {
			if err := redisClient.Expire(ctx, key, window); err != nil {
				logger.Log.Warn("failed to set rate limit expiration",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)
			}
		}

		c.Next()
	}
}
