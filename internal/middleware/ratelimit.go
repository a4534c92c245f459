package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/edulane/sims-api/internal/service"
	appErrors "github.com/edulane/sims-api/pkg/errors"
	"github.com/edulane/sims-api/pkg/response"
)

// LoginRateLimit throttles authentication attempts per client IP using a
// fixed window counter in Redis. When the client is nil the limiter is a
// pass-through, so the API stays usable without Redis.
func LoginRateLimit(client *redis.Client, limit int, window time.Duration, metrics *service.MetricsService, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if client == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:login:%s", c.ClientIP())
		count, err := client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			// Redis being down must not lock users out.
			logger.Warn("login rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(c.Request.Context(), key, window)
		}
		if count > int64(limit) {
			metrics.RecordLoginThrottled()
			response.Error(c, appErrors.ErrTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}
