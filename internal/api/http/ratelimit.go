package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/atlasdesk/support-service/internal/persistence"
	apperrors "github.com/atlasdesk/support-service/pkg/util"
)

// PublicRateLimiter bounds the unauthenticated surface with a fixed
// per-minute window in Redis, keyed by client IP. When Redis is unreachable
// the limiter fails open: availability of the public channel wins over strict
// enforcement.
func PublicRateLimiter(redis *persistence.Redis, perMinute int, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if perMinute <= 0 || redis == nil || redis.Client == nil {
			return c.Next()
		}
		ctx := c.UserContext()
		key := fmt.Sprintf("ratelimit:public:%s:%s", c.IP(), time.Now().UTC().Format("200601021504"))

		count, err := redis.Client.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limiter unavailable, failing open", zap.Error(err))
			return c.Next()
		}
		if count == 1 {
			if err := redis.Client.Expire(ctx, key, time.Minute).Err(); err != nil {
				logger.Warn("rate limiter expire failed", zap.Error(err))
			}
		}
		if count > int64(perMinute) {
			return apperrors.NewRateLimited()
		}
		return c.Next()
	}
}
