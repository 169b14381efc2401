package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "rl:v1:"

// RateLimit caps requests per client IP to maxPerMin within a fixed one minute
// window counted in Redis. It is a no-op without a cache and fails open on
// cache errors.
func RateLimit(cache *redis.Client, scope string, maxPerMin int, logger *slog.Logger) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 60
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		window := time.Now().Unix() / 60
		key := rateLimitPrefix + scope + ":" + c.IP() + ":" + strconv.FormatInt(window, 10)

		pipe := cache.TxPipeline()
		incr := pipe.Incr(c.UserContext(), key)
		pipe.Expire(c.UserContext(), key, time.Minute)
		if _, err := pipe.Exec(c.UserContext()); err != nil {
			if logger != nil {
				logger.Warn("rate limit lookup failed", slog.String("scope", scope), slog.Any("error", err))
			}
			return c.Next()
		}

		remaining := int64(maxPerMin) - incr.Val()
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(maxPerMin))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		if incr.Val() > int64(maxPerMin) {
			c.Set(fiber.HeaderRetryAfter, "60")
			return fiber.NewError(http.StatusTooManyRequests, "rate limit exceeded, try again later")
		}
		return c.Next()
	}
}
