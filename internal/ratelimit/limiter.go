// Package ratelimit bounds request rates per client key.
package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/event-service/pkg/util/errorutil"
)

// Limiter decides whether another attempt under key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Middleware rejects requests over the limit with 429. Limiter failures let
// the request through and are logged.
func Middleware(limiter Limiter, prefix string, window time.Duration, logger *zap.Logger) fiber.Handler {
	retryAfter := strconv.Itoa(int(window.Seconds()))
	return func(c *fiber.Ctx) error {
		allowed, err := limiter.Allow(c.UserContext(), prefix+":"+c.IP())
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.String("prefix", prefix), zap.Error(err))
			return c.Next()
		}
		if !allowed {
			c.Set(fiber.HeaderRetryAfter, retryAfter)
			return apperrors.NewTooManyRequests("too many attempts, try again later")
		}
		return c.Next()
	}
}
