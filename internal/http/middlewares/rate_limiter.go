package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"care-tasks.com/care-tasks/internal/ratelimit"
)

// RateLimiter allows limit requests per window for each client IP. It runs ahead of
// Identity so rejected traffic never reaches the account store. Counter failures let
// the request through.
func RateLimiter(counter ratelimit.Counter, limit int, window time.Duration, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			count, err := counter.Hit(c.Request().Context(), "ip:"+c.RealIP(), window)
			if err != nil {
				logger.Warn("rate limiter unavailable", zap.Error(err))
				return next(c)
			}
			if count > int64(limit) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}

			return next(c)
		}
	}
}
