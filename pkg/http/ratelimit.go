package http

import (
	applogger "StockCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// KeyedLimiter decides per client key whether a request may proceed.
type KeyedLimiter interface {
	Allow(key string) bool
}

// RateLimit rejects requests over the per-client budget with 429.
func RateLimit(lim KeyedLimiter, l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if !lim.Allow(ip) {
				l.Warn("rate limit exceeded",
					applogger.String("remote", ip),
					applogger.String("path", c.Path()),
				)
				c.Response().Header().Set("Retry-After", "1")
				return AppErrorResponse(c, TooManyRequestsError("Too Many Requests"))
			}
			return next(c)
		}
	}
}
