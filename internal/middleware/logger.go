// Package middleware holds the Echo middlewares shared by every route:
// request logging and the Redis response cache.
package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// Slog logs one structured line per request once the handler returns.
// Handler errors are resolved through the Echo error handler first so the
// logged status matches what the client saw.
func Slog(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}
			lat := time.Since(start).Milliseconds()

			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			log.Info("http",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency_ms", lat,
				"req_id", rid,
				"ip", c.RealIP(),
				"ua", c.Request().UserAgent(),
			)
			return nil
		}
	}
}
