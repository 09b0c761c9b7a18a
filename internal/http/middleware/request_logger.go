package middleware

import (
	"time"

	"github.com/cherrycherry3/crt-backend/internal/auth"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// RequestLogger writes one structured line per request. Errors returned by the
// chain are rendered here so the logged status is the one the client saw.
func RequestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			event := log.Info()
			switch {
			case status >= 500:
				event = log.Error()
			case status >= 400:
				event = log.Warn()
			}

			event = event.
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("ip", c.RealIP()).
				Str(RequestIDContextKey, GetRequestID(c))

			if identity, err := auth.GetIdentity(c); err == nil {
				event = event.Int("user_id", identity.ID).Str("role", identity.Role)
			}

			event.Msg("request")
			return nil
		}
	}
}
