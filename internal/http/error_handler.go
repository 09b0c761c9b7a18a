package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/cherrycherry3/crt-backend/internal/http/middleware"
	apperrors "github.com/cherrycherry3/crt-backend/pkg/errors"
	"github.com/cherrycherry3/crt-backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	jsonKeyDetail = "detail"

	msgInternalServerError = "Internal server error"
)

// statusFor maps sentinel errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrUnauthorized), errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, apperrors.ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// NewHTTPErrorHandler renders every error as {"detail": "..."}. Unexpected errors
// become a generic 500 and the cause is logged. echo.HTTPError messages are kept.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := msgInternalServerError

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			code = httpErr.Code
			message = fmt.Sprintf("%v", httpErr.Message)
		} else {
			code = statusFor(err)
			if msg, ok := apperrors.Message(err); ok && code < http.StatusInternalServerError {
				message = msg
			} else if code < http.StatusInternalServerError {
				message = http.StatusText(code)
			}
		}

		requestID := middleware.GetRequestID(c)
		if code >= http.StatusInternalServerError {
			log.Error().
				Str(middleware.RequestIDContextKey, requestID).
				Int("status", code).
				Str("error", logger.SanitizeLogMessage(err.Error())).
				Msg("internal_server_error")
			if httpErr == nil {
				message = msgInternalServerError
			}
		} else {
			log.Warn().
				Str(middleware.RequestIDContextKey, requestID).
				Int("status", code).
				Str("error", logger.SanitizeLogMessage(err.Error())).
				Msg("client_error")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]string{jsonKeyDetail: message})
		}
		if err != nil {
			log.Error().Err(err).Msg("failed to write error response")
		}
	}
}
