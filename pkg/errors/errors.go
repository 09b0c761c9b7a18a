package errors

import (
	"errors"
	"fmt"
)

// Domain errors - Sentinel errors for use with errors.Is()
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrBadRequest         = errors.New("bad request")
	ErrConflict           = errors.New("resource already exists")
	ErrInternalServer     = errors.New("internal server error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation error")
	ErrUnsupportedMedia   = errors.New("unsupported media type")
	ErrTooManyRequests    = errors.New("too many requests")
)

// AppError carries a caller-facing message alongside the sentinel it wraps.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Constructors
func NotFound(msg string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: msg, Err: ErrNotFound}
}

func Unauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Err: ErrUnauthorized}
}

func Forbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Err: ErrForbidden}
}

func BadRequest(msg string) *AppError {
	return &AppError{Code: "BAD_REQUEST", Message: msg, Err: ErrBadRequest}
}

func Conflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Err: ErrConflict}
}

func Validation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Err: ErrValidation}
}

func UnsupportedMedia(msg string) *AppError {
	return &AppError{Code: "UNSUPPORTED_MEDIA_TYPE", Message: msg, Err: ErrUnsupportedMedia}
}

func InternalServer(msg string, err error) *AppError {
	if err == nil {
		return &AppError{Code: "INTERNAL_SERVER_ERROR", Message: msg, Err: ErrInternalServer}
	}
	return &AppError{Code: "INTERNAL_SERVER_ERROR", Message: msg, Err: fmt.Errorf("%w: %w", ErrInternalServer, err)}
}

// InvalidCredentials is a 401 whose message never reveals which part of the login failed.
func InvalidCredentials(msg string) *AppError {
	return &AppError{Code: "INVALID_CREDENTIALS", Message: msg, Err: ErrInvalidCredentials}
}

// Message returns the caller-facing message of err if it is (or wraps) an AppError.
func Message(err error) (string, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message, true
	}
	return "", false
}
