package types

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error types reported in the response envelope.
const (
	TypeValidation  = "validation"
	TypeNotFound    = "notFound"
	TypeConflict    = "conflict"
	TypeLockTimeout = "lockTimeout"
	TypeStorage     = "storage"
	TypeAuth        = "authorization"
)

// CustomError is an error that carries the HTTP status it should be reported with.
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
	cause   error
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

func (e *CustomError) Unwrap() error {
	return e.cause
}

// ValidationError reports malformed input. Nothing was written.
func ValidationError(format string, args ...any) *CustomError {
	return &CustomError{Code: fiber.StatusBadRequest, Message: fmt.Sprintf(format, args...), Type: TypeValidation}
}

// NotFoundError reports a referenced entity that does not exist.
func NotFoundError(format string, args ...any) *CustomError {
	return &CustomError{Code: fiber.StatusNotFound, Message: fmt.Sprintf(format, args...), Type: TypeNotFound}
}

// ConflictError reports a business-rule violation against current state.
func ConflictError(format string, args ...any) *CustomError {
	return &CustomError{Code: fiber.StatusConflict, Message: fmt.Sprintf(format, args...), Type: TypeConflict}
}

// LockTimeoutError reports a mutation that could not acquire its locks in time. The caller may retry.
func LockTimeoutError(key string, cause error) *CustomError {
	return &CustomError{
		Code:    fiber.StatusServiceUnavailable,
		Message: fmt.Sprintf("timed out waiting for lock %q, retry the request", key),
		Type:    TypeLockTimeout,
		cause:   cause,
	}
}

// StorageError reports a persistence failure.
func StorageError(cause error) *CustomError {
	return &CustomError{Code: fiber.StatusInternalServerError, Message: "storage failure", Type: TypeStorage, cause: cause}
}

// AuthError reports a missing or insufficient session.
func AuthError(message string) *CustomError {
	return &CustomError{Code: fiber.StatusForbidden, Message: message, Type: TypeAuth}
}

// IsType reports whether err is a CustomError of the given type.
func IsType(err error, errorType string) bool {
	var ce *CustomError
	return errors.As(err, &ce) && ce.Type == errorType
}
