package utils

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/ops-portal/internal/types"
)

// Timestamp is the response timestamp format.
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ErrorResponse sends a standard error response
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"success":   false,
		"timestamp": Timestamp(),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}

// AppErrorResponse sends err as a standard error response, using the code and type
// of a CustomError when err carries one.
func AppErrorResponse(c *fiber.Ctx, err error) error {
	var ce *types.CustomError
	if errors.As(err, &ce) {
		return ErrorResponse(c, ce.Message, ce.Code, ce.Type)
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return ErrorResponse(c, fe.Message, fe.Code, "unknown")
	}
	return ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "unknown")
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound, types.TypeNotFound)
}

// MutationSuccessResponse sends a success response for mutations. Entries of fields are
// merged into the body.
func MutationSuccessResponse(c *fiber.Ctx, status int, message string, fields fiber.Map) error {
	body := fiber.Map{
		"message":   message,
		"ok":        true,
		"success":   true,
		"timestamp": Timestamp(),
	}
	for k, v := range fields {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Success   bool   `json:"success"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
	Type      string `json:"type,omitempty"`
}

// SuccessResponseStruct defines the schema for mutation success responses
type SuccessResponseStruct struct {
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Success   bool   `json:"success"`
	Timestamp string `json:"timestamp"`
}
