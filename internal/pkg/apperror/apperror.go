package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes. "Recipient unreachable" is deliberately not here: an offline
// recipient is a normal delivery branch, never an error.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeValidation   = "VALIDATION"
	CodeStorage      = "STORAGE_FAILURE"
)

// AppError carries an HTTP status and a stable code alongside the message,
// so controllers can map service failures without string matching.
type AppError struct {
	Status  int
	Code    string
	Message string
	cause   error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

func NotFound(message string) *AppError {
	return &AppError{Status: fiber.StatusNotFound, Code: CodeNotFound, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Status: fiber.StatusForbidden, Code: CodeForbidden, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Status: fiber.StatusConflict, Code: CodeConflict, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Status: fiber.StatusUnauthorized, Code: CodeUnauthorized, Message: message}
}

func Validation(message string) *AppError {
	return &AppError{Status: fiber.StatusBadRequest, Code: CodeValidation, Message: message}
}

// Storage wraps a failed durable write. These always surface to the caller;
// a committed write is the success criterion for send/seen operations.
func Storage(message string, cause error) *AppError {
	return &AppError{Status: fiber.StatusInternalServerError, Code: CodeStorage, Message: message, cause: cause}
}

func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

func IsForbidden(err error) bool {
	return hasCode(err, CodeForbidden)
}

func IsConflict(err error) bool {
	return hasCode(err, CodeConflict)
}

func hasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
