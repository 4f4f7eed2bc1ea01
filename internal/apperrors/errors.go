package apperrors

import (
	"errors"
	"fmt"

	"userapi/internal/models"
)

// Error codes exposed to the transport layer. The transport maps each code
// to an HTTP status; this package never deals in status codes.
const (
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeUserAlreadyExists   = "USER_ALREADY_EXISTS"
	CodeValidationError     = "VALIDATION_ERROR"
	CodeInvalidSortProperty = "INVALID_SORT_PROPERTY"
	CodeInvalidArgument     = "INVALID_ARGUMENT"
	CodeInternal            = "INTERNAL_SERVER_ERROR"
)

// AppError is a business-rule failure raised by the service layer.
// FieldErrors is only populated for validation failures.
type AppError struct {
	Code        string
	Message     string
	FieldErrors []models.FieldError
	cause       error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// NotFoundf reports that no record matched the given identifier.
func NotFoundf(format string, args ...any) *AppError {
	return &AppError{Code: CodeUserNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflictf reports an email uniqueness violation.
func Conflictf(format string, args ...any) *AppError {
	return &AppError{Code: CodeUserAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

// Validation reports one or more field violations.
func Validation(fieldErrors []models.FieldError) *AppError {
	return &AppError{
		Code:        CodeValidationError,
		Message:     "Validation failed for one or more fields",
		FieldErrors: fieldErrors,
	}
}

// InvalidArgumentf reports malformed input not covered by field validation,
// such as an unparsable id.
func InvalidArgumentf(format string, args ...any) *AppError {
	return &AppError{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure. The message shown to callers is
// generic; the cause is retained for logging only.
func Internal(cause error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "An unexpected error occurred",
		cause:   cause,
	}
}

// From extracts an *AppError from err, wrapping anything unexpected as an
// internal error so callers always see a member of the taxonomy.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
