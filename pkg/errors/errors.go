package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies an error for the dispatch boundary. Every error that
// crosses out of a domain service carries exactly one of these.
type ErrorType string

const (
	// ErrorTypeNotFound covers both a genuinely absent record and a record
	// owned by someone else. The two cases are deliberately merged so a
	// caller can never probe for the existence of another owner's data.
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"
	ErrorTypeConflict   ErrorType = "CONFLICT"

	// ErrorTypeUnavailable marks a transient storage failure; callers may
	// retry with backoff.
	ErrorTypeUnavailable ErrorType = "STORAGE_UNAVAILABLE"

	ErrorTypeInternal ErrorType = "INTERNAL_ERROR"
)

// AppError is the typed outcome returned by domain services and translated
// by the dispatch layer into stable caller-facing codes.
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	HTTPStatus int                    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails adds structured details.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// NewNotFoundError creates a not-found error for the named resource.
// It is also the error returned on ownership mismatch.
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewValidationError creates a validation error.
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewConflictError creates a conflict error.
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewUnavailableError creates a retryable storage-unavailable error.
func NewUnavailableError(operation string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeUnavailable,
		Message:    fmt.Sprintf("storage temporarily unavailable during %s", operation),
		Cause:      err,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// NewInternalError creates an internal error. The message is safe to show to
// callers; the cause is not and stays behind Unwrap for logging.
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// GetAppError extracts an AppError from an error chain, or nil.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks whether err carries the given type.
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsNotFound reports whether err is a not-found (or ownership-merged) error.
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool {
	return IsType(err, ErrorTypeConflict)
}

// IsUnavailable reports whether err is a retryable storage error.
func IsUnavailable(err error) bool {
	return IsType(err, ErrorTypeUnavailable)
}

// IsInternal reports whether err is an internal error.
func IsInternal(err error) bool {
	return IsType(err, ErrorTypeInternal)
}

// Wrap adds context to an error while preserving its type. A plain error
// becomes an internal error so nothing untyped crosses the dispatch boundary.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}
	return NewInternalError(message).WithCause(err)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
