package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInternal          = errors.New("internal error")
	ErrUnavailable       = errors.New("service unavailable")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// AppError represents a structured application error with HTTP status mapping.
// Service names the downstream service for upstream failures, Step names the
// orchestration step for saga aborts; both are empty for plain errors.
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Service string         `json:"service,omitempty"`
	Step    string         `json:"step,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Status  int            `json:"-"`
	Err     error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error for an integer-keyed record.
func NotFound(resource string, id int) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %d not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// InsufficientStock creates a 400 error carrying the requested and available
// quantities so callers can see how far short the stock fell.
func InsufficientStock(requested, available int) *AppError {
	return &AppError{
		Code:    "INSUFFICIENT_STOCK",
		Message: "insufficient stock",
		Details: map[string]any{"requested": requested, "available": available},
		Status:  http.StatusBadRequest,
		Err:     ErrInsufficientStock,
	}
}

// Unavailable creates a 503 error naming the downstream service that could
// not be reached. This is the single client-facing shape for transport
// failures; the underlying cause is preserved in Err for logging.
func Unavailable(service string, err error) *AppError {
	msg := fmt.Sprintf("service %s is unreachable", service)
	if err != nil {
		msg = fmt.Sprintf("service %s is unreachable: %v", service, err)
	}
	return &AppError{
		Code:    "UPSTREAM_UNAVAILABLE",
		Message: msg,
		Service: service,
		Status:  http.StatusServiceUnavailable,
		Err:     errors.Join(ErrUnavailable, err),
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Step annotates err with an orchestration step name. AppErrors keep their
// code and status; anything else becomes an Internal error for that step.
func Step(step string, err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		cpy := *appErr
		cpy.Step = step
		return &cpy
	}
	cpy := Internal(err)
	cpy.Step = step
	return cpy
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInsufficientStock):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
