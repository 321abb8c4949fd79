package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFound(t *testing.T) {
	err := NotFound("user", 42)

	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, "user with id 42 not found", err.Message)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("quantity must be greater than 0")

	assert.Equal(t, "INVALID_INPUT", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestInsufficientStock(t *testing.T) {
	err := InsufficientStock(10, 3)

	assert.Equal(t, "INSUFFICIENT_STOCK", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, 10, err.Details["requested"])
	assert.Equal(t, 3, err.Details["available"])
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestUnavailable(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable("ProductService", cause)

	assert.Equal(t, "UPSTREAM_UNAVAILABLE", err.Code)
	assert.Equal(t, "ProductService", err.Service)
	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.Contains(t, err.Message, "ProductService")
	assert.Contains(t, err.Message, "connection refused")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, cause)
}

func TestUnavailable_NilCause(t *testing.T) {
	err := Unavailable("UserService", nil)

	assert.Equal(t, "service UserService is unreachable", err.Message)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestInternal(t *testing.T) {
	cause := errors.New("boom")
	err := Internal(cause)

	assert.Equal(t, "INTERNAL_ERROR", err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.ErrorIs(t, err, cause)
}

func TestStep_AppError(t *testing.T) {
	base := NotFound("product", 7)
	stepped := Step("validate_product", base)

	assert.Equal(t, "validate_product", stepped.Step)
	assert.Equal(t, base.Code, stepped.Code)
	assert.Equal(t, base.Status, stepped.Status)
	// The original must stay untouched.
	assert.Empty(t, base.Step)
}

func TestStep_PlainError(t *testing.T) {
	stepped := Step("persist_order", errors.New("disk full"))

	assert.Equal(t, "persist_order", stepped.Step)
	assert.Equal(t, "INTERNAL_ERROR", stepped.Code)
	assert.Equal(t, http.StatusInternalServerError, stepped.Status)
}

func TestAppError_ErrorString(t *testing.T) {
	err := &AppError{Code: "X", Message: "failed", Err: errors.New("cause")}
	assert.Equal(t, "X: failed: cause", err.Error())

	err = &AppError{Code: "X", Message: "failed"}
	assert.Equal(t, "X: failed", err.Error())
}

func TestWrap(t *testing.T) {
	base := ErrNotFound
	wrapped := Wrap(base, "lookup user")

	require.Error(t, wrapped)
	assert.ErrorIs(t, wrapped, base)
	assert.Equal(t, "lookup user: resource not found", wrapped.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", NotFound("order", 1), http.StatusNotFound},
		{"wrapped app error", fmt.Errorf("outer: %w", InvalidInput("bad")), http.StatusBadRequest},
		{"sentinel not found", ErrNotFound, http.StatusNotFound},
		{"sentinel invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"sentinel insufficient stock", ErrInsufficientStock, http.StatusBadRequest},
		{"sentinel unavailable", ErrUnavailable, http.StatusServiceUnavailable},
		{"unknown", errors.New("mystery"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
