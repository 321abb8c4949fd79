package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/ftibo33/storefront/pkg/errors"
)

// downstreamError mirrors the error body written by the storefront services
// ({"error": {code, message, details, ...}}).
type downstreamError struct {
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details,omitempty"`
	} `json:"error"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an AppError that preserves the downstream code, message, and
// details. The caller should only invoke this when resp.StatusCode indicates
// an error. The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	var downstream downstreamError
	if json.Unmarshal(bodyBytes, &downstream) == nil && downstream.Error != nil {
		return &apperrors.AppError{
			Code:    downstream.Error.Code,
			Message: fmt.Sprintf("%s: %s", serviceName, downstream.Error.Message),
			Details: downstream.Error.Details,
			Status:  resp.StatusCode,
			Err:     sentinelForStatus(resp.StatusCode),
		}
	}

	// Unstructured error body.
	return &apperrors.AppError{
		Code:    "UPSTREAM_ERROR",
		Message: fmt.Sprintf("%s returned status %d: %s", serviceName, resp.StatusCode, string(bodyBytes)),
		Status:  resp.StatusCode,
		Err:     sentinelForStatus(resp.StatusCode),
	}
}

// sentinelForStatus maps a downstream HTTP status to the matching sentinel
// error so errors.Is checks keep working across service boundaries.
func sentinelForStatus(status int) error {
	switch {
	case status == http.StatusNotFound:
		return apperrors.ErrNotFound
	case status == http.StatusBadRequest:
		return apperrors.ErrInvalidInput
	case status == http.StatusServiceUnavailable:
		return apperrors.ErrUnavailable
	case status >= 500:
		return apperrors.ErrInternal
	default:
		return nil
	}
}
