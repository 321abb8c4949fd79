// Package forward relays gateway requests to backend services, preserving
// status codes and response bodies byte for byte so the gateway never
// rewrites a backend's contract.
package forward

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	apperrors "github.com/ftibo33/storefront/pkg/errors"

	"github.com/ftibo33/storefront/internal/registry"
)

// maxRelayBody caps how much of a backend response the gateway will buffer.
const maxRelayBody = 10 << 20 // 10 MB

// HTTPDoer is the interface for executing HTTP requests.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Result is a relayed backend response.
type Result struct {
	Status      int
	ContentType string
	Body        []byte
}

// Forwarder relays requests to backend services resolved via the registry.
type Forwarder struct {
	registry *registry.Registry
	client   HTTPDoer
	logger   *slog.Logger
}

// New creates a forwarder.
func New(reg *registry.Registry, client HTTPDoer, logger *slog.Logger) *Forwarder {
	return &Forwarder{registry: reg, client: client, logger: logger}
}

// Forward sends the request to the named service and returns the backend's
// response verbatim, including error statuses. A transport failure is
// returned as a 503 naming the service; backend 4xx/5xx responses are not
// errors here, the caller relays them as-is.
func (f *Forwarder) Forward(ctx context.Context, svc registry.Service, method, pathAndQuery, contentType string, body io.Reader) (*Result, error) {
	base, err := f.registry.Resolve(svc)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	req, err := http.NewRequestWithContext(ctx, method, base+pathAndQuery, body)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("build relay request: %w", err))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := f.client.Do(ctx, req)
	if err != nil {
		f.logger.ErrorContext(ctx, "relay failed",
			slog.String("service", string(svc)),
			slog.String("method", method),
			slog.String("path", pathAndQuery),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.Unavailable(string(svc), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxRelayBody))
	if err != nil {
		return nil, apperrors.Unavailable(string(svc), fmt.Errorf("read response: %w", err))
	}

	return &Result{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        respBody,
	}, nil
}
