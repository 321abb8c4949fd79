package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/ftibo33/storefront/pkg/httputil"

	"github.com/ftibo33/storefront/internal/gateway/forward"
	"github.com/ftibo33/storefront/internal/registry"
)

// GatewayHandler relays API requests to backend services.
type GatewayHandler struct {
	forwarder *forward.Forwarder
	logger    *slog.Logger
}

// NewGatewayHandler creates a gateway handler.
func NewGatewayHandler(f *forward.Forwarder, logger *slog.Logger) *GatewayHandler {
	return &GatewayHandler{forwarder: f, logger: logger}
}

// Relay returns a handler that forwards the request to the given service,
// preserving the path, query string, and, for write methods, the body. The
// backend's status and body are relayed verbatim.
func (h *GatewayHandler) Relay(svc registry.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			body        io.Reader
			contentType string
		)
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			body = r.Body
			contentType = r.Header.Get("Content-Type")
		}

		result, err := h.forwarder.Forward(r.Context(), svc, r.Method, r.URL.RequestURI(), contentType, body)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}

		if result.ContentType != "" {
			w.Header().Set("Content-Type", result.ContentType)
		}
		w.WriteHeader(result.Status)
		_, _ = w.Write(result.Body)
	}
}
