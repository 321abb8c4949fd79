package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	pkghealth "github.com/ftibo33/storefront/pkg/health"
	pkgmiddleware "github.com/ftibo33/storefront/pkg/middleware"

	"github.com/ftibo33/storefront/internal/gateway/config"
	"github.com/ftibo33/storefront/internal/gateway/forward"
	gwhealth "github.com/ftibo33/storefront/internal/gateway/health"
	gwmiddleware "github.com/ftibo33/storefront/internal/gateway/middleware"
	"github.com/ftibo33/storefront/internal/registry"
)

// NewRouter creates the gateway's chi router. The route table is explicit:
// only the methods each backend supports are exposed, so a DELETE on
// /api/orders is a gateway-level 405 rather than a backend round trip.
func NewRouter(
	cfg *config.Config,
	forwarder *forward.Forwarder,
	aggregator *gwhealth.Aggregator,
	healthHandler *pkghealth.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack (applied in order).
	r.Use(pkgmiddleware.CORS(pkgmiddleware.CORSConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: cfg.CORSAllowedMethods,
		AllowedHeaders: cfg.CORSAllowedHeaders,
		ExposedHeaders: []string{"X-Correlation-ID", "Retry-After"},
		MaxAge:         cfg.CORSMaxAge,
		Environment:    cfg.Environment,
	}))
	r.Use(gwmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
	r.Use(pkgmiddleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(pkgmiddleware.RequestLogging(logger))
	r.Use(pkgmiddleware.PrometheusMetrics("gateway"))
	r.Use(pkgmiddleware.Tracing("gateway"))
	r.Use(pkgmiddleware.RequestLogger(logger))

	// Gateway's own health endpoints.
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	handler := NewGatewayHandler(forwarder, logger)

	// Aggregate backend health.
	r.Get("/api/health", aggregator.Handler())

	// User service.
	r.Route("/api/users", func(r chi.Router) {
		relay := handler.Relay(registry.UserService)
		r.Get("/health", relay)
		r.Get("/", relay)
		r.Post("/", relay)
		r.Get("/{id}", relay)
		r.Put("/{id}", relay)
		r.Delete("/{id}", relay)
	})

	// Product service.
	r.Route("/api/products", func(r chi.Router) {
		relay := handler.Relay(registry.ProductService)
		r.Get("/health", relay)
		r.Get("/", relay)
		r.Post("/", relay)
		r.Get("/{id}", relay)
		r.Put("/{id}", relay)
		r.Delete("/{id}", relay)
		r.Get("/{id}/check-stock", relay)
		r.Post("/{id}/reduce-stock", relay)
	})

	// Order service. No DELETE: orders are immutable once placed.
	r.Route("/api/orders", func(r chi.Router) {
		relay := handler.Relay(registry.OrderService)
		r.Get("/health", relay)
		r.Get("/", relay)
		r.Post("/", relay)
		r.Get("/{id}", relay)
		r.Get("/user/{userId}", relay)
		r.Patch("/{id}/status", relay)
	})

	return r
}
