package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ftibo33/storefront/pkg/health"
	"github.com/ftibo33/storefront/pkg/middleware"

	"github.com/ftibo33/storefront/internal/order/service"
)

// NewRouter creates a chi router with all order service routes registered.
// Orders cannot be deleted; confirmed orders are part of the audit trail.
func NewRouter(
	orderService *service.OrderService,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("order"))
	r.Use(middleware.Tracing("order"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Order API endpoints
	orderHandler := NewOrderHandler(orderService, logger)

	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/health", healthHandler.ServiceHandler())

		r.Get("/", orderHandler.ListOrders)
		r.Post("/", orderHandler.CreateOrder)
		r.Get("/{id}", orderHandler.GetOrder)
		r.Get("/user/{userId}", orderHandler.ListOrdersByUser)
		r.Patch("/{id}/status", orderHandler.UpdateOrderStatus)
	})

	return r
}
