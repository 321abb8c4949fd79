package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ftibo33/storefront/pkg/health"
	"github.com/ftibo33/storefront/pkg/httpclient"
	"github.com/ftibo33/storefront/pkg/tracing"

	"github.com/ftibo33/storefront/internal/gateway/config"
	"github.com/ftibo33/storefront/internal/gateway/forward"
	gwhealth "github.com/ftibo33/storefront/internal/gateway/health"
	handler "github.com/ftibo33/storefront/internal/gateway/handler/http"
	"github.com/ftibo33/storefront/internal/registry"
)

// App wires together all dependencies and runs the API gateway.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "gateway",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Service registry for locating backends.
	reg := registry.New(registry.Config{
		UserServiceURL:    cfg.UserServiceURL,
		ProductServiceURL: cfg.ProductServiceURL,
		OrderServiceURL:   cfg.OrderServiceURL,
	})
	for _, svc := range registry.All() {
		url, _ := reg.Resolve(svc)
		logger.Info("registered backend service",
			slog.String("service", string(svc)),
			slog.String("url", url),
		)
	}

	// Relay client. No retries: the gateway must not replay a POST the
	// backend may already have applied.
	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = cfg.ClientTimeout
	clientCfg.MaxRetries = 0
	client := httpclient.New(clientCfg)

	forwarder := forward.New(reg, client, logger)
	aggregator := gwhealth.NewAggregator(reg, client, cfg.HealthProbeTimeout, logger)
	healthHandler := health.NewHandler("Gateway")

	router := handler.NewRouter(cfg, forwarder, aggregator, healthHandler, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the HTTP server, then the tracer.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
