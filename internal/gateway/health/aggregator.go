// Package health aggregates the health of all backend services into a
// single gateway-level report.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ftibo33/storefront/internal/registry"
)

// HTTPDoer is the interface for executing HTTP requests.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// ServiceStatus is the probe outcome for one backend service.
type ServiceStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Report is the aggregate health of the system as seen from the gateway.
// The gateway always reports itself healthy; the report exists to show
// which backends are reachable.
type Report struct {
	Gateway   string                   `json:"gateway"`
	Timestamp time.Time                `json:"timestamp"`
	Services  map[string]ServiceStatus `json:"services"`
}

// Aggregator probes every registered backend's health endpoint.
type Aggregator struct {
	registry     *registry.Registry
	client       HTTPDoer
	probeTimeout time.Duration
	logger       *slog.Logger
}

// NewAggregator creates an aggregator probing with the given per-service
// timeout.
func NewAggregator(reg *registry.Registry, client HTTPDoer, probeTimeout time.Duration, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		registry:     reg,
		client:       client,
		probeTimeout: probeTimeout,
		logger:       logger,
	}
}

// Check probes all backends concurrently and assembles the report. A failed
// probe never fails the report; the service is marked unhealthy instead,
// with the reason in the error field.
func (a *Aggregator) Check(ctx context.Context) Report {
	services := registry.All()

	var (
		mu       sync.Mutex
		statuses = make(map[string]ServiceStatus, len(services))
		wg       sync.WaitGroup
	)

	for _, svc := range services {
		wg.Add(1)
		go func(svc registry.Service) {
			defer wg.Done()
			status := a.probe(ctx, svc)
			mu.Lock()
			statuses[string(svc)] = status
			mu.Unlock()
		}(svc)
	}
	wg.Wait()

	return Report{
		Gateway:   "healthy",
		Timestamp: time.Now().UTC(),
		Services:  statuses,
	}
}

// probe calls a single backend's health endpoint.
func (a *Aggregator) probe(ctx context.Context, svc registry.Service) ServiceStatus {
	ctx, cancel := context.WithTimeout(ctx, a.probeTimeout)
	defer cancel()

	base, err := a.registry.Resolve(svc)
	if err != nil {
		return ServiceStatus{Status: "unhealthy", Error: err.Error()}
	}

	url := fmt.Sprintf("%s/api/%s/health", base, registry.Resource(svc))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ServiceStatus{Status: "unhealthy", Error: err.Error()}
	}

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		a.logger.WarnContext(ctx, "health probe failed",
			slog.String("service", string(svc)),
			slog.String("error", err.Error()),
		)
		return ServiceStatus{Status: "unhealthy", Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ServiceStatus{Status: "unhealthy", Error: fmt.Sprintf("status %d", resp.StatusCode)}
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return ServiceStatus{Status: "unhealthy", Error: "malformed health response"}
	}
	if body.Status == "" {
		body.Status = "healthy"
	}
	return ServiceStatus{Status: body.Status}
}

// Handler returns an HTTP handler serving the aggregate report. The response
// is always 200; degraded backends surface inside the body.
func (a *Aggregator) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := a.Check(r.Context())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(report)
	}
}
