package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// findSample pulls the sample matching every given label out of a
// collector, or returns nil when no series matches.
func findSample(c prometheus.Collector, labels map[string]string) *dto.Metric {
	ch := make(chan prometheus.Metric, 64)
	c.Collect(ch)
	close(ch)

	for m := range ch {
		var sample dto.Metric
		if m.Write(&sample) != nil {
			continue
		}
		matched := 0
		for _, lp := range sample.GetLabel() {
			if want, ok := labels[lp.GetName()]; ok && lp.GetValue() == want {
				matched++
			}
		}
		if matched == len(labels) {
			return &sample
		}
	}
	return nil
}

func metricsRouter(service string, handler http.HandlerFunc) *chi.Mux {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics(service))
	r.Get("/api/orders/{id}", handler)
	return r
}

func TestPrometheusMetrics_CountsByRoutePattern(t *testing.T) {
	router := metricsRouter("order-metrics", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/"+id, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	// Distinct IDs collapse into the single route-pattern series.
	sample := findSample(httpRequestsTotal, map[string]string{
		"service": "order-metrics",
		"method":  "GET",
		"path":    "/api/orders/{id}",
		"status":  "200",
	})
	require.NotNil(t, sample, "expected a series for the chi route pattern")
	assert.GreaterOrEqual(t, sample.GetCounter().GetValue(), float64(3))
}

func TestPrometheusMetrics_ObservesDuration(t *testing.T) {
	router := metricsRouter("order-histogram", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/7", nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	sample := findSample(httpRequestDuration, map[string]string{
		"service": "order-histogram",
		"status":  "201",
	})
	require.NotNil(t, sample)
	assert.GreaterOrEqual(t, sample.GetHistogram().GetSampleCount(), uint64(1))
}

func TestPrometheusMetrics_TracksInFlight(t *testing.T) {
	observed := float64(-1)
	router := metricsRouter("order-inflight", func(w http.ResponseWriter, r *http.Request) {
		if sample := findSample(httpRequestsInFlight, map[string]string{"service": "order-inflight"}); sample != nil {
			observed = sample.GetGauge().GetValue()
		}
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/1", nil))

	assert.GreaterOrEqual(t, observed, float64(1), "gauge should be up while the handler runs")

	after := findSample(httpRequestsInFlight, map[string]string{"service": "order-inflight"})
	require.NotNil(t, after)
	assert.Equal(t, float64(0), after.GetGauge().GetValue(), "gauge should drop once the handler returns")
}

func TestPrometheusMetrics_StatusLabels(t *testing.T) {
	tests := []struct {
		name   string
		handle http.HandlerFunc
		status string
	}{
		{
			name:   "explicit 404",
			handle: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
			status: "404",
		},
		{
			name:   "explicit 500",
			handle: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			status: "500",
		},
		{
			name:   "implicit 200 from a bare write",
			handle: func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`[]`)) },
			status: "200",
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := "order-status-" + tt.status + "-" + string(rune('a'+i))
			router := metricsRouter(service, tt.handle)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/1", nil))

			sample := findSample(httpRequestsTotal, map[string]string{
				"service": service,
				"status":  tt.status,
			})
			assert.NotNil(t, sample, "expected a series labelled with status %s", tt.status)
		})
	}
}
