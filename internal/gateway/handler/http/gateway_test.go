package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkghealth "github.com/ftibo33/storefront/pkg/health"
	"github.com/ftibo33/storefront/pkg/httpclient"

	"github.com/ftibo33/storefront/internal/gateway/config"
	"github.com/ftibo33/storefront/internal/gateway/forward"
	gwhealth "github.com/ftibo33/storefront/internal/gateway/health"
	"github.com/ftibo33/storefront/internal/registry"
)

// echoBackend records the last request and replies with a fixed body.
type echoBackend struct {
	srv        *httptest.Server
	lastMethod string
	lastPath   string
	lastBody   string
	status     int
	response   string
}

func newEchoBackend(t *testing.T, status int, response string) *echoBackend {
	t.Helper()
	b := &echoBackend{status: status, response: response}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.lastMethod = r.Method
		b.lastPath = r.URL.RequestURI()
		body, _ := io.ReadAll(r.Body)
		b.lastBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(b.status)
		_, _ = w.Write([]byte(b.response))
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:        "development",
		HTTPPort:           5000,
		RateLimitRPS:       1000,
		RateLimitBurst:     1000,
		ClientTimeout:      5 * time.Second,
		HealthProbeTimeout: time.Second,
	}
}

func newTestGateway(t *testing.T, cfg *config.Config, userURL, productURL, orderURL string) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	reg := registry.New(registry.Config{
		UserServiceURL:    userURL,
		ProductServiceURL: productURL,
		OrderServiceURL:   orderURL,
	})

	clientCfg := httpclient.DefaultConfig()
	clientCfg.MaxRetries = 0
	clientCfg.Timeout = cfg.ClientTimeout
	client := httpclient.New(clientCfg)

	forwarder := forward.New(reg, client, logger)
	aggregator := gwhealth.NewAggregator(reg, client, cfg.HealthProbeTimeout, logger)
	return NewRouter(cfg, forwarder, aggregator, pkghealth.NewHandler("Gateway"), logger)
}

func doRequest(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRelay_GetPassthrough(t *testing.T) {
	product := newEchoBackend(t, http.StatusOK, `[{"id":1,"name":"Laptop Dell XPS 15"}]`)
	router := newTestGateway(t, testConfig(), "http://127.0.0.1:1", product.srv.URL, "http://127.0.0.1:1")

	rec := doRequest(t, router, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `[{"id":1,"name":"Laptop Dell XPS 15"}]`, rec.Body.String())
	assert.Equal(t, http.MethodGet, product.lastMethod)
	assert.Equal(t, "/api/products", product.lastPath)
}

func TestRelay_QueryStringPreserved(t *testing.T) {
	product := newEchoBackend(t, http.StatusOK, `{"isAvailable":true}`)
	router := newTestGateway(t, testConfig(), "http://127.0.0.1:1", product.srv.URL, "http://127.0.0.1:1")

	rec := doRequest(t, router, http.MethodGet, "/api/products/1/check-stock?quantity=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/api/products/1/check-stock?quantity=5", product.lastPath)
}

func TestRelay_PostBodyForwarded(t *testing.T) {
	user := newEchoBackend(t, http.StatusCreated, `{"id":3}`)
	router := newTestGateway(t, testConfig(), user.srv.URL, "http://127.0.0.1:1", "http://127.0.0.1:1")

	rec := doRequest(t, router, http.MethodPost, "/api/users", `{"name":"Jean","email":"jean@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, `{"id":3}`, rec.Body.String())
	assert.JSONEq(t, `{"name":"Jean","email":"jean@example.com"}`, user.lastBody)
}

func TestRelay_ErrorStatusPassthroughVerbatim(t *testing.T) {
	errBody := `{"error":{"code":"NOT_FOUND","message":"user with id 99 not found"}}`
	user := newEchoBackend(t, http.StatusNotFound, errBody)
	router := newTestGateway(t, testConfig(), user.srv.URL, "http://127.0.0.1:1", "http://127.0.0.1:1")

	rec := doRequest(t, router, http.MethodGet, "/api/users/99", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, errBody, rec.Body.String())
}

func TestRelay_BackendDownIs503NamingService(t *testing.T) {
	router := newTestGateway(t, testConfig(), "http://127.0.0.1:1", "http://127.0.0.1:1", "http://127.0.0.1:1")

	tests := []struct {
		name    string
		method  string
		target  string
		service registry.Service
	}{
		{"user list", http.MethodGet, "/api/users", registry.UserService},
		{"product get", http.MethodGet, "/api/products/1", registry.ProductService},
		{"order create", http.MethodPost, "/api/orders", registry.OrderService},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := ""
			if tt.method == http.MethodPost {
				body = `{"userId":1,"productId":1,"quantity":1}`
			}
			rec := doRequest(t, router, tt.method, tt.target, body)
			require.Equal(t, http.StatusServiceUnavailable, rec.Code)

			var parsed struct {
				Error struct {
					Code    string `json:"code"`
					Service string `json:"service"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
			assert.Equal(t, "UPSTREAM_UNAVAILABLE", parsed.Error.Code)
			assert.Equal(t, string(tt.service), parsed.Error.Service)
		})
	}
}

func TestRouteTable_OrderDeleteNotExposed(t *testing.T) {
	order := newEchoBackend(t, http.StatusOK, `{}`)
	router := newTestGateway(t, testConfig(), "http://127.0.0.1:1", "http://127.0.0.1:1", order.srv.URL)

	rec := doRequest(t, router, http.MethodDelete, "/api/orders/1", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Empty(t, order.lastMethod, "backend should not be contacted")
}

func TestRouteTable_UnknownPathIs404(t *testing.T) {
	router := newTestGateway(t, testConfig(), "http://127.0.0.1:1", "http://127.0.0.1:1", "http://127.0.0.1:1")

	rec := doRequest(t, router, http.MethodGet, "/api/payments", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAggregateHealth_PartialOutageStill200(t *testing.T) {
	user := newEchoBackend(t, http.StatusOK, `{"status":"healthy","service":"UserService"}`)
	router := newTestGateway(t, testConfig(), user.srv.URL, "http://127.0.0.1:1", "http://127.0.0.1:1")

	// Every call reports the same fixed service set, outage or not.
	for call := 0; call < 3; call++ {
		rec := doRequest(t, router, http.MethodGet, "/api/health", "")
		require.Equal(t, http.StatusOK, rec.Code, "call %d", call)

		var report gwhealth.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, "healthy", report.Gateway)
		require.Len(t, report.Services, 3, "call %d", call)
		for _, svc := range registry.All() {
			assert.Contains(t, report.Services, string(svc), "call %d", call)
		}
		assert.Equal(t, "healthy", report.Services["UserService"].Status)
		assert.Equal(t, "unhealthy", report.Services["ProductService"].Status)
		assert.NotEmpty(t, report.Services["ProductService"].Error)
		assert.Equal(t, "unhealthy", report.Services["OrderService"].Status)
	}
}

func TestRateLimit_Enforced(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 2
	user := newEchoBackend(t, http.StatusOK, `[]`)
	router := newTestGateway(t, cfg, user.srv.URL, "http://127.0.0.1:1", "http://127.0.0.1:1")

	var limited bool
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.RemoteAddr = "10.1.1.1:12345"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
			break
		}
	}
	assert.True(t, limited, "expected a 429 after exhausting the burst")
}

func TestGatewayHealthEndpoints(t *testing.T) {
	router := newTestGateway(t, testConfig(), "http://127.0.0.1:1", "http://127.0.0.1:1", "http://127.0.0.1:1")

	rec := doRequest(t, router, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
