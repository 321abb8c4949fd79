package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corsRequest(t *testing.T, cfg CORSConfig, method, origin string) *httptest.ResponseRecorder {
	t.Helper()
	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[]`))
	}))

	req := httptest.NewRequest(method, "/api/products", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCORS_OriginPolicy(t *testing.T) {
	storefront := "https://shop.example.com"
	backoffice := "https://admin.example.com"

	tests := []struct {
		name        string
		cfg         CORSConfig
		origin      string
		wantAllowed string
		wantVary    bool
	}{
		{
			name:        "development implies wildcard",
			cfg:         CORSConfig{AllowedOrigins: []string{storefront}, Environment: "development"},
			origin:      "https://somewhere-else.example.com",
			wantAllowed: "*",
		},
		{
			name:        "explicit wildcard in production",
			cfg:         CORSConfig{AllowedOrigins: []string{"*"}, Environment: "production"},
			origin:      "https://somewhere-else.example.com",
			wantAllowed: "*",
		},
		{
			name:        "listed origin echoed back",
			cfg:         CORSConfig{AllowedOrigins: []string{storefront, backoffice}, Environment: "production"},
			origin:      backoffice,
			wantAllowed: backoffice,
			wantVary:    true,
		},
		{
			name:   "unlisted origin gets no allow header",
			cfg:    CORSConfig{AllowedOrigins: []string{storefront}, Environment: "production"},
			origin: "https://evil.example.com",
		},
		{
			name: "no origin header, no allow header",
			cfg:  CORSConfig{AllowedOrigins: []string{storefront}, Environment: "production"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := corsRequest(t, tt.cfg, http.MethodGet, tt.origin)

			require.Equal(t, http.StatusOK, rec.Code, "CORS must not block the request itself")
			assert.Equal(t, tt.wantAllowed, rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantVary {
				assert.Equal(t, "Origin", rec.Header().Get("Vary"))
			}
		})
	}
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	rec := corsRequest(t, CORSConfig{
		AllowedOrigins: []string{"*"},
		Environment:    "production",
	}, http.MethodOptions, "https://shop.example.com")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String(), "preflight must not reach the handler")
}

func TestCORS_HeaderDefaultsAndOverrides(t *testing.T) {
	rec := corsRequest(t, CORSConfig{AllowedOrigins: []string{"*"}}, http.MethodGet, "")
	assert.Equal(t, "GET, POST, PUT, PATCH, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Accept, Authorization, Content-Type, X-Correlation-ID", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, rec.Header().Get("Access-Control-Expose-Headers"))

	rec = corsRequest(t, CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"Content-Type", "X-Correlation-ID"},
		ExposedHeaders: []string{"X-Correlation-ID", "Retry-After"},
		MaxAge:         300,
	}, http.MethodGet, "")
	assert.Equal(t, "Content-Type, X-Correlation-ID", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "X-Correlation-ID, Retry-After", rec.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "300", rec.Header().Get("Access-Control-Max-Age"))
}
