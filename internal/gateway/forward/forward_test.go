package forward

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ftibo33/storefront/pkg/errors"
	"github.com/ftibo33/storefront/pkg/httpclient"

	"github.com/ftibo33/storefront/internal/registry"
)

func newForwarder(t *testing.T, userURL string) *Forwarder {
	t.Helper()
	reg := registry.New(registry.Config{UserServiceURL: userURL})
	clientCfg := httpclient.DefaultConfig()
	clientCfg.MaxRetries = 0
	return New(reg, httpclient.New(clientCfg), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestForward_RelaysStatusAndBody(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/2", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"odd":"status"}`))
	}))
	t.Cleanup(backend.Close)

	f := newForwarder(t, backend.URL)
	result, err := f.Forward(t.Context(), registry.UserService, http.MethodGet, "/api/users/2", "", nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusTeapot, result.Status)
	assert.Equal(t, "application/json", result.ContentType)
	assert.Equal(t, `{"odd":"status"}`, string(result.Body))
}

func TestForward_SendsBodyAndContentType(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"Jean"}`, string(body))
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(backend.Close)

	f := newForwarder(t, backend.URL)
	result, err := f.Forward(t.Context(), registry.UserService, http.MethodPost, "/api/users", "application/json", strings.NewReader(`{"name":"Jean"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, result.Status)
}

func TestForward_TransportFailureIsUnavailable(t *testing.T) {
	f := newForwarder(t, "http://127.0.0.1:1")

	_, err := f.Forward(t.Context(), registry.UserService, http.MethodGet, "/api/users", "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, string(registry.UserService), appErr.Service)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Status)
}
