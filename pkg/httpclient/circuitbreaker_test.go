package httpclient

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBreakerClient(t *testing.T, name string) *CircuitBreakerClient {
	t.Helper()
	cfg := CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      50 * time.Millisecond,
		FailureRatio: 0.5,
		MinRequests:  3,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCircuitBreakerClient(newTestClient(0), cfg, logger)
}

func breakerGet(t *testing.T, client *CircuitBreakerClient, url string) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	return client.Do(t.Context(), req)
}

func TestCircuitBreaker_PassesSuccessThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"available":true}`))
	}))
	defer srv.Close()

	resp, err := breakerGet(t, newBreakerClient(t, "stock-check"), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"available":true}`, string(body))
}

func TestCircuitBreaker_ServerErrorReturnedToCaller(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"code":"UPSTREAM_ERROR","message":"boom"}}`))
	}))
	defer srv.Close()

	resp, err := breakerGet(t, newBreakerClient(t, "relay-5xx"), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	// The failure is counted, but the caller still gets the body to relay.
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "UPSTREAM_ERROR")
}

func TestCircuitBreaker_OpensAfterRepeatedFailures(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newBreakerClient(t, "trip")

	for i := 0; i < 3; i++ {
		resp, err := breakerGet(t, client, srv.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}

	// The ratio is met, so the next call is rejected without a request.
	before := hits.Load()
	_, err := breakerGet(t, client, srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, before, hits.Load())
}

func TestCircuitBreaker_RecoversAfterTimeout(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newBreakerClient(t, "recover")

	for i := 0; i < 3; i++ {
		resp, err := breakerGet(t, client, srv.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}
	_, err := breakerGet(t, client, srv.URL)
	require.ErrorIs(t, err, ErrCircuitOpen)

	fail.Store(false)
	time.Sleep(80 * time.Millisecond)

	resp, err := breakerGet(t, client, srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCircuitBreaker_TransportErrorCountsAsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := newBreakerClient(t, "dead-backend")

	for i := 0; i < 3; i++ {
		_, err := breakerGet(t, client, url)
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrCircuitOpen)
	}

	_, err := breakerGet(t, client, url)
	require.ErrorIs(t, err, ErrCircuitOpen)
}
