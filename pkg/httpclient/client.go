// Package httpclient is the outbound HTTP client shared by the gateway
// relay and the order saga. It adds a pooled transport, bounded retries,
// and an optional circuit breaker wrapper on top of net/http.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Config controls timeouts, pooling, and the retry budget of a Client.
type Config struct {
	// Timeout bounds one attempt end to end, connect through body read.
	Timeout time.Duration

	// MaxRetries is the number of extra attempts after the first one.
	// Callers issuing non-idempotent requests (the gateway relay, the
	// saga's reduce-stock call) must leave this at zero.
	MaxRetries int

	// RetryWaitMin and RetryWaitMax bound the backoff between attempts.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// MaxConnsPerHost caps connections to a single backend.
	MaxConnsPerHost int
}

// DefaultConfig returns the baseline client settings.
func DefaultConfig() Config {
	return Config{
		Timeout:         30 * time.Second,
		MaxRetries:      3,
		RetryWaitMin:    time.Second,
		RetryWaitMax:    5 * time.Second,
		MaxConnsPerHost: 100,
	}
}

// Client wraps http.Client with retries and connection pooling.
type Client struct {
	inner *http.Client
	cfg   Config
}

// New builds a Client around a transport tuned for service-to-service
// traffic inside the storefront.
func New(cfg Config) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}

	return &Client{
		inner: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		cfg: cfg,
	}
}

// Do executes the request, retrying transport errors and retryable 5xx
// responses up to MaxRetries times. A request whose body cannot be
// replayed (Body set but GetBody nil) is never retried, whatever the
// configured budget.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)

	attempts := c.cfg.MaxRetries + 1
	if req.Body != nil && req.GetBody == nil {
		attempts = 1
	}

	var (
		resp *http.Response
		err  error
	)
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if waitErr := c.wait(ctx, attempt); waitErr != nil {
				return nil, waitErr
			}
			if req.GetBody != nil {
				body, bodyErr := req.GetBody()
				if bodyErr != nil {
					return nil, fmt.Errorf("rewind request body: %w", bodyErr)
				}
				req.Body = body
			}
		}

		resp, err = c.inner.Do(req)
		if err != nil {
			if retryableTransportError(err) && attempt < attempts-1 {
				continue
			}
			return nil, fmt.Errorf("http request failed after %d attempts: %w", attempt+1, err)
		}

		if retryableStatus(resp.StatusCode) && attempt < attempts-1 {
			_ = resp.Body.Close()
			continue
		}
		return resp, nil
	}

	return resp, err
}

// wait sleeps for the exponential backoff of the given attempt, giving
// up early when the context is done.
func (c *Client) wait(ctx context.Context, attempt int) error {
	backoff := c.cfg.RetryWaitMin * time.Duration(1<<uint(attempt-1))
	if backoff > c.cfg.RetryWaitMax {
		backoff = c.cfg.RetryWaitMax
	}
	select {
	case <-time.After(backoff):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// retryableStatus treats 5xx as transient, except 501: a backend that
// does not implement the method will not start implementing it.
func retryableStatus(status int) bool {
	return status >= 500 && status != http.StatusNotImplemented
}

func retryableTransportError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
