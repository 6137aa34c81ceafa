package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"time"
)

// Doer is satisfied by Client and CircuitBreakerClient.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Config holds HTTP client configuration.
type Config struct {
	Timeout         time.Duration
	MaxRetries      int
	RetryWaitMin    time.Duration
	RetryWaitMax    time.Duration
	MaxConnsPerHost int
}

// DefaultConfig returns defaults for calls that never retry. Storefront
// mutations are not idempotent, so retries are opt-in.
func DefaultConfig() Config {
	return Config{
		Timeout:         15 * time.Second,
		MaxRetries:      0,
		RetryWaitMin:    200 * time.Millisecond,
		RetryWaitMax:    2 * time.Second,
		MaxConnsPerHost: 32,
	}
}

// Client wraps http.Client with pooled transport and optional retries.
type Client struct {
	httpClient *http.Client
	config     Config
}

// New creates a Client.
func New(cfg Config) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: time.Second,
	}

	return &Client{
		httpClient: &http.Client{Transport: transport, Timeout: cfg.Timeout},
		config:     cfg,
	}
}

// Do executes req, retrying network errors and retryable 5xx answers up to
// MaxRetries times. Request bodies are buffered so every attempt resends them.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)

	var payload []byte
	if req.Body != nil && req.Body != http.NoBody && c.config.MaxRetries > 0 {
		b, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("buffer request body: %w", err)
		}
		payload = b
	}

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if payload != nil {
			req.Body = io.NopCloser(bytes.NewReader(payload))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if isRetryableError(err) && attempt < c.config.MaxRetries {
				continue
			}
			return nil, fmt.Errorf("http request failed after %d attempts: %w", attempt+1, err)
		}

		if isRetryableStatus(resp.StatusCode) && attempt < c.config.MaxRetries {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			continue
		}
		return resp, nil
	}
}

// Get performs an HTTP GET request.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create GET request: %w", err)
	}
	return c.Do(ctx, req)
}

func (c *Client) backoff(attempt int) time.Duration {
	wait := c.config.RetryWaitMin * time.Duration(1<<uint(attempt-1))
	if wait > c.config.RetryWaitMax {
		wait = c.config.RetryWaitMax
	}
	return addJitter(wait)
}

// addJitter spreads d by up to ±25%.
func addJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	quarter := int64(d) / 4
	if quarter == 0 {
		return d
	}
	return d - time.Duration(quarter) + time.Duration(rand.Int64N(2*quarter+1))
}

func isRetryableStatus(code int) bool {
	return code >= 500 && code != http.StatusNotImplemented
}

func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
