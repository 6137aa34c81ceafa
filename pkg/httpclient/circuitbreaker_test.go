package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/FoodStore/pkg/logger"
)

func testCBConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      100 * time.Millisecond,
		FailureRatio: 0.5,
		MinRequests:  3,
	}
}

func get(t *testing.T, d Doer, url string) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, http.NoBody)
	require.NoError(t, err)
	return d.Do(context.Background(), req)
}

func TestCircuitBreaker_ClosedState_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(New(DefaultConfig()), testCBConfig("test-closed"), logger.Discard())

	resp, err := get(t, cb, server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_5xxKeepsBodyAndTrips(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"boom"}`))
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(New(DefaultConfig()), testCBConfig("test-trip"), logger.Discard())

	for i := 0; i < 3; i++ {
		resp, err := get(t, cb, server.URL)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.JSONEq(t, `{"success":false,"message":"boom"}`, string(body))
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := get(t, cb, server.URL)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_HalfOpenToClosedRecovery(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(New(DefaultConfig()), testCBConfig("test-recovery"), logger.Discard())

	for i := 0; i < 3; i++ {
		resp, _ := get(t, cb, server.URL)
		if resp != nil {
			resp.Body.Close()
		}
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())

	time.Sleep(150 * time.Millisecond)
	failing.Store(false)

	resp, err := get(t, cb, server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_4xxNotCountedAsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(New(DefaultConfig()), testCBConfig("test-4xx"), logger.Discard())

	for i := 0; i < 5; i++ {
		resp, err := get(t, cb, server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_TransportErrorsTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	cb := NewCircuitBreakerClient(New(DefaultConfig()), testCBConfig("test-transport"), logger.Discard())
	for i := 0; i < 3; i++ {
		_, err := get(t, cb, url)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())
}

func TestStateToFloat(t *testing.T) {
	assert.Equal(t, 0.0, stateToFloat(gobreaker.StateClosed))
	assert.Equal(t, 1.0, stateToFloat(gobreaker.StateHalfOpen))
	assert.Equal(t, 2.0, stateToFloat(gobreaker.StateOpen))
}

func TestCircuitBreaker_CanceledRequestsDoNotTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	cb := NewCircuitBreakerClient(New(DefaultConfig()), testCBConfig("test-canceled"), logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 5; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, http.NoBody)
		require.NoError(t, err)
		_, err = cb.Do(ctx, req)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_RejectionCounted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(New(DefaultConfig()), testCBConfig("test-rejected"), logger.Discard())
	for i := 0; i < 3; i++ {
		resp, err := get(t, cb, server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}

	before := testutil.ToFloat64(circuitBreakerRejected.WithLabelValues("test-rejected"))
	_, err := get(t, cb, server.URL)
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Contains(t, err.Error(), "test-rejected")
	assert.Equal(t, before+1, testutil.ToFloat64(circuitBreakerRejected.WithLabelValues("test-rejected")))
}
