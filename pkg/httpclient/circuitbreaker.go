package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

// CircuitBreakerConfig tunes a breaker. The breaker opens once at least
// MinRequests calls in the current Interval failed at FailureRatio or more,
// and half-opens after Timeout to let MaxRequests trial requests through.
type CircuitBreakerConfig struct {
	Name         string
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

// DefaultCircuitBreakerConfig returns the settings the storefront uses for
// the food API.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

var (
	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Breaker state: 0 closed, 1 half-open, 2 open.",
	}, []string{"name"})

	circuitBreakerRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circuit_breaker_rejected_total",
		Help: "Requests refused without being sent because the breaker was open.",
	}, []string{"name"})
)

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// ErrCircuitOpen is returned when the breaker rejects a request.
var ErrCircuitOpen = gobreaker.ErrOpenState

// serverError smuggles a 5xx response through Execute as a failure; Do
// unwraps it so the caller still reads the envelope.
type serverError struct {
	resp *http.Response
	body []byte
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server error %d", e.resp.StatusCode)
}

// CircuitBreakerClient is a Doer that stops calling next while it keeps
// failing.
type CircuitBreakerClient struct {
	next    Doer
	breaker *gobreaker.CircuitBreaker[*http.Response]
	name    string
}

// NewCircuitBreakerClient wraps next.
func NewCircuitBreakerClient(next Doer, cfg CircuitBreakerConfig, logger *slog.Logger) *CircuitBreakerClient {
	if logger == nil {
		logger = slog.Default()
	}
	circuitBreakerState.WithLabelValues(cfg.Name).Set(0)

	return &CircuitBreakerClient{
		next: next,
		name: cfg.Name,
		breaker: gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.Requests >= cfg.MinRequests &&
					float64(c.TotalFailures)/float64(c.Requests) >= cfg.FailureRatio
			},
			IsSuccessful: callerGaveUp,
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state change",
					slog.String("breaker", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()),
				)
				circuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			},
		}),
	}
}

// callerGaveUp reports whether err should not count against the server:
// nil, or the caller canceling its own request.
func callerGaveUp(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

// Do sends req unless the breaker is open. 5xx answers count as failures
// but are returned with their body intact.
func (c *CircuitBreakerClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.next.Do(ctx, req)
		if err != nil || resp.StatusCode < http.StatusInternalServerError {
			return resp, err
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		_ = resp.Body.Close()
		return nil, &serverError{resp: resp, body: body}
	})

	var srvErr *serverError
	switch {
	case errors.As(err, &srvErr):
		srvErr.resp.Body = io.NopCloser(bytes.NewReader(srvErr.body))
		return srvErr.resp, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		circuitBreakerRejected.WithLabelValues(c.name).Inc()
		return nil, fmt.Errorf("%s: %w", c.name, err)
	case err != nil:
		return nil, err
	}
	return resp, nil
}

// State returns the current breaker state.
func (c *CircuitBreakerClient) State() gobreaker.State {
	return c.breaker.State()
}
