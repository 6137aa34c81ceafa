package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Checker reports the health of one dependency.
type Checker func(ctx context.Context) error

// Status represents the health status of a component.
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// Response is the JSON body returned by the health endpoints.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the result of a single health check.
type CheckResult struct {
	Status   Status `json:"status"`
	Critical bool   `json:"critical"`
	Error    string `json:"error,omitempty"`
}

type registration struct {
	check    Checker
	critical bool
}

// Handler serves liveness and readiness endpoints.
type Handler struct {
	mu       sync.RWMutex
	checkers map[string]registration
	timeout  time.Duration
}

// NewHandler creates a health handler with a 5s readiness timeout.
func NewHandler() *Handler {
	return &Handler{
		checkers: make(map[string]registration),
		timeout:  5 * time.Second,
	}
}

// Register adds a critical checker. A failing critical checker turns
// readiness into 503.
func (h *Handler) Register(name string, checker Checker) {
	h.register(name, checker, true)
}

// RegisterNonCritical adds a checker whose failure only degrades readiness.
func (h *Handler) RegisterNonCritical(name string, checker Checker) {
	h.register(name, checker, false)
}

func (h *Handler) register(name string, checker Checker, critical bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = registration{check: checker, critical: critical}
}

// Names returns registered checker names in sorted order.
func (h *Handler) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LivenessHandler answers 200 while the process runs.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Response{Status: StatusUp, Timestamp: time.Now().UTC()})
	}
}

// ReadinessHandler runs every checker concurrently. Any critical failure
// answers 503; non-critical failures answer 200 with status degraded.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		h.mu.RLock()
		regs := make(map[string]registration, len(h.checkers))
		for k, v := range h.checkers {
			regs[k] = v
		}
		h.mu.RUnlock()

		var (
			mu     sync.Mutex
			wg     sync.WaitGroup
			checks = make(map[string]CheckResult, len(regs))
		)
		for name, reg := range regs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res := CheckResult{Status: StatusUp, Critical: reg.critical}
				if err := reg.check(ctx); err != nil {
					res.Status = StatusDown
					res.Error = err.Error()
				}
				mu.Lock()
				checks[name] = res
				mu.Unlock()
			}()
		}
		wg.Wait()

		overall := StatusUp
		for _, res := range checks {
			if res.Status != StatusDown {
				continue
			}
			if res.Critical {
				overall = StatusDown
				break
			}
			overall = StatusDegraded
		}

		status := http.StatusOK
		if overall == StatusDown {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, Response{Status: overall, Timestamp: time.Now().UTC(), Checks: checks})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
