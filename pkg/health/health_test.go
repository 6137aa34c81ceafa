package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error   { return nil }
func down(context.Context) error { return fmt.Errorf("connection refused") }

func ready(t *testing.T, h *Handler) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestLivenessHandler_AlwaysReturns200(t *testing.T) {
	h := NewHandler()
	h.Register("postgres", down)

	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, StatusUp, resp.Status)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name        string
		critical    map[string]Checker
		nonCritical map[string]Checker
		wantCode    int
		wantStatus  Status
	}{
		{"no checkers", nil, nil, http.StatusOK, StatusUp},
		{"all healthy", map[string]Checker{"postgres": ok, "redis": ok}, map[string]Checker{"kafka": ok}, http.StatusOK, StatusUp},
		{"critical down", map[string]Checker{"postgres": down, "redis": ok}, nil, http.StatusServiceUnavailable, StatusDown},
		{"non-critical down", map[string]Checker{"postgres": ok}, map[string]Checker{"kafka": down}, http.StatusOK, StatusDegraded},
		{"both down", map[string]Checker{"redis": down}, map[string]Checker{"kafka": down}, http.StatusServiceUnavailable, StatusDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler()
			for name, c := range tt.critical {
				h.Register(name, c)
			}
			for name, c := range tt.nonCritical {
				h.RegisterNonCritical(name, c)
			}

			code, resp := ready(t, h)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Len(t, resp.Checks, len(tt.critical)+len(tt.nonCritical))
		})
	}
}

func TestReadinessHandler_ReportsErrors(t *testing.T) {
	h := NewHandler()
	h.RegisterNonCritical("storage", down)

	_, resp := ready(t, h)
	res := resp.Checks["storage"]
	assert.Equal(t, StatusDown, res.Status)
	assert.False(t, res.Critical)
	assert.Equal(t, "connection refused", res.Error)
}

func TestRegister_OverwritesAndSorts(t *testing.T) {
	h := NewHandler()
	h.Register("redis", down)
	h.Register("postgres", ok)
	h.Register("redis", ok)

	assert.Equal(t, []string{"postgres", "redis"}, h.Names())
	code, _ := ready(t, h)
	assert.Equal(t, http.StatusOK, code)
}
