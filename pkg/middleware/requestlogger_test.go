package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/FoodStore/pkg/logger"
)

func newTestLogger(w *bytes.Buffer) *slog.Logger {
	return logger.NewWithWriter("test-svc", "info", w)
}

func logOnce(t *testing.T, ctx context.Context, mw func(http.Handler) http.Handler, buf *bytes.Buffer) map[string]any {
	t.Helper()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("handler log")
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/food/list", nil).WithContext(ctx)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestRequestLogger_IncludesCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	ctx := logger.WithCorrelationID(context.Background(), "corr-test-123")

	out := logOnce(t, ctx, RequestLogger(newTestLogger(&buf)), &buf)
	if got := out["correlation_id"]; got != "corr-test-123" {
		t.Errorf("correlation_id = %v, want %q", got, "corr-test-123")
	}
	if got := out["service"]; got != "test-svc" {
		t.Errorf("service = %v, want %q", got, "test-svc")
	}
}

func TestRequestLogger_IncludesUserIDFromAuthContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithUserID(context.Background(), "user-42")

	out := logOnce(t, ctx, RequestLogger(newTestLogger(&buf)), &buf)
	if got := out["user_id"]; got != "user-42" {
		t.Errorf("user_id = %v, want %q", got, "user-42")
	}
}

func TestRequestLogger_IncludesTraceFields(t *testing.T) {
	var buf bytes.Buffer
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	out := logOnce(t, ctx, RequestLogger(newTestLogger(&buf)), &buf)
	if got := out["trace_id"]; got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("trace_id = %v", got)
	}
	if got := out["span_id"]; got != "00f067aa0ba902b7" {
		t.Errorf("span_id = %v", got)
	}
}

func TestRequestLogger_NoUserID_OmitsField(t *testing.T) {
	var buf bytes.Buffer
	out := logOnce(t, context.Background(), RequestLogger(newTestLogger(&buf)), &buf)
	if _, ok := out["user_id"]; ok {
		t.Error("user_id should not be present when not set")
	}
}
