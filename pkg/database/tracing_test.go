package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func installRecorder(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func slowLog(t *testing.T, threshold time.Duration) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetSlowQueryLogging(threshold, slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { SetSlowQueryLogging(0, nil) })
	return &buf
}

func spanAttrs(s tracetest.SpanStub) map[string]string {
	out := make(map[string]string, len(s.Attributes))
	for _, a := range s.Attributes {
		out[string(a.Key)] = a.Value.Emit()
	}
	return out
}

func TestTraceQuery_Span(t *testing.T) {
	tests := []struct {
		system, op, stmt string
		err              error
		status           codes.Code
	}{
		{SystemPostgres, "foods.get", "SELECT id FROM foods WHERE id = $1", nil, codes.Unset},
		{SystemPostgres, "foods.set_stock", "UPDATE foods SET in_stock = $2 WHERE id = $1", errors.New("connection refused"), codes.Error},
		{SystemRedis, "cart.decrement", "EVALSHA", nil, codes.Unset},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			exporter := installRecorder(t)

			_, end := TraceQuery(context.Background(), tt.system, tt.op, tt.stmt)
			end(tt.err)

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			span := spans[0]

			assert.Equal(t, "db."+tt.op, span.Name)
			assert.Equal(t, trace.SpanKindClient, span.SpanKind)
			assert.Equal(t, map[string]string{
				"db.system":    tt.system,
				"db.operation": tt.op,
				"db.statement": tt.stmt,
			}, spanAttrs(span))
			assert.Equal(t, tt.status, span.Status.Code)
			if tt.err != nil {
				require.NotEmpty(t, span.Events)
				assert.Equal(t, "exception", span.Events[0].Name)
			}
		})
	}
}

func TestTraceQuery_ChildOfCaller(t *testing.T) {
	exporter := installRecorder(t)

	ctx, parent := otel.Tracer("test").Start(context.Background(), "POST /api/cart/add")
	_, end := TraceQuery(ctx, SystemRedis, "cart.increment", "HINCRBY")
	end(nil)
	parent.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	child, root := spans[0], spans[1]
	assert.Equal(t, root.SpanContext.TraceID(), child.SpanContext.TraceID())
	assert.Equal(t, root.SpanContext.SpanID(), child.Parent.SpanID())
}

func TestSlowQueryLogging(t *testing.T) {
	t.Run("slow query logged with error", func(t *testing.T) {
		installRecorder(t)
		buf := slowLog(t, time.Nanosecond)

		_, end := TraceQuery(context.Background(), SystemPostgres, "users.create", "INSERT INTO users")
		end(errors.New("duplicate key"))

		out := buf.String()
		assert.Contains(t, out, "slow query detected")
		assert.Contains(t, out, "users.create")
		assert.Contains(t, out, "INSERT INTO users")
		assert.Contains(t, out, "duplicate key")
	})

	t.Run("fast query not logged", func(t *testing.T) {
		installRecorder(t)
		buf := slowLog(t, time.Hour)

		_, end := TraceQuery(context.Background(), SystemPostgres, "foods.list", "SELECT 1")
		end(nil)

		assert.Empty(t, buf.String())
	})

	t.Run("disabled", func(t *testing.T) {
		installRecorder(t)
		SetSlowQueryLogging(0, nil)

		_, end := TraceQuery(context.Background(), SystemPostgres, "foods.list", "SELECT 1")
		assert.NotPanics(t, func() { end(nil) })
	})
}

func TestSetSlowQueryLogging_Concurrent(t *testing.T) {
	t.Cleanup(func() { SetSlowQueryLogging(0, nil) })
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			SetSlowQueryLogging(time.Duration(i)*time.Millisecond, logger)
		}
	}()
	for i := 0; i < 100; i++ {
		getSlowQueryConfig()
	}
	<-done
}
