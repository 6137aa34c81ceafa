package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

type ctxKey int

const (
	correlationIDKey ctxKey = iota
	userIDKey
	loggerKey
)

// New returns a JSON logger on stdout tagged with service.
func New(service, level string) *slog.Logger {
	return NewWithWriter(service, level, os.Stdout)
}

// NewWithWriter returns a JSON logger on w tagged with service. Debug level
// also records the source location.
func NewWithWriter(service, level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl <= slog.LevelDebug,
	})
	return slog.New(h).With(slog.String("service", service))
}

// Discard returns a logger that writes nothing.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps a textual level to slog.Level. Unknown input is info.
func ParseLevel(level string) slog.Level {
	var lvl slog.Level
	s := strings.ToLower(strings.TrimSpace(level))
	if s == "warning" {
		s = "warn"
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func withValue(ctx context.Context, key ctxKey, v string) context.Context {
	return context.WithValue(ctx, key, v)
}

func stringValue(ctx context.Context, key ctxKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// WithCorrelationID returns ctx carrying the request correlation id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return withValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext returns the id stored by WithCorrelationID.
func CorrelationIDFromContext(ctx context.Context) string {
	return stringValue(ctx, correlationIDKey)
}

// WithUserID returns ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, id string) context.Context {
	return withValue(ctx, userIDKey, id)
}

// UserIDFromContext returns the id stored by WithUserID.
func UserIDFromContext(ctx context.Context) string {
	return stringValue(ctx, userIDKey)
}

// NewContext stores l in ctx.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored by NewContext, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// WithContext returns l with the ids found in ctx attached.
func WithContext(ctx context.Context, l *slog.Logger) *slog.Logger {
	attrs := contextAttrs(ctx)
	if len(attrs) == 0 {
		return l
	}
	return l.With(attrs...)
}

func contextAttrs(ctx context.Context) []any {
	var attrs []any
	if id := CorrelationIDFromContext(ctx); id != "" {
		attrs = append(attrs, slog.String("correlation_id", id))
	}
	if id := UserIDFromContext(ctx); id != "" {
		attrs = append(attrs, slog.String("user_id", id))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return attrs
}
