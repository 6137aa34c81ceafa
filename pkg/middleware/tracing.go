package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerScope = "github.com/utafrali/FoodStore/pkg/middleware"

// Tracing opens a server span for every request. An inbound traceparent is
// honoured, and the outbound one is echoed so the storefront can log it.
// Spans start under the raw path and are renamed to the route once known.
func Tracing(serviceName string) func(http.Handler) http.Handler {
	tracer := otel.Tracer(tracerScope, trace.WithInstrumentationAttributes(
		attribute.String("service", serviceName),
	))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			prop := otel.GetTextMapPropagator()
			parent := prop.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			ctx, span := tracer.Start(parent, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(requestAttributes(r)...),
			)
			defer span.End()
			prop.Inject(ctx, propagation.HeaderCarrier(w.Header()))

			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r.WithContext(ctx))

			if route := routePattern(r, ""); route != "" {
				span.SetName(r.Method + " " + route)
				span.SetAttributes(attribute.String("http.route", route))
			}
			endSpan(span, sw.statusCode)
		})
	}
}

func requestAttributes(r *http.Request) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.HTTPMethod(r.Method),
		semconv.HTTPTarget(r.URL.RequestURI()),
		semconv.HTTPScheme(requestScheme(r)),
		attribute.String("http.client_ip", r.RemoteAddr),
	}
	if ua := r.UserAgent(); ua != "" {
		attrs = append(attrs, semconv.UserAgentOriginal(ua))
	}
	return attrs
}

// endSpan records status; only 5xx counts as a span error, since 4xx is the
// caller's mistake.
func endSpan(span trace.Span, status int) {
	span.SetAttributes(semconv.HTTPStatusCode(status))
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}

func requestScheme(r *http.Request) string {
	switch {
	case r.TLS != nil:
		return "https"
	case r.Header.Get("X-Forwarded-Proto") != "":
		return r.Header.Get("X-Forwarded-Proto")
	default:
		return "http"
	}
}
