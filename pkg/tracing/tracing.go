package tracing

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// Config is the tracing part of a binary's env config.
type Config struct {
	ServiceName    string  `env:"OTEL_SERVICE_NAME"`
	ServiceVersion string  `env:"OTEL_SERVICE_VERSION" envDefault:"0.1.0"`
	Environment    string  `env:"ENVIRONMENT" envDefault:"development"`
	OTLPEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	Insecure       bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	SampleRate     float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
	Enabled        bool    `env:"OTEL_ENABLED" envDefault:"false"`
}

// DefaultConfig matches the env defaults, with tracing off.
func DefaultConfig(serviceName string) Config {
	return Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    "development",
		OTLPEndpoint:   "localhost:4318",
		Insecure:       true,
		SampleRate:     1.0,
	}
}

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// InitTracer always installs the W3C trace-context and baggage propagators,
// so ids flow through even with export off. When cfg.Enabled it also
// installs a batching OTLP/HTTP provider as the global one.
func InitTracer(ctx context.Context, cfg Config) (ShutdownFunc, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	if !cfg.Enabled {
		return noopShutdown, nil
	}
	if cfg.ServiceName == "" {
		return nil, errors.New("tracing: service name is required")
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	res, err := newResource(ctx, cfg)
	if err != nil {
		_ = exporter.Shutdown(ctx)
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(Sampler(cfg.SampleRate)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

func newExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}
	return exp, nil
}

func newResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
		resource.WithProcessRuntimeDescription(),
		resource.WithHost(),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	return res, nil
}

// Sampler turns a 0..1 rate into a parent-based sampler, clamping rates
// outside the range.
func Sampler(rate float64) sdktrace.Sampler {
	var root sdktrace.Sampler
	switch {
	case rate >= 1:
		root = sdktrace.AlwaysSample()
	case rate <= 0:
		root = sdktrace.NeverSample()
	default:
		root = sdktrace.TraceIDRatioBased(rate)
	}
	return sdktrace.ParentBased(root)
}
