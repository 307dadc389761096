// Package observability wires optional OpenTelemetry tracing for the client.
// Disabled unless SLURM_OTEL_EXPORTER selects an exporter, so library users
// pay nothing by default.
package observability

import (
	"context"
	"crypto/tls"
	"os"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.25.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/credentials"
)

const tracerName = "go-slurm"

type settings struct {
	exporter string
	endpoint string
	insecure bool
}

func fromEnv() settings {
	s := settings{
		exporter: strings.ToLower(strings.TrimSpace(os.Getenv("SLURM_OTEL_EXPORTER"))),
		endpoint: strings.TrimSpace(os.Getenv("SLURM_OTEL_ENDPOINT")),
		insecure: true,
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("SLURM_OTEL_INSECURE"))) {
	case "0", "false", "no":
		s.insecure = false
	}
	return s
}

var (
	initOnce sync.Once
	shutdown func(context.Context) error
)

// Init installs a tracer provider per the SLURM_OTEL_* environment and
// returns its shutdown hook. With no exporter configured, tracing is a no-op.
func Init(ctx context.Context, service string) (func(context.Context) error, error) {
	var initErr error
	initOnce.Do(func() {
		s := fromEnv()
		if s.exporter == "" || s.exporter == "none" {
			otel.SetTracerProvider(trace.NewNoopTracerProvider())
			shutdown = func(context.Context) error { return nil }
			return
		}
		exp, err := newExporter(ctx, s)
		if err != nil {
			initErr = err
			return
		}
		res, err := resource.New(ctx, resource.WithAttributes(
			semconv.ServiceNameKey.String(service),
		))
		if err != nil {
			initErr = err
			return
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exp),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		shutdown = tp.Shutdown
	})
	if shutdown == nil {
		shutdown = func(context.Context) error { return nil }
	}
	return shutdown, initErr
}

func newExporter(ctx context.Context, s settings) (sdktrace.SpanExporter, error) {
	switch s.exporter {
	case "otlp", "grpc":
		endpoint := s.endpoint
		if endpoint == "" {
			endpoint = "localhost:4317"
		}
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
		if s.insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		} else {
			opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewTLS(&tls.Config{})))
		}
		return otlptracegrpc.New(ctx, opts...)
	case "otlphttp", "http":
		endpoint := s.endpoint
		if endpoint == "" {
			endpoint = "http://localhost:4318"
		}
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(endpoint)}
		if s.insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	default:
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
}

// StartSpan opens a span on the client tracer.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}
