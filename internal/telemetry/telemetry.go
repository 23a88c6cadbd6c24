// Package telemetry configures OpenTelemetry tracing for the server. The
// exporter is configured from the standard OTEL_EXPORTER_OTLP_* environment
// variables; the service name and version in the resource are the ones
// passed to Start, and they take precedence over OTEL_SERVICE_NAME.
package telemetry

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry is a handle to the tracer provider this package installed
// globally, kept only so the caller can shut it down.
type Telemetry struct {
	*sdktrace.TracerProvider
}

// Start configures the global tracer provider and returns a handle to it so
// it can be shut down on server exit.
func Start(ctx context.Context, serviceName, version string) (*Telemetry, error) {
	tp, err := createTracerProvider(ctx, serviceName, version)
	if err != nil {
		return nil, err
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	return &Telemetry{tp}, nil
}

// Tracer fetches a tracer named after the owning component, e.g.
// Tracer("dispatcher") for the connection dispatch loop.
func Tracer(component string, opts ...trace.TracerOption) trace.Tracer {
	name := fmt.Sprintf("kyev/%s", component)
	return otel.Tracer(name, opts...)
}

func createTracerProvider(ctx context.Context, serviceName, version string) (*sdktrace.TracerProvider, error) {
	attrs := []attribute.KeyValue{
		attribute.String("service.name", serviceName),
		attribute.String("service.version", version),
	}
	if hostname, err := os.Hostname(); err == nil {
		attrs = append(attrs, attribute.String("service.instance.id", hostname))
	}

	rsrc, err := resource.Merge(resource.Default(), resource.NewSchemaless(attrs...))
	if err != nil {
		return nil, fmt.Errorf("failed to merge resource attributes: %w", err)
	}

	// With no collector configured, spans are still created (and their
	// trace ids still reach logs via AddFields) but never leave the process.
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		return sdktrace.NewTracerProvider(sdktrace.WithResource(rsrc)), nil
	}

	exp, err := otlptrace.New(ctx, otlptracehttp.NewClient())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp), sdktrace.WithResource(rsrc)), nil
}
