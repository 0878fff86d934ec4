// Package telemetry wires up the OpenTelemetry tracer provider that backs
// the otelhttp instrumentation on the server router.
package telemetry

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// InitTracer installs a global tracer provider with a stdout exporter and
// hands back its shutdown function. Spans flush on shutdown; the caller is
// expected to invoke it during process teardown.
func InitTracer(serviceName string, logger *slog.Logger) (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	// Empty schema URL so the merge with the default resource cannot
	// conflict on semconv versions.
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes("", semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	logger.Info("tracing initialized", slog.String("service", serviceName))

	return tp.Shutdown, nil
}
