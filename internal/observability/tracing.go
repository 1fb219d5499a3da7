// Package observability holds prometheus metrics and OpenTelemetry tracing setup.
package observability

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// ServiceName identifies spans exported by this binary
const ServiceName = "postarr"

// Shutdown releases telemetry resources
type Shutdown func(ctx context.Context) error

// Tracer returns the tracer every component starts its spans from
func Tracer() trace.Tracer {
	return otel.Tracer(ServiceName)
}

// SetupTracing installs a tracer provider. Without an endpoint spans are
// still created but never exported.
func SetupTracing(ctx context.Context, endpoint string, logger *logrus.Logger) (Shutdown, error) {
	res := resource.NewSchemaless(semconv.ServiceName(ServiceName))

	if endpoint == "" {
		tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
		otel.SetTracerProvider(tp)
		logger.Debug("Tracing export disabled")
		return tp.Shutdown, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	logger.WithField("endpoint", endpoint).Info("Tracing enabled")

	return tp.Shutdown, nil
}
