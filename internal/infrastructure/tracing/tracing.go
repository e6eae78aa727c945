package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// InitTracing exports spans to the collector over OTLP/HTTP. Without a
// collector host spans are recorded but not exported.
func InitTracing(collectorHost string, serviceName string) (*trace.TracerProvider, error) {
	options := []trace.TracerProviderOption{
		trace.WithResource(
			resource.NewWithAttributes(
				semconv.SchemaURL,
				semconv.ServiceNameKey.String(serviceName),
			),
		),
	}

	if collectorHost != "" {
		exporter, err := otlptrace.New(
			context.Background(),
			otlptracehttp.NewClient(
				otlptracehttp.WithEndpoint(fmt.Sprintf("%s:4318", collectorHost)),
				otlptracehttp.WithInsecure(),
			),
		)
		if err != nil {
			return nil, fmt.Errorf("creating OTLP trace exporter: %w", err)
		}
		options = append(options, trace.WithBatcher(exporter))
	}

	tracerProvider := trace.NewTracerProvider(options...)
	otel.SetTracerProvider(tracerProvider)

	return tracerProvider, nil
}
