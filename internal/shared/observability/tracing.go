package observability

import (
	"context"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the shared tracer for graph construction and export spans.
var Tracer trace.Tracer = otel.Tracer("docgraph")

// InitTracing configures an OTLP/gRPC trace exporter when
// OTEL_EXPORTER_OTLP_ENDPOINT is set; otherwise tracing stays on the no-op
// provider. The returned shutdown function flushes pending spans.
func InitTracing(ctx context.Context) (func(context.Context) error, error) {
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracegrpc.New(ctx)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
	)
	otel.SetTracerProvider(tp)
	Tracer = tp.Tracer("docgraph")

	return tp.Shutdown, nil
}
