package tracing

import (
	"context"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

type Tracer interface {
	StartSpanFromHeader(ctx context.Context, h http.Header, spanName string) (context.Context, oteltrace.Span)
	InjectHTTP(ctx context.Context, h http.Header)
	Shutdown(ctx context.Context) error
}

type tracer struct {
	tracer oteltrace.Tracer
	tp     *trace.TracerProvider
}

// NewTracer creates tracer for service, spans are sent to exporter. Spans are only recorded if exporter is nil.
func NewTracer(serviceName string, exporter trace.SpanExporter) Tracer {
	tp := newTraceProvider(serviceName, exporter)

	return &tracer{
		tracer: tp.Tracer(serviceName),
		tp:     tp,
	}
}

func (t *tracer) StartSpanFromHeader(ctx context.Context, h http.Header, spanName string) (context.Context, oteltrace.Span) {
	ctx = propagation.TraceContext{}.Extract(ctx, propagation.HeaderCarrier(h))
	return t.tracer.Start(ctx, spanName, oteltrace.WithSpanKind(oteltrace.SpanKindServer))
}

func (t *tracer) InjectHTTP(ctx context.Context, h http.Header) {
	propagation.TraceContext{}.Inject(ctx, propagation.HeaderCarrier(h))
}

// Shutdown flushes pending spans and stops provider
func (t *tracer) Shutdown(ctx context.Context) error {
	return errors.Join(t.tp.ForceFlush(ctx), t.tp.Shutdown(ctx))
}

func newTraceProvider(serviceName string, exporter trace.SpanExporter) *trace.TracerProvider {
	opts := []trace.TracerProviderOption{
		trace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		)),
	}
	if exporter != nil {
		opts = append(opts, trace.WithBatcher(exporter))
	}
	tp := trace.NewTracerProvider(opts...)

	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{}),
	)
	otel.SetTracerProvider(tp)

	return tp
}
