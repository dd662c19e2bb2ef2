package apm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Tracer narrows the OTEL tracer to the span surface the clients use.
type Tracer interface {
	StartSpanFromContext(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, Span)
	// GetTracer exposes the underlying tracer for instrumentation that
	// needs the raw OTEL interface, such as httptrace.
	GetTracer() trace.Tracer
}

type otelTracer struct {
	tracer trace.Tracer
}

// NewTracer returns a Tracer backed by the globally registered provider.
func NewTracer(name string) Tracer {
	return &otelTracer{tracer: otel.Tracer(name)}
}

func (t *otelTracer) StartSpanFromContext(
	ctx context.Context, name string, opts ...trace.SpanStartOption,
) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name, opts...)
	return ctx, newSpan(span)
}

func (t *otelTracer) GetTracer() trace.Tracer {
	return t.tracer
}
