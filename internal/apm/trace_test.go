package apm_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"

	"github.com/lbhlabs/tonswap/internal/apm"
)

func TestTracer_StartSpanFromContext(t *testing.T) {
	tracer := apm.NewTracer("test")

	ctx, span := tracer.StartSpanFromContext(context.Background(), "op")
	if ctx == nil {
		t.Fatal("returned context is nil")
	}
	if span == nil {
		t.Fatal("returned span is nil")
	}

	// Safe against the no-op provider.
	span.SetAttributes(attribute.String("key", "value"))
	span.AddEvent("event")
	span.NoticeError(errors.New("boom"))
	span.End()
}

func TestTracer_GetTracer(t *testing.T) {
	tracer := apm.NewTracer("test")
	if tracer.GetTracer() == nil {
		t.Fatal("underlying tracer is nil")
	}
}
