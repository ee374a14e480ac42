package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTracingTest installs a tracer provider backed by an in-memory exporter.
func setupTracingTest(t *testing.T) *tracetest.InMemoryExporter {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	tracer = otel.Tracer("cfgkit")

	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		tracer = otel.Tracer("cfgkit")
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down tracer provider: %v", err)
		}
	})
	return exporter
}

func spanAttr(s tracetest.SpanStub, key string) string {
	for _, attr := range s.Attributes {
		if string(attr.Key) == key {
			return attr.Value.AsString()
		}
	}
	return ""
}

func TestStartLoadSpan(t *testing.T) {
	exporter := setupTracingTest(t)
	sm := NewSpanManager()

	ctx, span := sm.StartLoadSpan(context.Background(), "svc", "load-1", "yaml")
	require.NotNil(t, span)
	assert.True(t, trace.SpanFromContext(ctx).SpanContext().IsValid())
	sm.EndSpanWithError(span, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	s := spans[0]
	assert.Equal(t, "cfgkit.load", s.Name)
	assert.Equal(t, trace.SpanKindInternal, s.SpanKind)
	assert.Equal(t, "svc", spanAttr(s, "config.name"))
	assert.Equal(t, "load-1", spanAttr(s, "load.id"))
	assert.Equal(t, "yaml", spanAttr(s, "load.format"))
	assert.Equal(t, codes.Ok, s.Status.Code)
}

func TestEndSpanWithError(t *testing.T) {
	exporter := setupTracingTest(t)
	sm := NewSpanManager()

	_, span := sm.StartLoadSpan(context.Background(), "svc", "load-2", "cfg")
	sm.EndSpanWithError(span, errors.New("malformed line"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "malformed line", spans[0].Status.Description)
	require.NotEmpty(t, spans[0].Events)
	assert.Equal(t, "exception", spans[0].Events[0].Name)

	assert.NotPanics(t, func() { sm.EndSpanWithError(nil, nil) })
}

func TestAddSpanEvent(t *testing.T) {
	exporter := setupTracingTest(t)
	sm := NewSpanManager()

	ctx, span := sm.StartLoadSpan(context.Background(), "svc", "load-3", "cfg")
	sm.AddSpanEvent(ctx, "parsed", attribute.Int("keys", 4))
	sm.EndSpanWithError(span, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "parsed", spans[0].Events[0].Name)

	// No span in context: silently ignored.
	assert.NotPanics(t, func() { sm.AddSpanEvent(context.Background(), "orphan") })
}

func TestNoopSpanManager(t *testing.T) {
	exporter := setupTracingTest(t)
	var sm SpanManager = NoopSpanManager{}

	ctx := context.Background()
	got, span := sm.StartLoadSpan(ctx, "svc", "id", "cfg")
	assert.Equal(t, ctx, got)
	assert.False(t, span.IsRecording())
	sm.AddSpanEvent(got, "ignored")
	sm.EndSpanWithError(span, errors.New("x"))

	assert.Empty(t, exporter.GetSpans())
}
