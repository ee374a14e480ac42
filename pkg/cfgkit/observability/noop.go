package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
type NoopMetrics struct{}

var _ MetricsRecorder = NoopMetrics{}

// RecordLoad does nothing.
func (NoopMetrics) RecordLoad(_ context.Context, _ string, _ time.Duration, _ error) {}

// RecordLookup does nothing.
func (NoopMetrics) RecordLookup(_ context.Context, _ bool) {}

// RecordSnapshot does nothing.
func (NoopMetrics) RecordSnapshot(_ context.Context, _ int64) {}

// NoopSpanManager is a SpanManager that does nothing.
type NoopSpanManager struct{}

var _ SpanManager = NoopSpanManager{}

var noopSpan = noop.Span{}

// StartLoadSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartLoadSpan(ctx context.Context, _, _, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(_ trace.Span, _ error) {}

// AddSpanEvent does nothing.
func (NoopSpanManager) AddSpanEvent(_ context.Context, _ string, _ ...attribute.KeyValue) {}
