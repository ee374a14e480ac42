package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records configuration metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordLoad records one load call with its format, duration and outcome.
	RecordLoad(ctx context.Context, format string, duration time.Duration, err error)

	// RecordLookup records a lookup and whether the path resolved.
	RecordLookup(ctx context.Context, found bool)

	// RecordSnapshot records the encoded size of a saved snapshot.
	RecordSnapshot(ctx context.Context, sizeBytes int64)
}

type otelMetrics struct {
	loads        metric.Int64Counter
	loadLatency  metric.Float64Histogram
	loadErrors   metric.Int64Counter
	lookups      metric.Int64Counter
	snapshotSize metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily creates the shared instruments.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("cfgkit")

	loads, err := meter.Int64Counter("cfgkit.load.count",
		metric.WithDescription("Number of configuration loads"),
	)
	if err != nil {
		return nil, err
	}

	loadLatency, err := meter.Float64Histogram("cfgkit.load.latency_ms",
		metric.WithDescription("Configuration load latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	loadErrors, err := meter.Int64Counter("cfgkit.load.errors",
		metric.WithDescription("Number of failed configuration loads"),
	)
	if err != nil {
		return nil, err
	}

	lookups, err := meter.Int64Counter("cfgkit.lookup.count",
		metric.WithDescription("Number of key lookups"),
	)
	if err != nil {
		return nil, err
	}

	snapshotSize, err := meter.Int64Histogram("cfgkit.snapshot.size_bytes",
		metric.WithDescription("Snapshot size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		loads:        loads,
		loadLatency:  loadLatency,
		loadErrors:   loadErrors,
		lookups:      lookups,
		snapshotSize: snapshotSize,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func (m *otelMetrics) RecordLoad(ctx context.Context, format string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("format", format),
		attribute.Bool("success", err == nil),
	)
	m.loads.Add(ctx, 1, attrs)
	m.loadLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)

	if err != nil {
		m.loadErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
	}
}

func (m *otelMetrics) RecordLookup(ctx context.Context, found bool) {
	m.lookups.Add(ctx, 1, metric.WithAttributes(attribute.Bool("found", found)))
}

func (m *otelMetrics) RecordSnapshot(ctx context.Context, sizeBytes int64) {
	m.snapshotSize.Record(ctx, sizeBytes)
}
