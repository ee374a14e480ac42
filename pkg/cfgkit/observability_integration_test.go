package cfgkit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/cfgkit/pkg/cfgkit"
	"github.com/randalmurphal/cfgkit/pkg/cfgkit/snapshot"
)

// logCapture records JSON log lines for inspection.
type logCapture struct {
	buf bytes.Buffer
}

func newLogCapture() (*logCapture, *slog.Logger) {
	c := &logCapture{}
	return c, slog.New(slog.NewJSONHandler(&c.buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (c *logCapture) records() []map[string]any {
	var records []map[string]any
	for _, line := range bytes.Split(c.buf.Bytes(), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal(line, &m); err == nil {
			records = append(records, m)
		}
	}
	return records
}

func (c *logCapture) find(msg string) map[string]any {
	for _, r := range c.records() {
		if r["msg"] == msg {
			return r
		}
	}
	return nil
}

type loadCall struct {
	format string
	err    error
}

// recordingMetrics is a MetricsRecorder that keeps every call.
type recordingMetrics struct {
	mu        sync.Mutex
	loads     []loadCall
	lookups   []bool
	snapshots []int64
}

func (m *recordingMetrics) RecordLoad(_ context.Context, format string, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads = append(m.loads, loadCall{format: format, err: err})
}

func (m *recordingMetrics) RecordLookup(_ context.Context, found bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups = append(m.lookups, found)
}

func (m *recordingMetrics) RecordSnapshot(_ context.Context, sizeBytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, sizeBytes)
}

// tracingSpans starts real SDK spans on a private provider.
type tracingSpans struct {
	tracer trace.Tracer
}

func newTracingSpans(t *testing.T) (*tracingSpans, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return &tracingSpans{tracer: tp.Tracer("cfgkit-test")}, exporter
}

func (s *tracingSpans) StartLoadSpan(ctx context.Context, name, loadID, format string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "cfgkit.load", trace.WithAttributes(
		attribute.String("config.name", name),
		attribute.String("load.id", loadID),
		attribute.String("load.format", format),
	))
}

func (s *tracingSpans) EndSpanWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}

func (s *tracingSpans) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

// TestLoad_WithLogger verifies load records carry the config name and load ID.
func TestLoad_WithLogger(t *testing.T) {
	logs, logger := newLogCapture()
	cfg := cfgkit.New(cfgkit.WithName("svc"), cfgkit.WithLogger(logger))

	require.NoError(t, cfg.LoadString("a: 1\nb: 2"))

	start := logs.find("config load starting")
	require.NotNil(t, start)
	assert.Equal(t, "DEBUG", start["level"])
	assert.Equal(t, "cfg", start["format"])

	done := logs.find("config loaded")
	require.NotNil(t, done)
	assert.Equal(t, "INFO", done["level"])
	assert.Equal(t, "svc", done["config"])
	assert.Equal(t, "reader", done["source"])
	assert.EqualValues(t, 2, done["keys"])
	assert.NotEmpty(t, done["load_id"])
	assert.Contains(t, done, "duration_ms")
}

// TestLoad_FailureIsLogged verifies failed loads log at error level.
func TestLoad_FailureIsLogged(t *testing.T) {
	logs, logger := newLogCapture()
	cfg := cfgkit.New(cfgkit.WithLogger(logger))

	require.Error(t, cfg.LoadString("a: 1\na: 2"))

	rec := logs.find("config load failed")
	require.NotNil(t, rec)
	assert.Equal(t, "ERROR", rec["level"])
	assert.Contains(t, rec["error"], "duplicate key")
	assert.Nil(t, logs.find("config loaded"))
}

// TestLookup_MissIsLogged verifies misses log at debug level and hits don't.
func TestLookup_MissIsLogged(t *testing.T) {
	logs, logger := newLogCapture()
	cfg := cfgkit.New(cfgkit.WithLogger(logger))
	require.NoError(t, cfg.LoadString("a: 1"))

	_, _ = cfg.Get("a")
	assert.Nil(t, logs.find("config key not found"))

	_ = cfg.StringOr("missing.key", "x")
	rec := logs.find("config key not found")
	require.NotNil(t, rec)
	assert.Equal(t, "missing.key", rec["path"])
}

// TestLoad_WithMetrics verifies load and lookup outcomes are recorded.
func TestLoad_WithMetrics(t *testing.T) {
	m := &recordingMetrics{}
	cfg := cfgkit.New(cfgkit.WithMetrics(m))

	require.NoError(t, cfg.LoadString("a: 1"))
	require.Error(t, cfg.LoadString("broken"))
	_, _ = cfg.Get("a")
	_, _ = cfg.Get("b")
	_, _ = cfg.Bool("a")

	require.Len(t, m.loads, 2)
	assert.Equal(t, "cfg", m.loads[0].format)
	assert.NoError(t, m.loads[0].err)
	assert.ErrorIs(t, m.loads[1].err, cfgkit.ErrMalformedLine)

	assert.Equal(t, []bool{true, false, true}, m.lookups, "a mismatch still counts as found")
}

// TestLoadFile_FailuresAreObserved verifies files that never reach a parser
// still get a load ID, a metric, a log record and a span.
func TestLoadFile_FailuresAreObserved(t *testing.T) {
	dir := t.TempDir()
	ini := filepath.Join(dir, "app.ini")
	require.NoError(t, os.WriteFile(ini, []byte("x=1"), 0o600))

	tests := []struct {
		name       string
		path       string
		wantFormat string
		wantErr    error
	}{
		{"unknown extension", ini, "unknown", cfgkit.ErrUnknownFormat},
		{"missing file", filepath.Join(dir, "absent.cfg"), "cfg", os.ErrNotExist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs, logger := newLogCapture()
			m := &recordingMetrics{}
			spans, exporter := newTracingSpans(t)
			cfg := cfgkit.New(cfgkit.WithLogger(logger), cfgkit.WithMetrics(m), cfgkit.WithSpanManager(spans))

			err := cfg.LoadFile(tt.path)
			require.ErrorIs(t, err, tt.wantErr)

			var lerr *cfgkit.LoadError
			require.True(t, errors.As(err, &lerr))
			assert.NotEmpty(t, lerr.LoadID)
			assert.Equal(t, tt.path, lerr.Source)
			assert.Equal(t, tt.wantFormat, lerr.Format)

			require.Len(t, m.loads, 1)
			assert.Equal(t, tt.wantFormat, m.loads[0].format)
			assert.ErrorIs(t, m.loads[0].err, tt.wantErr)

			rec := logs.find("config load failed")
			require.NotNil(t, rec)
			assert.Equal(t, lerr.LoadID, rec["load_id"])
			assert.Equal(t, tt.path, rec["source"])

			got := exporter.GetSpans()
			require.Len(t, got, 1)
			assert.Contains(t, got[0].Attributes, attribute.String("load.id", lerr.LoadID))
			assert.Contains(t, got[0].Attributes, attribute.String("load.format", tt.wantFormat))
			assert.NotEmpty(t, eventsNamed(got[0], "exception"))
		})
	}
}

// TestSaveSnapshot_WithObservability verifies snapshot size is recorded and logged.
func TestSaveSnapshot_WithObservability(t *testing.T) {
	logs, logger := newLogCapture()
	m := &recordingMetrics{}
	cfg := cfgkit.New(cfgkit.WithLogger(logger), cfgkit.WithMetrics(m))
	require.NoError(t, cfg.LoadString("a: 1"))

	_, err := cfg.SaveSnapshot(context.Background(), snapshot.NewMemoryStore(), "v1")
	require.NoError(t, err)

	require.Len(t, m.snapshots, 1)
	assert.Positive(t, m.snapshots[0])

	rec := logs.find("config snapshot saved")
	require.NotNil(t, rec)
	assert.Equal(t, "v1", rec["label"])
	assert.EqualValues(t, m.snapshots[0], rec["size_bytes"])
}

// TestRestore_MissingIsLogged verifies restore failures log a warning.
func TestRestore_MissingIsLogged(t *testing.T) {
	logs, logger := newLogCapture()

	_, err := cfgkit.Restore(context.Background(), snapshot.NewMemoryStore(), "svc", "nope", cfgkit.WithLogger(logger))
	require.ErrorIs(t, err, snapshot.ErrNotFound)

	rec := logs.find("config snapshot failed")
	require.NotNil(t, rec)
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "load", rec["operation"])
}

// TestLoad_WithSpanManager verifies each load produces one span.
func TestLoad_WithSpanManager(t *testing.T) {
	spans, exporter := newTracingSpans(t)
	cfg := cfgkit.New(cfgkit.WithName("svc"), cfgkit.WithSpanManager(spans))

	require.NoError(t, cfg.LoadString("a: 1\nb: 2"))
	require.Error(t, cfg.LoadString("a: 1\na: 2"))

	got := exporter.GetSpans()
	require.Len(t, got, 2)

	ok := got[0]
	assert.Equal(t, "cfgkit.load", ok.Name)
	assert.Contains(t, ok.Attributes, attribute.String("config.name", "svc"))
	assert.Contains(t, ok.Attributes, attribute.String("load.format", "cfg"))
	require.Len(t, ok.Events, 1)
	assert.Equal(t, "parsed", ok.Events[0].Name)
	assert.Contains(t, ok.Events[0].Attributes, attribute.Int("root.keys", 2))

	failed := got[1]
	assert.Empty(t, eventsNamed(failed, "parsed"), "duplicate keys fail before the parsed event")
	assert.NotEmpty(t, eventsNamed(failed, "exception"))
}

func eventsNamed(span tracetest.SpanStub, name string) []sdktrace.Event {
	var out []sdktrace.Event
	for _, e := range span.Events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}
