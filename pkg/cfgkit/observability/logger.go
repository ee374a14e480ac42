// Package observability provides structured logging, metrics and tracing
// around configuration loads, lookups and snapshots.
//
// Features:
//   - Structured logging via slog
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// Everything is opt-in. Nil loggers are ignored and the Noop types stand
// in when metrics or tracing are disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger returns logger with the config name and load ID attached.
//
// Example:
//
//	l := EnrichLogger(logger, "service", loadID)
//	l.Info("parsing") // includes config and load_id
func EnrichLogger(logger *slog.Logger, name, loadID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("config", name),
		slog.String("load_id", loadID),
	)
}

// LogLoadStart logs the start of a load.
func LogLoadStart(logger *slog.Logger, source, format string) {
	if logger == nil {
		return
	}
	logger.Debug("config load starting",
		slog.String("source", source),
		slog.String("format", format),
	)
}

// LogLoadComplete logs a successful load.
func LogLoadComplete(logger *slog.Logger, source string, keys int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("config loaded",
		slog.String("source", source),
		slog.Int("keys", keys),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogLoadError logs a failed load. The store is unchanged at this point.
func LogLoadError(logger *slog.Logger, source string, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("config load failed",
		slog.String("source", source),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogLookupMiss logs a lookup that found nothing.
func LogLookupMiss(logger *slog.Logger, path string) {
	if logger == nil {
		return
	}
	logger.Debug("config key not found",
		slog.String("path", path),
	)
}

// LogSnapshot logs a saved snapshot.
func LogSnapshot(logger *slog.Logger, label string, loads, sizeBytes int) {
	if logger == nil {
		return
	}
	logger.Debug("config snapshot saved",
		slog.String("label", label),
		slog.Int("loads", loads),
		slog.Int("size_bytes", sizeBytes),
	)
}

// LogSnapshotError logs a snapshot failure.
func LogSnapshotError(logger *slog.Logger, label, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("config snapshot failed",
		slog.String("label", label),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
