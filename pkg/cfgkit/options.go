package cfgkit

import (
	"log/slog"

	"github.com/randalmurphal/cfgkit/pkg/cfgkit/observability"
	"github.com/randalmurphal/cfgkit/pkg/cfgkit/parser"
)

// DefaultName is the name of a Config created without WithName.
const DefaultName = "config"

// options holds construction-time settings for a Config.
type options struct {
	name    string
	parser  parser.Parser
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

func defaultOptions() options {
	return options{
		name:    DefaultName,
		parser:  parser.CFG(),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// Option configures a Config.
type Option func(*options)

// WithName sets the name used in logs, traces and snapshots.
// Default: "config"
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithParser sets the format used by Load, LoadContext and LoadString.
// Default: parser.CFG()
//
// Example:
//
//	cfg := cfgkit.New(cfgkit.WithParser(parser.YAML()))
func WithParser(p parser.Parser) Option {
	return func(o *options) {
		if p != nil {
			o.parser = p
		}
	}
}

// WithLogger enables structured logging of loads, misses and snapshots.
// Default: no logging
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
// Default: observability.NoopMetrics{}
//
// Example:
//
//	cfg := cfgkit.New(cfgkit.WithMetrics(observability.NewMetricsRecorder()))
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithSpanManager sets the tracer used for load spans.
// Default: observability.NoopSpanManager{}
func WithSpanManager(s observability.SpanManager) Option {
	return func(o *options) {
		if s != nil {
			o.spans = s
		}
	}
}
