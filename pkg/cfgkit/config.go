package cfgkit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/cfgkit/pkg/cfgkit/observability"
	"github.com/randalmurphal/cfgkit/pkg/cfgkit/parser"
	"github.com/randalmurphal/cfgkit/pkg/cfgkit/store"
	"github.com/randalmurphal/cfgkit/pkg/cfgkit/value"
)

// State is the lifecycle state of a Config.
type State int

const (
	// StateEmpty is the initial state: nothing has been loaded.
	StateEmpty State = iota
	// StateLoaded means at least one load has succeeded.
	StateLoaded
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Config loads configuration sources and answers lookups against their
// merged tree. Each successful load merges its document into the tree;
// later sources win per path.
//
// Config is not safe for concurrent use. Callers that share one across
// goroutines must synchronize access themselves.
type Config struct {
	opts  options
	store *store.Store
	state State
	loads int
}

// New creates an empty Config.
func New(opts ...Option) *Config {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Config{opts: o, store: store.New()}
}

// Load reads r to completion and merges it using the default format.
func (c *Config) Load(r io.Reader) error {
	return c.LoadFormat(context.Background(), r, c.opts.parser)
}

// LoadContext is Load with a context for tracing and cancellation.
func (c *Config) LoadContext(ctx context.Context, r io.Reader) error {
	return c.LoadFormat(ctx, r, c.opts.parser)
}

// LoadString loads src using the default format.
func (c *Config) LoadString(src string) error {
	return c.LoadFormat(context.Background(), strings.NewReader(src), c.opts.parser)
}

// LoadFile loads a file, choosing the format from its extension.
// Supported extensions: .cfg, .conf, .yaml, .yml, .json, .toml
func (c *Config) LoadFile(path string) error {
	p, perr := parser.ForPath(path)
	format := "unknown"
	if perr == nil {
		format = p.Name()
	}

	return c.run(context.Background(), path, format, func(ctx context.Context) error {
		if perr != nil {
			return perr
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open config file: %w", err)
		}
		defer f.Close()
		return c.load(ctx, f, p)
	})
}

// LoadFormat reads r to completion, parses it with p and merges the
// result. On any failure the Config is left exactly as it was and a
// *LoadError is returned. Sources are consumed once; failed loads are
// not retried.
func (c *Config) LoadFormat(ctx context.Context, r io.Reader, p parser.Parser) error {
	if ctx == nil {
		return ErrNilContext
	}
	if p == nil {
		p = c.opts.parser
	}
	return c.run(ctx, sourceName(r), p.Name(), func(ctx context.Context) error {
		return c.load(ctx, r, p)
	})
}

// run wraps one load attempt with its load ID, span, metrics and logs.
func (c *Config) run(ctx context.Context, source, format string, fn func(context.Context) error) error {
	loadID := uuid.NewString()
	logger := observability.EnrichLogger(c.opts.logger, c.opts.name, loadID)

	ctx, span := c.opts.spans.StartLoadSpan(ctx, c.opts.name, loadID, format)
	observability.LogLoadStart(logger, source, format)
	done := observability.TimedOperation()
	start := time.Now()

	err := fn(ctx)

	c.opts.metrics.RecordLoad(ctx, format, time.Since(start), err)
	c.opts.spans.EndSpanWithError(span, err)

	if err != nil {
		observability.LogLoadError(logger, source, err, done())
		return &LoadError{LoadID: loadID, Source: source, Format: format, Err: err}
	}
	observability.LogLoadComplete(logger, source, c.store.Len(), done())
	return nil
}

func (c *Config) load(ctx context.Context, r io.Reader, p parser.Parser) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if isNilReader(r) {
		return ErrNilReader
	}

	root, err := p.Parse(r)
	if err != nil {
		return err
	}
	c.opts.spans.AddSpanEvent(ctx, "parsed",
		attribute.String("root.kind", root.Kind().String()),
		attribute.Int("root.keys", root.Len()),
	)

	if err := c.store.MergeRoot(root); err != nil {
		return err
	}
	c.state = StateLoaded
	c.loads++
	return nil
}

func sourceName(r io.Reader) string {
	if isNilReader(r) {
		return "reader"
	}
	if named, ok := r.(interface{ Name() string }); ok {
		return named.Name()
	}
	return "reader"
}

// isNilReader reports whether r is nil or an interface holding a nil
// pointer, such as a nil *os.File.
func isNilReader(r io.Reader) bool {
	if r == nil {
		return true
	}
	switch rv := reflect.ValueOf(r); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Get returns the value at key as it was written in the source, trimmed.
// Returns an error wrapping ErrKeyNotFound when key does not resolve and
// ErrTypeMismatch when it resolves to a value with no source text, such
// as a mapping built from dotted keys or merged across loads.
func (c *Config) Get(key string) (string, error) {
	return lookup(c, key, c.store.String)
}

// Value returns a copy of the value at key.
func (c *Config) Value(key string) (value.Value, error) {
	return lookup(c, key, c.store.Get)
}

// Int returns the integer at key.
func (c *Config) Int(key string) (int64, error) {
	return lookup(c, key, c.store.Int)
}

// Float returns the number at key.
func (c *Config) Float(key string) (float64, error) {
	return lookup(c, key, c.store.Float)
}

// Bool returns the boolean at key.
func (c *Config) Bool(key string) (bool, error) {
	return lookup(c, key, c.store.Bool)
}

// Duration returns the duration at key. Strings are parsed with
// time.ParseDuration; numbers are seconds.
func (c *Config) Duration(key string) (time.Duration, error) {
	return lookup(c, key, c.store.Duration)
}

// Strings returns the sequence at key as strings.
func (c *Config) Strings(key string) ([]string, error) {
	return lookup(c, key, c.store.Strings)
}

func lookup[T any](c *Config, key string, get func(string) (T, error)) (T, error) {
	out, err := get(key)
	found := !errors.Is(err, store.ErrKeyNotFound)
	c.opts.metrics.RecordLookup(context.Background(), found)
	if !found {
		observability.LogLookupMiss(c.logger(), key)
	}
	return out, err
}

// StringOr returns the string at key, or defaultVal if missing or not a scalar.
func (c *Config) StringOr(key, defaultVal string) string {
	if s, err := c.Get(key); err == nil {
		return s
	}
	return defaultVal
}

// IntOr returns the integer at key, or defaultVal if missing or not an integer.
func (c *Config) IntOr(key string, defaultVal int64) int64 {
	if n, err := c.Int(key); err == nil {
		return n
	}
	return defaultVal
}

// FloatOr returns the number at key, or defaultVal if missing or not a number.
func (c *Config) FloatOr(key string, defaultVal float64) float64 {
	if f, err := c.Float(key); err == nil {
		return f
	}
	return defaultVal
}

// BoolOr returns the boolean at key, or defaultVal if missing or not a bool.
func (c *Config) BoolOr(key string, defaultVal bool) bool {
	if b, err := c.Bool(key); err == nil {
		return b
	}
	return defaultVal
}

// DurationOr returns the duration at key, or defaultVal if missing or invalid.
func (c *Config) DurationOr(key string, defaultVal time.Duration) time.Duration {
	if d, err := c.Duration(key); err == nil {
		return d
	}
	return defaultVal
}

// Has reports whether key resolves.
func (c *Config) Has(key string) bool {
	return c.store.Has(key)
}

// Keys returns the top-level keys in the order they were first loaded.
func (c *Config) Keys() []string {
	return c.store.Keys()
}

// Root returns a deep copy of the merged tree.
func (c *Config) Root() value.Value {
	return c.store.Root()
}

// State returns the lifecycle state.
func (c *Config) State() State {
	return c.state
}

// Name returns the configured name.
func (c *Config) Name() string {
	return c.opts.name
}

// Loads returns the number of successful loads.
func (c *Config) Loads() int {
	return c.loads
}

// MarshalJSON encodes the merged tree with keys in load order.
func (c *Config) MarshalJSON() ([]byte, error) {
	return c.store.Root().MarshalJSON()
}

func (c *Config) logger() *slog.Logger {
	if c.opts.logger == nil {
		return nil
	}
	return c.opts.logger.With(slog.String("config", c.opts.name))
}
