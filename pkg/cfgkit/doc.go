/*
Package cfgkit loads configuration text from any io.Reader and answers
typed lookups against the merged result.

# Overview

A Config starts empty. Each Load parses one source and merges its root
mapping into the tree: nested mappings merge key by key, anything else is
replaced, so the last source loaded wins per path.

	cfg := cfgkit.New()
	if err := cfg.LoadString("key: 'Hello, world!'"); err != nil {
	    log.Fatal(err)
	}
	greeting, _ := cfg.Get("key") // "Hello, world!"

# Formats

The default format is cfg, a line-oriented `key: value` syntax that may also
be wrapped in braces (see package parser). YAML, JSON and TOML are built in:

	cfg := cfgkit.New(cfgkit.WithParser(parser.YAML()))
	err := cfg.LoadFile("service.toml") // format from extension

# Lookups

Keys are dotted paths. Typed accessors distinguish a missing key from one
of the wrong shape:

	port, err := cfg.Int("server.port")
	switch {
	case errors.Is(err, cfgkit.ErrKeyNotFound):
	    port = 8080
	case errors.Is(err, cfgkit.ErrTypeMismatch):
	    return err
	}

Unquoted numbers and booleans are typed when parsed, so `port: 42`
satisfies Int while `port: '42'` stays a string. Get returns the string
form of any scalar and fails with ErrTypeMismatch on null, sequences and
mappings.

The *Or accessors return a default on any failure:

	timeout := cfg.DurationOr("timeout", 30*time.Second)

# Failures

A failed load returns a *LoadError and leaves the Config exactly as it was.
It wraps ErrMalformedLine, ErrDuplicateKey or ErrInvalidRoot, and parse
failures also carry a *parser.SyntaxError with the line and column.

# Snapshots

SaveSnapshot persists the merged tree to a snapshot.Store; Restore builds
a new Config from it without the original sources.

	st, _ := snapshot.NewSQLiteStore("snapshots.db")
	_, err := cfg.SaveSnapshot(ctx, st, "release-42")
	restored, err := cfgkit.Restore(ctx, st, cfg.Name(), "release-42")

# Observability

WithLogger, WithMetrics and WithSpanManager enable slog logging,
OpenTelemetry metrics and load spans. All are off by default.

# Thread Safety

Config has no internal locking. Use one per goroutine or synchronize
externally. Snapshot stores are safe for concurrent use.
*/
package cfgkit
