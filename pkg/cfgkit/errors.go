package cfgkit

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/cfgkit/pkg/cfgkit/parser"
	"github.com/randalmurphal/cfgkit/pkg/cfgkit/store"
	"github.com/randalmurphal/cfgkit/pkg/cfgkit/value"
)

// Sentinel errors for loading. A failed load never changes the Config.
var (
	// ErrMalformedLine indicates source text that does not follow its
	// format's grammar, such as a cfg line without a colon or with an
	// empty key.
	ErrMalformedLine = parser.ErrMalformedLine

	// ErrDuplicateKey indicates the same key twice within one mapping of
	// one source.
	ErrDuplicateKey = parser.ErrDuplicateKey

	// ErrInvalidRoot indicates a source whose document root is not a
	// mapping.
	ErrInvalidRoot = store.ErrInvalidRoot

	// ErrUnknownFormat indicates no parser matches a format name or file
	// extension.
	ErrUnknownFormat = parser.ErrUnknownFormat

	// ErrNilReader indicates Load was called with a nil reader.
	ErrNilReader = parser.ErrNilReader

	// ErrNilContext indicates a nil context was passed.
	ErrNilContext = errors.New("context cannot be nil")
)

// Sentinel errors for lookups.
var (
	// ErrKeyNotFound indicates a key that does not resolve. It is an
	// ordinary outcome, not a failure of the Config.
	ErrKeyNotFound = store.ErrKeyNotFound

	// ErrTypeMismatch indicates a key that resolves to a value of the
	// wrong shape for the accessor.
	ErrTypeMismatch = value.ErrTypeMismatch
)

// LoadError wraps a failed load with its context.
type LoadError struct {
	// LoadID identifies the attempt in logs and traces.
	LoadID string
	// Source names the input: a file path, or "reader".
	Source string
	// Format is the parser name.
	Format string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s (%s): %v", e.Source, e.Format, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *LoadError) Unwrap() error {
	return e.Err
}
