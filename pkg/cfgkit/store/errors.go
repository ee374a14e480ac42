package store

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/cfgkit/pkg/cfgkit/value"
)

// Sentinel errors for store operations.
var (
	// ErrKeyNotFound indicates a path does not resolve to a value.
	// Misses are an ordinary outcome; callers usually fall back to a default.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidRoot indicates a document root that is not a mapping.
	ErrInvalidRoot = errors.New("document root is not a mapping")

	// ErrTypeMismatch indicates a value exists but cannot be coerced to the
	// requested type. It is the same sentinel as value.ErrTypeMismatch.
	ErrTypeMismatch = value.ErrTypeMismatch
)

// LookupError records the path of a failed lookup.
type LookupError struct {
	// Path is the path as given by the caller.
	Path string
	// Err is ErrKeyNotFound or a *value.CoercionError.
	Err error
}

// Error implements the error interface.
func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup %q: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *LookupError) Unwrap() error {
	return e.Err
}
