package store

import (
	"fmt"
	"time"

	"github.com/randalmurphal/cfgkit/pkg/cfgkit/value"
)

// Store holds one merged configuration tree. The root is always a mapping,
// empty until the first merge.
//
// Every value handed out is a deep copy, so later merges never change
// what a caller already holds. Store is not safe for concurrent use.
type Store struct {
	root *value.Mapping
}

// New creates an empty store.
func New() *Store {
	return &Store{root: value.NewMapping()}
}

// Lookup resolves a dotted path. The empty path returns the root.
// Returns false if any segment is missing or an intermediate value is not
// a mapping.
func (s *Store) Lookup(path string) (value.Value, bool) {
	return s.LookupSegments(SplitPath(path)...)
}

// LookupSegments resolves a path given as separate keys, for keys that
// themselves contain dots.
func (s *Store) LookupSegments(segments ...string) (value.Value, bool) {
	v, ok := s.root.Lookup(segments...)
	if !ok {
		return value.Value{}, false
	}
	return v.Clone(), true
}

// Get resolves path or returns a *LookupError wrapping ErrKeyNotFound.
func (s *Store) Get(path string) (value.Value, error) {
	v, ok := s.Lookup(path)
	if !ok {
		return value.Value{}, &LookupError{Path: path, Err: ErrKeyNotFound}
	}
	return v, nil
}

// String returns the string form of the value at path: its source text
// when the document spelled it out, otherwise the scalar rendering.
// Built mappings and null without source text fail with ErrTypeMismatch.
func (s *Store) String(path string) (string, error) {
	return lookupAs(s, path, value.Value.AsString)
}

// Int returns the integer at path. Integral floats are accepted.
func (s *Store) Int(path string) (int64, error) {
	return lookupAs(s, path, value.Value.AsInt)
}

// Float returns the number at path. Integers are widened.
func (s *Store) Float(path string) (float64, error) {
	return lookupAs(s, path, value.Value.AsFloat)
}

// Bool returns the boolean at path.
func (s *Store) Bool(path string) (bool, error) {
	return lookupAs(s, path, value.Value.AsBool)
}

// Duration returns the duration at path.
//
// Accepts:
//   - string: parsed with time.ParseDuration
//   - int/float: interpreted as seconds
func (s *Store) Duration(path string) (time.Duration, error) {
	return lookupAs(s, path, value.Value.AsDuration)
}

// Strings returns the sequence at path as strings. Every element must be
// a scalar with a string form.
func (s *Store) Strings(path string) ([]string, error) {
	return lookupAs(s, path, value.Value.AsStrings)
}

func lookupAs[T any](s *Store, path string, as func(value.Value) (T, error)) (T, error) {
	var zero T
	v, ok := s.root.Lookup(SplitPath(path)...)
	if !ok {
		return zero, &LookupError{Path: path, Err: ErrKeyNotFound}
	}
	out, err := as(v)
	if err != nil {
		return zero, &LookupError{Path: path, Err: err}
	}
	return out, nil
}

// MergeRoot folds a parsed document root into the tree.
//
// For each key in root: when both the stored and the new value are
// mappings they are merged recursively, otherwise the new value replaces
// the stored one. A root that is not a mapping fails with ErrInvalidRoot
// and leaves the tree unchanged. An empty mapping is a no-op.
func (s *Store) MergeRoot(root value.Value) error {
	if root.Kind() != value.KindMapping {
		return fmt.Errorf("%w: got %s", ErrInvalidRoot, root.Kind())
	}
	incoming, err := root.AsMapping()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRoot, err)
	}
	s.root.Merge(incoming)
	return nil
}

// Has reports whether path resolves.
func (s *Store) Has(path string) bool {
	_, ok := s.root.Lookup(SplitPath(path)...)
	return ok
}

// Keys returns the top-level keys in the order they were first loaded.
func (s *Store) Keys() []string {
	return s.root.Keys()
}

// Len returns the number of top-level keys.
func (s *Store) Len() int {
	return s.root.Len()
}

// Root returns a deep copy of the whole tree.
func (s *Store) Root() value.Value {
	return value.Map(s.root.Clone())
}
