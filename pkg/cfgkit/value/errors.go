package value

import (
	"errors"
	"fmt"
)

// Sentinel errors for values.
var (
	// ErrTypeMismatch indicates a value cannot be interpreted as the
	// requested kind without loss.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrDuplicateKey indicates a key was inserted twice into one mapping.
	ErrDuplicateKey = errors.New("duplicate key")
)

// CoercionError describes a failed conversion.
type CoercionError struct {
	// From is the kind of the stored value.
	From Kind
	// To names the requested type ("string", "int", "duration", ...).
	To string
	// Err is the underlying parse error for explicit Parse* accessors.
	Err error
}

// Error implements the error interface.
func (e *CoercionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot convert %s to %s: %v", e.From, e.To, e.Err)
	}
	return fmt.Sprintf("cannot convert %s to %s", e.From, e.To)
}

// Unwrap returns ErrTypeMismatch for errors.Is support.
func (e *CoercionError) Unwrap() error {
	return ErrTypeMismatch
}

func mismatch(from Kind, to string) error {
	return &CoercionError{From: from, To: to}
}
