// Package snapshot persists merged configuration trees so a Config can be
// restored later without its original sources.
package snapshot

import (
	"errors"
	"time"
)

// Store persists snapshot envelopes keyed by config name and label.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores snap under (snap.Name, snap.Label). An existing snapshot
	// with the same key is replaced and moves to the end of List.
	// Returns an error wrapping ErrInvalidSnapshot for an incomplete envelope.
	Save(snap *Snapshot) error

	// Load returns the snapshot stored under (name, label).
	// Returns ErrNotFound if it doesn't exist.
	Load(name, label string) (*Snapshot, error)

	// List describes every snapshot for a config name in save order.
	// Returns an empty slice (not error) if there are none.
	List(name string) ([]Info, error)

	// Delete removes one snapshot.
	// Returns nil if it doesn't exist.
	Delete(name, label string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info describes a stored snapshot without decoding its tree.
type Info struct {
	Name    string
	Label   string
	ID      string
	Version int
	// Loads is the number of successful loads merged into the tree.
	Loads int
	// Sequence orders saves within one config name, starting at 1.
	Sequence  int
	Timestamp time.Time
	// Size is the length of the encoded tree in bytes.
	Size int64
}

// Sentinel errors for snapshot operations.
var (
	// ErrNotFound indicates a snapshot doesn't exist.
	ErrNotFound = errors.New("snapshot not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("snapshot store closed")

	// ErrVersionMismatch indicates an envelope written by an incompatible
	// format version.
	ErrVersionMismatch = errors.New("snapshot version mismatch")

	// ErrInvalidSnapshot indicates an envelope missing its name, label,
	// ID or tree.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)
