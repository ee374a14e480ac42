package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/cfgkit/pkg/cfgkit/parser"
	"github.com/randalmurphal/cfgkit/pkg/cfgkit/value"
)

// Version is the current envelope format version.
// Increment when making breaking changes to Snapshot.
const Version = 1

// Snapshot is the persisted envelope around one configuration tree.
type Snapshot struct {
	Version   int       `json:"version"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Label     string    `json:"label"`
	Loads     int       `json:"loads"`
	Timestamp time.Time `json:"timestamp"`

	// Tree is the merged root mapping, keys in load order.
	Tree json.RawMessage `json:"tree"`
}

// New encodes tree into a fresh envelope. loads is the number of
// successful loads merged into tree.
func New(name, label string, loads int, tree value.Value) (*Snapshot, error) {
	if tree.Kind() != value.KindMapping {
		return nil, fmt.Errorf("snapshot tree must be a mapping, got %s", tree.Kind())
	}
	raw, err := tree.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode tree: %w", err)
	}
	return &Snapshot{
		Version:   Version,
		ID:        uuid.NewString(),
		Name:      name,
		Label:     label,
		Loads:     loads,
		Timestamp: time.Now().UTC(),
		Tree:      raw,
	}, nil
}

// Marshal serializes the envelope to JSON.
func (s *Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// Unmarshal deserializes an envelope.
// Returns an error wrapping ErrVersionMismatch for any other Version.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := s.CheckVersion(); err != nil {
		return nil, err
	}
	return &s, nil
}

// CheckVersion returns an error wrapping ErrVersionMismatch unless s was
// written by this envelope version.
func (s *Snapshot) CheckVersion() error {
	if s.Version != Version {
		return fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, s.Version, Version)
	}
	return nil
}

// Root decodes the stored tree, preserving key order.
func (s *Snapshot) Root() (value.Value, error) {
	root, err := parser.JSON().Parse(bytes.NewReader(s.Tree))
	if err != nil {
		return value.Value{}, fmt.Errorf("decode snapshot tree: %w", err)
	}
	return root, nil
}

// validate checks the fields every Store keys or indexes on. The version
// is not checked so that stores keep envelopes they cannot decode.
func (s *Snapshot) validate() error {
	switch {
	case s == nil:
		return fmt.Errorf("%w: nil envelope", ErrInvalidSnapshot)
	case s.Name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidSnapshot)
	case s.Label == "":
		return fmt.Errorf("%w: empty label", ErrInvalidSnapshot)
	case s.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidSnapshot)
	case len(bytes.TrimSpace(s.Tree)) == 0:
		return fmt.Errorf("%w: empty tree", ErrInvalidSnapshot)
	}
	return nil
}

func (s *Snapshot) clone() *Snapshot {
	out := *s
	out.Tree = append(json.RawMessage(nil), s.Tree...)
	return &out
}

func (s *Snapshot) info(sequence int) Info {
	return Info{
		Name:      s.Name,
		Label:     s.Label,
		ID:        s.ID,
		Version:   s.Version,
		Loads:     s.Loads,
		Sequence:  sequence,
		Timestamp: s.Timestamp,
		Size:      int64(len(s.Tree)),
	}
}
