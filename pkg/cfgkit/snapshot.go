package cfgkit

import (
	"context"
	"fmt"

	"github.com/randalmurphal/cfgkit/pkg/cfgkit/observability"
	"github.com/randalmurphal/cfgkit/pkg/cfgkit/snapshot"
)

// SaveSnapshot stores the merged tree in st under the Config's name and
// label, replacing any snapshot with the same label. An empty label fails
// with snapshot.ErrInvalidSnapshot.
func (c *Config) SaveSnapshot(ctx context.Context, st snapshot.Store, label string) (*snapshot.Snapshot, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap, err := snapshot.New(c.opts.name, label, c.loads, c.store.Root())
	if err != nil {
		observability.LogSnapshotError(c.logger(), label, "encode", err)
		return nil, fmt.Errorf("snapshot %s/%s: %w", c.opts.name, label, err)
	}
	if err := st.Save(snap); err != nil {
		observability.LogSnapshotError(c.logger(), label, "save", err)
		return nil, fmt.Errorf("snapshot %s/%s: %w", c.opts.name, label, err)
	}

	c.opts.metrics.RecordSnapshot(ctx, int64(len(snap.Tree)))
	observability.LogSnapshot(c.logger(), label, c.loads, len(snap.Tree))
	return snap, nil
}

// Restore builds a new Config from the snapshot stored under (name, label).
// The restored Config is in StateLoaded when the snapshot records at least
// one load. opts apply as for New; WithName defaults to name.
//
// Returns an error wrapping snapshot.ErrNotFound when no such snapshot
// exists and snapshot.ErrVersionMismatch for envelopes from another format
// version.
func Restore(ctx context.Context, st snapshot.Store, name, label string, opts ...Option) (*Config, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := New(append([]Option{WithName(name)}, opts...)...)

	snap, err := st.Load(name, label)
	if err != nil {
		observability.LogSnapshotError(c.logger(), label, "load", err)
		return nil, fmt.Errorf("restore %s/%s: %w", name, label, err)
	}
	if err := snap.CheckVersion(); err != nil {
		observability.LogSnapshotError(c.logger(), label, "version", err)
		return nil, fmt.Errorf("restore %s/%s: %w", name, label, err)
	}
	root, err := snap.Root()
	if err != nil {
		return nil, fmt.Errorf("restore %s/%s: %w", name, label, err)
	}
	if err := c.store.MergeRoot(root); err != nil {
		return nil, fmt.Errorf("restore %s/%s: %w", name, label, err)
	}

	c.loads = snap.Loads
	if c.loads > 0 {
		c.state = StateLoaded
	}
	return c, nil
}
