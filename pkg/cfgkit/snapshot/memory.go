package snapshot

import (
	"sort"
	"sync"
)

// MemoryStore keeps snapshots in memory. Data is lost when the process
// exits.
type MemoryStore struct {
	mu      sync.RWMutex
	configs map[string]*savedConfig
	closed  bool
}

// savedConfig holds the snapshots of one config name.
type savedConfig struct {
	labels map[string]*Snapshot
	order  map[string]int // label -> sequence
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{configs: make(map[string]*savedConfig)}
}

// Save implements Store.
func (m *MemoryStore) Save(snap *Snapshot) error {
	if err := snap.validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	cfg, ok := m.configs[snap.Name]
	if !ok {
		cfg = &savedConfig{labels: make(map[string]*Snapshot), order: make(map[string]int)}
		m.configs[snap.Name] = cfg
	}
	seq := 1
	for _, n := range cfg.order {
		if n >= seq {
			seq = n + 1
		}
	}
	cfg.labels[snap.Label] = snap.clone()
	cfg.order[snap.Label] = seq
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(name, label string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	cfg, ok := m.configs[name]
	if !ok {
		return nil, ErrNotFound
	}
	snap, ok := cfg.labels[label]
	if !ok {
		return nil, ErrNotFound
	}
	return snap.clone(), nil
}

// List implements Store.
func (m *MemoryStore) List(name string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	cfg, ok := m.configs[name]
	if !ok {
		return []Info{}, nil
	}
	infos := make([]Info, 0, len(cfg.labels))
	for label, snap := range cfg.labels {
		infos = append(infos, snap.info(cfg.order[label]))
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Sequence < infos[j].Sequence
	})
	return infos, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(name, label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if cfg, ok := m.configs[name]; ok {
		delete(cfg.labels, label)
		delete(cfg.order, label)
	}
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.configs = nil
	return nil
}

// Len returns the number of snapshots across all config names.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, cfg := range m.configs {
		n += len(cfg.labels)
	}
	return n
}
