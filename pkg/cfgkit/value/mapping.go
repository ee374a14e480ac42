package value

import "fmt"

// Mapping is an ordered collection of unique string keys.
// Iteration follows insertion order; replacing a key keeps its position.
// A nil *Mapping behaves as an empty mapping for reads. The zero Mapping
// is ready to use.
type Mapping struct {
	keys  []string
	vals  []Value
	index map[string]int
}

// NewMapping creates an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{index: make(map[string]int)}
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return []string{}
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	i, ok := m.index[key]
	if !ok {
		return Value{}, false
	}
	return m.vals[i], true
}

// Has returns true if key is present.
func (m *Mapping) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.index[key]
	return ok
}

// Set stores v under key, replacing any previous value in place.
func (m *Mapping) Set(key string, v Value) {
	m.set(key, v)
}

func (m *Mapping) set(key string, v Value) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[key]; ok {
		m.vals[i] = v
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.vals = append(m.vals, v)
}

// Insert stores v under a new key.
// Returns an error wrapping ErrDuplicateKey if key is already present.
func (m *Mapping) Insert(key string, v Value) error {
	if m.Has(key) {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}
	m.set(key, v)
	return nil
}

// Range calls fn for each entry in order until fn returns false.
func (m *Mapping) Range(fn func(key string, v Value) bool) {
	if m == nil {
		return
	}
	for i, key := range m.keys {
		if !fn(key, m.vals[i]) {
			return
		}
	}
}

// Clone returns a deep copy of m.
func (m *Mapping) Clone() *Mapping {
	out := &Mapping{
		keys:  make([]string, m.Len()),
		vals:  make([]Value, m.Len()),
		index: make(map[string]int, m.Len()),
	}
	if m == nil {
		return out
	}
	copy(out.keys, m.keys)
	for i, v := range m.vals {
		out.vals[i] = v.Clone()
		out.index[m.keys[i]] = i
	}
	return out
}

// Equal reports whether both mappings hold equal values under the same
// keys in the same order.
func (m *Mapping) Equal(other *Mapping) bool {
	if m.Len() != other.Len() {
		return false
	}
	for i := 0; i < m.Len(); i++ {
		if m.keys[i] != other.keys[i] || !m.vals[i].Equal(other.vals[i]) {
			return false
		}
	}
	return true
}

// Lookup descends through nested mappings one segment at a time.
// No segments returns m itself. The result shares storage with m.
func (m *Mapping) Lookup(segments ...string) (Value, bool) {
	cur := Map(m)
	for _, seg := range segments {
		if cur.kind != KindMapping {
			return Value{}, false
		}
		next, ok := cur.m.Get(seg)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur, true
}

// Merge folds src into m. When both sides hold a mapping under the same
// key the two are merged recursively; otherwise the value from src
// replaces the old one. New keys are appended in src order. A merged
// mapping no longer has source text.
// m takes ownership of the values in src.
func (m *Mapping) Merge(src *Mapping) {
	src.Range(func(key string, v Value) bool {
		if old, ok := m.Get(key); ok && old.kind == KindMapping && v.kind == KindMapping {
			old.m.Merge(v.m)
			m.set(key, Map(old.m))
			return true
		}
		m.set(key, v)
		return true
	})
}
