package harness

import "github.com/roach88/propharness/internal/component"

// PropertyStore is an insertion-ordered map from descriptor identity to the
// configured value. Absence means the descriptor default applies.
//
// A present entry always holds the last value written, valid or not.
type PropertyStore struct {
	keys    []string
	entries map[string]component.PropertyEntry
}

// NewPropertyStore returns an empty store.
func NewPropertyStore() *PropertyStore {
	return &PropertyStore{entries: make(map[string]component.PropertyEntry)}
}

// Get returns the configured value for d, or None.
func (s *PropertyStore) Get(d component.PropertyDescriptor) component.Value {
	return s.entries[d.Key()].Value
}

// Lookup returns the stored entry for d.
func (s *PropertyStore) Lookup(d component.PropertyDescriptor) (component.PropertyEntry, bool) {
	e, ok := s.entries[d.Key()]
	return e, ok
}

// Set stores value for d and returns the previously configured value.
// An existing entry keeps its position and takes the new descriptor.
func (s *PropertyStore) Set(d component.PropertyDescriptor, value string) component.Value {
	key := d.Key()
	prev, ok := s.entries[key]
	if !ok {
		s.keys = append(s.keys, key)
	}
	s.entries[key] = component.PropertyEntry{Descriptor: d, Value: component.Some(value)}
	return prev.Value
}

// Remove deletes the entry for d and returns the value it held.
func (s *PropertyStore) Remove(d component.PropertyDescriptor) (component.Value, bool) {
	key := d.Key()
	prev, ok := s.entries[key]
	if !ok {
		return component.None, false
	}
	delete(s.entries, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
	return prev.Value, true
}

// Entries returns every entry in insertion order.
func (s *PropertyStore) Entries() []component.PropertyEntry {
	out := make([]component.PropertyEntry, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, s.entries[k])
	}
	return out
}

// Len returns the number of configured properties.
func (s *PropertyStore) Len() int {
	return len(s.keys)
}

// Clone returns an independent copy.
func (s *PropertyStore) Clone() *PropertyStore {
	c := &PropertyStore{
		keys:    make([]string, len(s.keys)),
		entries: make(map[string]component.PropertyEntry, len(s.entries)),
	}
	copy(c.keys, s.keys)
	for k, e := range s.entries {
		c.entries[k] = e
	}
	return c
}

// effective returns the configured value, falling back to the default.
func effective(configured component.Value, d component.PropertyDescriptor) component.Value {
	if configured.IsSet() {
		return configured
	}
	return d.Default
}
