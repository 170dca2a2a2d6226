// Package manifest provides the persisted file inventory for tally: an
// ordered mapping from file path to content hash, size, and modification
// time, together with its versioned on-disk text form.
//
// The manifest is the single source of truth for duplicate analysis and
// for incremental rescans. All (de)serialization lives in this package;
// no other component parses the persisted form.
package manifest

import (
	"github.com/tallylabs/tally/pkg/tally/types"
)

// Manifest is an in-memory file inventory. Paths are unique and entry
// insertion order is preserved: saved files and duplicate-group members
// keep the order entries were first added in.
type Manifest struct {
	// Version is the persisted format version this manifest was loaded
	// from, or CurrentVersion for a new manifest.
	Version int

	order   []string
	entries map[string]*types.Entry
}

// New returns an empty manifest at the current format version.
func New() *Manifest {
	return &Manifest{
		Version: CurrentVersion,
		entries: make(map[string]*types.Entry),
	}
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	return len(m.entries)
}

// Get returns the entry for path, if present.
func (m *Manifest) Get(path string) (*types.Entry, bool) {
	e, ok := m.entries[path]
	return e, ok
}

// Put inserts or replaces the entry keyed by its path. Replacing keeps the
// entry's original position in the manifest order.
func (m *Manifest) Put(e *types.Entry) {
	if _, ok := m.entries[e.Path]; !ok {
		m.order = append(m.order, e.Path)
	}
	m.entries[e.Path] = e
}

// Delete removes the entry for path, if present.
func (m *Manifest) Delete(path string) {
	if _, ok := m.entries[path]; !ok {
		return
	}
	delete(m.entries, path)
	for i, p := range m.order {
		if p == path {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Paths returns all paths in manifest order. The returned slice is a copy.
func (m *Manifest) Paths() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Entries returns all entries in manifest order.
func (m *Manifest) Entries() []*types.Entry {
	out := make([]*types.Entry, 0, len(m.order))
	for _, p := range m.order {
		out = append(out, m.entries[p])
	}
	return out
}
