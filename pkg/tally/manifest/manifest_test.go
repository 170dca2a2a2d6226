package manifest

import (
	"testing"

	"github.com/tallylabs/tally/pkg/tally/types"
)

func entry(path string) *types.Entry {
	return &types.Entry{Path: path, Hash: types.EmptyDigest, Size: 0}
}

func TestPutPreservesInsertionOrder(t *testing.T) {
	m := New()
	m.Put(entry("/c"))
	m.Put(entry("/a"))
	m.Put(entry("/b"))

	want := []string{"/c", "/a", "/b"}
	got := m.Paths()
	if len(got) != len(want) {
		t.Fatalf("Paths = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Paths[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPutReplaceKeepsPosition(t *testing.T) {
	m := New()
	m.Put(entry("/a"))
	m.Put(entry("/b"))

	replacement := entry("/a")
	replacement.Size = 99
	m.Put(replacement)

	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}
	if m.Paths()[0] != "/a" {
		t.Errorf("replaced entry moved, order = %v", m.Paths())
	}
	e, _ := m.Get("/a")
	if e.Size != 99 {
		t.Errorf("Size = %d, want 99", e.Size)
	}
}

func TestDelete(t *testing.T) {
	m := New()
	m.Put(entry("/a"))
	m.Put(entry("/b"))
	m.Put(entry("/c"))

	m.Delete("/b")
	m.Delete("/missing") // no-op

	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}
	if _, ok := m.Get("/b"); ok {
		t.Error("deleted entry still present")
	}
	got := m.Paths()
	if got[0] != "/a" || got[1] != "/c" {
		t.Errorf("order after delete = %v", got)
	}
}

func TestEntriesMatchesOrder(t *testing.T) {
	m := New()
	m.Put(entry("/x"))
	m.Put(entry("/y"))

	entries := m.Entries()
	if len(entries) != 2 || entries[0].Path != "/x" || entries[1].Path != "/y" {
		t.Errorf("Entries out of order: %v", entries)
	}
}
