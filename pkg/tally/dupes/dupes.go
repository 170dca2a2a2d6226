// Package dupes groups manifest entries by content digest and ranks the
// resulting duplicate groups. It works purely on a loaded manifest and
// never reads file content.
package dupes

import (
	"sort"

	"github.com/tallylabs/tally/pkg/tally/manifest"
	"github.com/tallylabs/tally/pkg/tally/types"
)

// Group is a set of two or more entries sharing one content digest.
type Group struct {
	Hash types.Digest

	// Size is the per-file byte size. Entries sharing a digest share a
	// size; an unknown size is reported as 0.
	Size int64

	// Paths holds the members in manifest order.
	Paths []string
}

// Count returns the number of members in the group.
func (g Group) Count() int { return len(g.Paths) }

// TotalBytes returns the bytes occupied by all members together.
func (g Group) TotalBytes() int64 { return int64(g.Count()) * g.Size }

// WastedBytes returns the bytes that deduplication could reclaim, i.e.
// everything beyond a single copy.
func (g Group) WastedBytes() int64 { return int64(g.Count()-1) * g.Size }

// Summary aggregates manifest-wide duplication figures. The reserved
// digest classes (unreadable, confirmed empty) appear only here, never
// as groups.
type Summary struct {
	Entries         int
	UniqueHashes    int
	DuplicateGroups int
	DuplicateFiles  int
	WastedBytes     int64
	Unreadable      int
	Empty           int
}

// Index is the result of grouping one manifest.
type Index struct {
	groups  []Group
	summary Summary
}

// Build groups the manifest's entries by digest. Groups carry only
// genuine digests with more than one member; ranking is by member count
// descending, then total bytes descending, then digest hex ascending.
func Build(m *manifest.Manifest) *Index {
	idx := &Index{}
	if m == nil {
		return idx
	}

	byHash := make(map[types.Digest][]string)
	sizes := make(map[types.Digest]int64)

	for _, e := range m.Entries() {
		idx.summary.Entries++
		switch {
		case e.Hash.IsZero():
			idx.summary.Unreadable++
			continue
		case e.Hash.IsEmpty():
			idx.summary.Empty++
			continue
		}
		byHash[e.Hash] = append(byHash[e.Hash], e.Path)
		if _, ok := sizes[e.Hash]; !ok {
			size := e.Size
			if size < 0 {
				size = 0
			}
			sizes[e.Hash] = size
		}
	}

	idx.summary.UniqueHashes = len(byHash)

	for hash, paths := range byHash {
		if len(paths) < 2 {
			continue
		}
		g := Group{Hash: hash, Size: sizes[hash], Paths: paths}
		idx.groups = append(idx.groups, g)
		idx.summary.DuplicateGroups++
		idx.summary.DuplicateFiles += g.Count()
		idx.summary.WastedBytes += g.WastedBytes()
	}

	sort.Slice(idx.groups, func(i, j int) bool {
		a, b := idx.groups[i], idx.groups[j]
		if a.Count() != b.Count() {
			return a.Count() > b.Count()
		}
		if a.TotalBytes() != b.TotalBytes() {
			return a.TotalBytes() > b.TotalBytes()
		}
		return a.Hash.Hex() < b.Hash.Hex()
	})

	return idx
}

// Groups returns the ranked duplicate groups.
func (i *Index) Groups() []Group { return i.groups }

// Summary returns the manifest-wide aggregate figures.
func (i *Index) Summary() Summary { return i.summary }
