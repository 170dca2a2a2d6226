// Package output provides formatters for displaying duplicate reports
// in various output formats (pretty, plain, json, yaml, table).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, report); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tallylabs/tally/pkg/tally/dupes"
	"github.com/tallylabs/tally/pkg/tally/logging"
)

// logger is the package-level logger for output operations.
var logger = logging.Get("output")

// GroupInfo is one duplicate group prepared for formatting, with
// human-readable size fields precomputed.
type GroupInfo struct {
	// Hash is the 40-hex-character content digest shared by all members.
	Hash string `json:"hash" yaml:"hash"`

	// Count is the number of members.
	Count int `json:"count" yaml:"count"`

	// Size is the per-file size in bytes.
	Size int64 `json:"size" yaml:"size"`

	// SizeHuman is the human-readable per-file size (e.g., "1.5 GiB").
	SizeHuman string `json:"size_human" yaml:"size_human"`

	// WastedBytes is the reclaimable space beyond one copy.
	WastedBytes int64 `json:"wasted_bytes" yaml:"wasted_bytes"`

	// WastedHuman is the human-readable reclaimable space.
	WastedHuman string `json:"wasted_human" yaml:"wasted_human"`

	// Paths holds the member paths in manifest order.
	Paths []string `json:"paths" yaml:"paths"`
}

// SummaryInfo carries manifest-wide duplication figures for formatting.
type SummaryInfo struct {
	Entries         int    `json:"entries" yaml:"entries"`
	UniqueHashes    int    `json:"unique_hashes" yaml:"unique_hashes"`
	DuplicateGroups int    `json:"duplicate_groups" yaml:"duplicate_groups"`
	DuplicateFiles  int    `json:"duplicate_files" yaml:"duplicate_files"`
	WastedBytes     int64  `json:"wasted_bytes" yaml:"wasted_bytes"`
	WastedHuman     string `json:"wasted_human" yaml:"wasted_human"`
	Unreadable      int    `json:"unreadable" yaml:"unreadable"`
	Empty           int    `json:"empty" yaml:"empty"`
}

// Report contains the complete duplicate report data for formatting.
type Report struct {
	// ManifestPath is the manifest file the report was derived from.
	ManifestPath string `json:"manifest" yaml:"manifest"`

	// GeneratedAt is when the report was built.
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`

	// Groups holds the ranked duplicate groups.
	Groups []GroupInfo `json:"groups" yaml:"groups"`

	// Summary contains manifest-wide aggregate figures.
	Summary SummaryInfo `json:"summary" yaml:"summary"`

	// Truncated reports that a group limit cut the list short.
	Truncated bool `json:"truncated,omitempty" yaml:"truncated,omitempty"`
}

// humanSize renders a byte count, tolerating the unknown-size marker.
func humanSize(bytes int64) string {
	if bytes < 0 {
		return "?"
	}
	return humanize.IBytes(uint64(bytes))
}

// BuildReport converts ranked groups and a summary into the formatting
// model.
func BuildReport(manifestPath string, groups []dupes.Group, s dupes.Summary) *Report {
	infos := make([]GroupInfo, len(groups))
	for i, g := range groups {
		infos[i] = GroupInfo{
			Hash:        g.Hash.Hex(),
			Count:       g.Count(),
			Size:        g.Size,
			SizeHuman:   humanSize(g.Size),
			WastedBytes: g.WastedBytes(),
			WastedHuman: humanSize(g.WastedBytes()),
			Paths:       g.Paths,
		}
	}
	logger.Debug("report built", "groups", len(groups), "wasted", s.WastedBytes)
	return &Report{
		ManifestPath: manifestPath,
		GeneratedAt:  time.Now(),
		Groups:       infos,
		Summary: SummaryInfo{
			Entries:         s.Entries,
			UniqueHashes:    s.UniqueHashes,
			DuplicateGroups: s.DuplicateGroups,
			DuplicateFiles:  s.DuplicateFiles,
			WastedBytes:     s.WastedBytes,
			WastedHuman:     humanSize(s.WastedBytes),
			Unreadable:      s.Unreadable,
			Empty:           s.Empty,
		},
	}
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, r *Report) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
