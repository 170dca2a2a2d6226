// Package filter narrows duplicate-group reports. Known benign duplicate
// classes (build artifacts, empty config stubs, vendored trees) are a
// reporting concern, not a grouping concern, so they are pruned here on
// top of the ranked index output.
package filter

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/tallylabs/tally/pkg/tally/dupes"
)

// Filter defines criteria for pruning duplicate groups and their members.
type Filter struct {
	// MinSize is the minimum per-file size in bytes. Groups of smaller
	// files are dropped entirely.
	MinSize int64

	// Include contains glob patterns. If non-empty, only members
	// matching at least one pattern are kept.
	Include []string

	// Exclude contains glob patterns. Matching members are removed.
	Exclude []string

	// Extensions contains file extensions to include (e.g., ".iso").
	// If non-empty, only members with matching extensions are kept.
	Extensions []string

	// Limit is the maximum number of groups to return. 0 means unlimited.
	Limit int

	include []glob.Glob
	exclude []glob.Glob
}

// Option is a functional option for configuring a Filter.
type Option func(*Filter)

// New creates a Filter with the given options and compiles its glob
// patterns once; always construct filters through it. Patterns that do
// not parse are dropped here. The zero filter passes everything through
// unchanged.
func New(opts ...Option) *Filter {
	f := &Filter{}
	for _, opt := range opts {
		opt(f)
	}
	f.include = compilePatterns(f.Include)
	f.exclude = compilePatterns(f.Exclude)
	return f
}

// compilePatterns compiles glob patterns, dropping invalid ones.
func compilePatterns(patterns []string) []glob.Glob {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			continue
		}
		globs = append(globs, g)
	}
	return globs
}

// WithMinSize sets the minimum per-file size in bytes.
// If minSize < 0, it is set to 0.
func WithMinSize(minSize int64) Option {
	return func(f *Filter) {
		if minSize < 0 {
			minSize = 0
		}
		f.MinSize = minSize
	}
}

// WithInclude sets the include glob patterns.
func WithInclude(patterns ...string) Option {
	return func(f *Filter) {
		f.Include = patterns
	}
}

// WithExclude sets the exclude glob patterns.
func WithExclude(patterns ...string) Option {
	return func(f *Filter) {
		f.Exclude = patterns
	}
}

// WithExtensions sets the file extensions to include.
// Extensions are normalized: lowercase and prefixed with "." if missing.
func WithExtensions(extensions ...string) Option {
	return func(f *Filter) {
		normalized := make([]string, 0, len(extensions))
		for _, ext := range extensions {
			ext = strings.ToLower(ext)
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			normalized = append(normalized, ext)
		}
		f.Extensions = normalized
	}
}

// WithLimit sets the maximum number of groups to return.
// If limit <= 0, it is set to 0 (unlimited).
func WithLimit(limit int) Option {
	return func(f *Filter) {
		if limit < 0 {
			limit = 0
		}
		f.Limit = limit
	}
}

// Apply prunes the ranked groups. Member-level criteria (patterns,
// extensions) remove individual paths; a group that falls below two
// members stops being a duplicate group and is dropped. Group order is
// preserved from the input ranking.
func (f *Filter) Apply(groups []dupes.Group) []dupes.Group {
	out := make([]dupes.Group, 0, len(groups))
	for _, g := range groups {
		if f.MinSize > 0 && g.Size < f.MinSize {
			continue
		}

		kept := g.Paths
		if f.prunesMembers() {
			kept = make([]string, 0, len(g.Paths))
			for _, p := range g.Paths {
				if f.matchMember(p) {
					kept = append(kept, p)
				}
			}
		}
		if len(kept) < 2 {
			continue
		}

		out = append(out, dupes.Group{Hash: g.Hash, Size: g.Size, Paths: kept})
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}

func (f *Filter) prunesMembers() bool {
	return len(f.Include) > 0 || len(f.Exclude) > 0 || len(f.Extensions) > 0
}

// matchMember checks a single member path against extension and pattern
// criteria.
func (f *Filter) matchMember(path string) bool {
	if len(f.Extensions) > 0 {
		ext := strings.ToLower(filepath.Ext(path))
		found := false
		for _, e := range f.Extensions {
			if e == ext {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if matchesAny(path, f.exclude) {
		return false
	}
	if len(f.include) > 0 && !matchesAny(path, f.include) {
		return false
	}
	return true
}

// matchesAny returns true if the path matches any of the compiled globs.
func matchesAny(path string, globs []glob.Glob) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}
