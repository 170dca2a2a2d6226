// Package walker enumerates regular files under a set of root directories
// using fastwalk. It reports path, size, and modification time for every
// regular file it can reach, and surfaces unreadable directories as
// warnings rather than failures. It never opens file contents.
package walker

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/gobwas/glob"
)

// FileEvent describes one regular file seen during a walk.
type FileEvent struct {
	// Path is the file path, rooted at the walked root.
	Path string

	// Size is the file size in bytes. Zero when Err is set.
	Size int64

	// ModTime is the last modification time. The zero value means the
	// filesystem did not expose one.
	ModTime time.Time

	// Err is the stat error for this file, if any. The event is still
	// emitted so the caller can record the path as unreadable.
	Err error
}

// WalkFunc receives file events. fastwalk traverses directories in
// parallel, so implementations must be safe for concurrent calls.
// Returning a non-nil error stops the walk.
type WalkFunc func(FileEvent) error

// Options configures a Walker.
type Options struct {
	// FollowSymlinks enables following directory symlinks. fastwalk
	// tracks visited directories when following, so symlink cycles are
	// skipped rather than recursed into.
	FollowSymlinks bool

	// Exclude contains glob patterns for paths to skip, in the same
	// syntax the report filters use. Patterns containing a path
	// separator match against the full path (`**` crosses directories);
	// bare patterns match the base name. Matching directories are
	// skipped as whole subtrees. Invalid patterns are reported through
	// OnWarning and ignored.
	Exclude []string

	// OnWarning is called for directories that could not be entered.
	// May be called concurrently. Optional.
	OnWarning func(path string, err error)
}

// Walker enumerates regular files under root directories.
type Walker struct {
	opts    Options
	exclude []exclusion
}

// exclusion is one compiled exclude pattern. Base-name patterns carry
// only g; full-path patterns also carry sub, which matches anything
// nested under a matching path.
type exclusion struct {
	base bool
	g    glob.Glob
	sub  glob.Glob
}

// New creates a Walker with the given options. Exclude patterns are
// compiled once here.
func New(opts Options) *Walker {
	return &Walker{opts: opts, exclude: compileExclusions(opts)}
}

func compileExclusions(opts Options) []exclusion {
	out := make([]exclusion, 0, len(opts.Exclude))
	for _, pattern := range opts.Exclude {
		if pattern == "" {
			continue
		}

		if !strings.ContainsRune(pattern, '/') {
			g, err := glob.Compile(pattern)
			if err != nil {
				warnPattern(opts, pattern, err)
				continue
			}
			out = append(out, exclusion{base: true, g: g})
			continue
		}

		g, err := glob.Compile(pattern, '/')
		if err != nil {
			warnPattern(opts, pattern, err)
			continue
		}
		sub, err := glob.Compile(strings.TrimSuffix(pattern, "/")+"/**", '/')
		if err != nil {
			warnPattern(opts, pattern, err)
			continue
		}
		out = append(out, exclusion{g: g, sub: sub})
	}
	return out
}

func warnPattern(opts Options, pattern string, err error) {
	if opts.OnWarning != nil {
		opts.OnWarning(pattern, err)
	}
}

// Walk traverses root recursively, invoking fn for every regular file.
// The root must be an existing directory. Unreadable subdirectories are
// reported through OnWarning and skipped. Walk stops early when ctx is
// cancelled, returning the context error.
func (w *Walker) Walk(ctx context.Context, root string, fn WalkFunc) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "walk", Path: root, Err: errors.New("not a directory")}
	}

	conf := fastwalk.Config{
		Follow: w.opts.FollowSymlinks,
	}

	err = fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			w.warn(path, err)
			return nil
		}

		if w.isExcluded(path) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		ev := FileEvent{Path: path}
		if fi, infoErr := d.Info(); infoErr != nil {
			ev.Err = infoErr
		} else {
			ev.Size = fi.Size()
			ev.ModTime = fi.ModTime()
		}
		return fn(ev)
	})

	if err != nil && !errors.Is(err, fastwalk.ErrSkipFiles) {
		return err
	}
	return nil
}

// warn reports a traversal warning if a handler is configured.
func (w *Walker) warn(path string, err error) {
	if w.opts.OnWarning != nil {
		w.opts.OnWarning(path, err)
	}
}

// isExcluded reports whether a path matches any exclude pattern, either
// directly or as a descendant of a matching path.
func (w *Walker) isExcluded(path string) bool {
	base := filepath.Base(path)
	for _, ex := range w.exclude {
		if ex.base {
			if ex.g.Match(base) {
				return true
			}
			continue
		}
		if ex.g.Match(path) || ex.sub.Match(path) {
			return true
		}
	}
	return false
}
