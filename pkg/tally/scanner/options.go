// Package scanner reconciles a prior manifest against the live filesystem.
// It walks the configured roots, reuses recorded hashes for files whose
// size and modification time are unchanged, re-hashes everything else
// through a bounded worker pool, and drops entries whose paths were not
// observed. The output manifest's content does not depend on the order in
// which files were processed.
package scanner

import (
	"context"
	"runtime"

	"github.com/tallylabs/tally/pkg/tally/hasher"
	"github.com/tallylabs/tally/pkg/tally/types"
)

// maxDefaultWorkers caps the automatic worker count. Hashing is I/O bound;
// past the storage queue depth extra workers only add seek pressure.
const maxDefaultWorkers = 8

// ContentHasher produces a content digest for a file, reporting ok=false
// with the zero sentinel when the content could not be read.
type ContentHasher interface {
	Hash(ctx context.Context, path string) (types.Digest, bool)
}

// Progress is reported once per processed file. Rate limiting is the
// consumer's responsibility, not the scanner's.
type Progress struct {
	// Path is the file just resolved.
	Path string

	// Hashed reports that this run read the file's content.
	Hashed bool

	// Reused reports that the prior hash was carried forward unchanged.
	Reused bool

	// Unreadable reports that the file's content could not be read and
	// the zero sentinel was recorded.
	Unreadable bool

	// FilesSeen, FilesHashed, FilesReused, and FilesUnreadable are
	// running totals at the time of the callback.
	FilesSeen       int64
	FilesHashed     int64
	FilesReused     int64
	FilesUnreadable int64

	// BytesHashed is the total content bytes read so far.
	BytesHashed int64
}

// Options configures a Scanner.
type Options struct {
	// Roots are the directories to reconcile. At least one is required
	// and each must exist when Reconcile starts.
	Roots []string

	// Workers is the hash worker pool size. Values < 1 select
	// min(GOMAXPROCS, 8).
	Workers int

	// ChunkSize is the hasher read size in bytes; <= 0 uses the hasher
	// default.
	ChunkSize int

	// FollowSymlinks enables following directory symlinks during the walk.
	FollowSymlinks bool

	// Exclude contains glob patterns for paths to skip.
	Exclude []string

	// OnFile is called once per processed file. It is invoked from a
	// single goroutine, so it need not be re-entrant, but invocation
	// order across files is unspecified. Optional.
	OnFile func(Progress)

	// OnWarning receives non-fatal traversal problems (unreadable
	// directories, unpersistable paths). May be called concurrently.
	// Optional.
	OnWarning func(path string, err error)

	// Hasher overrides the content hasher. Nil selects the streaming
	// SHA-1 hasher with ChunkSize.
	Hasher ContentHasher
}

// Validate applies defaults for unset values.
func (o *Options) Validate() error {
	if o.Workers < 1 {
		o.Workers = runtime.GOMAXPROCS(0)
		if o.Workers > maxDefaultWorkers {
			o.Workers = maxDefaultWorkers
		}
	}
	if o.Hasher == nil {
		o.Hasher = hasher.New(o.ChunkSize)
	}
	return nil
}
