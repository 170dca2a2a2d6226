package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tallylabs/tally/pkg/tally/manifest"
	"github.com/tallylabs/tally/pkg/tally/types"
	"github.com/tallylabs/tally/pkg/tally/walker"
)

// Stats summarizes one reconciliation pass.
type Stats struct {
	FilesSeen       int64
	FilesHashed     int64
	FilesReused     int64
	FilesUnreadable int64
	FilesEmpty      int64
	BytesHashed     int64
	Warnings        int64
	Elapsed         time.Duration
}

// Scanner performs incremental manifest reconciliation. A Scanner may be
// reused for successive passes; each Reconcile starts from fresh counters.
type Scanner struct {
	opts Options

	filesSeen       atomic.Int64
	filesHashed     atomic.Int64
	filesReused     atomic.Int64
	filesUnreadable atomic.Int64
	filesEmpty      atomic.Int64
	bytesHashed     atomic.Int64
	warnings        atomic.Int64

	// jobsSkipped counts hash jobs abandoned after cancellation. Any
	// skipped job means the pass is partial.
	jobsSkipped atomic.Int64
}

// job is a file that needs its content hashed this run.
type job struct {
	path    string
	size    int64
	modTime time.Time
}

// result is one resolved entry on its way to the single-writer loop.
type result struct {
	entry      *types.Entry
	hashed     bool
	reused     bool
	unreadable bool
}

// New creates a Scanner with the given options.
func New(opts Options) *Scanner {
	_ = opts.Validate()
	return &Scanner{opts: opts}
}

// Reconcile walks the configured roots and produces a new manifest from
// prior: unchanged files (same size and modification time) keep their
// recorded hash without being read, changed or new files are re-hashed,
// and prior entries whose paths were not observed are dropped.
//
// On cancellation Reconcile stops dispatching work, lets in-flight hashes
// wind down, and returns the partially reconciled manifest together with
// the context error so the caller can persist what was resolved.
func (s *Scanner) Reconcile(ctx context.Context, prior *manifest.Manifest) (*manifest.Manifest, Stats, error) {
	start := time.Now()

	if len(s.opts.Roots) == 0 {
		return nil, Stats{}, errors.New("scanner: no roots configured")
	}
	for _, root := range s.opts.Roots {
		fi, err := os.Stat(root)
		if err != nil {
			return nil, Stats{}, fmt.Errorf("scan root: %w", err)
		}
		if !fi.IsDir() {
			return nil, Stats{}, fmt.Errorf("scan root %s: not a directory", root)
		}
	}
	if prior == nil {
		prior = manifest.New()
	}
	s.reset()

	next := manifest.New()

	// seen dedupes paths across overlapping roots within this pass.
	var seen sync.Map

	jobs := make(chan job, s.opts.Workers*2)
	results := make(chan result, s.opts.Workers*2)

	// Single writer: only this goroutine mutates the manifest, so hash
	// workers never race on the map.
	var writerWG sync.WaitGroup
	writerWG.Add(1)
	go func() {
		defer writerWG.Done()
		for r := range results {
			next.Put(r.entry)
			s.account(r)
		}
	}()

	eg, egCtx := errgroup.WithContext(ctx)
	for i := 0; i < s.opts.Workers; i++ {
		eg.Go(func() error {
			s.hashWorker(egCtx, jobs, results)
			return nil
		})
	}

	w := walker.New(walker.Options{
		FollowSymlinks: s.opts.FollowSymlinks,
		Exclude:        s.opts.Exclude,
		OnWarning: func(path string, err error) {
			s.warnings.Add(1)
			if s.opts.OnWarning != nil {
				s.opts.OnWarning(path, err)
			}
		},
	})

	var walkErr error
	for _, root := range s.opts.Roots {
		walkErr = w.Walk(egCtx, root, func(ev walker.FileEvent) error {
			return s.dispatch(egCtx, prior, &seen, ev, jobs, results)
		})
		if walkErr != nil {
			break
		}
	}

	close(jobs)
	_ = eg.Wait()
	close(results)
	writerWG.Wait()

	stats := s.snapshot(time.Since(start))

	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return next, stats, fmt.Errorf("scan interrupted: %w", walkErr)
		}
		return nil, stats, walkErr
	}
	// The walk can finish before cancellation lands; queued jobs are then
	// skipped by the workers and the pass is still partial.
	if s.jobsSkipped.Load() > 0 {
		return next, stats, fmt.Errorf("scan interrupted: %w", ctx.Err())
	}
	return next, stats, nil
}

// reset clears per-pass state so a Scanner can run repeated passes.
func (s *Scanner) reset() {
	s.filesSeen.Store(0)
	s.filesHashed.Store(0)
	s.filesReused.Store(0)
	s.filesUnreadable.Store(0)
	s.filesEmpty.Store(0)
	s.bytesHashed.Store(0)
	s.warnings.Store(0)
	s.jobsSkipped.Store(0)
}

// dispatch decides, for one walked file, between carrying the prior hash
// forward and queueing a re-hash. It runs concurrently (the walk is
// parallel) and therefore only reads prior and writes to channels.
func (s *Scanner) dispatch(ctx context.Context, prior *manifest.Manifest, seen *sync.Map, ev walker.FileEvent, jobs chan<- job, results chan<- result) error {
	if strings.ContainsAny(ev.Path, "\n\r") {
		s.warnings.Add(1)
		if s.opts.OnWarning != nil {
			s.opts.OnWarning(ev.Path, manifest.ErrUnportablePath)
		}
		return nil
	}

	if _, dup := seen.LoadOrStore(ev.Path, struct{}{}); dup {
		return nil // overlapping roots
	}

	// Stat failure: the content is unreachable, record the sentinel
	// without attempting a read.
	if ev.Err != nil {
		return send(ctx, results, result{
			entry: &types.Entry{
				Path:  ev.Path,
				Hash:  types.ZeroDigest,
				Size:  types.SizeUnknown,
				Fresh: true,
			},
			unreadable: true,
		})
	}

	if old, ok := prior.Get(ev.Path); ok && hashReusable(old, ev) {
		return send(ctx, results, result{
			entry: &types.Entry{
				Path:    ev.Path,
				Hash:    old.Hash,
				Size:    ev.Size,
				ModTime: ev.ModTime,
				Fresh:   true,
			},
			reused: true,
		})
	}

	select {
	case jobs <- job{path: ev.Path, size: ev.Size, modTime: ev.ModTime}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// hashReusable reports whether the prior entry's hash still describes the
// observed file. An unknown modification time on either side is treated as
// changed: a missed content change is worse than a wasted re-hash.
func hashReusable(old *types.Entry, ev walker.FileEvent) bool {
	if old.Size != ev.Size {
		return false
	}
	if old.ModTime.IsZero() || ev.ModTime.IsZero() {
		return false
	}
	return old.ModTime.Equal(ev.ModTime)
}

// hashWorker consumes hash jobs until the channel closes. After
// cancellation it drains the queue without recording anything, so a
// cancelled run never fabricates entries for files it did not reach.
func (s *Scanner) hashWorker(ctx context.Context, jobs <-chan job, results chan<- result) {
	for j := range jobs {
		if ctx.Err() != nil {
			s.jobsSkipped.Add(1)
			continue
		}

		digest, ok := s.opts.Hasher.Hash(ctx, j.path)
		if !ok && ctx.Err() != nil {
			s.jobsSkipped.Add(1)
			continue // aborted mid-read, not a genuine failure
		}

		r := result{
			entry: &types.Entry{
				Path:    j.path,
				Hash:    digest,
				Size:    j.size,
				ModTime: j.modTime,
				Fresh:   true,
			},
			hashed:     ok,
			unreadable: !ok,
		}
		if ok {
			s.bytesHashed.Add(j.size)
		}
		if err := send(ctx, results, r); err != nil {
			s.jobsSkipped.Add(1)
			continue
		}
	}
}

// send delivers a result unless the pass is shutting down. The results
// channel is drained until closed, so blocking here is bounded.
func send(ctx context.Context, results chan<- result, r result) error {
	select {
	case results <- r:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// account updates counters for a written entry and fires the progress
// callback. Runs on the single writer goroutine.
func (s *Scanner) account(r result) {
	s.filesSeen.Add(1)
	switch {
	case r.reused:
		s.filesReused.Add(1)
	case r.hashed:
		s.filesHashed.Add(1)
	}
	if r.unreadable {
		s.filesUnreadable.Add(1)
	}
	if r.entry.Hash.IsEmpty() {
		s.filesEmpty.Add(1)
	}

	if s.opts.OnFile == nil {
		return
	}
	s.opts.OnFile(Progress{
		Path:            r.entry.Path,
		Hashed:          r.hashed,
		Reused:          r.reused,
		Unreadable:      r.unreadable,
		FilesSeen:       s.filesSeen.Load(),
		FilesHashed:     s.filesHashed.Load(),
		FilesReused:     s.filesReused.Load(),
		FilesUnreadable: s.filesUnreadable.Load(),
		BytesHashed:     s.bytesHashed.Load(),
	})
}

// snapshot captures the final counters.
func (s *Scanner) snapshot(elapsed time.Duration) Stats {
	return Stats{
		FilesSeen:       s.filesSeen.Load(),
		FilesHashed:     s.filesHashed.Load(),
		FilesReused:     s.filesReused.Load(),
		FilesUnreadable: s.filesUnreadable.Load(),
		FilesEmpty:      s.filesEmpty.Load(),
		BytesHashed:     s.bytesHashed.Load(),
		Warnings:        s.warnings.Load(),
		Elapsed:         elapsed,
	}
}
