package manifest

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tallylabs/tally/pkg/tally/types"
)

// Persisted format versions. Load dispatches strictly on the declared
// version; unknown versions are rejected rather than guessed at.
//
//	version 1: <40-hex hash> <path>            (also accepted headerless)
//	version 2: <40-hex hash> <size> <path>
//	version 3: <40-hex hash> <size> <mtime-unixnano> <path>
//
// The hash field is fixed-width so the path, which may contain spaces or
// arbitrary non-newline bytes, is recovered unambiguously as everything
// after the preceding fixed-position fields.
const (
	Version1 = 1
	Version2 = 2
	Version3 = 3

	// CurrentVersion is the version Save writes. Version 3 records the
	// modification time so size/modTime hash reuse survives restarts.
	CurrentVersion = Version3
)

// ErrCorrupt indicates a malformed or truncated manifest file. A corrupt
// manifest is fatal for the load call: Load never returns a partially
// populated manifest.
var ErrCorrupt = errors.New("manifest corrupt")

// ErrUnsupportedVersion indicates a manifest version this build cannot read.
var ErrUnsupportedVersion = errors.New("unsupported manifest version")

// ErrUnportablePath indicates an entry path that cannot be represented in
// the line-oriented persisted form.
var ErrUnportablePath = errors.New("path contains newline, cannot be persisted")

const versionPrefix = "version "

// Load reads the manifest at path. A missing file is reported with an
// error satisfying errors.Is(err, fs.ErrNotExist) so callers can decide
// whether starting from an empty manifest is acceptable; Load itself never
// silently substitutes one.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse reads a manifest from r in any supported version. The input is
// treated as raw bytes: paths are stored exactly as read, never re-encoded.
func Parse(r io.Reader) (*Manifest, error) {
	br := bufio.NewReaderSize(r, 64*1024)

	m := New()
	version := Version1 // headerless files predate the version tag

	line, err := readLine(br)
	if err == io.EOF {
		return m, nil // empty file is an empty manifest
	}
	if err != nil {
		return nil, err
	}

	lineno := 1
	if strings.HasPrefix(string(line), versionPrefix) {
		v, convErr := strconv.Atoi(strings.TrimSpace(string(line[len(versionPrefix):])))
		if convErr != nil {
			return nil, fmt.Errorf("%w: line 1: bad version header", ErrCorrupt)
		}
		switch v {
		case Version1, Version2, Version3:
			version = v
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
		}
	} else {
		if err := parseEntry(m, line, version, lineno); err != nil {
			return nil, err
		}
	}
	m.Version = version

	for {
		line, err = readLine(br)
		if err == io.EOF {
			return m, nil
		}
		if err != nil {
			return nil, err
		}
		lineno++
		if err := parseEntry(m, line, version, lineno); err != nil {
			return nil, err
		}
	}
}

// readLine returns the next line without its terminating newline. A final
// line with no newline means the file was truncated mid-write and is
// reported as corruption.
func readLine(br *bufio.Reader) ([]byte, error) {
	line, err := br.ReadBytes('\n')
	if err == io.EOF {
		if len(line) > 0 {
			return nil, fmt.Errorf("%w: truncated final line", ErrCorrupt)
		}
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return line[:len(line)-1], nil
}

// parseEntry decodes one entry line according to the manifest version and
// inserts it. Duplicate paths violate the one-entry-per-path invariant and
// are treated as corruption.
func parseEntry(m *Manifest, line []byte, version, lineno int) error {
	if len(line) < types.HexDigestLen+1 || line[types.HexDigestLen] != ' ' {
		return fmt.Errorf("%w: line %d: short or malformed entry", ErrCorrupt, lineno)
	}

	hash, err := types.ParseDigest(string(line[:types.HexDigestLen]))
	if err != nil {
		return fmt.Errorf("%w: line %d: %v", ErrCorrupt, lineno, err)
	}

	rest := line[types.HexDigestLen+1:]
	entry := &types.Entry{Hash: hash, Size: types.SizeUnknown}

	switch version {
	case Version1:
		entry.Path = string(rest)

	case Version2:
		size, path, err := splitField(rest, lineno, "size")
		if err != nil {
			return err
		}
		entry.Size = size
		entry.Path = string(path)

	case Version3:
		size, rest, err := splitField(rest, lineno, "size")
		if err != nil {
			return err
		}
		mtime, path, err := splitField(rest, lineno, "mtime")
		if err != nil {
			return err
		}
		entry.Size = size
		if mtime != 0 {
			entry.ModTime = time.Unix(0, mtime)
		}
		entry.Path = string(path)
	}

	if entry.Path == "" {
		return fmt.Errorf("%w: line %d: empty path", ErrCorrupt, lineno)
	}
	if _, dup := m.Get(entry.Path); dup {
		return fmt.Errorf("%w: line %d: duplicate path %q", ErrCorrupt, lineno, entry.Path)
	}
	m.Put(entry)
	return nil
}

// splitField parses a decimal field terminated by a single space and
// returns the remainder.
func splitField(b []byte, lineno int, name string) (int64, []byte, error) {
	idx := bytes.IndexByte(b, ' ')
	if idx <= 0 {
		return 0, nil, fmt.Errorf("%w: line %d: missing %s field", ErrCorrupt, lineno, name)
	}
	v, err := strconv.ParseInt(string(b[:idx]), 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: line %d: bad %s field", ErrCorrupt, lineno, name)
	}
	return v, b[idx+1:], nil
}

// Save writes the manifest to path atomically: the full content is written
// to a temporary file in the destination directory, synced, then renamed
// over the destination. Either the complete new manifest becomes visible
// or the prior file is left untouched.
func Save(m *Manifest, path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp manifest: %w", err)
	}
	tmpName := tmp.Name()

	if err := writeAll(tmp, m); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close manifest: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

// writeAll writes the canonical current-version form to w.
func writeAll(w io.Writer, m *Manifest) error {
	bw := bufio.NewWriterSize(w, 64*1024)

	if _, err := fmt.Fprintf(bw, "%s%d\n", versionPrefix, CurrentVersion); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	for _, e := range m.Entries() {
		if strings.ContainsAny(e.Path, "\n\r") {
			return fmt.Errorf("%w: %q", ErrUnportablePath, e.Path)
		}
		var mtime int64
		if !e.ModTime.IsZero() {
			mtime = e.ModTime.UnixNano()
		}
		if _, err := fmt.Fprintf(bw, "%s %d %d %s\n", e.Hash.Hex(), e.Size, mtime, e.Path); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
	}
	return bw.Flush()
}
