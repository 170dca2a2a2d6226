// Package types provides core data types for the tally file inventory tool.
// It defines the content digest with its reserved sentinel values, the
// manifest entry record, and utility functions for parsing and formatting
// file sizes.
package types

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// DigestSize is the size of a content digest in bytes.
const DigestSize = sha1.Size

// HexDigestLen is the length of a hex-encoded digest.
const HexDigestLen = DigestSize * 2

// Digest is a fixed-size content digest computed over a file's full byte
// content. Two values are reserved: ZeroDigest means the content could not
// be read, and EmptyDigest is the digest of zero-length input. Both are
// excluded from duplicate analysis by convention.
type Digest [DigestSize]byte

// ZeroDigest is the reserved all-zero sentinel meaning "content could not
// be read".
var ZeroDigest = Digest{}

// EmptyDigest is the digest of zero-length input, meaning "confirmed empty
// file".
var EmptyDigest = func() Digest {
	var d Digest
	sum := sha1.Sum(nil)
	copy(d[:], sum[:])
	return d
}()

// ErrInvalidDigest indicates that a digest string could not be parsed.
var ErrInvalidDigest = errors.New("invalid digest")

// ParseDigest parses a 40-character hex string into a Digest.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	if len(s) != HexDigestLen {
		return d, fmt.Errorf("%w: want %d hex chars, got %d", ErrInvalidDigest, HexDigestLen, len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("%w: %v", ErrInvalidDigest, err)
	}
	copy(d[:], raw)
	return d, nil
}

// Hex returns the lowercase hex encoding of the digest.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether the digest is the unreadable-content sentinel.
func (d Digest) IsZero() bool {
	return d == ZeroDigest
}

// IsEmpty reports whether the digest is the empty-content digest.
func (d Digest) IsEmpty() bool {
	return d == EmptyDigest
}

// IsReserved reports whether the digest is one of the reserved values that
// never represents a meaningful content collision.
func (d Digest) IsReserved() bool {
	return d.IsZero() || d.IsEmpty()
}

// SizeUnknown marks an entry whose size was never recorded (version 1
// manifests carry no size field).
const SizeUnknown int64 = -1

// Entry is a single manifest record for one file.
//
// Path is the primary key within a manifest. It is held as an opaque byte
// sequence (a Go string is byte-preserving) and is never re-encoded, so
// file names that are not valid Unicode survive a round trip intact.
type Entry struct {
	// Path is the file path exactly as observed on disk.
	Path string

	// Hash is the content digest, or a reserved sentinel value.
	Hash Digest

	// Size is the file size in bytes, or SizeUnknown.
	Size int64

	// ModTime is the last modification time. The zero value means the
	// time is unknown (not exposed by the filesystem, or loaded from a
	// manifest version that does not record it).
	ModTime time.Time

	// Fresh reports that the current run verified the hash against the
	// file's observed size and modification time. It is never persisted.
	Fresh bool
}

// HumanSize returns the entry size formatted as a human-readable string,
// or "?" when the size is unknown.
func (e *Entry) HumanSize() string {
	if e.Size < 0 {
		return "?"
	}
	return FormatSize(e.Size)
}

// sizePattern matches size strings like "100M", "2G", "500K", "1.5GB", etc.
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string and returns the size in
// bytes. It accepts plain byte counts ("1024"), and values with K/M/G/T
// suffixes in either short ("2G") or full ("2GiB") form. Decimal values
// are truncated to the nearest byte.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier int64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units for consistency with common filesystem tools.
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}
