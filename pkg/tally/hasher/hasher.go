// Package hasher computes streaming SHA-1 content digests for files.
//
// Failure to open or read a file is a recorded outcome, not an error: the
// caller receives the reserved zero sentinel and ok=false. A file that
// opens and reads zero bytes yields the empty-content digest with ok=true;
// "confirmed empty" and "could not read" are never conflated.
package hasher

import (
	"context"
	"crypto/sha1"
	"io"
	"os"

	"github.com/tallylabs/tally/pkg/tally/types"
)

// DefaultChunkSize is the read size used when none is configured. Chunk
// size is a throughput tuning knob, not a correctness parameter.
const DefaultChunkSize = 64 * 1024

// Hasher computes content digests by streaming file bytes in fixed-size
// chunks.
type Hasher struct {
	chunkSize int
}

// New creates a Hasher. A chunkSize <= 0 selects DefaultChunkSize.
func New(chunkSize int) *Hasher {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Hasher{chunkSize: chunkSize}
}

// Hash digests the file at path. On any open or read failure (permission
// denied, I/O error, file vanished mid-read) it returns the zero sentinel
// and false. Cancellation is checked between chunks; a cancelled context
// also yields the sentinel, so the partial digest is never mistaken for a
// genuine one.
func (h *Hasher) Hash(ctx context.Context, path string) (types.Digest, bool) {
	f, err := os.Open(path)
	if err != nil {
		return types.ZeroDigest, false
	}
	defer f.Close()

	sum := sha1.New()
	buf := make([]byte, h.chunkSize)

	for {
		select {
		case <-ctx.Done():
			return types.ZeroDigest, false
		default:
		}

		n, err := f.Read(buf)
		if n > 0 {
			sum.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return types.ZeroDigest, false
		}
	}

	var d types.Digest
	copy(d[:], sum.Sum(nil))
	return d, true
}
