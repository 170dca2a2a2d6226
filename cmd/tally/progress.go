package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tallylabs/tally/pkg/tally/scanner"
)

// progressInterval is the minimum time between status line updates. The
// scanner reports every file; throttling happens here.
const progressInterval = 100 * time.Millisecond

// progressPrinter writes a single overwriting status line. It is driven
// from the scanner's writer goroutine, so no locking is needed.
type progressPrinter struct {
	w       io.Writer
	last    time.Time
	written bool
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w}
}

// onFile is the scanner progress callback.
func (p *progressPrinter) onFile(pr scanner.Progress) {
	now := time.Now()
	if now.Sub(p.last) < progressInterval {
		return
	}
	p.last = now

	fmt.Fprintf(p.w, "\r\033[K%d files (%d hashed, %d reused, %d unreadable) %s read",
		pr.FilesSeen, pr.FilesHashed, pr.FilesReused, pr.FilesUnreadable,
		humanize.IBytes(uint64(pr.BytesHashed)))
	p.written = true
}

// done clears the status line so the summary starts on a fresh line.
func (p *progressPrinter) done() {
	if p.written {
		fmt.Fprint(p.w, "\r\033[K")
	}
}
