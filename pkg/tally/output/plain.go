package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"
)

// PlainFormatter formats the report as tab-separated member lines.
// It produces plain text output suitable for scripting and piping.
// No colors or styling are applied.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	if _, err := tw.Write([]byte("HASH\tSIZE\tPATH\n")); err != nil {
		return err
	}

	for _, g := range r.Groups {
		for _, path := range g.Paths {
			if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", g.Hash, g.SizeHuman, path); err != nil {
				return err
			}
		}
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%d groups, %d files, %s wasted\n",
		len(r.Groups), r.Summary.DuplicateFiles, r.Summary.WastedHuman)
	return err
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
