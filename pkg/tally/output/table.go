package output

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
)

// TableFormatter formats the report as an ASCII table with one row per
// member path, grouped by duplicate group.
type TableFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *TableFormatter) Format(w *bytes.Buffer, r *Report) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Group", "Size", "Hash", "Path"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoMergeCells(true)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
	})

	for i, g := range r.Groups {
		for _, path := range g.Paths {
			table.Append([]string{
				fmt.Sprintf("%d", i+1),
				g.SizeHuman,
				shortHash(g.Hash),
				path,
			})
		}
	}

	table.SetFooter([]string{
		fmt.Sprintf("%d groups", r.Summary.DuplicateGroups),
		"",
		"wasted",
		r.Summary.WastedHuman,
	})

	table.Render()
	return nil
}

func init() {
	Register("table", func() Formatter {
		return &TableFormatter{}
	})
}

// Ensure TableFormatter implements Formatter.
var _ Formatter = (*TableFormatter)(nil)
