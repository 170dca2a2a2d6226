package output

import (
	"bytes"
	"fmt"
	"strings"
)

// PrettyFormatter formats the report with colors and styling using
// lipgloss. It produces a visually appealing output suitable for
// terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Report) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")
	w.WriteString(f.formatGroups(r))
	w.WriteString(f.formatFooter(r))
	return nil
}

// formatHeader builds the header box with report metadata.
func (f *PrettyFormatter) formatHeader(r *Report) string {
	var lines []string

	manifestLabel := LabelStyle.Render("Manifest:")
	manifestValue := ValueStyle.Render(r.ManifestPath)
	lines = append(lines, fmt.Sprintf("%s %s", manifestLabel, manifestValue))

	entriesLabel := LabelStyle.Render("Entries:")
	entriesValue := ValueStyle.Render(fmt.Sprintf("%d (%d unique hashes)",
		r.Summary.Entries, r.Summary.UniqueHashes))
	lines = append(lines, fmt.Sprintf("%s %s", entriesLabel, entriesValue))

	content := strings.Join(lines, "\n")
	return HeaderBox.Render(content)
}

// formatGroups builds the per-group blocks.
func (f *PrettyFormatter) formatGroups(r *Report) string {
	if len(r.Groups) == 0 {
		return MutedStyle.Render("  No duplicate groups found\n")
	}

	var sb strings.Builder
	for i, g := range r.Groups {
		title := TitleStyle.Render(fmt.Sprintf("Group %d", i+1))
		detail := fmt.Sprintf("%s × %s", ValueStyle.Render(fmt.Sprintf("%d files", g.Count)),
			SizeStyle.Render(g.SizeHuman))
		wasted := MutedStyle.Render(fmt.Sprintf("(%s wasted)", g.WastedHuman))
		hash := HashStyle.Render(shortHash(g.Hash))
		sb.WriteString(fmt.Sprintf("  %s  %s %s  %s\n", title, detail, wasted, hash))

		for _, path := range g.Paths {
			sb.WriteString("    ")
			sb.WriteString(PathStyle.Render(path))
			sb.WriteString("\n")
		}
	}

	if r.Truncated {
		sb.WriteString(MutedStyle.Render("  ... more groups not shown\n"))
	}
	return sb.String()
}

// formatFooter builds the footer box with summary information.
func (f *PrettyFormatter) formatFooter(r *Report) string {
	var parts []string

	groupsLabel := LabelStyle.Render("Groups:")
	groupsValue := ValueStyle.Render(fmt.Sprintf("%d", r.Summary.DuplicateGroups))
	parts = append(parts, fmt.Sprintf("%s %s", groupsLabel, groupsValue))

	wastedLabel := LabelStyle.Render("Wasted:")
	wastedValue := SizeStyle.Render(r.Summary.WastedHuman)
	parts = append(parts, fmt.Sprintf("%s %s", wastedLabel, wastedValue))

	if r.Summary.Unreadable > 0 {
		parts = append(parts, WarningStyle.Render(
			fmt.Sprintf("unreadable: %d", r.Summary.Unreadable)))
	}
	if r.Summary.Empty > 0 {
		parts = append(parts, MutedStyle.Render(
			fmt.Sprintf("empty: %d", r.Summary.Empty)))
	}

	hint := MutedStyle.Render("Use -o plain for unformatted output")
	parts = append(parts, hint)

	content := strings.Join(parts, "  ")
	return FooterBox.Render(content)
}

// shortHash abbreviates a digest for display.
func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
