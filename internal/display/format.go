package display

import (
	"fmt"
	"strings"
)

// FormatMonitors renders the active/inactive monitor listing.
func FormatMonitors(l Layout) string {
	var b strings.Builder
	b.WriteString("active monitors list:\n")
	lines := make([]string, 0, len(l.Active))
	for _, m := range l.Active {
		primary := ""
		if m.Primary {
			primary = " primary"
		}
		lines = append(lines, fmt.Sprintf("    %s: %dx%d+%d+%d%s", m.Name, m.Width, m.Height, m.X, m.Y, primary))
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\ninactive monitors list:\n")
	b.WriteString("    " + strings.Join(l.Inactive, " "))
	return b.String()
}

// FormatWindows renders one line per window: id, geometry, class and title.
func FormatWindows(windows []Window) string {
	var b strings.Builder
	b.WriteString("windows list:")
	for _, w := range windows {
		fmt.Fprintf(&b, "\n    0x%x %dx%d+%d+%d %s: %s", w.ID, w.Width, w.Height, w.X, w.Y, w.Class, w.Title)
	}
	return b.String()
}
