package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Header prints a section header, "==> msg".
func (u *UI) Header(msg string) {
	u.line(u.paint(u.styles.header, "==> "+msg))
}

// Keyval prints "  key         value" with the key bold and padded.
func (u *UI) Keyval(key, value string) {
	u.line("  " + u.paint(u.styles.bold, fmt.Sprintf("%-12s", key)) + value)
}

// Error prints "error: msg" to errOut. Only the prefix is styled so that
// multi-line messages are left intact.
func (u *UI) Error(msg string) {
	prefix := u.paint(u.styles.fail, "error:")
	_, _ = fmt.Fprintln(u.errOut, prefix+" "+msg)
}

// Table prints rows under headers, columns separated by two spaces and
// padded to their widest cell. Cells past the last header are appended
// unpadded.
func (u *UI) Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for _, row := range append([][]string{headers}, rows...) {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	u.line(u.paint(u.styles.bold, tableRow(headers, widths)))
	for _, row := range rows {
		u.line(tableRow(row, widths))
	}
}

func tableRow(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		if i < len(widths) && i < len(cells)-1 {
			cell += strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		}
		parts[i] = cell
	}
	return strings.Join(parts, "  ")
}
