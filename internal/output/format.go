// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
)

// EmptyList is printed by list when there are no tasks.
const EmptyList = "no tasks found"

// FormatRow formats one task line.
// Format: "{N:>4}  {TITLE}\n" (4-wide right-aligned number, two spaces, title)
func FormatRow(w io.Writer, num int, title string) {
	fmt.Fprintf(w, "%4d  %s\n", num, NormalizeTitle(title))
}

// NormalizeTitle normalizes a task title for single-line display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func NormalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
