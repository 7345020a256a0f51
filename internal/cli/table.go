// Table helpers for human-readable output.
package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"
)

const (
	tablePadding = 2

	// maxCellWidth caps free-text columns such as event payloads.
	maxCellWidth = 60
)

func writeTable(out io.Writer, headers []string, rows [][]string) error {
	writer := tabwriter.NewWriter(out, 0, 0, tablePadding, ' ', 0)
	if len(headers) > 0 {
		fmt.Fprintln(writer, strings.Join(headers, "\t"))
	}
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = truncateCell(cell, maxCellWidth)
		}
		fmt.Fprintln(writer, strings.Join(cells, "\t"))
	}
	return writer.Flush()
}

// truncateCell flattens newlines and tabs and shortens s to width runes.
func truncateCell(s string, width int) string {
	s = strings.NewReplacer("\n", " ", "\t", " ").Replace(s)
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-1]) + "…"
}

func formatYesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
