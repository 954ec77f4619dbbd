package radar

import (
	"strings"
)

// Table is the raw result of parsing delimited text: a header row followed
// by data rows, every cell trimmed of surrounding whitespace.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Empty reports whether the table lacks a header or data rows.
func (t Table) Empty() bool {
	return len(t.Headers) == 0 || len(t.Rows) == 0
}

// Text serializes the table back to tab-delimited text that ParseTable
// accepts.
func (t Table) Text() string {
	var b strings.Builder
	b.WriteString(strings.Join(t.Headers, "\t"))
	for _, row := range t.Rows {
		b.WriteByte('\n')
		b.WriteString(strings.Join(row, "\t"))
	}
	return b.String()
}

// ParseTable splits text into a Table. The delimiter is decided once from the
// first non-empty line: tab if that line contains a tab, comma otherwise.
// Blank lines are skipped. At least a header and one data row are required;
// otherwise ok is false and the zero Table is returned.
//
// Cells are split verbatim; quoting and escaping are not supported.
func ParseTable(text string) (table Table, ok bool) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := make([]string, 0, strings.Count(text, "\n")+1)
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) < 2 {
		return Table{}, false
	}

	delim := DetectDelimiter(lines[0])

	table.Headers = splitCells(lines[0], delim)
	table.Rows = make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		table.Rows = append(table.Rows, splitCells(line, delim))
	}
	return table, true
}

// DetectDelimiter returns the delimiter used for a document whose first
// non-empty line is line.
func DetectDelimiter(line string) string {
	if strings.Contains(line, "\t") {
		return "\t"
	}
	return ","
}

func splitCells(line, delim string) []string {
	cells := strings.Split(line, delim)
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}
