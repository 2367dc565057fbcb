package output

import (
	"strings"

	"github.com/rowq/rowq/record"
)

// TableFormatter renders rows as a fixed-width text table: a header line,
// a dash rule of the same length, then one line per row. Cells are
// left-justified with " | " between columns; every column is as wide as its
// widest cell or header. Columns follow the first row's key order.
type TableFormatter struct{}

func (f *TableFormatter) Format(rows []*record.Row) (interface{}, error) {
	if len(rows) == 0 {
		return "No data", nil
	}

	header := rows[0].Keys()
	widths := make([]int, len(header))
	for i, key := range header {
		widths[i] = len(key)
	}

	cells := make([][]string, len(rows))
	for ri, row := range rows {
		line := make([]string, len(header))
		for i, key := range header {
			v, _ := row.Get(key)
			line[i] = cellString(v)
			if len(line[i]) > widths[i] {
				widths[i] = len(line[i])
			}
		}
		cells[ri] = line
	}

	pad := func(s string, width int) string {
		return s + strings.Repeat(" ", width-len(s))
	}

	var lines []string
	cols := make([]string, len(header))
	for i, key := range header {
		cols[i] = pad(key, widths[i])
	}
	headerLine := strings.Join(cols, " | ")
	lines = append(lines, headerLine, strings.Repeat("-", len(headerLine)))

	for _, line := range cells {
		for i, cell := range line {
			cols[i] = pad(cell, widths[i])
		}
		lines = append(lines, strings.Join(cols, " | "))
	}

	return strings.Join(lines, "\n"), nil
}
