package output

import (
	"encoding/csv"
	"strings"

	"github.com/rowq/rowq/record"
)

// CSVFormatter renders rows as RFC 4180 CSV text. The header is the first
// row's keys in order; later rows are read through those keys, so a key
// missing from a row becomes an empty cell.
type CSVFormatter struct{}

func (f *CSVFormatter) Format(rows []*record.Row) (interface{}, error) {
	if len(rows) == 0 {
		return "", nil
	}

	header := rows[0].Keys()

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(header); err != nil {
		return nil, err
	}

	cells := make([]string, len(header))
	for _, row := range rows {
		for i, key := range header {
			v, _ := row.Get(key)
			cells[i] = cellString(v)
		}
		if err := w.Write(cells); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return sb.String(), nil
}
