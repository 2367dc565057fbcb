package output

import (
	"github.com/segmentio/encoding/json"

	"github.com/rowq/rowq/record"
)

// JSONFormatter passes rows through unchanged; the rows marshal themselves
// as insertion-ordered JSON objects.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(rows []*record.Row) (interface{}, error) {
	return rows, nil
}

// MarshalIndentRows renders rows as indented JSON text, for callers that
// print the json-format payload to a terminal.
func MarshalIndentRows(rows []*record.Row) (string, error) {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
