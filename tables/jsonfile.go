package tables

import (
	"fmt"
	"math"
	"os"

	"github.com/segmentio/encoding/json"

	"github.com/rowq/rowq/record"
)

// readJSONRows loads a JSON file holding a top-level array of objects, one
// object per row.
func readJSONRows(path string) ([]*record.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var docs []map[string]interface{}
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	rows := make([]*record.Row, len(docs))
	for i, doc := range docs {
		rows[i] = record.RowFromGo(normalizeJSON(doc).(map[string]interface{}))
	}
	return rows, nil
}

// normalizeJSON rewrites integral float64 numbers (the decoder's type for
// every JSON number) back to int64 so that ids and counts behave as
// integers in comparisons and output.
func normalizeJSON(v interface{}) interface{} {
	switch val := v.(type) {
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1<<53 {
			return int64(val)
		}
		return val
	case []interface{}:
		for i, item := range val {
			val[i] = normalizeJSON(item)
		}
		return val
	case map[string]interface{}:
		for key, item := range val {
			val[key] = normalizeJSON(item)
		}
		return val
	default:
		return v
	}
}
