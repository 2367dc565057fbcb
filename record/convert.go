package record

import (
	"fmt"
	"sort"
	"time"
)

// FromGo converts a decoded Go value (from parquet rows, JSON documents or
// test fixtures) into a Value. Unknown types degrade to their string form.
func FromGo(v interface{}) Value {
	switch val := v.(type) {
	case nil:
		return Null()
	case Value:
		return val
	case bool:
		return BoolValue(val)
	case int:
		return IntValue(int64(val))
	case int8:
		return IntValue(int64(val))
	case int16:
		return IntValue(int64(val))
	case int32:
		return IntValue(int64(val))
	case int64:
		return IntValue(val)
	case uint:
		return IntValue(int64(val))
	case uint8:
		return IntValue(int64(val))
	case uint16:
		return IntValue(int64(val))
	case uint32:
		return IntValue(int64(val))
	case uint64:
		return IntValue(int64(val))
	case float32:
		return FloatValue(float64(val))
	case float64:
		return FloatValue(val)
	case string:
		return StringValue(val)
	case []byte:
		return StringValue(string(val))
	case time.Time:
		return StringValue(val.Format(time.RFC3339))
	case []interface{}:
		items := make([]Value, len(val))
		for i, item := range val {
			items[i] = FromGo(item)
		}
		return ListValue(items...)
	case map[string]interface{}:
		return MapValue(RowFromGo(val))
	default:
		return StringValue(fmt.Sprintf("%v", val))
	}
}

// RowFromGo converts a plain Go map into a Row. Go maps carry no order, so
// keys are sorted for deterministic headers and projection.
func RowFromGo(m map[string]interface{}) *Row {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	row := NewRow()
	for _, key := range keys {
		row.Set(key, FromGo(m[key]))
	}
	return row
}
