package record

import (
	"sort"
	"strings"
)

// Row is one logical record of a table: a string-keyed Value map that
// remembers insertion order.
type Row struct {
	keys []string
	vals map[string]Value
}

// NewRow returns an empty row.
func NewRow() *Row {
	return &Row{vals: make(map[string]Value)}
}

// Set stores v under key, appending the key on first use and replacing the
// value in place afterwards. It returns the row for call chaining.
func (r *Row) Set(key string, v Value) *Row {
	if _, ok := r.vals[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = v
	return r
}

// Get returns the value stored under key and whether the key is present.
func (r *Row) Get(key string) (Value, bool) {
	v, ok := r.vals[key]
	return v, ok
}

// Keys returns the row's keys in insertion order. The slice is shared;
// callers must not modify it.
func (r *Row) Keys() []string { return r.keys }

// Len returns the number of keys in the row.
func (r *Row) Len() int { return len(r.keys) }

// Key returns a canonical string identifying the row's full contents,
// independent of key insertion order. Used for DISTINCT * deduplication.
func (r *Row) Key() string {
	keys := append([]string(nil), r.keys...)
	sort.Strings(keys)

	var sb strings.Builder
	for i, key := range keys {
		if i > 0 {
			sb.WriteString("\x00||\x00")
		}
		sb.WriteString(key)
		sb.WriteString("\x00:\x00")
		sb.WriteString(r.vals[key].Key())
	}
	return sb.String()
}

// Resolve walks a dot-separated field path through nested maps. It returns
// the value at the path, or (Null, false) if any segment is missing or an
// intermediate value is not a map. A present key holding null resolves
// successfully.
func Resolve(r *Row, path string) (Value, bool) {
	if r == nil {
		return Null(), false
	}

	segments := strings.Split(path, ".")
	current := MapValue(r)

	for _, segment := range segments {
		if current.Kind() != KindMap {
			return Null(), false
		}
		next, ok := current.Map().Get(segment)
		if !ok {
			return Null(), false
		}
		current = next
	}

	return current, true
}
