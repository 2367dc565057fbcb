package record

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the dynamic type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a tagged variant holding one field value or literal.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	list []Value
	m    *Row
}

// Null returns the null Value. The zero Value is also null.
func Null() Value { return Value{kind: KindNull} }

// BoolValue returns a bool Value.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// IntValue returns an int Value.
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

// FloatValue returns a float Value.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// ListValue returns a list Value wrapping items.
func ListValue(items ...Value) Value { return Value{kind: KindList, list: items} }

// MapValue returns a map Value wrapping r.
func MapValue(r *Row) Value { return Value{kind: KindMap, m: r} }

// Kind returns the dynamic type of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNumeric reports whether the value is an int or a float.
func (v Value) IsNumeric() bool { return v.kind == KindInt || v.kind == KindFloat }

// Bool returns the bool payload (false for other kinds).
func (v Value) Bool() bool { return v.b }

// Int returns the int payload (0 for other kinds).
func (v Value) Int() int64 { return v.i }

// Float returns the float payload (0 for other kinds).
func (v Value) Float() float64 { return v.f }

// Str returns the string payload ("" for other kinds).
func (v Value) Str() string { return v.s }

// List returns the list payload (nil for other kinds).
func (v Value) List() []Value { return v.list }

// Map returns the map payload (nil for other kinds).
func (v Value) Map() *Row { return v.m }

// asNumber returns the value as a float64 for cross-kind numeric work.
// Bools count as 0/1 to match dynamic-language equality and ordering.
func (v Value) asNumber() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Equal reports value equality. Ints, floats and bools compare numerically
// across kinds; lists compare elementwise; maps compare by key set.
func Equal(a, b Value) bool {
	if a.kind == KindNull || b.kind == KindNull {
		return a.kind == b.kind
	}

	if an, ok := a.asNumber(); ok {
		if bn, ok := b.asNumber(); ok {
			return an == bn
		}
		return false
	}

	switch a.kind {
	case KindString:
		return b.kind == KindString && a.s == b.s
	case KindList:
		if b.kind != KindList || len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if b.kind != KindMap {
			return false
		}
		if a.m.Len() != b.m.Len() {
			return false
		}
		for _, key := range a.m.Keys() {
			av, _ := a.m.Get(key)
			bv, ok := b.m.Get(key)
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare orders two values: -1, 0 or +1. Numeric against numeric and
// string against string are the only native orderings; anything else is a
// type mismatch and the caller decides the fallback.
func Compare(a, b Value) (int, error) {
	if an, aok := a.asNumber(); aok {
		if bn, bok := b.asNumber(); bok {
			switch {
			case an < bn:
				return -1, nil
			case an > bn:
				return 1, nil
			default:
				return 0, nil
			}
		}
	}

	if a.kind == KindString && b.kind == KindString {
		return strings.Compare(a.s, b.s), nil
	}

	return 0, fmt.Errorf("cannot order %s against %s", a.kind, b.kind)
}

// String renders the value for display: null is empty, numbers use their
// shortest decimal form, lists and maps render as JSON text.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindString:
		return v.s
	case KindList, KindMap:
		data, err := v.MarshalJSON()
		if err != nil {
			return fmt.Sprintf("%v", err)
		}
		return string(data)
	default:
		return ""
	}
}

// Key returns a canonical string for hashing the value into group and
// distinct keys. Numerically equal ints and floats share a key.
func (v Value) Key() string {
	switch v.kind {
	case KindNull:
		return "z"
	case KindString:
		return "s:" + v.s
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.Key()
		}
		return "l:[" + strings.Join(parts, "\x00,\x00") + "]"
	case KindMap:
		keys := append([]string(nil), v.m.Keys()...)
		sort.Strings(keys)
		var sb strings.Builder
		sb.WriteString("m:{")
		for i, key := range keys {
			if i > 0 {
				sb.WriteString("\x00;\x00")
			}
			item, _ := v.m.Get(key)
			sb.WriteString(key)
			sb.WriteString("\x00=\x00")
			sb.WriteString(item.Key())
		}
		sb.WriteString("}")
		return sb.String()
	default:
		n, _ := v.asNumber()
		return "n:" + strconv.FormatFloat(n, 'g', -1, 64)
	}
}
