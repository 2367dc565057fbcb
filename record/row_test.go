package record

import (
	"reflect"
	"testing"
)

func TestRowKeyOrder(t *testing.T) {
	row := NewRow().
		Set("name", StringValue("cube")).
		Set("type", StringValue("MESH")).
		Set("name", StringValue("sphere")) // replace keeps position

	want := []string{"name", "type"}
	if !reflect.DeepEqual(row.Keys(), want) {
		t.Errorf("Keys() = %v, want %v", row.Keys(), want)
	}

	v, ok := row.Get("name")
	if !ok || v.Str() != "sphere" {
		t.Errorf("Get(name) = %v, %v; want sphere", v, ok)
	}
}

func TestResolve(t *testing.T) {
	row := NewRow().
		Set("name", StringValue("cube")).
		Set("explicit_null", Null()).
		Set("location", MapValue(NewRow().
			Set("x", FloatValue(1.5)).
			Set("meta", MapValue(NewRow().Set("unit", StringValue("m"))))))

	tests := []struct {
		name   string
		path   string
		want   Value
		wantOK bool
	}{
		{"top level", "name", StringValue("cube"), true},
		{"nested", "location.x", FloatValue(1.5), true},
		{"deeply nested", "location.meta.unit", StringValue("m"), true},
		{"present null resolves", "explicit_null", Null(), true},
		{"missing top level", "missing", Null(), false},
		{"missing nested", "location.y", Null(), false},
		{"through non-map", "name.x", Null(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(row, tt.path)
			if ok != tt.wantOK {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if !Equal(got, tt.want) {
				t.Errorf("Resolve(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestRowKey_IgnoresInsertionOrder(t *testing.T) {
	a := NewRow().Set("x", IntValue(1)).Set("y", IntValue(2))
	b := NewRow().Set("y", IntValue(2)).Set("x", IntValue(1))

	if a.Key() != b.Key() {
		t.Errorf("row keys differ for same contents: %q vs %q", a.Key(), b.Key())
	}

	c := NewRow().Set("x", IntValue(1)).Set("y", IntValue(3))
	if a.Key() == c.Key() {
		t.Errorf("row keys collide for different contents")
	}
}

func TestFromGo(t *testing.T) {
	v := FromGo(map[string]interface{}{
		"b":    true,
		"a":    int32(7),
		"f":    float64(1.5),
		"s":    "text",
		"raw":  []byte("bytes"),
		"list": []interface{}{1, "two"},
		"nul":  nil,
	})

	if v.Kind() != KindMap {
		t.Fatalf("FromGo(map) kind = %v, want map", v.Kind())
	}
	row := v.Map()

	// Map keys have no Go-side order; conversion sorts them.
	want := []string{"a", "b", "f", "list", "nul", "raw", "s"}
	if !reflect.DeepEqual(row.Keys(), want) {
		t.Fatalf("Keys() = %v, want %v", row.Keys(), want)
	}

	if got, _ := row.Get("a"); got.Kind() != KindInt || got.Int() != 7 {
		t.Errorf("int32 converted to %v", got)
	}
	if got, _ := row.Get("raw"); got.Kind() != KindString || got.Str() != "bytes" {
		t.Errorf("[]byte converted to %v", got)
	}
	if got, _ := row.Get("nul"); !got.IsNull() {
		t.Errorf("nil converted to %v", got)
	}
	if got, _ := row.Get("list"); got.Kind() != KindList || len(got.List()) != 2 {
		t.Errorf("slice converted to %v", got)
	}
}

func TestRowMarshalJSON(t *testing.T) {
	row := NewRow().
		Set("name", StringValue(`say "hi"`)).
		Set("count", IntValue(2)).
		Set("tags", ListValue(StringValue("a"), StringValue("b"))).
		Set("none", Null())

	data, err := row.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}

	want := `{"name":"say \"hi\"","count":2,"tags":["a","b"],"none":null}`
	if string(data) != want {
		t.Errorf("MarshalJSON() = %s, want %s", data, want)
	}
}
