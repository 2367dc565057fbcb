package query

import (
	"reflect"
	"testing"

	"github.com/rowq/rowq/record"
)

func testRow(t *testing.T, pairs ...interface{}) *record.Row {
	t.Helper()
	if len(pairs)%2 != 0 {
		t.Fatal("testRow needs key/value pairs")
	}
	row := record.NewRow()
	for i := 0; i < len(pairs); i += 2 {
		row.Set(pairs[i].(string), record.FromGo(pairs[i+1]))
	}
	return row
}

func TestSplitConditions(t *testing.T) {
	tests := []struct {
		name       string
		clause     string
		wantConds  []string
		wantCombos []string
	}{
		{
			"single",
			"a = 1",
			[]string{"a = 1"},
			nil,
		},
		{
			"and or chain",
			"a = 1 AND b = 2 OR c = 3",
			[]string{"a = 1", "b = 2", "c = 3"},
			[]string{"AND", "OR"},
		},
		{
			"between keeps its and",
			"age BETWEEN 20 AND 30 AND name = 'x'",
			[]string{"age BETWEEN 20 AND 30", "name = 'x'"},
			[]string{"AND"},
		},
		{
			"not between keeps its and",
			"age NOT BETWEEN 20 AND 30 OR age = 50",
			[]string{"age NOT BETWEEN 20 AND 30", "age = 50"},
			[]string{"OR"},
		},
		{
			"and inside quotes",
			"name = 'salt AND pepper' OR name = 'basil'",
			[]string{"name = 'salt AND pepper'", "name = 'basil'"},
			[]string{"OR"},
		},
		{
			"trailing combinator dropped",
			"a = 1 AND",
			[]string{"a = 1"},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conds, combos := splitConditions(tt.clause)
			if !reflect.DeepEqual(conds, tt.wantConds) {
				t.Errorf("conditions = %q, want %q", conds, tt.wantConds)
			}
			if !reflect.DeepEqual(combos, tt.wantCombos) {
				t.Errorf("combinators = %q, want %q", combos, tt.wantCombos)
			}
		})
	}
}

func TestParseCondition(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantOp   string
		wantVal  record.Value
		wantFail bool
	}{
		{"equals int", "age = 25", "=", record.IntValue(25), false},
		{"greater float", "size > 1.5", ">", record.FloatValue(1.5), false},
		{"not equals", "type != 'MESH'", "!=", record.StringValue("MESH"), false},
		{"angle not equals", "type <> 'MESH'", "<>", record.StringValue("MESH"), false},
		{"like", "name LIKE '%cube%'", "LIKE", record.StringValue("%cube%"), false},
		{"not ilike", "name NOT ILIKE 'x%'", "NOT ILIKE", record.StringValue("x%"), false},
		{"is null", "deleted IS NULL", "IS", record.Null(), false},
		{"is not null", "deleted IS NOT NULL", "IS NOT", record.Null(), false},
		{
			"in list", "type IN ('MESH', 'CAMERA')", "IN",
			record.ListValue(record.StringValue("MESH"), record.StringValue("CAMERA")), false,
		},
		{
			"between", "age BETWEEN 20 AND 30", "BETWEEN",
			record.ListValue(record.IntValue(20), record.IntValue(30)), false,
		},
		{"null literal", "parent = NULL", "=", record.Null(), false},
		{"bool literal", "visible = TRUE", "=", record.BoolValue(true), false},
		{"bare string literal", "status = active", "=", record.StringValue("active"), false},
		{"no operator", "just words here", "", record.Null(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, err := parseCondition(tt.in)
			if tt.wantFail {
				if err == nil {
					t.Fatalf("parseCondition(%q) succeeded, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCondition(%q) error = %v", tt.in, err)
			}
			if cond.Operator != tt.wantOp {
				t.Errorf("Operator = %q, want %q", cond.Operator, tt.wantOp)
			}
			if !record.Equal(cond.Value, tt.wantVal) {
				t.Errorf("Value = %v, want %v", cond.Value, tt.wantVal)
			}
		})
	}
}

func TestParseLiteral_Escapes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`'it''s'`, "it's"},
		{`"say ""hi"""`, `say "hi"`},
		{`'line\nbreak'`, "line\nbreak"},
		{`'back\\slash'`, `back\slash`},
	}
	for _, tt := range tests {
		if got := parseLiteral(tt.in); got.Str() != tt.want {
			t.Errorf("parseLiteral(%s) = %q, want %q", tt.in, got.Str(), tt.want)
		}
	}
}

func TestConditionEvaluate(t *testing.T) {
	row := testRow(t,
		"name", "CubeMesh",
		"age", 25,
		"score", 1.5,
		"active", true,
		"code", "007",
		"deleted", nil,
	)

	tests := []struct {
		name string
		cond string
		want bool
	}{
		{"equal int", "age = 25", true},
		{"not equal int", "age != 25", false},
		{"greater", "age > 20", true},
		{"less or equal", "age <= 25", true},
		{"numeric string literal coerced", "age > '20'", true},
		{"float string literal coerced", "score >= '1.5'", true},
		{"bool truthy yes", "active = 'yes'", true},
		{"bool truthy on", "active = 'on'", true},
		{"bool falsy", "active = 'no'", false},
		{"bool as one", "active = 1", true},
		{"string row keeps string semantics", "code = 7", false},
		{"string row ordering falls back to text", "code < 1", true},
		{"like substring", "name LIKE '%mesh%'", true},
		{"like underscore", "name LIKE 'Cube_esh'", true},
		{"not like", "name NOT LIKE '%camera%'", true},
		{"ilike", "name ILIKE 'cubemesh'", true},
		{"in", "age IN (24, 25, 26)", true},
		{"not in", "age NOT IN (1, 2)", true},
		{"between", "age BETWEEN 20 AND 30", true},
		// String bounds against a numeric row value are not coerced; the
		// comparison falls back to text ordering, so "100" <= "25" <= "4".
		{"between string bounds use text ordering", "age BETWEEN '100' AND '4'", true},
		{"between string bounds text ordering excludes", "age BETWEEN '3' AND '4'", false},
		{"not between", "age NOT BETWEEN 30 AND 40", true},
		{"is null on null value", "deleted IS NULL", true},
		{"is not null on null value", "deleted IS NOT NULL", false},
		{"is null on missing field", "ghost IS NULL", true},
		{"missing field fails comparison", "ghost = 1", false},
		{"missing field fails negated comparison", "ghost != 1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, err := parseCondition(tt.cond)
			if err != nil {
				t.Fatalf("parseCondition(%q) error = %v", tt.cond, err)
			}
			if got := cond.Evaluate(row); got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.cond, got, tt.want)
			}
		})
	}
}

func TestWhereExpression_LeftToRight(t *testing.T) {
	// a = 1 OR b = 2 AND c = 3 folds as ((a=1 OR b=2) AND c=3), not with
	// SQL's AND-before-OR precedence.
	expr, err := ParseWhere("a = 1 OR b = 2 AND c = 3")
	if err != nil {
		t.Fatalf("ParseWhere() error = %v", err)
	}

	tests := []struct {
		name string
		row  *record.Row
		want bool
	}{
		{"first true but last false", testRow(t, "a", 1, "b", 0, "c", 0), false},
		{"first true and last true", testRow(t, "a", 1, "b", 0, "c", 3), true},
		{"middle true and last true", testRow(t, "a", 0, "b", 2, "c", 3), true},
		{"only last true", testRow(t, "a", 0, "b", 0, "c", 3), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expr.Evaluate(tt.row); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWhereExpression_Empty(t *testing.T) {
	expr, err := ParseWhere("   ")
	if err != nil {
		t.Fatalf("ParseWhere() error = %v", err)
	}
	if !expr.Evaluate(testRow(t, "a", 1)) {
		t.Error("empty expression rejected a row, want accept-all")
	}
}

func TestWhereExpression_NestedField(t *testing.T) {
	row := record.NewRow().Set("location", record.MapValue(
		record.NewRow().Set("x", record.FloatValue(2.5))))

	expr, err := ParseWhere("location.x > 1")
	if err != nil {
		t.Fatalf("ParseWhere() error = %v", err)
	}
	if !expr.Evaluate(row) {
		t.Error("nested field condition = false, want true")
	}
}
