package query

import (
	"math"
	"testing"

	"github.com/rowq/rowq/record"
)

func numberedRows(t *testing.T, field string, values ...interface{}) []*record.Row {
	t.Helper()
	rows := make([]*record.Row, len(values))
	for i, v := range values {
		rows[i] = record.NewRow().Set(field, record.FromGo(v))
	}
	return rows
}

func TestApplyAggregate(t *testing.T) {
	rows := numberedRows(t, "size", 1, 2.5, nil, "4", true, "not a number")

	tests := []struct {
		name     string
		function string
		field    string
		want     record.Value
	}{
		// COUNT(*) counts rows; COUNT(field) counts non-null values.
		{"count star", "COUNT", "*", record.IntValue(6)},
		{"count field", "COUNT", "size", record.IntValue(5)},
		// The numeric sample is 1, 2.5, 4, 1 (bool true); nulls and
		// unparseable strings are skipped.
		{"sum", "SUM", "size", record.FloatValue(8.5)},
		{"avg", "AVG", "size", record.FloatValue(2.125)},
		{"min", "MIN", "size", record.FloatValue(1)},
		{"max", "MAX", "size", record.FloatValue(4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyAggregate(tt.function, tt.field, rows)
			if err != nil {
				t.Fatalf("ApplyAggregate() error = %v", err)
			}
			if !record.Equal(got, tt.want) {
				t.Errorf("%s(%s) = %v, want %v", tt.function, tt.field, got, tt.want)
			}
		})
	}
}

func TestApplyAggregate_Variance(t *testing.T) {
	rows := numberedRows(t, "v", 2, 4, 4, 4, 5, 5, 7, 9)

	got, err := ApplyAggregate("VARIANCE", "v", rows)
	if err != nil {
		t.Fatalf("ApplyAggregate() error = %v", err)
	}
	// Sample variance (n-1 denominator) of the classic data set.
	want := 32.0 / 7.0
	if math.Abs(got.Float()-want) > 1e-12 {
		t.Errorf("VARIANCE = %v, want %v", got.Float(), want)
	}

	got, err = ApplyAggregate("STDDEV", "v", rows)
	if err != nil {
		t.Fatalf("ApplyAggregate() error = %v", err)
	}
	if math.Abs(got.Float()-math.Sqrt(want)) > 1e-12 {
		t.Errorf("STDDEV = %v, want %v", got.Float(), math.Sqrt(want))
	}
}

func TestApplyAggregate_SmallSamples(t *testing.T) {
	single := numberedRows(t, "v", 5)

	for _, function := range []string{"STDDEV", "VARIANCE"} {
		got, err := ApplyAggregate(function, "v", single)
		if err != nil {
			t.Fatalf("ApplyAggregate(%s) error = %v", function, err)
		}
		if got.Kind() != record.KindFloat || got.Float() != 0 {
			t.Errorf("%s of a single value = %v, want 0.0", function, got)
		}
	}
}

func TestApplyAggregate_EmptySample(t *testing.T) {
	rows := numberedRows(t, "v", nil, "words", nil)

	for _, function := range []string{"SUM", "AVG", "MIN", "MAX", "STDDEV", "VARIANCE"} {
		got, err := ApplyAggregate(function, "v", rows)
		if err != nil {
			t.Fatalf("ApplyAggregate(%s) error = %v", function, err)
		}
		if !got.IsNull() {
			t.Errorf("%s over no numeric values = %v, want null", function, got)
		}
	}

	got, err := ApplyAggregate("COUNT", "v", rows)
	if err != nil {
		t.Fatalf("ApplyAggregate(COUNT) error = %v", err)
	}
	if got.Int() != 1 {
		t.Errorf("COUNT skips nulls but keeps strings: got %v, want 1", got)
	}
}

func TestApplyAggregate_Unknown(t *testing.T) {
	if _, err := ApplyAggregate("MEDIAN", "v", nil); err == nil {
		t.Error("ApplyAggregate(MEDIAN) succeeded, want error")
	}
}
