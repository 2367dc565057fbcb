package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rowq/rowq/record"
)

// ApplyAggregate computes one aggregate function over rows. COUNT returns
// an int; the numeric functions return a float, or null when no row
// contributes a usable number.
func ApplyAggregate(function, field string, rows []*record.Row) (record.Value, error) {
	function = strings.ToUpper(function)

	if function == "COUNT" {
		if field == "*" {
			return record.IntValue(int64(len(rows))), nil
		}
		count := int64(0)
		for _, row := range rows {
			if v, ok := record.Resolve(row, field); ok && !v.IsNull() {
				count++
			}
		}
		return record.IntValue(count), nil
	}

	sample := numericSample(rows, field)
	if len(sample) == 0 {
		return record.Null(), nil
	}

	switch function {
	case "SUM":
		return record.FloatValue(sum(sample)), nil
	case "AVG":
		return record.FloatValue(sum(sample) / float64(len(sample))), nil
	case "MIN":
		min := sample[0]
		for _, f := range sample[1:] {
			if f < min {
				min = f
			}
		}
		return record.FloatValue(min), nil
	case "MAX":
		max := sample[0]
		for _, f := range sample[1:] {
			if f > max {
				max = f
			}
		}
		return record.FloatValue(max), nil
	case "VARIANCE":
		return record.FloatValue(sampleVariance(sample)), nil
	case "STDDEV":
		return record.FloatValue(math.Sqrt(sampleVariance(sample))), nil
	default:
		return record.Null(), fmt.Errorf("unsupported aggregate function %s", function)
	}
}

// numericSample collects the field's values as floats, skipping rows where
// the field is missing, null or not convertible. Bools count as 0/1 and
// numeric strings are parsed.
func numericSample(rows []*record.Row, field string) []float64 {
	var sample []float64
	for _, row := range rows {
		v, ok := record.Resolve(row, field)
		if !ok {
			continue
		}
		switch v.Kind() {
		case record.KindInt:
			sample = append(sample, float64(v.Int()))
		case record.KindFloat:
			sample = append(sample, v.Float())
		case record.KindBool:
			if v.Bool() {
				sample = append(sample, 1)
			} else {
				sample = append(sample, 0)
			}
		case record.KindString:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v.Str()), 64); err == nil {
				sample = append(sample, f)
			}
		}
	}
	return sample
}

func sum(sample []float64) float64 {
	total := 0.0
	for _, f := range sample {
		total += f
	}
	return total
}

// sampleVariance uses the n-1 denominator. Fewer than two values yield 0
// rather than an error or NaN.
func sampleVariance(sample []float64) float64 {
	if len(sample) < 2 {
		return 0
	}
	mean := sum(sample) / float64(len(sample))
	total := 0.0
	for _, f := range sample {
		d := f - mean
		total += d * d
	}
	return total / float64(len(sample)-1)
}
