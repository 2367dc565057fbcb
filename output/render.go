package output

import (
	"math"
	"strconv"

	"github.com/rowq/rowq/record"
)

// cellString renders one value for csv and table cells. Null is empty,
// floats are rounded to six decimal places and printed in their shortest
// form, lists and maps render as JSON text.
func cellString(v record.Value) string {
	if v.Kind() == record.KindFloat {
		rounded := math.Round(v.Float()*1e6) / 1e6
		return strconv.FormatFloat(rounded, 'f', -1, 64)
	}
	return v.String()
}
