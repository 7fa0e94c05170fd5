package engine

import (
	"cmp"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ============================================================================
// VALUE HELPERS + SORTING
// ============================================================================
// Row values arrive loosely typed (JSON numbers, strings, dates as strings or
// time.Time). These helpers coerce them and define a total order in which
// nulls compare equal to each other and sort after every non-null value.
// ============================================================================

// nullLabel is the tick label used for a null category.
const nullLabel = "(empty)"

// toFloat coerces a numeric cell. Non-numeric and NaN values report false.
func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// toTime coerces a date cell. Numbers are read as unix milliseconds.
func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		parsed, err := dateparse.ParseAny(s)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	if ms, ok := toFloat(v); ok {
		return time.UnixMilli(int64(ms)).UTC(), true
	}
	return time.Time{}, false
}

// labelOf renders a cell as a tick/category label.
func labelOf(v any, typ SimpleType) string {
	if v == nil {
		return nullLabel
	}
	if typ == TypeDate {
		if t, ok := toTime(v); ok {
			return formatDate(t)
		}
	}
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return formatDate(x)
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nullLabel
	}
	return string(b)
}

func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

// compareValues orders two cells: nulls last and equal to each other,
// then numbers, times, booleans, and finally lexicographic labels.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return cmp.Compare(fa, fb)
		}
	}
	ta, aIsTime := a.(time.Time)
	tb, bIsTime := b.(time.Time)
	if aIsTime && bIsTime {
		return ta.Compare(tb)
	}
	ba, aIsBool := a.(bool)
	bb, bIsBool := b.(bool)
	if aIsBool && bIsBool {
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		default:
			return 1
		}
	}
	return strings.Compare(labelOf(a, TypeString), labelOf(b, TypeString))
}

// compareTimes orders date cells chronologically; unparseable cells behave
// like nulls.
func compareTimes(a, b any) int {
	ta, okA := toTime(a)
	tb, okB := toTime(b)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}
	return ta.Compare(tb)
}

// compareNumbers orders numeric cells; non-numeric cells behave like nulls.
func compareNumbers(a, b any) int {
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}
	return cmp.Compare(fa, fb)
}

// sortRowsBy stable-sorts a copy of rows ascending by column. Rows with a
// null value compare equal to each other and keep their relative order.
func sortRowsBy(rows []Row, column string, typ SimpleType) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	compare := compareValues
	switch typ {
	case TypeDate:
		compare = compareTimes
	case TypeNumber:
		compare = compareNumbers
	}
	sort.SliceStable(out, func(i, j int) bool {
		return compare(out[i][column], out[j][column]) < 0
	})
	return out
}

// applyDirection flips an ascending comparison for SortDesc.
func applyDirection(c int, dir SortDirection) int {
	if dir == SortDesc {
		return -c
	}
	return c
}
