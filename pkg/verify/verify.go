// Package verify contains the named assertion helpers of the harness. Every
// helper returns nil on pass and a descriptive error on mismatch; expected
// failures of the underlying transport or database stay values until a helper
// here turns them into test failures.
package verify

import (
	"fmt"
	"reflect"
)

// strictEqual compares an observed value against an expectation without
// cross-type coercion: the string "1" never equals the number 1. Numeric
// types are compared by value so an int64 column matches an int expectation.
func strictEqual(got, want any) bool {
	if want == nil {
		return got == nil
	}
	switch w := want.(type) {
	case string:
		g, ok := got.(string)
		return ok && g == w
	case bool:
		g, ok := got.(bool)
		return ok && g == w
	default:
		wf, wok := toFloat(want)
		if wok {
			gf, gok := toFloat(got)
			return gok && gf == wf
		}
		return reflect.DeepEqual(got, want)
	}
}

// toFloat widens any numeric type to float64. Strings are deliberately not
// convertible.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func formatValue(v any) string {
	if v == nil {
		return "<nil>"
	}
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}
