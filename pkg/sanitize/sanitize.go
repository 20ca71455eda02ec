// Package sanitize makes driver-produced row values safe to serialize as
// JSON. Backend drivers hand back NaN floats, raw decimal bytes, temporal
// types, and native array types; everything is folded into plain
// null/bool/number/string/slice/map values.
package sanitize

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Rows sanitizes a sequence of row mappings in result order.
func Rows(rows []map[string]any) []map[string]any {
	if rows == nil {
		return nil
	}
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		out[i] = Row(row)
	}
	return out
}

// Row sanitizes a single field-to-value mapping.
func Row(row map[string]any) map[string]any {
	if row == nil {
		return nil
	}
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = Value(v)
	}
	return out
}

// Value recursively sanitizes one value. The output contains only nil,
// bool, int64, float64, string, []any, and map[string]any, so applying
// Value to its own output returns it unchanged.
func Value(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case bool, string:
		return val
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case int64:
		return val
	case uint:
		return int64(val)
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint64:
		return int64(val)
	case float32:
		return finite(float64(val))
	case float64:
		return finite(val)
	case time.Time:
		return val.Format(time.RFC3339)
	case []byte:
		// Fixed-point decimals arrive as raw bytes from SQL drivers.
		if f, err := strconv.ParseFloat(string(val), 64); err == nil {
			return finite(f)
		}
		return string(val)
	case map[string]any:
		return Row(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Value(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Row(item)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out
	case []int64:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out
	case []float64:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = finite(item)
		}
		return out
	case fmt.Stringer:
		return val.String()
	default:
		// Unrecognized types degrade to their textual form rather than
		// failing serialization.
		return fmt.Sprintf("%v", val)
	}
}

// finite replaces NaN and infinities with nil.
func finite(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
