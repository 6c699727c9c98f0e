package protocol

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Bool interprets a parsed literal value as a boolean.
func Bool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case int:
		return val != 0
	case float64:
		return val != 0
	default:
		return false
	}
}

// Int interprets a parsed literal value as an integer. The second result is
// false when v holds no number.
func Int(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case uint64:
		if val > math.MaxInt {
			return math.MaxInt, true
		}
		return int(val), true
	case float64:
		if math.IsNaN(val) {
			return 0, false
		}
		if val >= math.MaxInt {
			return math.MaxInt, true
		}
		if val <= math.MinInt {
			return math.MinInt, true
		}
		return int(math.Round(val)), true
	case string:
		trimmed := strings.TrimSpace(val)
		if i, err := strconv.Atoi(trimmed); err == nil {
			return i, true
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return Int(f)
	default:
		return 0, false
	}
}

// String renders a parsed literal value as text. Nil becomes "".
func String(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
