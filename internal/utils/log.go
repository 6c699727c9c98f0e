package utils

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TruncateForLog shortens the provided string to the specified limit, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// PreviewForLog renders an arbitrary value as compact JSON and truncates it for log output.
// Values that cannot be marshalled fall back to their %v representation.
func PreviewForLog(v any, limit int) string {
	if s, ok := v.(string); ok {
		return TruncateForLog(s, limit)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return TruncateForLog(fmt.Sprintf("%v", v), limit)
	}

	return TruncateForLog(string(data), limit)
}
