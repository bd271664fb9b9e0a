package memberjwt

import (
	"encoding/json"
	"strings"
)

// normalizeClaimValue turns json.Number into int64 when integral and float64
// otherwise, descending into arrays and objects. Integers outside the int64
// range stay json.Number so they re-encode digit for digit.
func normalizeClaimValue(value any) any {
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if !strings.ContainsAny(v.String(), ".eE") {
			return v
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeClaimValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = normalizeClaimValue(item)
		}
		return out
	default:
		return value
	}
}

// cloneAttributes returns a copy of attrs that callers may modify freely.
func cloneAttributes(attrs map[string]any) map[string]any {
	out := make(map[string]any, len(attrs))
	for name, value := range attrs {
		out[name] = value
	}
	return out
}
