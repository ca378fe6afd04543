package survey

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Clone deep-copies a generic JSON tree.
func Clone(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[key] = Clone(inner)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = Clone(inner)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = inner
		}
		return out
	default:
		return v
	}
}

// AsObject returns v as an object when it is one.
func AsObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// AsArray returns v as an array when it is one.
func AsArray(v any) ([]any, bool) {
	switch typed := v.(type) {
	case []any:
		return typed, true
	case []string:
		out := make([]any, len(typed))
		for i, s := range typed {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

// Objects returns the object elements of an array value, skipping others.
func Objects(v any) []map[string]any {
	items, _ := AsArray(v)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// Text renders a scalar as text. Nil becomes the empty string.
func Text(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		if typed == math.Trunc(typed) && math.Abs(typed) < 1e15 {
			return strconv.FormatInt(int64(typed), 10)
		}
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		return strconv.Itoa(typed)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return fmt.Sprint(typed)
	}
}

// Str reads a key from an object as text.
func Str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	return Text(m[key])
}

// Strings converts an array value to strings. Non-arrays yield nil.
func Strings(v any) []string {
	items, ok := AsArray(v)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, Text(item))
	}
	return out
}

// Number converts a numeric value to float64.
func Number(v any) (float64, bool) {
	switch typed := v.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		return f, err == nil
	}
	return 0, false
}

// Int converts a numeric value to int, defaulting when absent or invalid.
func Int(v any, fallback int) int {
	if f, ok := Number(v); ok {
		return int(f)
	}
	return fallback
}

// Truthy mirrors JSON truthiness: empty strings, arrays, objects, zero and null are false.
func Truthy(v any) bool {
	switch typed := v.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		return typed != ""
	case []any:
		return len(typed) > 0
	case []string:
		return len(typed) > 0
	case map[string]any:
		return len(typed) > 0
	}
	if f, ok := Number(v); ok {
		return f != 0
	}
	return true
}

// StringArray converts strings to a generic array value.
func StringArray(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// jsonCompatible rewrites YAML scalars into the shapes encoding/json produces.
func jsonCompatible(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for key, inner := range v {
			v[key] = jsonCompatible(inner)
		}
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[fmt.Sprint(key)] = jsonCompatible(inner)
		}
		return out
	case []any:
		for i, inner := range v {
			v[i] = jsonCompatible(inner)
		}
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	default:
		return v
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
