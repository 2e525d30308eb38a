package toolcall

import (
	"regexp"
	"strings"
)

// Masked replaces any value judged sensitive before it reaches a log sink.
const Masked = "[REDACTED]"

// maxRedactDepth caps recursion so pathological or cyclic input cannot hang
// the transform.
const maxRedactDepth = 8

// sensitiveKeys are matched as substrings of lower-cased key names.
var sensitiveKeys = []string{
	"name", "email", "phone", "address", "ssn", "dob",
	"birth", "token", "secret", "password", "api_key", "apikey",
	"authorization", "credential",
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s().-]{7,20}$`)
	tokenPattern = regexp.MustCompile(`^[A-Za-z0-9_\-./+=]{32,}$`)
)

// Redact returns a copy of v safe for logging. Values under sensitive key
// names are masked, as are string values that look like emails, phone
// numbers, or long tokens regardless of their key. Maps and slices are
// walked recursively up to maxRedactDepth.
func Redact(v any) any {
	return redactValue(v, 0)
}

// RedactParameters masks a tool call's parameter map for logging.
func RedactParameters(params map[string]any) map[string]any {
	out, _ := redactValue(params, 0).(map[string]any)
	return out
}

func redactValue(v any, depth int) any {
	if depth > maxRedactDepth {
		return Masked
	}

	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if sensitiveKey(k) {
				out[k] = maskLeaf(inner, depth+1)
				continue
			}
			out[k] = redactValue(inner, depth+1)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = redactValue(inner, depth+1)
		}
		return out
	case string:
		if sensitiveShape(val) {
			return Masked
		}
		return val
	default:
		return v
	}
}

// maskLeaf masks scalar values under a sensitive key but still walks
// containers so nested structure survives with masked leaves.
func maskLeaf(v any, depth int) any {
	if depth > maxRedactDepth {
		return Masked
	}
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = maskLeaf(inner, depth+1)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = maskLeaf(inner, depth+1)
		}
		return out
	default:
		return Masked
	}
}

func sensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

func sensitiveShape(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	return emailPattern.MatchString(trimmed) ||
		phonePattern.MatchString(trimmed) ||
		tokenPattern.MatchString(trimmed)
}
