package toolcall

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Markers for the directive grammar emitted by the model. The markers are
// case-sensitive; the tool name is lower-cased on parse.
const (
	callMarker   = "TOOL_CALL:"
	paramsMarker = "PARAMETERS:"
)

// ToolCall is a structured directive extracted from free-form model output.
type ToolCall struct {
	ToolName   string         `json:"tool_name"`
	Parameters map[string]any `json:"parameters"`
}

// ParseError indicates a TOOL_CALL marker was present but the name or the
// parameter JSON could not be recovered. Raw carries the unparsed parameter
// text for diagnostics.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("malformed tool call (%s): %q", e.Reason, e.Raw)
	}
	return fmt.Sprintf("malformed tool call (%s)", e.Reason)
}

// UnknownToolError indicates the directive parsed cleanly but names a tool
// that is not in the registry.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Name)
}

// registry is the fixed set of tools the conversation layer may invoke.
var registry = map[string]string{
	"create_matter":         "Create a new legal matter from collected client details",
	"update_matter":         "Update contact or matter details on an existing matter",
	"advance_matter":        "Apply a workflow event to a matter's formation pipeline",
	"request_documents":     "Ask the client for documents needed at the current stage",
	"schedule_consultation": "Offer the client a consultation slot with a lawyer",
	"handoff_to_lawyer":     "Route the conversation to a human lawyer",
}

// Known reports whether name is a registered tool.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// KnownTools returns the registered tool names with their descriptions.
func KnownTools() map[string]string {
	out := make(map[string]string, len(registry))
	for k, v := range registry {
		out[k] = v
	}
	return out
}

// Parse extracts the first TOOL_CALL/PARAMETERS pair from text.
//
// A missing TOOL_CALL marker is not an error: Parse returns (nil, nil) so
// callers can treat the text as plain conversation. A marker with an
// unrecoverable name or JSON object yields a *ParseError; a cleanly parsed
// name outside the registry yields an *UnknownToolError.
func Parse(text string) (*ToolCall, error) {
	idx := strings.Index(text, callMarker)
	if idx < 0 {
		return nil, nil
	}

	rest := text[idx+len(callMarker):]
	nameLine := rest
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		nameLine = rest[:nl]
	}
	name := strings.ToLower(strings.TrimSpace(nameLine))
	if name == "" {
		return nil, &ParseError{Reason: "missing tool name"}
	}

	pIdx := strings.Index(rest, paramsMarker)
	if pIdx < 0 {
		return nil, &ParseError{Reason: "missing PARAMETERS block"}
	}
	paramText := rest[pIdx+len(paramsMarker):]

	objText, ok := extractObject(paramText)
	if !ok {
		raw := objText
		if raw == "" {
			raw = strings.TrimSpace(firstLines(paramText, 3))
		}
		return nil, &ParseError{Reason: "unterminated or missing JSON object", Raw: raw}
	}

	var params map[string]any
	if err := json.Unmarshal([]byte(objText), &params); err != nil {
		return nil, &ParseError{Reason: "invalid JSON", Raw: objText}
	}

	if !Known(name) {
		return nil, &UnknownToolError{Name: name}
	}

	return &ToolCall{ToolName: name, Parameters: params}, nil
}

// extractObject returns the first balanced JSON object in s. String literals
// are tracked so braces inside quoted values do not unbalance the scan.
func extractObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	// Unbalanced: return the fragment so the caller can surface it.
	return s[start:], false
}

func firstLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}
