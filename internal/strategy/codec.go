package strategy

import (
	"fmt"
	"strings"
)

// Encode renders strategies in the store format: a bracketed array with one
// double-quoted string per line, `"` escaped as `\"`, and a trailing newline.
func Encode(strategies []string) []byte {
	var b strings.Builder
	b.WriteString("[\n")
	for i, s := range strategies {
		b.WriteString(`  "`)
		b.WriteString(strings.ReplaceAll(s, `"`, `\"`))
		b.WriteString(`"`)
		if i < len(strategies)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("]\n")
	return []byte(b.String())
}

// Decode parses the store format. Every closed quoted run becomes one
// element, empty ones included. A backslash inside a quoted run makes the
// next character literal and is itself dropped, so only `\"` round-trips;
// other escapes lose their backslash.
func Decode(data []byte) ([]string, error) {
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") || len(trimmed) < 2 {
		return nil, &ParseError{Reason: "content is not a bracketed string array"}
	}

	var (
		result   = []string{}
		current  strings.Builder
		inString bool
		escaped  bool
	)
	for _, c := range trimmed[1 : len(trimmed)-1] {
		if !inString {
			if c == '"' {
				inString = true
			}
			continue
		}
		switch {
		case escaped:
			current.WriteRune(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = false
			result = append(result, current.String())
			current.Reset()
		default:
			current.WriteRune(c)
		}
	}
	return result, nil
}

// Validate checks that the list is non-empty and every entry starts with
// "--" once trimmed.
func Validate(strategies []string) error {
	if len(strategies) == 0 {
		return &ParseError{Reason: "no strategies found"}
	}
	for _, s := range strategies {
		if !strings.HasPrefix(strings.TrimSpace(s), "--") {
			return &ParseError{Reason: fmt.Sprintf("invalid strategy %q: strategies must start with '--'", s)}
		}
	}
	return nil
}

// ParseError reports a malformed strategy file or list.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}
