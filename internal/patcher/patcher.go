// Package patcher rewrites the NFQWS_OPT assignment in the zapret config.
package patcher

import "strings"

// OptionVariable is the config variable holding nfqws options.
const OptionVariable = "NFQWS_OPT"

// PatchOptionVariable returns document with the NFQWS_OPT value replaced by
// value. All other bytes are preserved.
//
// The double-quoted form is tried first and honours backslash escapes when
// looking for the closing quote. The single-quoted form ends at the next
// quote. Either way the result is written double-quoted. Without an
// assignment, one is appended on its own line.
func PatchOptionVariable(document, value string) string {
	replacement := OptionVariable + `="` + value + `"`

	doubleOpen := OptionVariable + `="`
	if start := strings.Index(document, doubleOpen); start >= 0 {
		body := document[start+len(doubleOpen):]
		if end, ok := closingQuote(body); ok {
			return document[:start] + replacement + body[end+1:]
		}
	}

	singleOpen := OptionVariable + `='`
	if start := strings.Index(document, singleOpen); start >= 0 {
		body := document[start+len(singleOpen):]
		if end := strings.IndexByte(body, '\''); end >= 0 {
			return document[:start] + replacement + body[end+1:]
		}
	}

	return document + "\n" + replacement + "\n"
}

// closingQuote finds the first unescaped double quote in s.
func closingQuote(s string) (int, bool) {
	escaped := false
	for i := 0; i < len(s); i++ {
		switch {
		case escaped:
			escaped = false
		case s[i] == '\\':
			escaped = true
		case s[i] == '"':
			return i, true
		}
	}
	return 0, false
}

// JoinStrategies builds the NFQWS_OPT value from the selected strategies.
func JoinStrategies(selected []string) string {
	return strings.Join(selected, " ")
}
