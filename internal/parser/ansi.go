package parser

import "strings"

const escape = '\x1b'

// StripANSI removes terminal escape sequences from line. A sequence starts at
// the escape character and ends at the next 'm', inclusive; an unterminated
// sequence swallows the rest of the line.
func StripANSI(line string) string {
	if strings.IndexByte(line, escape) < 0 {
		return line
	}
	var b strings.Builder
	b.Grow(len(line))
	inside := false
	for _, r := range line {
		if r == escape {
			inside = true
		}
		if !inside {
			b.WriteRune(r)
		}
		if inside && r == 'm' {
			inside = false
		}
	}
	return b.String()
}
