package parser

import (
	"slices"
	"strings"
)

const (
	commonHeader  = "* COMMON"
	summaryHeader = "* SUMMARY"
	sectionPrefix = "* "
	nfqwsMarker   = "nfqws "
)

var exclusionMarkers = []string{"checking", ">>", "not working"}

// ExtractStrategies parses a blockcheck report into the nfqws strategies it
// lists as working.
//
// The COMMON section is preferred and SUMMARY used when COMMON is absent.
// Parsing starts after the header and stops at the next "* " section. Only
// when the header never appears is the whole output scanned instead, with
// duplicates removed. A found header with no strategies yields an empty
// result, not a wider scan.
func ExtractStrategies(lines []string) []string {
	clean := make([]string, len(lines))
	hasCommon := false
	for i, line := range lines {
		clean[i] = StripANSI(line)
		if strings.Contains(clean[i], commonHeader) {
			hasCommon = true
		}
	}

	header := summaryHeader
	if hasCommon {
		header = commonHeader
	}

	strategies := []string{}
	parsing := false
	for _, line := range clean {
		trimmed := strings.TrimSpace(line)
		if strings.Contains(trimmed, header) {
			parsing = true
			continue
		}
		if !parsing {
			continue
		}
		if strings.HasPrefix(trimmed, sectionPrefix) {
			break
		}
		if trimmed == "" {
			continue
		}
		if s, ok := candidate(trimmed); ok {
			strategies = append(strategies, s)
		}
	}

	if parsing {
		return strategies
	}

	for _, line := range clean {
		s, ok := candidate(strings.TrimSpace(line))
		if ok && !slices.Contains(strategies, s) {
			strategies = append(strategies, s)
		}
	}
	return strategies
}

// candidate returns the text after "nfqws " when line names a working
// strategy rather than a probe in progress or a failure.
func candidate(line string) (string, bool) {
	idx := strings.Index(line, nfqwsMarker)
	if idx < 0 {
		return "", false
	}
	for _, marker := range exclusionMarkers {
		if strings.Contains(line, marker) {
			return "", false
		}
	}
	return strings.TrimSpace(line[idx+len(nfqwsMarker):]), true
}
