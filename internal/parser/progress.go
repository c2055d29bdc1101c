package parser

import "strings"

// StatusPrefix marks installer job lines that announce a new stage.
const StatusPrefix = "STATUS:"

// Stage is an installer stage announced by a STATUS: marker.
type Stage string

const (
	StageCleaning       Stage = "CLEANING"
	StageInstallingDeps Stage = "INSTALLING_DEPS"
	StageInstalling     Stage = "INSTALLING"
	StageConfiguring    Stage = "CONFIGURING"
	StageFinalizing     Stage = "FINALIZING"
)

// markerOrder lists markers so that INSTALLING_DEPS is matched before its
// prefix INSTALLING.
var markerOrder = []Stage{
	StageCleaning,
	StageInstallingDeps,
	StageInstalling,
	StageConfiguring,
	StageFinalizing,
}

// IsStatusLine reports whether line is a STATUS: marker.
func IsStatusLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(StripANSI(line)), StatusPrefix)
}

// StatusMarker maps a STATUS: line to its stage.
func StatusMarker(line string) (Stage, bool) {
	trimmed := strings.TrimSpace(StripANSI(line))
	rest, ok := strings.CutPrefix(trimmed, StatusPrefix)
	if !ok {
		return "", false
	}
	for _, stage := range markerOrder {
		if strings.HasPrefix(rest, string(stage)) {
			return stage, true
		}
	}
	return "", false
}

// IsProgressLine reports whether a blockcheck output line represents one unit
// of scan progress.
func IsProgressLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.Contains(trimmed, "ipv4") ||
		strings.Contains(trimmed, "ipv6") ||
		strings.HasPrefix(trimmed, "- ")
}
