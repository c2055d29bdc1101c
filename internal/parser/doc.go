// Package parser turns raw subprocess output into structured results.
//
// All functions are pure: StripANSI removes terminal color sequences,
// ExtractStrategies reads a blockcheck report, and StatusMarker and
// IsProgressLine classify streaming lines for progress reporting.
package parser
