// Package cli is the terminal controller for zapretctl.
//
// It turns pipeline messages into a spinner line, renders conflicts,
// strategies and service state as tables, and asks the interactive
// questions a run needs (domains, scan level, reuse or overwrite).
//
// # Output Formats
//
//   - table: go-pretty tables with rounded borders and colored status
//   - plain: aligned columns without box drawing, for grep and awk
//
// When stdout is not a terminal the spinner is replaced by one line per
// status change, and prompts refuse to run.
package cli
