// Package logging provides the structured, subsystem-tagged logger used across
// zapretctl.
//
// The logger is a thin layer over Go's log/slog. Every call names the
// subsystem that produced it so output can be filtered by component:
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//	logging.Info("Pipeline", "Run %s started", runID)
//	logging.Error("Process", err, "Failed to start %s", name)
//
// # Modes
//
// CLI mode writes slog text records to an io.Writer. Channel mode delivers
// LogEntry values on a buffered channel instead, so a terminal controller that
// owns the screen (a running spinner, for instance) can decide when and how
// to print them. When the channel is full, entries are dropped with a note on
// stderr rather than blocking the caller.
//
// # Subsystems
//
//   - Config: configuration loading and validation
//   - Process: subprocess start, kill and exit handling
//   - Pipeline: run lifecycle and controller polling
//   - Install, Discovery, EasyInstall: the individual pipeline workers
//   - Strategy: strategy store reads, writes and imports
//   - Distro: distribution detection and package resolution
//   - Service: systemd unit status and control
//   - CLI: command-level messages
//
// All functions are safe for concurrent use.
package logging
