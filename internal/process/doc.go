// Package process supervises external commands for zapretctl.
//
// A Supervisor starts long-running commands and hands back a Handle that
// exposes the child's pid, its stdout as a channel of lines, a forceful Kill
// and an idempotent Wait. Commands can be elevated through an elevator such
// as pkexec; elevated children are also killed through the elevator.
//
// Failures are typed: SpawnError when the command cannot start,
// PermissionDeniedError when elevation is refused, and ExitError with the
// last meaningful output line when the command exits non-zero.
//
// Runner covers short one-shot commands such as which, pgrep and systemctl.
package process
