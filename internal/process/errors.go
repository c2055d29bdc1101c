package process

import (
	"errors"
	"fmt"
)

// SpawnError reports that a command could not be started at all, usually
// because the executable is missing.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// PermissionDeniedError reports that privilege elevation was refused or the
// authorization dialog was dismissed. It is only known after the elevated
// child has been awaited.
type PermissionDeniedError struct {
	Command string
	Code    int
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied running %s (elevation exit code %d)", e.Command, e.Code)
}

// ExitError reports a command that ran but exited non-zero. LastLine is the
// last output line that was not a status marker, kept as diagnostic context.
type ExitError struct {
	Command  string
	Code     int
	LastLine string
}

func (e *ExitError) Error() string {
	if e.LastLine == "" {
		return fmt.Sprintf("%s exited with code %d", e.Command, e.Code)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Command, e.Code, e.LastLine)
}

// Exit codes pkexec uses when authorization fails or the dialog is dismissed.
const (
	elevationNotAuthorized = 126
	elevationDismissed     = 127
)

func isElevationRefusal(code int) bool {
	return code == elevationNotAuthorized || code == elevationDismissed
}

// IsPermissionDenied reports whether err is, or wraps, a PermissionDeniedError.
func IsPermissionDenied(err error) bool {
	var pd *PermissionDeniedError
	return errors.As(err, &pd)
}

// IsSpawnError reports whether err is, or wraps, a SpawnError.
func IsSpawnError(err error) bool {
	var se *SpawnError
	return errors.As(err, &se)
}
