package process

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"zapretctl/pkg/logging"
)

// Runner executes short one-shot commands whose output is consumed whole.
type Runner interface {
	// Run executes spec to completion and returns its combined output.
	Run(ctx context.Context, spec Spec) (string, error)
	// LookPath reports whether name resolves through `which`.
	LookPath(ctx context.Context, name string) bool
	// IsRunning reports whether a process named exactly name is alive.
	IsRunning(ctx context.Context, name string) (bool, error)
}

// ExecRunner is the Runner backed by real subprocesses.
type ExecRunner struct {
	sup *Supervisor
}

// NewExecRunner returns a Runner elevating through the supervisor's elevator.
func NewExecRunner(sup *Supervisor) *ExecRunner {
	return &ExecRunner{sup: sup}
}

func (r *ExecRunner) Run(ctx context.Context, spec Spec) (string, error) {
	name, args := r.sup.argv(spec)
	elevated := spec.Elevated && r.sup.Elevator != ""

	cmd := execCommandContext(ctx, name, args...)
	if !elevated {
		cmd.Env = append(cmd.Environ(), spec.Env...)
	}
	cmd.Dir = spec.Dir
	cmd.Stdin = spec.Stdin

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	logging.Debug(subsystem, "Running %s (elevated=%t)", spec, elevated)
	err := cmd.Run()
	output := out.String()
	if err == nil {
		return output, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return output, &SpawnError{Command: spec.String(), Err: err}
	}
	code := exitErr.ExitCode()
	if elevated && isElevationRefusal(code) {
		return output, &PermissionDeniedError{Command: spec.String(), Code: code}
	}
	return output, &ExitError{Command: spec.String(), Code: code, LastLine: lastNonEmptyLine(output)}
}

func (r *ExecRunner) LookPath(ctx context.Context, name string) bool {
	return execCommandContext(ctx, "which", name).Run() == nil
}

// IsRunning runs `pgrep -x name`: exit 0 means a match, exit 1 means none.
// Anything else is reported as an error.
func (r *ExecRunner) IsRunning(ctx context.Context, name string) (bool, error) {
	_, err := r.Run(ctx, Spec{Name: "pgrep", Args: []string{"-x", name}})
	if err == nil {
		return true, nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code == 1 {
		return false, nil
	}
	return false, err
}

func lastNonEmptyLine(output string) string {
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
