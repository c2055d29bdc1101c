package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"zapretctl/internal/parser"
	"zapretctl/pkg/logging"

	"golang.org/x/sys/unix"
)

const subsystem = "Process"

// execCommandContext is a variable so tests can substitute a helper process.
var execCommandContext = exec.CommandContext

// maxLineLength bounds a single stdout line; blockcheck summaries can be long.
const maxLineLength = 1024 * 1024

// Spec describes one external command.
type Spec struct {
	Name string
	Args []string
	// Env holds extra KEY=VALUE pairs. Unelevated children inherit the parent
	// environment plus Env; elevated children receive Env through `env`
	// because the elevator resets the environment.
	Env   []string
	Dir   string
	Stdin io.Reader
	// Elevated runs the command through the supervisor's elevator.
	Elevated bool
}

// String renders the command line for logs and errors.
func (s Spec) String() string {
	return strings.TrimSpace(s.Name + " " + strings.Join(s.Args, " "))
}

// Line is one line of stdout, or the read error that ended the stream.
type Line struct {
	Text string
	Err  error
}

// Supervisor starts external commands, optionally elevated.
type Supervisor struct {
	// Elevator is the privilege elevation command, e.g. pkexec. When empty,
	// elevated specs run directly.
	Elevator string
}

// NewSupervisor returns a Supervisor elevating through elevator.
func NewSupervisor(elevator string) *Supervisor {
	return &Supervisor{Elevator: elevator}
}

// Handle owns one running child process. Callers must always reach Wait,
// after Kill on the cancellation path, so the child is reaped.
type Handle struct {
	spec     Spec
	elevator string
	cmd      *exec.Cmd
	pid      int

	lines    chan Line
	stdout   *os.File
	stop     chan struct{}
	readDone chan struct{}

	mu       sync.Mutex
	lastLine string
	stderr   tailWriter

	waitOnce sync.Once
	waitErr  error
}

// argv returns the program and arguments actually executed for spec.
func (s *Supervisor) argv(spec Spec) (string, []string) {
	if !spec.Elevated || s.Elevator == "" {
		return spec.Name, spec.Args
	}
	args := make([]string, 0, len(spec.Env)+len(spec.Args)+2)
	if len(spec.Env) > 0 {
		args = append(args, "env")
		args = append(args, spec.Env...)
	}
	args = append(args, spec.Name)
	args = append(args, spec.Args...)
	return s.Elevator, args
}

// Start launches spec. Cancelling ctx kills the child, through the elevated
// path when the child runs elevated.
func (s *Supervisor) Start(ctx context.Context, spec Spec) (*Handle, error) {
	name, args := s.argv(spec)
	elevated := spec.Elevated && s.Elevator != ""

	cmd := execCommandContext(ctx, name, args...)
	if !elevated {
		cmd.Env = append(cmd.Environ(), spec.Env...)
	}
	cmd.Dir = spec.Dir
	cmd.Stdin = spec.Stdin
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, &SpawnError{Command: spec.String(), Err: err}
	}

	h := &Handle{
		spec:     spec,
		elevator: s.Elevator,
		cmd:      cmd,
		lines:    make(chan Line, 64),
		stdout:   pr,
		stop:     make(chan struct{}),
		readDone: make(chan struct{}),
	}
	cmd.Stdout = pw
	cmd.Stderr = &h.stderr
	cmd.Cancel = func() error {
		killCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return h.Kill(killCtx)
	}
	cmd.WaitDelay = 5 * time.Second

	logging.Debug(subsystem, "Starting %s (elevated=%t)", spec, elevated)
	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, &SpawnError{Command: spec.String(), Err: err}
	}
	// The child holds its own copy of the write end.
	pw.Close()

	h.pid = cmd.Process.Pid
	go h.readLines()
	return h, nil
}

// PID returns the process id of the launched child. For elevated commands
// this is the elevator's pid.
func (h *Handle) PID() int {
	return h.pid
}

// Elevated reports whether the child runs through the elevator.
func (h *Handle) Elevated() bool {
	return h.spec.Elevated && h.elevator != ""
}

// Lines returns the stdout line stream. The channel is closed at EOF, after a
// read error, or once Wait has returned. It is not restartable.
func (h *Handle) Lines() <-chan Line {
	return h.lines
}

// LastLine returns the most recent output line that was not a status marker.
func (h *Handle) LastLine() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastLine
}

func (h *Handle) readLines() {
	defer close(h.readDone)
	defer close(h.lines)

	scanner := bufio.NewScanner(h.stdout)
	scanner.Buffer(make([]byte, 64*1024), maxLineLength)
	for scanner.Scan() {
		text := scanner.Text()
		if strings.TrimSpace(text) != "" && !parser.IsStatusLine(text) {
			h.mu.Lock()
			h.lastLine = strings.TrimSpace(parser.StripANSI(text))
			h.mu.Unlock()
		}
		select {
		case h.lines <- Line{Text: text}:
		case <-h.stop:
			return
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		select {
		case h.lines <- Line{Err: err}:
		case <-h.stop:
			return
		}
		// The child keeps writing after an oversized line; an unread pipe
		// would block it and Wait with it.
		_, _ = io.Copy(io.Discard, h.stdout)
	}
}

// Kill forcefully terminates the child together with its process group.
// Elevated children are killed through the elevator since the caller lacks
// permission to signal them.
func (h *Handle) Kill(ctx context.Context) error {
	return killPID(ctx, h.elevator, h.cmd.Process.Pid, h.Elevated())
}

// Wait blocks until the child exits and returns nil, *ExitError or
// *PermissionDeniedError. It is safe to call more than once.
func (h *Handle) Wait() error {
	h.waitOnce.Do(func() {
		err := h.cmd.Wait()
		close(h.stop)
		h.stdout.Close()
		<-h.readDone
		h.waitErr = h.exitResult(err)
		logging.Debug(subsystem, "%s (pid %d) finished: %v", h.spec, h.pid, h.waitErr)
	})
	return h.waitErr
}

func (h *Handle) exitResult(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return fmt.Errorf("waiting for %s: %w", h.spec, err)
	}
	code := exitErr.ExitCode()
	if h.Elevated() && isElevationRefusal(code) {
		return &PermissionDeniedError{Command: h.spec.String(), Code: code}
	}
	last := h.LastLine()
	if last == "" {
		last = h.stderr.Last()
	}
	return &ExitError{Command: h.spec.String(), Code: code, LastLine: last}
}

// KillPID forcefully terminates pid, through the elevator when elevated is
// set. It is the backstop used when only a tracked pid is left.
func (s *Supervisor) KillPID(ctx context.Context, pid int, elevated bool) error {
	return killPID(ctx, s.Elevator, pid, elevated && s.Elevator != "")
}

func killPID(ctx context.Context, elevator string, pid int, elevated bool) error {
	if pid <= 0 {
		return nil
	}
	if elevated {
		logging.Debug(subsystem, "Killing elevated pid %d via %s", pid, elevator)
		out, err := execCommandContext(ctx, elevator, "sh", "-c", elevatedKillScript(pid)).CombinedOutput()
		if err != nil {
			return fmt.Errorf("elevated kill of pid %d failed: %w (%s)", pid, err, strings.TrimSpace(string(out)))
		}
		return nil
	}

	logging.Debug(subsystem, "Killing process group %d", pid)
	err := unix.Kill(-pid, unix.SIGKILL)
	if errors.Is(err, unix.ESRCH) {
		// Not a group leader, or already gone.
		err = unix.Kill(pid, unix.SIGKILL)
	}
	if err != nil && !errors.Is(err, unix.ESRCH) {
		return fmt.Errorf("kill pid %d: %w", pid, err)
	}
	return nil
}

// elevatedKillScript kills the process group led by pid, or pid alone when
// it leads no group, in a single elevated call.
func elevatedKillScript(pid int) string {
	id := strconv.Itoa(pid)
	return "kill -9 -- -" + id + " 2>/dev/null || kill -9 " + id
}

// tailWriter keeps the last non-empty line written to it.
type tailWriter struct {
	mu      sync.Mutex
	partial []byte
	last    string
}

func (w *tailWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.partial = append(w.partial, p...)
	for {
		i := strings.IndexByte(string(w.partial), '\n')
		if i < 0 {
			break
		}
		if line := strings.TrimSpace(string(w.partial[:i])); line != "" {
			w.last = line
		}
		w.partial = w.partial[i+1:]
	}
	if len(w.partial) > maxLineLength {
		w.partial = w.partial[len(w.partial)-maxLineLength:]
	}
	return len(p), nil
}

func (w *tailWriter) Last() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if line := strings.TrimSpace(string(w.partial)); line != "" {
		return line
	}
	return w.last
}
