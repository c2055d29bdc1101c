package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"zapretctl/pkg/logging"
)

const subsystem = "Pipeline"

// killTimeout bounds the backstop kill. An elevated kill may wait on an
// authorization prompt.
const killTimeout = 2 * time.Minute

// Killer forcefully terminates a process by pid.
type Killer interface {
	KillPID(ctx context.Context, pid int, elevated bool) error
}

// Run is one in-flight pipeline. The controller owns it; the worker only
// uses its context, which is the cancellation flag, and its pid cell.
type Run struct {
	ID   string
	Kind Kind

	ctx    context.Context
	cancel context.CancelFunc
	killer Killer

	mu         sync.Mutex
	cancelled  bool
	stage      Stage
	lastStatus string
	pid        int
	elevated   bool
}

// NewRun creates a run whose context derives from parent.
func NewRun(parent context.Context, kind Kind, killer Killer) *Run {
	ctx, cancel := context.WithCancel(parent)
	return &Run{
		ID:     uuid.New().String(),
		Kind:   kind,
		ctx:    ctx,
		cancel: cancel,
		killer: killer,
		stage:  StageIdle,
	}
}

// Context is cancelled once the run is cancelled. Workers check it before
// every blocking step.
func (r *Run) Context() context.Context {
	return r.ctx
}

// Done is closed once the run is cancelled.
func (r *Run) Done() <-chan struct{} {
	return r.ctx.Done()
}

// Cancelled reports whether the run was cancelled, directly or through its
// parent context.
func (r *Run) Cancelled() bool {
	return r.ctx.Err() != nil
}

// Cancel sets the cancellation flag and, as a backstop for children blocked
// on their own I/O, kills the tracked process without waiting for the kill.
// Only the first call has an effect.
func (r *Run) Cancel() {
	r.mu.Lock()
	if r.cancelled {
		r.mu.Unlock()
		return
	}
	r.cancelled = true
	r.cancel()
	pid, elevated := r.pid, r.elevated
	r.mu.Unlock()

	logging.Info(subsystem, "Run %s (%s) cancelled", r.ID, r.Kind)
	if pid <= 0 || r.killer == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), killTimeout)
		defer cancel()
		if err := r.killer.KillPID(ctx, pid, elevated); err != nil {
			logging.Warn(subsystem, "Failed to kill pid %d of cancelled run %s: %v", pid, r.ID, err)
		}
	}()
}

// SetPID records the active child. It refuses, returning false, once the run
// is cancelled, in which case the caller must kill the child itself.
func (r *Run) SetPID(pid int, elevated bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelled || r.ctx.Err() != nil {
		return false
	}
	r.pid = pid
	r.elevated = elevated
	return true
}

// ClearPID forgets the active child after it was reaped.
func (r *Run) ClearPID() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pid = 0
	r.elevated = false
}

// PID returns the active child pid and whether one is tracked.
func (r *Run) PID() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pid, r.pid > 0
}

// Stage returns the current stage.
func (r *Run) Stage() Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stage
}

// LastStatus returns the most recent status text.
func (r *Run) LastStatus() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastStatus
}

func (r *Run) setStage(stage Stage, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stage = stage
	if status != "" {
		r.lastStatus = status
	}
}
