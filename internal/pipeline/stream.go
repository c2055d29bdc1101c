package pipeline

import (
	"context"

	"zapretctl/internal/process"
	"zapretctl/pkg/logging"
)

// stream runs spec to completion, handing every stdout line to onLine. The
// child's pid is tracked on run for the lifetime of the process. Cancellation
// is checked before the start and before each line; a cancelled run returns
// ErrCancelled after the child has been reaped.
func stream(run *Run, out chan<- Message, sup Starter, spec process.Spec, onLine func(string)) error {
	if run.Cancelled() {
		return ErrCancelled
	}

	// The run context is detached: killing is the pid tracker's job so that
	// an elevated child is killed exactly once.
	h, err := sup.Start(context.WithoutCancel(run.Context()), spec)
	if err != nil {
		return err
	}

	if !run.SetPID(h.PID(), h.Elevated()) {
		ctx, cancel := context.WithTimeout(context.Background(), killTimeout)
		defer cancel()
		if err := h.Kill(ctx); err != nil {
			logging.Warn(subsystem, "Failed to kill %s after cancellation: %v", spec, err)
		}
		_ = h.Wait()
		return ErrCancelled
	}
	defer run.ClearPID()

	send(run, out, Started{PID: h.PID(), Elevated: h.Elevated()})

	for line := range h.Lines() {
		if run.Cancelled() {
			break
		}
		if line.Err != nil {
			logging.Warn(subsystem, "Reading output of %s: %v", spec, line.Err)
			continue
		}
		onLine(line.Text)
	}

	waitErr := h.Wait()
	if run.Cancelled() {
		return ErrCancelled
	}
	return waitErr
}

// status moves the run to stage and reports text.
func status(run *Run, out chan<- Message, stage Stage, text string) {
	logging.Info(subsystem, "[%s] %s", run.Kind, text)
	send(run, out, StatusChanged{Stage: stage, Text: text})
}
