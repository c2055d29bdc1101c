package pipeline

import (
	"context"
	"errors"
	"time"

	"zapretctl/pkg/logging"
)

// messageBuffer is the capacity of the worker to controller channel.
const messageBuffer = 256

// Task is the body of a worker. It streams intermediate messages on out and
// returns the terminal result; the controller side sends Finished for it.
type Task func(run *Run, out chan<- Message) ([]string, error)

// Observer receives every message the controller processes.
type Observer interface {
	Observe(run *Run, msg Message)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(run *Run, msg Message)

func (f ObserverFunc) Observe(run *Run, msg Message) { f(run, msg) }

// Outcome is the terminal state of a run as seen by the controller.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeSucceeded
	OutcomeFailed
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "pending"
	}
}

// PollResult tells the caller whether to keep polling.
type PollResult int

const (
	Continue PollResult = iota
	Stop
)

// Result summarises a finished run.
type Result struct {
	Outcome    Outcome
	Err        error
	Strategies []string
	Progress   int
}

// Controller owns a Run and consumes its worker's messages without blocking.
type Controller struct {
	run      *Run
	msgs     <-chan Message
	observer Observer

	progress   int
	outcome    Outcome
	err        error
	strategies []string
	closed     bool
}

// Start creates a run and launches task on its own goroutine. The returned
// controller must be polled until it reports Stop.
func Start(parent context.Context, kind Kind, killer Killer, task Task, observer Observer) *Controller {
	run := NewRun(parent, kind, killer)
	msgs := make(chan Message, messageBuffer)

	logging.Debug(subsystem, "Starting %s run %s", kind, run.ID)
	go func() {
		defer close(msgs)
		strategies, err := task(run, msgs)
		finish(run, msgs, strategies, err)
	}()

	return &Controller{run: run, msgs: msgs, observer: observer}
}

// finish sends the terminal message unless the run was cancelled.
func finish(run *Run, out chan<- Message, strategies []string, err error) {
	if run.Cancelled() || errors.Is(err, ErrCancelled) {
		logging.Debug(subsystem, "Run %s unwound after cancellation", run.ID)
		return
	}
	send(run, out, Finished{Err: err, Strategies: strategies})
}

// send delivers msg unless the run is cancelled first.
func send(run *Run, out chan<- Message, msg Message) bool {
	select {
	case out <- msg:
		return true
	case <-run.Done():
		return false
	}
}

// Run returns the controlled run.
func (c *Controller) Run() *Run {
	return c.run
}

// Cancel cancels the run. The controller immediately reports a cancelled
// outcome but keeps draining until the worker has returned.
func (c *Controller) Cancel() {
	if c.outcome != OutcomePending {
		return
	}
	c.run.Cancel()
	c.outcome = OutcomeCancelled
	c.run.setStage(StageCancelled, "")
}

// Poll processes every message available right now and never blocks. It
// returns Stop once the worker's channel is closed.
func (c *Controller) Poll() PollResult {
	if c.closed {
		return Stop
	}
	for {
		select {
		case msg, ok := <-c.msgs:
			if !ok {
				c.closed = true
				c.teardown()
				return Stop
			}
			c.handle(msg)
		default:
			return Continue
		}
	}
}

func (c *Controller) handle(msg Message) {
	if c.outcome == OutcomeCancelled {
		// The view was already reset; late messages are dropped.
		return
	}

	// The pid cell is maintained by the worker around each child's
	// lifetime; Started is informational here.
	switch m := msg.(type) {
	case StatusChanged:
		c.run.setStage(m.Stage, m.Text)
	case ProgressTick:
		c.progress++
	case Finished:
		if m.Err != nil {
			c.outcome = OutcomeFailed
			c.err = m.Err
			c.run.setStage(StageFailed, "")
		} else {
			c.outcome = OutcomeSucceeded
			c.strategies = m.Strategies
			c.run.setStage(StageDone, "")
		}
	}

	if c.observer != nil {
		c.observer.Observe(c.run, msg)
	}
}

// teardown settles the outcome once the channel closed. A worker that
// returned without Finished was cancelled.
func (c *Controller) teardown() {
	c.run.ClearPID()
	if c.outcome == OutcomePending {
		c.outcome = OutcomeCancelled
		c.run.setStage(StageCancelled, "")
	}
	logging.Debug(subsystem, "Run %s ended: %s", c.run.ID, c.outcome)
}

// Progress returns the number of progress ticks received.
func (c *Controller) Progress() int {
	return c.progress
}

// Result returns the current outcome.
func (c *Controller) Result() Result {
	return Result{
		Outcome:    c.outcome,
		Err:        c.err,
		Strategies: c.strategies,
		Progress:   c.progress,
	}
}

// Drive polls every interval until the worker has returned. Cancelling ctx
// cancels the run; Drive still waits for the worker to unwind.
func (c *Controller) Drive(ctx context.Context, interval time.Duration) Result {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	done := ctx.Done()
	for {
		if c.Poll() == Stop {
			return c.Result()
		}
		select {
		case <-done:
			c.Cancel()
			done = nil
		case <-ticker.C:
		}
	}
}
