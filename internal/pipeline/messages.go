package pipeline

import (
	"fmt"

	strs "zapretctl/pkg/strings"
)

// Message is sent from a worker to its controller. Messages of one run are
// delivered in the order sent.
type Message interface {
	isMessage()
}

// Started announces a child process so the controller can track its pid.
type Started struct {
	PID      int
	Elevated bool
}

// StatusChanged announces a stage transition with a human-readable status.
type StatusChanged struct {
	Stage Stage
	Text  string
}

// ProgressTick is one unit of scan progress.
type ProgressTick struct{}

// LogLine carries one line of subprocess output for display.
type LogLine struct {
	Text string
}

// Finished is the terminal outcome of a run. It is never sent for a
// cancelled run.
type Finished struct {
	Err        error
	Strategies []string
}

func (Started) isMessage()       {}
func (StatusChanged) isMessage() {}
func (ProgressTick) isMessage()  {}
func (LogLine) isMessage()       {}
func (Finished) isMessage()      {}

func (m Started) String() string       { return fmt.Sprintf("started pid=%d elevated=%t", m.PID, m.Elevated) }
func (m StatusChanged) String() string { return fmt.Sprintf("%s: %s", m.Stage, m.Text) }
func (ProgressTick) String() string    { return "progress" }
func (m LogLine) String() string       { return m.Text }
func (m Finished) String() string {
	if m.Err != nil {
		return fmt.Sprintf("finished: %v", m.Err)
	}
	return fmt.Sprintf("finished: %d strategies", len(m.Strategies))
}

const maxLogLength = 50

// ShortenLog trims a log line for single-line display: lines longer than 50
// characters keep their first 47 followed by "...".
func ShortenLog(line string) string {
	return strs.Truncate(line, maxLogLength)
}
