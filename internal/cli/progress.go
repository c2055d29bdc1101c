package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"

	"zapretctl/internal/pipeline"
	"zapretctl/pkg/logging"
)

// Progress shows a pipeline run on the terminal. On a terminal it keeps a
// single spinner line whose suffix follows the current stage and the last
// output line; otherwise it prints one line per stage change.
type Progress struct {
	out     io.Writer
	spinner *spinner.Spinner
	quiet   bool
	verbose bool

	status string
	checks int
	last   string
}

// NewProgress returns a Progress writing to out. interactive enables the
// spinner; verbose also prints every output line in non-interactive mode.
func NewProgress(out io.Writer, interactive, quiet, verbose bool) *Progress {
	p := &Progress{out: out, quiet: quiet, verbose: verbose}
	if interactive && !quiet {
		p.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
		p.spinner.Suffix = " Starting..."
		p.spinner.Start()
	}
	return p
}

// Observe implements pipeline.Observer.
func (p *Progress) Observe(run *pipeline.Run, msg pipeline.Message) {
	switch m := msg.(type) {
	case pipeline.Started:
		logging.Debug("CLI", "Run %s started pid %d (elevated=%t)", run.ID, m.PID, m.Elevated)
	case pipeline.StatusChanged:
		p.status = m.Text
		p.last = ""
		if p.spinner == nil && !p.quiet {
			fmt.Fprintf(p.out, "» %s\n", m.Text)
		}
	case pipeline.ProgressTick:
		p.checks++
	case pipeline.LogLine:
		p.last = pipeline.ShortenLog(m.Text)
		if p.spinner == nil && p.verbose && !p.quiet {
			fmt.Fprintf(p.out, "  %s\n", m.Text)
		}
	}
	p.refresh()
}

func (p *Progress) refresh() {
	if p.spinner == nil {
		return
	}
	suffix := " " + p.status
	if p.checks > 0 {
		suffix += fmt.Sprintf(" [%d checks]", p.checks)
	}
	if p.last != "" {
		suffix += " " + text.FgHiBlack.Sprint(p.last)
	}
	p.spinner.Lock()
	p.spinner.Suffix = suffix
	p.spinner.Unlock()
}

// Logs prints log entries above the spinner line until entries is closed.
// The returned channel is closed once every entry was printed.
func (p *Progress) Logs(entries <-chan logging.LogEntry) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for entry := range entries {
			p.printEntry(entry)
		}
	}()
	return done
}

func (p *Progress) printEntry(entry logging.LogEntry) {
	line := fmt.Sprintf("%s [%s] %s", entry.Level, entry.Subsystem, entry.Message)
	if entry.Err != nil {
		line += ": " + entry.Err.Error()
	}
	switch entry.Level {
	case logging.LevelError:
		line = text.FgRed.Sprint(line)
	case logging.LevelWarn:
		line = text.FgYellow.Sprint(line)
	}

	if p.spinner == nil {
		fmt.Fprintln(p.out, line)
		return
	}
	p.spinner.Lock()
	fmt.Fprintf(p.out, "\r\033[K%s\n", line)
	p.spinner.Unlock()
}

// Finish stops the spinner and prints the outcome. success is shown when
// the run succeeded.
func (p *Progress) Finish(res pipeline.Result, success string) {
	var final string
	switch res.Outcome {
	case pipeline.OutcomeSucceeded:
		final = text.FgGreen.Sprint(FormatSuccess(success))
	case pipeline.OutcomeCancelled:
		final = text.FgYellow.Sprint("Cancelled")
	default:
		stage := p.status
		if stage == "" {
			stage = "Run"
		}
		final = text.FgRed.Sprint("❌ Failed while: " + stage)
	}

	if p.spinner != nil {
		p.spinner.FinalMSG = final + "\n"
		p.spinner.Stop()
		return
	}
	if !p.quiet || res.Outcome == pipeline.OutcomeFailed {
		fmt.Fprintln(p.out, final)
	}
}
