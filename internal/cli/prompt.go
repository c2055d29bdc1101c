package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"zapretctl/internal/pipeline"
)

// ErrNotInteractive is returned when a prompt is needed but stdin is not a
// terminal.
var ErrNotInteractive = errors.New("input required but stdin is not a terminal")

// lineReader is the part of readline the prompter uses.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// Prompter asks the interactive questions of a run.
type Prompter struct {
	rl  lineReader
	out io.Writer
}

// NewPrompter opens a readline instance on the terminal.
func NewPrompter(out io.Writer) (*Prompter, error) {
	rl, err := readline.NewEx(&readline.Config{
		InterruptPrompt: "^C",
		EOFPrompt:       "",
		HistoryLimit:    -1,
		Stdout:          out,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline instance: %w", err)
	}
	return &Prompter{rl: rl, out: out}, nil
}

// Close releases the terminal.
func (p *Prompter) Close() error {
	return p.rl.Close()
}

// ask reads one line. Ctrl-C and Ctrl-D cancel the run.
func (p *Prompter) ask(prompt string) (string, error) {
	p.rl.SetPrompt(prompt)
	line, err := p.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", pipeline.ErrCancelled
	}
	if err != nil {
		return "", fmt.Errorf("readline error: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Domains asks until the user enters at least one valid domain.
func (p *Prompter) Domains() ([]string, error) {
	fmt.Fprintln(p.out, "Enter the blocked domains to test, separated by spaces or commas (e.g. youtube.com discord.com).")
	for {
		line, err := p.ask("domains> ")
		if err != nil {
			return nil, err
		}
		domains, err := pipeline.CollectDomains([]string{line})
		if err == nil {
			return domains, nil
		}
		fmt.Fprintln(p.out, FormatWarning(err.Error()))
	}
}

// ScanLevel asks for a scan level, defaulting to quick.
func (p *Prompter) ScanLevel() (pipeline.ScanLevel, error) {
	options := make([]string, len(pipeline.ScanLevels))
	for i, l := range pipeline.ScanLevels {
		options[i] = string(l)
	}
	idx, err := p.Choose("Scan level", options, 0)
	if err != nil {
		return "", err
	}
	return pipeline.ScanLevels[idx], nil
}

// Choose lists options and returns the index of the chosen one. An empty
// answer selects def.
func (p *Prompter) Choose(title string, options []string, def int) (int, error) {
	fmt.Fprintf(p.out, "%s:\n", title)
	for i, o := range options {
		marker := " "
		if i == def {
			marker = "*"
		}
		fmt.Fprintf(p.out, " %s %d) %s\n", marker, i+1, o)
	}
	for {
		line, err := p.ask(fmt.Sprintf("choice [%d]> ", def+1))
		if err != nil {
			return 0, err
		}
		idx, err := parseChoice(line, options, def)
		if err == nil {
			return idx, nil
		}
		fmt.Fprintln(p.out, FormatWarning(err.Error()))
	}
}

// parseChoice accepts a 1-based number or an option name.
func parseChoice(answer string, options []string, def int) (int, error) {
	if answer == "" {
		return def, nil
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(options) {
			return 0, fmt.Errorf("choose a number between 1 and %d", len(options))
		}
		return n - 1, nil
	}
	for i, o := range options {
		if strings.EqualFold(answer, o) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown choice %q", answer)
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		line, err := p.ask(fmt.Sprintf("%s [%s] ", question, hint))
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, FormatWarning("answer y or n"))
	}
}
