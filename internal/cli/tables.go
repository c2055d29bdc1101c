package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"zapretctl/internal/service"
)

// rowWriter is the part of a table both output formats share.
type rowWriter interface {
	SetHeaders(headers []string)
	AppendRow(row []string)
	Render()
}

// prettyTable adapts a go-pretty writer to rowWriter.
type prettyTable struct {
	tw table.Writer
}

func (p *prettyTable) SetHeaders(headers []string) {
	row := make(table.Row, len(headers))
	for i, h := range headers {
		row[i] = text.FgHiCyan.Sprint(h)
	}
	p.tw.AppendHeader(row)
}

func (p *prettyTable) AppendRow(cells []string) {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	p.tw.AppendRow(row)
}

func (p *prettyTable) Render() {
	p.tw.Render()
}

// TableRenderer writes tables in the selected format.
type TableRenderer struct {
	Out    io.Writer
	Format OutputFormat
}

func (r TableRenderer) newTable() rowWriter {
	if r.Format == OutputFormatPlain {
		return newPlainTable(r.Out)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(r.Out)
	tw.SetStyle(table.StyleRounded)
	return &prettyTable{tw: tw}
}

func (r TableRenderer) colored(c text.Color, s string) string {
	if r.Format == OutputFormatPlain {
		return s
	}
	return c.Sprint(s)
}

func (r TableRenderer) empty(msg string) {
	fmt.Fprintln(r.Out, r.colored(text.FgYellow, msg))
}

// Conflicts renders every checked process and whether it is running.
func (r TableRenderer) Conflicts(checked, running []string) {
	found := make(map[string]bool, len(running))
	for _, name := range running {
		found[name] = true
	}

	t := r.newTable()
	t.SetHeaders([]string{"Process", "State"})
	for _, name := range checked {
		state := r.colored(text.FgGreen, "not running")
		if found[name] {
			state = r.colored(text.FgRed, "running")
		}
		t.AppendRow([]string{name, state})
	}
	t.Render()
}

// Strategies renders the stored strategies with the 1-based index apply
// expects.
func (r TableRenderer) Strategies(strategies []string) {
	if len(strategies) == 0 {
		r.empty("No strategies stored. Run `zapretctl discover` first.")
		return
	}
	t := r.newTable()
	t.SetHeaders([]string{"#", "Strategy"})
	for i, s := range strategies {
		t.AppendRow([]string{strconv.Itoa(i + 1), s})
	}
	t.Render()
}

// ServiceStatus renders a unit status.
func (r TableRenderer) ServiceStatus(status service.Status) {
	state := status.ActiveState
	switch {
	case status.Active():
		state = r.colored(text.FgGreen, state)
	case state == "failed":
		state = r.colored(text.FgRed, state)
	default:
		state = r.colored(text.FgYellow, state)
	}

	t := r.newTable()
	t.SetHeaders([]string{"Unit", "Load", "Active", "Sub"})
	t.AppendRow([]string{status.Unit, dash(status.LoadState), state, dash(status.SubState)})
	t.Render()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
