package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const plainColumnGap = 3

// plainTable writes aligned columns without box drawing, for piping into
// grep, awk or cut. Widths are measured in terminal cells so domain names
// and log text with wide runes stay aligned.
type plainTable struct {
	out    io.Writer
	rows   [][]string
	widths []int
}

func newPlainTable(out io.Writer) *plainTable {
	return &plainTable{out: out}
}

// SetHeaders starts the table with an upper-cased header row.
func (p *plainTable) SetHeaders(headers []string) {
	row := make([]string, len(headers))
	for i, h := range headers {
		row[i] = strings.ToUpper(h)
	}
	p.widths = make([]int, len(row))
	p.rows = nil
	p.AppendRow(row)
}

// AppendRow pads or cuts row to the header width.
func (p *plainTable) AppendRow(row []string) {
	cells := make([]string, len(p.widths))
	copy(cells, row)
	for i, c := range cells {
		p.widths[i] = max(p.widths[i], runewidth.StringWidth(c))
	}
	p.rows = append(p.rows, cells)
}

func (p *plainTable) Render() {
	var sb strings.Builder
	for _, row := range p.rows {
		sb.Reset()
		for i, cell := range row {
			if i < len(row)-1 {
				cell = runewidth.FillRight(cell, p.widths[i]+plainColumnGap)
			}
			sb.WriteString(cell)
		}
		fmt.Fprintln(p.out, strings.TrimRight(sb.String(), " "))
	}
}
