// Package table renders ASCII tables whose column widths ignore ANSI color
// codes.
package table

import (
	"io"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Alignment of a cell within its column.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

// Table accumulates rows and renders them with Render.
type Table struct {
	w           io.Writer
	header      []string
	rows        [][]string
	columnAlign []Alignment
	headerAlign []Alignment
}

// NewTable returns an empty table that renders to w.
func NewTable(w io.Writer) *Table {
	return &Table{w: w}
}

func (t *Table) WithHeader(header []string) *Table {
	t.header = header
	return t
}

func (t *Table) WithColumnAlignment(align []Alignment) *Table {
	t.columnAlign = align
	return t
}

func (t *Table) WithHeaderAlignment(align []Alignment) *Table {
	t.headerAlign = align
	return t
}

func (t *Table) WithRows(rows [][]string) *Table {
	t.rows = append(t.rows, rows...)
	return t
}

// Append adds one row.
func (t *Table) Append(row []string) *Table {
	t.rows = append(t.rows, row)
	return t
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripAnsi(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func displayWidth(s string) int {
	return runewidth.StringWidth(stripAnsi(s))
}

func (t *Table) widths() []int {
	n := len(t.header)
	for _, row := range t.rows {
		if len(row) > n {
			n = len(row)
		}
	}
	widths := make([]int, n)
	measure := func(row []string) {
		for i, cell := range row {
			if w := displayWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.header)
	for _, row := range t.rows {
		measure(row)
	}
	return widths
}

func pad(s string, width int, align Alignment) string {
	gap := width - displayWidth(s)
	if gap <= 0 {
		return s
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", gap) + s
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}

func alignmentAt(aligns []Alignment, i int) Alignment {
	if i < len(aligns) {
		return aligns[i]
	}
	return AlignLeft
}

// Render writes the table. Errors from the writer are returned.
func (t *Table) Render() error {
	widths := t.widths()
	var b strings.Builder

	border := func() {
		b.WriteByte('+')
		for _, w := range widths {
			b.WriteString(strings.Repeat("-", w+2))
			b.WriteByte('+')
		}
		b.WriteByte('\n')
	}
	line := func(row []string, aligns []Alignment) {
		b.WriteByte('|')
		for i, w := range widths {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			b.WriteByte(' ')
			b.WriteString(pad(cell, w, alignmentAt(aligns, i)))
			b.WriteString(" |")
		}
		b.WriteByte('\n')
	}

	border()
	if len(t.header) > 0 {
		line(t.header, t.headerAlign)
		border()
	}
	for _, row := range t.rows {
		line(row, t.columnAlign)
	}
	border()

	_, err := io.WriteString(t.w, b.String())
	return err
}
