package table

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

const gap = "  "

// Table lays out a header and rows in columns padded to the widest cell.
// Cell widths are measured ANSI-aware, so pre-styled cells line up.
type Table struct {
	Header []string
	Rows   [][]string
	Align  []Alignment
}

// Lines renders the header, a rule and the rows. A table without a header
// renders only its rows.
func (t Table) Lines() []string {
	widths := t.widths()
	if len(widths) == 0 {
		return nil
	}
	out := make([]string, 0, len(t.Rows)+2)
	if len(t.Header) > 0 {
		out = append(out, t.formatRow(t.Header, widths))
		rule := make([]string, len(widths))
		for i, w := range widths {
			rule[i] = strings.Repeat("─", w)
		}
		out = append(out, strings.Join(rule, gap))
	}
	for _, row := range t.Rows {
		out = append(out, t.formatRow(row, widths))
	}
	return out
}

// Format returns the rows padded according to the widest entry in each column.
func Format(rows [][]string, alignments []Alignment) []string {
	return Table{Rows: rows, Align: alignments}.Lines()
}

func (t Table) widths() []int {
	cols := len(t.Header)
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return nil
	}
	widths := make([]int, cols)
	measure := func(row []string) {
		for c, cell := range row {
			if w := lipgloss.Width(cell); w > widths[c] {
				widths[c] = w
			}
		}
	}
	measure(t.Header)
	for _, row := range t.Rows {
		measure(row)
	}
	return widths
}

func (t Table) formatRow(row []string, widths []int) string {
	var b strings.Builder
	for c, width := range widths {
		if c > 0 {
			b.WriteString(gap)
		}
		cell := ""
		if c < len(row) {
			cell = row[c]
		}
		pad := width - lipgloss.Width(cell)
		if pad < 0 {
			pad = 0
		}
		if c < len(t.Align) && t.Align[c] == AlignRight {
			b.WriteString(strings.Repeat(" ", pad))
			b.WriteString(cell)
		} else {
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", pad))
		}
	}
	return strings.TrimRight(b.String(), " ")
}
