package dataset

import (
	"errors"
	"strconv"
	"strings"
)

// ErrNoColumns is returned when an operation needs at least one column
// but the loaded dataset has none.
var ErrNoColumns = errors.New("dataset has no columns")

// Frame is an in-memory table of named columns with string-rendered cells.
// It is transient: built once per request from uploaded bytes, consumed by
// the fingerprint and summary code, then discarded.
type Frame struct {
	Columns []string
	Rows    [][]string
}

func (f *Frame) NumRows() int {
	return len(f.Rows)
}

// Head returns up to n leading rows, fewer if the frame is smaller.
func (f *Frame) Head(n int) [][]string {
	if n > len(f.Rows) {
		n = len(f.Rows)
	}
	return f.Rows[:n]
}

// HeadString renders the first n rows as a column-aligned table without an
// index column. The rendering is the stable text form the fingerprint is
// computed over: identical cell content must always produce identical text
// regardless of which loader built the frame.
func (f *Frame) HeadString(n int) string {
	rows := f.Head(n)

	widths := make([]int, len(f.Columns))
	for i, col := range f.Columns {
		widths[i] = len(col)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	writeAligned := func(cells []string) {
		for i := range f.Columns {
			if i > 0 {
				b.WriteString("  ")
			}
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(strings.Repeat(" ", widths[i]-len(cell)))
			b.WriteString(cell)
		}
		b.WriteByte('\n')
	}

	writeAligned(f.Columns)
	for _, row := range rows {
		writeAligned(row)
	}
	return strings.TrimRight(b.String(), "\n")
}

// numericColumns returns the indices of columns whose every non-empty cell
// parses as a number. Columns with no values at all do not count as numeric.
func (f *Frame) numericColumns() []int {
	var numeric []int
	for i := range f.Columns {
		hasValue := false
		isNumeric := true
		for _, row := range f.Rows {
			if i >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			hasValue = true
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				isNumeric = false
				break
			}
		}
		if hasValue && isNumeric {
			numeric = append(numeric, i)
		}
	}
	return numeric
}

// columnValues collects the parsed numeric values of a column, skipping
// empty cells.
func (f *Frame) columnValues(col int) []float64 {
	var values []float64
	for _, row := range f.Rows {
		if col >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[col])
		if cell == "" {
			continue
		}
		if v, err := strconv.ParseFloat(cell, 64); err == nil {
			values = append(values, v)
		}
	}
	return values
}
