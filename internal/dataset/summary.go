package dataset

import (
	"math"
	"strconv"
	"strings"
)

// summarySampleRows is how many rows the prompt sample includes. Kept small
// to bound generator input size.
const summarySampleRows = 5

// Summary is the bounded textual digest of a dataset that gets embedded in
// the generator prompt.
type Summary struct {
	Columns string // comma-joined column names
	Stats   string // count/mean/std table over numeric columns
	Sample  string // leading rows rendered as text
}

// Summarize reduces a frame to a Summary. Non-numeric columns are excluded
// from the statistics table but stay in the column list.
func Summarize(f *Frame) (Summary, error) {
	if len(f.Columns) == 0 {
		return Summary{}, ErrNoColumns
	}
	return Summary{
		Columns: strings.Join(f.Columns, ", "),
		Stats:   statsTable(f),
		Sample:  f.HeadString(summarySampleRows),
	}, nil
}

// statsTable renders count, mean and standard deviation for each numeric
// column, labels down the left and columns right-aligned.
func statsTable(f *Frame) string {
	numeric := f.numericColumns()
	if len(numeric) == 0 {
		return "(no numeric columns)"
	}

	labels := []string{"count", "mean", "std"}
	cells := make([][]string, len(labels))
	for i := range cells {
		cells[i] = make([]string, len(numeric))
	}

	names := make([]string, len(numeric))
	for j, col := range numeric {
		names[j] = f.Columns[col]
		values := f.columnValues(col)
		mean := meanOf(values)
		cells[0][j] = strconv.Itoa(len(values))
		cells[1][j] = formatStat(mean)
		cells[2][j] = formatStat(stdOf(values, mean))
	}

	labelWidth := 0
	for _, l := range labels {
		if len(l) > labelWidth {
			labelWidth = len(l)
		}
	}
	widths := make([]int, len(numeric))
	for j, name := range names {
		widths[j] = len(name)
		for i := range labels {
			if len(cells[i][j]) > widths[j] {
				widths[j] = len(cells[i][j])
			}
		}
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", labelWidth))
	for j, name := range names {
		b.WriteString("  ")
		b.WriteString(strings.Repeat(" ", widths[j]-len(name)))
		b.WriteString(name)
	}
	for i, label := range labels {
		b.WriteByte('\n')
		b.WriteString(label)
		b.WriteString(strings.Repeat(" ", labelWidth-len(label)))
		for j := range names {
			b.WriteString("  ")
			b.WriteString(strings.Repeat(" ", widths[j]-len(cells[i][j])))
			b.WriteString(cells[i][j])
		}
	}
	return b.String()
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdOf computes the sample standard deviation (n-1 divisor).
func stdOf(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// formatStat trims float noise: statistics are prompt content, six decimal
// places is plenty.
func formatStat(v float64) string {
	rounded := math.Round(v*1e6) / 1e6
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
