package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/verte-zerg/splits/internal/timefmt"
)

const (
	defaultPlotHeight   = 8
	minPlotWidth        = 10
	axisSeparator       = " | "
	barChar             = "#"
	trendChar           = "*"
	colorBar            = "\x1b[36m"
	colorTrend          = "\x1b[33m"
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

// PlotTotals renders attempt totals as a column chart with the moving
// average drawn over it. Faster attempts make shorter columns.
func PlotTotals(w io.Writer, title string, totals, trend []float64, width, height int, color bool) error {
	if len(totals) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}

	lo, hi := totals[0], totals[0]
	for _, v := range append(append([]float64(nil), totals...), trend...) {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		lo--
		hi++
	}
	top := timefmt.Format(int64(hi))
	bottom := timefmt.Format(int64(lo))
	labelWidth := max(runewidth.StringWidth(top), runewidth.StringWidth(bottom))

	if width <= 0 {
		width = TerminalWidth()
	}
	plotWidth := max(width-labelWidth-runewidth.StringWidth(axisSeparator), minPlotWidth)
	bars := resampleSeries(totals, plotWidth)
	marks := resampleSeries(trend, plotWidth)

	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	for row := height - 1; row >= 0; row-- {
		label := ""
		switch row {
		case height - 1:
			label = top
		case 0:
			label = bottom
		}
		var b strings.Builder
		b.WriteString(strings.Repeat(" ", labelWidth-runewidth.StringWidth(label)))
		b.WriteString(label)
		b.WriteString(axisSeparator)
		for x, v := range bars {
			switch {
			case x < len(marks) && levelOf(marks[x], lo, hi, height) == row:
				b.WriteString(paint(trendChar, colorTrend, color))
			case levelOf(v, lo, hi, height) >= row:
				b.WriteString(paint(barChar, colorBar, color))
			default:
				b.WriteByte(' ')
			}
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " ")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s  %s attempt  %s moving average\n", strings.Repeat(" ", labelWidth), barChar, trendChar)
	return err
}

func levelOf(v, lo, hi float64, height int) int {
	return int(math.Round((v - lo) / (hi - lo) * float64(height-1)))
}

func paint(s, code string, color bool) string {
	if !color {
		return s
	}
	return code + s + colorReset
}

// TerminalWidth reports the width of stdout, or a fallback when stdout is not
// a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// ShouldUseColor reports whether ANSI color suits the writer.
func ShouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func resampleSeries(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	out := make([]float64, width)
	if len(values) >= width {
		for i := range out {
			start := i * len(values) / width
			end := max((i+1)*len(values)/width, start+1)
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
		return out
	}
	// Fewer values than columns: each value gets a run of equal columns.
	for i := range out {
		out[i] = values[i*len(values)/width]
	}
	return out
}
