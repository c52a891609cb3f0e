package stats

import (
	"fmt"
	"io"
	"strconv"

	"github.com/verte-zerg/splits/internal/model"
	"github.com/verte-zerg/splits/internal/timefmt"
)

// RenderSummary prints the attempt count and total-time figures.
func RenderSummary(w io.Writer, report Report) error {
	if len(report.Attempts) == 0 {
		_, err := fmt.Fprintln(w, "No saved attempts yet.")
		return err
	}
	best, _ := report.Best()
	worst, _ := report.Worst()
	last := report.Attempts[len(report.Attempts)-1]
	rows := [][]string{
		{"Attempts", strconv.Itoa(len(report.Attempts))},
		{"Average", timefmt.Format(RoundMs(report.Mean()))},
		{"Best", timefmt.Format(best)},
		{"Worst", timefmt.Format(worst)},
		{"Last", timefmt.Format(last.TotalMs) + " (" + last.SavedAt.Local().Format("2006-01-02 15:04") + ")"},
	}
	if len(report.Totals) > 1 {
		rows = append(rows, []string{"Trend", Sparkline(report.Totals)})
	}
	lines := formatTable(nil, rows, nil)
	return writeLines(w, lines)
}

// RenderSegmentTable prints per-segment best and average splits with the
// time lost against the best.
func RenderSegmentTable(w io.Writer, report Report) error {
	if len(report.Segments) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(report.Segments))
	for _, s := range report.Segments {
		rows = append(rows, []string{
			s.Name,
			strconv.Itoa(s.Runs),
			timefmt.Format(s.Best),
			timefmt.Format(RoundMs(s.Average)),
			timefmt.FormatDelta(int64(s.Loss())),
		})
	}
	lines := formatTable([]string{"Segment", "Runs", "Best", "Average", "Loss"}, rows, map[int]bool{1: true, 2: true, 3: true, 4: true})
	return writeLines(w, lines)
}

// RenderSplitTable prints every segment of the stack with its split, best and
// delta as of now.
func RenderSplitTable(w io.Writer, stack model.Stack, now int64) error {
	segments := model.Segments(stack)
	if len(segments) == 0 {
		_, err := fmt.Fprintln(w, "No segments configured.")
		return err
	}
	rows := make([][]string, 0, len(segments))
	for _, seg := range segments {
		info := seg.Info()
		split := ""
		switch s := seg.(type) {
		case model.RunningSegment:
			split = timefmt.Format(now - s.Start)
		case model.CompletedSegment:
			split = timefmt.Format(SegmentSplit(s))
		}
		delta := ""
		if d, ok := SplitDelta(seg, now); ok {
			delta = timefmt.FormatDelta(d)
		}
		rows = append(rows, []string{marker(seg), info.Name, split, timefmt.Optional(info.PersonalBest), delta})
	}
	lines := formatTable([]string{"", "Segment", "Split", "Best", "Delta"}, rows, map[int]bool{2: true, 3: true, 4: true})
	return writeLines(w, lines)
}

func marker(seg model.Segment) string {
	switch seg.Phase() {
	case model.PhaseRunning:
		return ">"
	case model.PhaseCompleted:
		return "x"
	default:
		return "-"
	}
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
