package stats

import (
	"sort"

	"github.com/verte-zerg/splits/internal/model"
)

// SegmentSummary aggregates one segment's splits across attempts.
type SegmentSummary struct {
	Name    string
	Runs    int
	Best    int64
	Average float64
}

// Loss is how far the average split sits above the best one.
func (s SegmentSummary) Loss() float64 {
	return s.Average - float64(s.Best)
}

// SummarizeSegments groups attempt splits by segment name in first-seen order.
func SummarizeSegments(attempts []model.Attempt) []SegmentSummary {
	index := map[string]int{}
	var out []SegmentSummary
	for _, a := range attempts {
		for _, split := range a.Splits {
			i, ok := index[split.Name]
			if !ok {
				i = len(out)
				index[split.Name] = i
				out = append(out, SegmentSummary{Name: split.Name, Best: split.SplitMs})
			}
			s := &out[i]
			n := float64(s.Runs)
			s.Average = (s.Average*n + float64(split.SplitMs)) / (n + 1)
			s.Runs++
			s.Best = min(s.Best, split.SplitMs)
		}
	}
	return out
}

// WeakestSegments returns the names of the top segments losing the most time
// against their best split.
func WeakestSegments(summaries []SegmentSummary, top int) []string {
	if len(summaries) == 0 {
		return nil
	}
	candidates := make([]SegmentSummary, len(summaries))
	copy(candidates, summaries)
	sort.Slice(candidates, func(i, j int) bool {
		li, lj := candidates[i].Loss(), candidates[j].Loss()
		if li == lj {
			return candidates[i].Name < candidates[j].Name
		}
		return li > lj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	out := make([]string, 0, top)
	for i := 0; i < top; i++ {
		out = append(out, candidates[i].Name)
	}
	return out
}
