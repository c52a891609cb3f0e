package stats

import (
	"context"

	"github.com/verte-zerg/splits/internal/model"
)

// AttemptSource lists archived attempts, oldest first.
type AttemptSource interface {
	ListAttempts(ctx context.Context, last int) ([]model.Attempt, error)
}

// Report contains precomputed data for history rendering.
type Report struct {
	Attempts []model.Attempt
	Totals   []float64
	Trend    []float64
	Segments []SegmentSummary
}

// BuildReport loads and prepares data for history rendering.
func BuildReport(ctx context.Context, src AttemptSource, cfg model.HistoryConfig) (Report, error) {
	attempts, err := src.ListAttempts(ctx, cfg.Last)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(attempts) > cfg.Last {
		attempts = attempts[len(attempts)-cfg.Last:]
	}

	totals := attemptTotals(attempts)
	return Report{
		Attempts: attempts,
		Totals:   totals,
		Trend:    MovingAverage(totals, cfg.Window),
		Segments: SummarizeSegments(attempts),
	}, nil
}

func attemptTotals(attempts []model.Attempt) []float64 {
	totals := make([]float64, len(attempts))
	for i, a := range attempts {
		totals[i] = float64(a.TotalMs)
	}
	return totals
}

// Best is the fastest attempt total, or false when there are no attempts.
func (r Report) Best() (int64, bool) {
	if len(r.Attempts) == 0 {
		return 0, false
	}
	best := r.Attempts[0].TotalMs
	for _, a := range r.Attempts[1:] {
		best = min(best, a.TotalMs)
	}
	return best, true
}

// Worst is the slowest attempt total, or false when there are no attempts.
func (r Report) Worst() (int64, bool) {
	if len(r.Attempts) == 0 {
		return 0, false
	}
	worst := r.Attempts[0].TotalMs
	for _, a := range r.Attempts[1:] {
		worst = max(worst, a.TotalMs)
	}
	return worst, true
}

// Mean is the average attempt total over the report.
func (r Report) Mean() float64 {
	if len(r.Totals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range r.Totals {
		sum += v
	}
	return sum / float64(len(r.Totals))
}
