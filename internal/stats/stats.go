// Package stats contains split arithmetic, projections and history reporting.
package stats

import (
	"math"
	"strings"

	"github.com/verte-zerg/splits/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SegmentSplit is the elapsed time of a completed segment.
func SegmentSplit(seg model.CompletedSegment) int64 {
	return seg.End - seg.Start
}

// TotalCompletedTime sums the splits of every completed segment.
func TotalCompletedTime(stack model.CompletedStack) int64 {
	return sumSplits(stack.Completed)
}

// UpdatePersonalBests records each split as the segment's best when it beats
// the existing one. Bests never get worse.
func UpdatePersonalBests(stack model.CompletedStack) model.CompletedStack {
	completed := make([]model.CompletedSegment, len(stack.Completed))
	for i, seg := range stack.Completed {
		seg.PersonalBest = model.Best(BestKnownSplit(seg))
		completed[i] = seg
	}
	return model.CompletedStack{History: stack.History.Clone(), Completed: completed}
}

// FoldAttemptIntoHistory adds one attempt of totalTime to the running count,
// mean and best.
func FoldAttemptIntoHistory(h model.History, totalTime int64) model.History {
	n := float64(h.Attempts)
	return model.History{
		Attempts:     h.Attempts + 1,
		Average:      (h.Average*n + float64(totalTime)) / (n + 1),
		PersonalBest: model.Best(bestOf(h.PersonalBest, totalTime)),
	}
}

// TheoreticalBest sums every segment's personal best, counting unknown bests
// as zero.
func TheoreticalBest(stack model.Stack) int64 {
	var total int64
	for _, seg := range model.Segments(stack) {
		total += model.BestOrZero(seg.Info().PersonalBest)
	}
	return total
}

// ElapsedSoFar is the time spent in the attempt up to now.
func ElapsedSoFar(stack model.RunningStack, now int64) int64 {
	return sumSplits(stack.Completed) + (now - stack.Running.Start)
}

// RoundMs rounds a fractional millisecond figure, such as an average, to the
// nearest millisecond.
func RoundMs(ms float64) int64 {
	return int64(math.Round(ms))
}

// EstimatedTimeRemaining compares the elapsed time against the historical
// average. A negative result means the attempt is behind the average.
func EstimatedTimeRemaining(stack model.RunningStack, now int64) int64 {
	return RoundMs(stack.History.Average) - ElapsedSoFar(stack, now)
}

// EstimatedPace is the best-case time left if the running segment and every
// queued segment match their personal bests. ok is false when none of those
// segments has a personal best, in which case the value is not meaningful.
func EstimatedPace(stack model.RunningStack, now int64) (int64, bool) {
	ok := stack.Running.PersonalBest != nil
	var toGo int64
	for _, seg := range stack.Queued {
		if seg.PersonalBest != nil {
			ok = true
		}
		toGo += model.BestOrZero(seg.PersonalBest)
	}
	leftInRunning := model.BestOrZero(stack.Running.PersonalBest) - (now - stack.Running.Start)
	return toGo + leftInRunning, ok
}

// SplitDelta is the difference between the segment's split so far and its
// personal best. Negative means ahead of the best. ok is false for queued
// segments and segments without a best.
func SplitDelta(seg model.Segment, now int64) (int64, bool) {
	pb := seg.Info().PersonalBest
	if pb == nil {
		return 0, false
	}
	switch s := seg.(type) {
	case model.RunningSegment:
		return (now - s.Start) - *pb, true
	case model.CompletedSegment:
		return SegmentSplit(s) - *pb, true
	default:
		return 0, false
	}
}

// BestKnownSplit is the better of the segment's recorded best and its split.
func BestKnownSplit(seg model.CompletedSegment) int64 {
	return bestOf(seg.PersonalBest, SegmentSplit(seg))
}

// ProjectedFinish estimates the wall-clock time, in ms since epoch, at which
// the attempt ends. ok is false when there is nothing to project from.
func ProjectedFinish(stack model.Stack, now int64) (int64, bool) {
	switch st := stack.(type) {
	case model.CompletedStack:
		return st.Completed[len(st.Completed)-1].End, true
	case model.RunningStack:
		if st.History.Attempts == 0 {
			return 0, false
		}
		return now + EstimatedTimeRemaining(st, now), true
	case model.QueuedStack:
		if st.History.Attempts == 0 {
			return 0, false
		}
		return now + RoundMs(st.History.Average), true
	default:
		return 0, false
	}
}

// AttemptElapsed is the time since the first segment started, or zero before
// the attempt starts.
func AttemptElapsed(stack model.Stack, now int64) int64 {
	switch st := stack.(type) {
	case model.RunningStack:
		start := st.Running.Start
		if len(st.Completed) > 0 {
			start = st.Completed[0].Start
		}
		return max(now-start, 0)
	case model.CompletedStack:
		return TotalCompletedTime(st)
	default:
		return 0
	}
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		den := float64(i + 1)
		if i >= window {
			sum -= values[i-window]
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	last := len(sparkChars) - 1
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(last)))
		b.WriteByte(sparkChars[min(max(idx, 0), last)])
	}
	return b.String()
}

func sumSplits(segs []model.CompletedSegment) int64 {
	var total int64
	for _, seg := range segs {
		total += SegmentSplit(seg)
	}
	return total
}

func bestOf(existing *int64, candidate int64) int64 {
	if existing == nil {
		return candidate
	}
	return min(*existing, candidate)
}
