// Package model defines the segment and stack types shared by the engine,
// the statistics code and the presentation layers.
package model

import "github.com/google/uuid"

// Phase identifies which variant a Segment holds.
type Phase int

const (
	PhaseQueued Phase = iota
	PhaseRunning
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseQueued:
		return "queued"
	case PhaseRunning:
		return "running"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// SegmentInfo holds the fields every segment carries regardless of phase.
type SegmentInfo struct {
	ID          string
	Name        string
	Description string
	// PersonalBest is the fastest split ever saved for this leg, in
	// milliseconds. Nil until the first attempt is saved.
	PersonalBest *int64
}

// Segment is one timed leg of an attempt. It is implemented only by
// QueuedSegment, RunningSegment and CompletedSegment.
type Segment interface {
	Info() SegmentInfo
	Phase() Phase
	sealed()
}

// QueuedSegment has not been started.
type QueuedSegment struct {
	SegmentInfo
}

// RunningSegment has started at Start (ms since epoch) and not yet ended.
type RunningSegment struct {
	SegmentInfo
	Start int64
}

// CompletedSegment ran from Start to End. End is never before Start.
type CompletedSegment struct {
	SegmentInfo
	Start int64
	End   int64
}

func (s QueuedSegment) Info() SegmentInfo    { return s.SegmentInfo }
func (s RunningSegment) Info() SegmentInfo   { return s.SegmentInfo }
func (s CompletedSegment) Info() SegmentInfo { return s.SegmentInfo }

func (QueuedSegment) Phase() Phase    { return PhaseQueued }
func (RunningSegment) Phase() Phase   { return PhaseRunning }
func (CompletedSegment) Phase() Phase { return PhaseCompleted }

func (QueuedSegment) sealed()    {}
func (RunningSegment) sealed()   {}
func (CompletedSegment) sealed() {}

// IsQueued reports whether the segment has not started.
func IsQueued(s Segment) bool { return s.Phase() == PhaseQueued }

// IsRunning reports whether the segment is in progress.
func IsRunning(s Segment) bool { return s.Phase() == PhaseRunning }

// IsCompleted reports whether the segment has ended.
func IsCompleted(s Segment) bool { return s.Phase() == PhaseCompleted }

// NewQueuedSegment allocates a segment with a fresh id and no timestamps.
func NewQueuedSegment(name, description string, personalBest *int64) QueuedSegment {
	return QueuedSegment{SegmentInfo: SegmentInfo{
		ID:           uuid.New().String(),
		Name:         name,
		Description:  description,
		PersonalBest: CloneBest(personalBest),
	}}
}

// Begin starts the segment at now.
func (s QueuedSegment) Begin(now int64) RunningSegment {
	return RunningSegment{SegmentInfo: s.SegmentInfo, Start: now}
}

// Complete ends the segment at now. A now earlier than Start is treated as
// Start so the split is never negative.
func (s RunningSegment) Complete(now int64) CompletedSegment {
	if now < s.Start {
		now = s.Start
	}
	return CompletedSegment{SegmentInfo: s.SegmentInfo, Start: s.Start, End: now}
}

// Requeue strips the timestamps of any segment, keeping its personal best.
func Requeue(s Segment) QueuedSegment {
	return QueuedSegment{SegmentInfo: s.Info()}
}

// Best returns a pointer to a copy of ms.
func Best(ms int64) *int64 {
	return &ms
}

// CloneBest copies an optional personal best so callers never share storage.
func CloneBest(pb *int64) *int64 {
	if pb == nil {
		return nil
	}
	return Best(*pb)
}

// BestOrZero returns the personal best or zero when it is unknown.
func BestOrZero(pb *int64) int64 {
	if pb == nil {
		return 0
	}
	return *pb
}
