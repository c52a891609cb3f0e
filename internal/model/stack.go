package model

import "slices"

// State identifies which variant a Stack holds.
type State int

const (
	StateEmpty State = iota
	StateQueued
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateQueued:
		return "queued"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// History carries cross-attempt statistics. It survives every reset.
type History struct {
	Attempts int
	// Average is the mean total time of saved attempts in milliseconds.
	Average float64
	// PersonalBest is the fastest saved total in milliseconds.
	PersonalBest *int64
}

// Clone returns a copy that shares no storage with h.
func (h History) Clone() History {
	h.PersonalBest = CloneBest(h.PersonalBest)
	return h
}

// Stack is the state of one attempt cycle. It is implemented only by
// EmptyStack, QueuedStack, RunningStack and CompletedStack.
type Stack interface {
	State() State
	sealed()
}

// EmptyStack holds no segments at all.
type EmptyStack struct {
	History History
}

// QueuedStack has not started. Queued is never empty.
type QueuedStack struct {
	History History
	Queued  []QueuedSegment
}

// RunningStack has exactly one segment in progress.
type RunningStack struct {
	History   History
	Queued    []QueuedSegment
	Running   RunningSegment
	Completed []CompletedSegment
}

// CompletedStack has finished every segment. Completed is never empty.
type CompletedStack struct {
	History   History
	Completed []CompletedSegment
}

func (EmptyStack) State() State     { return StateEmpty }
func (QueuedStack) State() State    { return StateQueued }
func (RunningStack) State() State   { return StateRunning }
func (CompletedStack) State() State { return StateCompleted }

func (EmptyStack) sealed()     {}
func (QueuedStack) sealed()    {}
func (RunningStack) sealed()   {}
func (CompletedStack) sealed() {}

// IsEmptyStack reports whether the stack holds no segments.
func IsEmptyStack(s Stack) bool { return s.State() == StateEmpty }

// IsQueuedStack reports whether the stack is waiting to start.
func IsQueuedStack(s Stack) bool { return s.State() == StateQueued }

// IsRunningStack reports whether a segment is in progress.
func IsRunningStack(s Stack) bool { return s.State() == StateRunning }

// IsCompletedStack reports whether every segment has finished.
func IsCompletedStack(s Stack) bool { return s.State() == StateCompleted }

// NewStack builds a queued stack, or an empty stack when queued is empty.
func NewStack(history History, queued []QueuedSegment) Stack {
	if len(queued) == 0 {
		return EmptyStack{History: history.Clone()}
	}
	return QueuedStack{History: history.Clone(), Queued: slices.Clone(queued)}
}

// HistoryOf returns the cross-attempt statistics of any stack.
func HistoryOf(s Stack) History {
	switch st := s.(type) {
	case EmptyStack:
		return st.History
	case QueuedStack:
		return st.History
	case RunningStack:
		return st.History
	case CompletedStack:
		return st.History
	default:
		return History{}
	}
}

// Segments lists every segment in the stack: completed first, then the
// running one, then the queue.
func Segments(s Stack) []Segment {
	var out []Segment
	switch st := s.(type) {
	case QueuedStack:
		for _, seg := range st.Queued {
			out = append(out, seg)
		}
	case RunningStack:
		for _, seg := range st.Completed {
			out = append(out, seg)
		}
		out = append(out, st.Running)
		for _, seg := range st.Queued {
			out = append(out, seg)
		}
	case CompletedStack:
		for _, seg := range st.Completed {
			out = append(out, seg)
		}
	}
	return out
}

// FindSegment returns the segment with the given id.
func FindSegment(s Stack, id string) (Segment, bool) {
	for _, seg := range Segments(s) {
		if seg.Info().ID == id {
			return seg, true
		}
	}
	return nil, false
}
