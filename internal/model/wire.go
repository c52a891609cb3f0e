package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidStack reports a persisted stack whose fields do not describe any
// of the stack variants.
var ErrInvalidStack = errors.New("invalid stack")

// SegmentRecord is the flat form of a segment; start/end nullity encodes the phase.
type SegmentRecord struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"desc,omitempty" yaml:"desc,omitempty"`
	PB          *int64 `json:"pb,omitempty" yaml:"pb,omitempty"`
	Start       *int64 `json:"start" yaml:"start"`
	End         *int64 `json:"end" yaml:"end"`
}

// StackRecord is the flat, nullable-field form of a stack used for
// persistence and export.
type StackRecord struct {
	Queued    []SegmentRecord `json:"queued" yaml:"queued"`
	Running   *SegmentRecord  `json:"running" yaml:"running"`
	Completed []SegmentRecord `json:"completed" yaml:"completed"`
	PB        *int64          `json:"pb,omitempty" yaml:"pb,omitempty"`
	Attempts  int             `json:"attempts" yaml:"attempts"`
	Average   float64         `json:"average" yaml:"average"`
}

// MarshalStack encodes a stack as JSON.
func MarshalStack(s Stack) ([]byte, error) {
	return json.Marshal(ToRecord(s))
}

// UnmarshalStack decodes JSON produced by MarshalStack.
func UnmarshalStack(data []byte) (Stack, error) {
	var rec StackRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode stack: %w", err)
	}
	return FromRecord(rec)
}

// ToRecord flattens a stack.
func ToRecord(s Stack) StackRecord {
	h := HistoryOf(s)
	rec := StackRecord{
		Queued:    []SegmentRecord{},
		Completed: []SegmentRecord{},
		PB:        CloneBest(h.PersonalBest),
		Attempts:  h.Attempts,
		Average:   h.Average,
	}
	switch st := s.(type) {
	case QueuedStack:
		rec.Queued = queuedRecords(st.Queued)
	case RunningStack:
		rec.Queued = queuedRecords(st.Queued)
		running := toSegmentRecord(st.Running)
		rec.Running = &running
		rec.Completed = completedRecords(st.Completed)
	case CompletedStack:
		rec.Completed = completedRecords(st.Completed)
	}
	return rec
}

// FromRecord classifies a flat record into a stack variant, rejecting any
// combination that no variant allows.
func FromRecord(rec StackRecord) (Stack, error) {
	h := History{Attempts: rec.Attempts, Average: rec.Average, PersonalBest: CloneBest(rec.PB)}
	if h.Attempts < 0 {
		return nil, fmt.Errorf("%w: negative attempts %d", ErrInvalidStack, h.Attempts)
	}

	queued := make([]QueuedSegment, 0, len(rec.Queued))
	for i, r := range rec.Queued {
		seg, err := fromSegmentRecord(r)
		if err != nil {
			return nil, fmt.Errorf("queued[%d]: %w", i, err)
		}
		q, ok := seg.(QueuedSegment)
		if !ok {
			return nil, fmt.Errorf("%w: queued[%d] is %s", ErrInvalidStack, i, seg.Phase())
		}
		queued = append(queued, q)
	}
	completed := make([]CompletedSegment, 0, len(rec.Completed))
	for i, r := range rec.Completed {
		seg, err := fromSegmentRecord(r)
		if err != nil {
			return nil, fmt.Errorf("completed[%d]: %w", i, err)
		}
		c, ok := seg.(CompletedSegment)
		if !ok {
			return nil, fmt.Errorf("%w: completed[%d] is %s", ErrInvalidStack, i, seg.Phase())
		}
		completed = append(completed, c)
	}

	if rec.Running != nil {
		seg, err := fromSegmentRecord(*rec.Running)
		if err != nil {
			return nil, fmt.Errorf("running: %w", err)
		}
		running, ok := seg.(RunningSegment)
		if !ok {
			return nil, fmt.Errorf("%w: running segment is %s", ErrInvalidStack, seg.Phase())
		}
		return RunningStack{History: h, Queued: queued, Running: running, Completed: completed}, nil
	}

	switch {
	case len(queued) == 0 && len(completed) == 0:
		return EmptyStack{History: h}, nil
	case len(completed) == 0:
		return QueuedStack{History: h, Queued: queued}, nil
	case len(queued) == 0:
		return CompletedStack{History: h, Completed: completed}, nil
	default:
		return nil, fmt.Errorf("%w: queued and completed segments without a running one", ErrInvalidStack)
	}
}

func fromSegmentRecord(r SegmentRecord) (Segment, error) {
	info := SegmentInfo{ID: r.ID, Name: r.Name, Description: r.Description, PersonalBest: CloneBest(r.PB)}
	if info.ID == "" {
		return nil, fmt.Errorf("%w: segment %q has no id", ErrInvalidStack, r.Name)
	}
	switch {
	case r.Start == nil && r.End == nil:
		return QueuedSegment{SegmentInfo: info}, nil
	case r.Start == nil:
		return nil, fmt.Errorf("%w: segment %q has an end but no start", ErrInvalidStack, r.Name)
	case r.End == nil:
		return RunningSegment{SegmentInfo: info, Start: *r.Start}, nil
	case *r.End < *r.Start:
		return nil, fmt.Errorf("%w: segment %q ends before it starts", ErrInvalidStack, r.Name)
	default:
		return CompletedSegment{SegmentInfo: info, Start: *r.Start, End: *r.End}, nil
	}
}

func toSegmentRecord(s Segment) SegmentRecord {
	info := s.Info()
	rec := SegmentRecord{ID: info.ID, Name: info.Name, Description: info.Description, PB: CloneBest(info.PersonalBest)}
	switch seg := s.(type) {
	case RunningSegment:
		rec.Start = Best(seg.Start)
	case CompletedSegment:
		rec.Start = Best(seg.Start)
		rec.End = Best(seg.End)
	}
	return rec
}

func queuedRecords(segs []QueuedSegment) []SegmentRecord {
	out := make([]SegmentRecord, 0, len(segs))
	for _, s := range segs {
		out = append(out, toSegmentRecord(s))
	}
	return out
}

func completedRecords(segs []CompletedSegment) []SegmentRecord {
	out := make([]SegmentRecord, 0, len(segs))
	for _, s := range segs {
		out = append(out, toSegmentRecord(s))
	}
	return out
}
