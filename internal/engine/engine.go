// Package engine implements the stack state machine. Every function is pure:
// it never reads the clock and never modifies its input, returning a new
// stack instead.
package engine

import (
	"errors"
	"fmt"
	"slices"

	"github.com/verte-zerg/splits/internal/model"
	"github.com/verte-zerg/splits/internal/stats"
)

var (
	// ErrInvalidTransition is returned when an operation is not legal in the
	// stack's current state.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrSegmentNotFound is returned when an edit addresses an unknown id.
	ErrSegmentNotFound = errors.New("segment not found")
)

// Advance moves the stack one step forward at time now:
//
//	empty      unchanged
//	queued     head of the queue starts running
//	running    running segment completes; next queued one starts, or the
//	           stack completes when the queue is empty
//	completed  unchanged
func Advance(stack model.Stack, now int64) model.Stack {
	switch st := stack.(type) {
	case model.QueuedStack:
		return model.RunningStack{
			History:   st.History.Clone(),
			Queued:    slices.Clone(st.Queued[1:]),
			Running:   st.Queued[0].Begin(now),
			Completed: []model.CompletedSegment{},
		}
	case model.RunningStack:
		completed := append(slices.Clone(st.Completed), st.Running.Complete(now))
		if len(st.Queued) == 0 {
			return model.CompletedStack{History: st.History.Clone(), Completed: completed}
		}
		return model.RunningStack{
			History:   st.History.Clone(),
			Queued:    slices.Clone(st.Queued[1:]),
			Running:   st.Queued[0].Begin(now),
			Completed: completed,
		}
	default:
		// Empty and completed stacks have nothing to advance.
		return stack
	}
}

// ResetToQueue discards the current attempt and requeues every segment in
// completed, running, queued order. Personal bests and history are kept.
func ResetToQueue(stack model.Stack) model.Stack {
	return model.NewStack(model.HistoryOf(stack), requeueAll(stack))
}

// FullReset is ResetToQueue that also forgets every segment's personal best.
// The stack's own history is left alone.
func FullReset(stack model.Stack) model.Stack {
	queued := requeueAll(stack)
	for i := range queued {
		queued[i].PersonalBest = nil
	}
	return model.NewStack(model.HistoryOf(stack), queued)
}

// SavePersonalBests folds a completed attempt into the per-segment bests and
// the stack history without resetting it.
func SavePersonalBests(stack model.Stack) (model.CompletedStack, error) {
	st, ok := stack.(model.CompletedStack)
	if !ok {
		return model.CompletedStack{}, fmt.Errorf("%w: cannot save a %s stack", ErrInvalidTransition, stack.State())
	}
	total := stats.TotalCompletedTime(st)
	saved := stats.UpdatePersonalBests(st)
	saved.History = stats.FoldAttemptIntoHistory(st.History, total)
	return saved, nil
}

// SaveAndArchive records a completed attempt and requeues the stack for the
// next one. Saving does not depend on now.
func SaveAndArchive(stack model.Stack, now int64) (model.Stack, error) {
	saved, err := SavePersonalBests(stack)
	if err != nil {
		return nil, err
	}
	return ResetToQueue(saved), nil
}

// Clear drops every segment and all history.
func Clear(model.Stack) model.Stack {
	return model.EmptyStack{}
}

func requeueAll(stack model.Stack) []model.QueuedSegment {
	segs := model.Segments(stack)
	queued := make([]model.QueuedSegment, 0, len(segs))
	for _, seg := range segs {
		queued = append(queued, model.Requeue(seg))
	}
	return queued
}
