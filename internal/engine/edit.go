package engine

import (
	"fmt"
	"slices"

	"github.com/verte-zerg/splits/internal/model"
)

// Edits always apply to the requeued stack, so editing mid-attempt discards
// the attempt first.

// RenameSegment changes the name of the segment with the given id.
func RenameSegment(stack model.Stack, id, name string) (model.Stack, error) {
	return updateSegment(stack, id, func(seg *model.QueuedSegment) {
		seg.Name = name
	})
}

// DescribeSegment changes the description of the segment with the given id.
func DescribeSegment(stack model.Stack, id, description string) (model.Stack, error) {
	return updateSegment(stack, id, func(seg *model.QueuedSegment) {
		seg.Description = description
	})
}

// MoveSegment moves the segment with the given id to position in the queue.
// Positions outside the queue are clamped to its ends.
func MoveSegment(stack model.Stack, id string, position int) (model.Stack, error) {
	queued := requeueAll(stack)
	idx, err := indexOf(queued, id)
	if err != nil {
		return nil, err
	}
	moved := queued[idx]
	queued = slices.Delete(queued, idx, idx+1)
	position = min(max(position, 0), len(queued))
	queued = slices.Insert(queued, position, moved)
	return model.NewStack(model.HistoryOf(stack), queued), nil
}

// AddSegment appends a queued segment to the end of the queue.
func AddSegment(stack model.Stack, seg model.QueuedSegment) model.Stack {
	queued := append(requeueAll(stack), seg)
	return model.NewStack(model.HistoryOf(stack), queued)
}

// DeleteSegment removes the segment with the given id.
func DeleteSegment(stack model.Stack, id string) (model.Stack, error) {
	queued := requeueAll(stack)
	idx, err := indexOf(queued, id)
	if err != nil {
		return nil, err
	}
	queued = slices.Delete(queued, idx, idx+1)
	return model.NewStack(model.HistoryOf(stack), queued), nil
}

func updateSegment(stack model.Stack, id string, update func(*model.QueuedSegment)) (model.Stack, error) {
	queued := requeueAll(stack)
	idx, err := indexOf(queued, id)
	if err != nil {
		return nil, err
	}
	update(&queued[idx])
	return model.NewStack(model.HistoryOf(stack), queued), nil
}

func indexOf(queued []model.QueuedSegment, id string) (int, error) {
	idx := slices.IndexFunc(queued, func(seg model.QueuedSegment) bool {
		return seg.ID == id
	})
	if idx < 0 {
		return -1, fmt.Errorf("%w: %s", ErrSegmentNotFound, id)
	}
	return idx, nil
}
