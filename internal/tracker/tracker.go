// Package tracker loads the persisted stack, applies one engine operation and
// publishes the result back to the store.
package tracker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/verte-zerg/splits/internal/clock"
	"github.com/verte-zerg/splits/internal/engine"
	"github.com/verte-zerg/splits/internal/model"
	"github.com/verte-zerg/splits/internal/stats"
)

// Store keys.
const (
	KeyStack = "stack"
	KeyTimer = "timer"
)

// Store is the persistence the tracker needs.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
	SaveWithAttempt(ctx context.Context, key string, value []byte, attempt model.Attempt) (int64, error)
}

// Tracker runs stack operations against a store.
type Tracker struct {
	store Store
	clock clock.Clock
	seed  model.Seed
}

// New builds a tracker. seed is used when the store holds no stack yet.
func New(store Store, c clock.Clock, seed model.Seed) *Tracker {
	if c == nil {
		c = clock.System{}
	}
	return &Tracker{store: store, clock: c, seed: seed}
}

// Now reads the tracker's clock.
func (t *Tracker) Now() int64 { return t.clock.Now() }

// Stack loads the persisted stack, seeding and persisting one on first use.
func (t *Tracker) Stack(ctx context.Context) (model.Stack, error) {
	data, ok, err := t.store.Load(ctx, KeyStack)
	if err != nil {
		return nil, err
	}
	if !ok {
		stack := t.seed.Stack()
		if err := t.put(ctx, stack); err != nil {
			return nil, err
		}
		return stack, nil
	}
	stack, err := model.UnmarshalStack(data)
	if err != nil {
		return nil, fmt.Errorf("stored stack: %w", err)
	}
	return stack, nil
}

// LastAdvance returns the time of the most recent advance.
func (t *Tracker) LastAdvance(ctx context.Context) (int64, bool, error) {
	data, ok, err := t.store.Load(ctx, KeyTimer)
	if err != nil || !ok {
		return 0, false, err
	}
	now, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("stored timer: %w", err)
	}
	return now, true, nil
}

// Advance steps the stack forward at the current time. Empty and completed
// stacks do not advance, so nothing is written for them.
func (t *Tracker) Advance(ctx context.Context) (model.Stack, error) {
	stack, err := t.Stack(ctx)
	if err != nil {
		return nil, err
	}
	if model.IsEmptyStack(stack) || model.IsCompletedStack(stack) {
		return stack, nil
	}
	now := t.clock.Now()
	next := engine.Advance(stack, now)
	if err := t.put(ctx, next); err != nil {
		return nil, err
	}
	if err := t.store.Save(ctx, KeyTimer, []byte(strconv.FormatInt(now, 10))); err != nil {
		return nil, err
	}
	return next, nil
}

// Reset returns every segment to the queue, keeping personal bests.
func (t *Tracker) Reset(ctx context.Context) (model.Stack, error) {
	return t.mutate(ctx, func(stack model.Stack) (model.Stack, error) {
		return engine.ResetToQueue(stack), nil
	})
}

// FullReset returns every segment to the queue and forgets segment bests.
func (t *Tracker) FullReset(ctx context.Context) (model.Stack, error) {
	return t.mutate(ctx, func(stack model.Stack) (model.Stack, error) {
		return engine.FullReset(stack), nil
	})
}

// Discard drops a completed attempt without recording it.
func (t *Tracker) Discard(ctx context.Context) (model.Stack, error) {
	return t.mutate(ctx, func(stack model.Stack) (model.Stack, error) {
		if !model.IsCompletedStack(stack) {
			return nil, fmt.Errorf("discard requires a completed stack, have %s: %w", stack.State(), engine.ErrInvalidTransition)
		}
		return engine.ResetToQueue(stack), nil
	})
}

// Save records a completed attempt: segment bests and history are updated,
// the attempt is archived and the stack returns to the queue. The archive row
// and the requeued stack are written together.
func (t *Tracker) Save(ctx context.Context) (model.Stack, model.Attempt, error) {
	stack, err := t.Stack(ctx)
	if err != nil {
		return nil, model.Attempt{}, err
	}
	now := t.clock.Now()
	next, err := engine.SaveAndArchive(stack, now)
	if err != nil {
		return nil, model.Attempt{}, err
	}
	data, err := model.MarshalStack(next)
	if err != nil {
		return nil, model.Attempt{}, err
	}
	attempt := attemptOf(stack.(model.CompletedStack), now)
	if attempt.ID, err = t.store.SaveWithAttempt(ctx, KeyStack, data, attempt); err != nil {
		return nil, model.Attempt{}, fmt.Errorf("archive attempt: %w", err)
	}
	return next, attempt, nil
}

func attemptOf(stack model.CompletedStack, now int64) model.Attempt {
	splits := make([]model.AttemptSplit, 0, len(stack.Completed))
	for _, seg := range stack.Completed {
		splits = append(splits, model.AttemptSplit{
			SegmentID: seg.ID,
			Name:      seg.Name,
			SplitMs:   stats.SegmentSplit(seg),
		})
	}
	return model.Attempt{
		StartedAt: time.UnixMilli(stack.Completed[0].Start),
		SavedAt:   time.UnixMilli(now),
		TotalMs:   stats.TotalCompletedTime(stack),
		Splits:    splits,
	}
}

// Rename changes a segment's name.
func (t *Tracker) Rename(ctx context.Context, id, name string) (model.Stack, error) {
	return t.mutate(ctx, func(stack model.Stack) (model.Stack, error) {
		return engine.RenameSegment(stack, id, name)
	})
}

// Describe changes a segment's description.
func (t *Tracker) Describe(ctx context.Context, id, description string) (model.Stack, error) {
	return t.mutate(ctx, func(stack model.Stack) (model.Stack, error) {
		return engine.DescribeSegment(stack, id, description)
	})
}

// Move places a segment at position in the queue.
func (t *Tracker) Move(ctx context.Context, id string, position int) (model.Stack, error) {
	return t.mutate(ctx, func(stack model.Stack) (model.Stack, error) {
		return engine.MoveSegment(stack, id, position)
	})
}

// Add appends a new segment to the queue.
func (t *Tracker) Add(ctx context.Context, name, description string, best *int64) (model.Stack, error) {
	return t.mutate(ctx, func(stack model.Stack) (model.Stack, error) {
		return engine.AddSegment(stack, model.NewQueuedSegment(name, description, best)), nil
	})
}

// Delete removes a segment.
func (t *Tracker) Delete(ctx context.Context, id string) (model.Stack, error) {
	return t.mutate(ctx, func(stack model.Stack) (model.Stack, error) {
		return engine.DeleteSegment(stack, id)
	})
}

// Clear removes every segment and all history.
func (t *Tracker) Clear(ctx context.Context) (model.Stack, error) {
	return t.mutate(ctx, func(stack model.Stack) (model.Stack, error) {
		return engine.Clear(stack), nil
	})
}

// Reseed replaces the stack with a fresh one built from the seed.
func (t *Tracker) Reseed(ctx context.Context) (model.Stack, error) {
	stack := t.seed.Stack()
	if err := t.put(ctx, stack); err != nil {
		return nil, err
	}
	return stack, nil
}

func (t *Tracker) mutate(ctx context.Context, op func(model.Stack) (model.Stack, error)) (model.Stack, error) {
	stack, err := t.Stack(ctx)
	if err != nil {
		return nil, err
	}
	next, err := op(stack)
	if err != nil {
		return nil, err
	}
	if err := t.put(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (t *Tracker) put(ctx context.Context, stack model.Stack) error {
	data, err := model.MarshalStack(stack)
	if err != nil {
		return err
	}
	return t.store.Save(ctx, KeyStack, data)
}
