package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/splits/internal/model"
)

func queuedStack(names ...string) model.QueuedStack {
	queued := make([]model.QueuedSegment, 0, len(names))
	for _, name := range names {
		queued = append(queued, model.NewQueuedSegment(name, "", nil))
	}
	return model.QueuedStack{Queued: queued}
}

func runTo(t *testing.T, stack model.Stack, times ...int64) model.Stack {
	t.Helper()
	for _, now := range times {
		stack = Advance(stack, now)
	}
	return stack
}

func TestAdvanceScenario(t *testing.T) {
	start := queuedStack("A", "B")

	s1 := Advance(start, 0)
	running, ok := s1.(model.RunningStack)
	require.True(t, ok, "expected running stack, got %s", s1.State())
	assert.Equal(t, "A", running.Running.Name)
	assert.Equal(t, int64(0), running.Running.Start)
	require.Len(t, running.Queued, 1)
	assert.Equal(t, "B", running.Queued[0].Name)
	assert.Empty(t, running.Completed)

	s2 := Advance(s1, 1000)
	running, ok = s2.(model.RunningStack)
	require.True(t, ok)
	require.Len(t, running.Completed, 1)
	assert.Equal(t, "A", running.Completed[0].Name)
	assert.Equal(t, int64(0), running.Completed[0].Start)
	assert.Equal(t, int64(1000), running.Completed[0].End)
	assert.Equal(t, "B", running.Running.Name)
	assert.Equal(t, int64(1000), running.Running.Start)
	assert.Empty(t, running.Queued)

	s3 := Advance(s2, 1500)
	completed, ok := s3.(model.CompletedStack)
	require.True(t, ok)
	require.Len(t, completed.Completed, 2)
	assert.Equal(t, model.CompletedSegment{SegmentInfo: start.Queued[0].SegmentInfo, Start: 0, End: 1000}, completed.Completed[0])
	assert.Equal(t, model.CompletedSegment{SegmentInfo: start.Queued[1].SegmentInfo, Start: 1000, End: 1500}, completed.Completed[1])
}

func TestAdvanceDoesNotModifyInput(t *testing.T) {
	start := queuedStack("A", "B", "C")
	before := model.ToRecord(start)

	s1 := Advance(start, 10)
	_ = Advance(s1, 20)

	assert.Equal(t, before, model.ToRecord(start))
	assert.Len(t, s1.(model.RunningStack).Queued, 2)
}

func TestAdvanceRoundTrip(t *testing.T) {
	const n = 4
	var stack model.Stack = queuedStack("A", "B", "C", "D")
	for i := 0; i <= n; i++ {
		stack = Advance(stack, int64(i*100))
	}
	completed, ok := stack.(model.CompletedStack)
	require.True(t, ok)
	assert.Len(t, completed.Completed, n)

	again := Advance(stack, 10_000)
	assert.Equal(t, stack, again)
}

func TestAdvanceEmptyIsNoop(t *testing.T) {
	empty := model.EmptyStack{History: model.History{Attempts: 3}}
	assert.Equal(t, model.Stack(empty), Advance(empty, 42))
}

func TestResetToQueueOrderAndIdempotence(t *testing.T) {
	stack := runTo(t, queuedStack("A", "B", "C", "D"), 0, 100, 250)
	running := stack.(model.RunningStack)
	require.Equal(t, "C", running.Running.Name)

	reset := ResetToQueue(stack)
	queued, ok := reset.(model.QueuedStack)
	require.True(t, ok)
	var names []string
	for _, seg := range queued.Queued {
		names = append(names, seg.Name)
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, names)

	assert.Equal(t, reset, ResetToQueue(reset))
}

func TestResetKeepsPersonalBestsAndHistory(t *testing.T) {
	start := queuedStack("A")
	start.Queued[0].PersonalBest = model.Best(5000)
	start.History = model.History{Attempts: 2, Average: 100, PersonalBest: model.Best(90)}

	stack := runTo(t, start, 0, 7000)
	reset := ResetToQueue(stack).(model.QueuedStack)

	require.NotNil(t, reset.Queued[0].PersonalBest)
	assert.Equal(t, int64(5000), *reset.Queued[0].PersonalBest)
	assert.Equal(t, 2, reset.History.Attempts)
	assert.Equal(t, 100.0, reset.History.Average)
}

func TestResetOfEmptyStaysEmpty(t *testing.T) {
	reset := ResetToQueue(model.EmptyStack{})
	assert.True(t, model.IsEmptyStack(reset))
}

func TestFullResetClearsSegmentBests(t *testing.T) {
	start := queuedStack("A", "B")
	start.Queued[0].PersonalBest = model.Best(1000)
	start.Queued[1].PersonalBest = model.Best(2000)
	start.History = model.History{Attempts: 4, Average: 3000, PersonalBest: model.Best(2900)}

	stack := runTo(t, start, 0, 500)
	reset := FullReset(stack).(model.QueuedStack)

	for _, seg := range model.Segments(reset) {
		assert.Nil(t, seg.Info().PersonalBest, seg.Info().Name)
	}
	assert.Equal(t, 4, reset.History.Attempts)
	require.NotNil(t, reset.History.PersonalBest)
	assert.Equal(t, int64(2900), *reset.History.PersonalBest)
	assert.NotNil(t, start.Queued[0].PersonalBest)
}

func TestSaveAndArchive(t *testing.T) {
	start := queuedStack("A", "B")
	start.Queued[0].PersonalBest = model.Best(5000)
	start.Queued[1].PersonalBest = model.Best(5000)
	start.History = model.History{Attempts: 2, Average: 10000, PersonalBest: model.Best(9000)}

	stack := runTo(t, start, 0, 6000, 10000)
	require.True(t, model.IsCompletedStack(stack))

	saved, err := SaveAndArchive(stack, 10000)
	require.NoError(t, err)
	queued, ok := saved.(model.QueuedStack)
	require.True(t, ok)

	require.Len(t, queued.Queued, 2)
	assert.Equal(t, int64(5000), *queued.Queued[0].PersonalBest)
	assert.Equal(t, int64(4000), *queued.Queued[1].PersonalBest)
	assert.Equal(t, 3, queued.History.Attempts)
	assert.Equal(t, 10000.0, queued.History.Average)
	assert.Equal(t, int64(9000), *queued.History.PersonalBest)
}

func TestSaveRejectsIncompleteStack(t *testing.T) {
	for _, stack := range []model.Stack{
		model.EmptyStack{},
		queuedStack("A"),
		Advance(queuedStack("A"), 0),
	} {
		_, err := SaveAndArchive(stack, 1)
		require.ErrorIs(t, err, ErrInvalidTransition, stack.State().String())
	}
}

func TestSavePersonalBestsKeepsCompletedStack(t *testing.T) {
	stack := runTo(t, queuedStack("A"), 100, 400)
	saved, err := SavePersonalBests(stack)
	require.NoError(t, err)
	assert.Len(t, saved.Completed, 1)
	assert.Equal(t, int64(300), *saved.Completed[0].PersonalBest)
	assert.Equal(t, 1, saved.History.Attempts)
	assert.Equal(t, 300.0, saved.History.Average)
}

func TestClear(t *testing.T) {
	stack := queuedStack("A")
	stack.History.Attempts = 7
	assert.Equal(t, model.Stack(model.EmptyStack{}), Clear(stack))
}
