package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/splits/internal/model"
)

func completedSeg(name string, start, end int64, pb *int64) model.CompletedSegment {
	seg := model.NewQueuedSegment(name, "", pb)
	return seg.Begin(start).Complete(end)
}

func TestTotalCompletedTimeSumsSplits(t *testing.T) {
	a := completedSeg("A", 0, 1000, nil)
	b := completedSeg("B", 1000, 1500, nil)
	c := completedSeg("C", 1500, 4000, nil)

	forward := model.CompletedStack{Completed: []model.CompletedSegment{a, b, c}}
	reversed := model.CompletedStack{Completed: []model.CompletedSegment{c, b, a}}

	want := SegmentSplit(a) + SegmentSplit(b) + SegmentSplit(c)
	assert.Equal(t, int64(4000), want)
	assert.Equal(t, want, TotalCompletedTime(forward))
	assert.Equal(t, want, TotalCompletedTime(reversed))
}

func TestUpdatePersonalBests(t *testing.T) {
	stack := model.CompletedStack{Completed: []model.CompletedSegment{
		completedSeg("slower", 0, 6000, model.Best(5000)),
		completedSeg("faster", 6000, 10000, model.Best(5000)),
		completedSeg("first", 10000, 12000, nil),
	}}
	updated := UpdatePersonalBests(stack)

	require.Len(t, updated.Completed, 3)
	assert.Equal(t, int64(5000), *updated.Completed[0].PersonalBest)
	assert.Equal(t, int64(4000), *updated.Completed[1].PersonalBest)
	assert.Equal(t, int64(2000), *updated.Completed[2].PersonalBest)
	assert.Nil(t, stack.Completed[2].PersonalBest)
}

func TestFoldAttemptIntoHistory(t *testing.T) {
	h := FoldAttemptIntoHistory(model.History{Attempts: 2, Average: 100}, 400)
	assert.Equal(t, 3, h.Attempts)
	assert.Equal(t, 200.0, h.Average)
	require.NotNil(t, h.PersonalBest)
	assert.Equal(t, int64(400), *h.PersonalBest)

	h = FoldAttemptIntoHistory(h, 500)
	assert.Equal(t, int64(400), *h.PersonalBest)
	assert.Equal(t, 275.0, h.Average)

	h = FoldAttemptIntoHistory(h, 300)
	assert.Equal(t, int64(300), *h.PersonalBest)
}

func TestFoldMatchesBatchMean(t *testing.T) {
	totals := []int64{1200, 900, 1500, 1100, 1000}
	var h model.History
	var sum int64
	for _, total := range totals {
		h = FoldAttemptIntoHistory(h, total)
		sum += total
	}
	assert.InDelta(t, float64(sum)/float64(len(totals)), h.Average, 1e-9)
	assert.Equal(t, len(totals), h.Attempts)
}

func TestTheoreticalBestCoversEveryState(t *testing.T) {
	a := model.NewQueuedSegment("A", "", model.Best(100))
	b := model.NewQueuedSegment("B", "", nil)
	c := model.NewQueuedSegment("C", "", model.Best(300))

	stacks := []model.Stack{
		model.QueuedStack{Queued: []model.QueuedSegment{a, b, c}},
		model.RunningStack{
			Queued:    []model.QueuedSegment{c},
			Running:   b.Begin(50),
			Completed: []model.CompletedSegment{a.Begin(0).Complete(50)},
		},
		model.CompletedStack{Completed: []model.CompletedSegment{
			a.Begin(0).Complete(1), b.Begin(1).Complete(2), c.Begin(2).Complete(3),
		}},
	}
	for _, stack := range stacks {
		assert.Equal(t, int64(400), TheoreticalBest(stack), stack.State().String())
	}
	assert.Equal(t, int64(0), TheoreticalBest(model.EmptyStack{}))
}

func runningStack(average float64) model.RunningStack {
	a := model.NewQueuedSegment("A", "", model.Best(4000))
	b := model.NewQueuedSegment("B", "", model.Best(3000))
	c := model.NewQueuedSegment("C", "", model.Best(2000))
	return model.RunningStack{
		History:   model.History{Attempts: 1, Average: average},
		Queued:    []model.QueuedSegment{c},
		Running:   b.Begin(5000),
		Completed: []model.CompletedSegment{a.Begin(0).Complete(5000)},
	}
}

func TestElapsedSoFarSumsEveryCompletedSplit(t *testing.T) {
	stack := runningStack(0)
	stack.Completed = append([]model.CompletedSegment{completedSeg("Z", -2000, 0, nil)}, stack.Completed...)
	assert.Equal(t, int64(2000+5000+1500), ElapsedSoFar(stack, 6500))
}

func TestEstimatedTimeRemainingCanBeNegative(t *testing.T) {
	stack := runningStack(10000)
	assert.Equal(t, int64(12000), ElapsedSoFar(stack, 12000))
	assert.Equal(t, int64(-2000), EstimatedTimeRemaining(stack, 12000))
	assert.Equal(t, int64(3000), EstimatedTimeRemaining(stack, 7000))
}

func TestEstimatedPace(t *testing.T) {
	stack := runningStack(0)
	pace, ok := EstimatedPace(stack, 6000)
	assert.True(t, ok)
	assert.Equal(t, int64(2000+3000-1000), pace)

	noData := model.RunningStack{
		Queued:  []model.QueuedSegment{model.NewQueuedSegment("B", "", nil)},
		Running: model.NewQueuedSegment("A", "", nil).Begin(0),
	}
	pace, ok = EstimatedPace(noData, 500)
	assert.False(t, ok)
	assert.Equal(t, int64(-500), pace)
}

func TestSplitDelta(t *testing.T) {
	stack := runningStack(0)
	delta, ok := SplitDelta(stack.Running, 9000)
	assert.True(t, ok)
	assert.Equal(t, int64(1000), delta)

	delta, ok = SplitDelta(stack.Completed[0], 0)
	assert.True(t, ok)
	assert.Equal(t, int64(1000), delta)

	_, ok = SplitDelta(stack.Queued[0], 0)
	assert.False(t, ok)
	_, ok = SplitDelta(model.NewQueuedSegment("x", "", nil).Begin(0), 10)
	assert.False(t, ok)
}

func TestBestKnownSplit(t *testing.T) {
	assert.Equal(t, int64(4000), BestKnownSplit(completedSeg("A", 0, 5000, model.Best(4000))))
	assert.Equal(t, int64(3000), BestKnownSplit(completedSeg("A", 0, 3000, model.Best(4000))))
	assert.Equal(t, int64(3000), BestKnownSplit(completedSeg("A", 0, 3000, nil)))
}

func TestProjectedFinish(t *testing.T) {
	running := runningStack(10000)
	finish, ok := ProjectedFinish(running, 7000)
	assert.True(t, ok)
	assert.Equal(t, int64(10000), finish)

	queued := model.QueuedStack{
		History: model.History{Attempts: 2, Average: 1500},
		Queued:  []model.QueuedSegment{model.NewQueuedSegment("A", "", nil)},
	}
	finish, ok = ProjectedFinish(queued, 100)
	assert.True(t, ok)
	assert.Equal(t, int64(1600), finish)

	completed := model.CompletedStack{Completed: []model.CompletedSegment{completedSeg("A", 0, 900, nil)}}
	finish, ok = ProjectedFinish(completed, 5000)
	assert.True(t, ok)
	assert.Equal(t, int64(900), finish)

	queued.History.Attempts = 0
	_, ok = ProjectedFinish(queued, 100)
	assert.False(t, ok)
	_, ok = ProjectedFinish(model.EmptyStack{}, 100)
	assert.False(t, ok)
}

func TestAttemptElapsed(t *testing.T) {
	assert.Equal(t, int64(7000), AttemptElapsed(runningStack(0), 7000))
	assert.Equal(t, int64(0), AttemptElapsed(model.EmptyStack{}, 7000))
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	assert.Equal(t, []float64{2, 3, 5, 7}, got)
	assert.Equal(t, []float64{1, 2}, MovingAverage([]float64{1, 2}, 1))
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "", Sparkline(nil))
	assert.Equal(t, "+++", Sparkline([]float64{5, 5, 5}))
	line := Sparkline([]float64{0, 10})
	assert.Equal(t, " @", line)
}

func TestRoundMsRoundsToNearest(t *testing.T) {
	assert.Equal(t, int64(4010), RoundMs(4009.6))
	assert.Equal(t, int64(4009), RoundMs(4009.4))

	running := model.RunningStack{
		History: model.History{Attempts: 2, Average: 4009.6},
		Running: model.NewQueuedSegment("A", "", nil).Begin(0),
	}
	assert.Equal(t, int64(4010), EstimatedTimeRemaining(running, 0))
}
