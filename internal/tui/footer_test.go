package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verte-zerg/splits/internal/model"
)

func TestRenderFooterFormats(t *testing.T) {
	a := model.NewQueuedSegment("Walk", "", model.Best(1000))
	b := model.NewQueuedSegment("Train", "", model.Best(2000))
	m := &Model{
		stack: model.RunningStack{
			History:   model.History{Attempts: 3, Average: 4000, PersonalBest: model.Best(3500)},
			Queued:    []model.QueuedSegment{b},
			Running:   a.Begin(0),
			Completed: nil,
		},
		now: 500,
	}
	out := m.renderFooter()
	for _, want := range []string{"PB 3.50", "Attempts 3", "AVG 4.00", "ETA ", "Left 3.50", "Pace 2.50", "SoB 3.00"} {
		assert.Contains(t, out, want)
	}
}

func TestRenderFooterRoundsAverage(t *testing.T) {
	m := &Model{stack: model.QueuedStack{
		History: model.History{Attempts: 2, Average: 4009.6},
		Queued:  []model.QueuedSegment{model.NewQueuedSegment("Walk", "", nil)},
	}}
	assert.Contains(t, m.renderFooter(), "AVG 4.01")
}

func TestRenderFooterWithoutHistory(t *testing.T) {
	m := &Model{stack: model.QueuedStack{Queued: []model.QueuedSegment{model.NewQueuedSegment("Walk", "", nil)}}}
	out := m.renderFooter()
	for _, want := range []string{"PB --", "Attempts 0", "SoB 0.00"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "AVG")
	assert.NotContains(t, out, "ETA")
}
