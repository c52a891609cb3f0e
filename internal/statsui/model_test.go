package statsui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/splits/internal/model"
)

type fakeSource struct {
	attempts []model.Attempt
	err      error
}

func (f fakeSource) ListAttempts(_ context.Context, _ int) ([]model.Attempt, error) {
	return f.attempts, f.err
}

func attempts() []model.Attempt {
	return []model.Attempt{
		{ID: 1, SavedAt: time.Unix(0, 0), TotalMs: 3000, Splits: []model.AttemptSplit{{Name: "Walk", SplitMs: 1000}, {Name: "Train", SplitMs: 2000}}},
		{ID: 2, SavedAt: time.Unix(3600, 0), TotalMs: 2500, Splits: []model.AttemptSplit{{Name: "Walk", SplitMs: 900}, {Name: "Train", SplitMs: 1600}}},
	}
}

func TestOverviewShowsCards(t *testing.T) {
	m := NewModel(fakeSource{attempts: attempts()}, model.HistoryConfig{Window: 2})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	out := m.View()
	for _, want := range []string{"Overview", "Attempts", "2.50", "3.00"} {
		assert.Contains(t, out, want)
	}
}

func TestSegmentRows(t *testing.T) {
	m := NewModel(fakeSource{attempts: attempts()}, model.HistoryConfig{})
	require.Len(t, m.report.Segments, 2)
	rows := segmentRows(m.report.Segments)
	assert.Equal(t, "Walk", rows[0][0])
	assert.Equal(t, "2", rows[0][1])
	assert.Equal(t, "0.90", rows[0][2])
}

func TestTabsWrap(t *testing.T) {
	m := NewModel(fakeSource{}, model.HistoryConfig{})
	m.moveTab(-1)
	assert.Equal(t, tabAttempts, m.activeTab)
	m.moveTab(1)
	assert.Equal(t, tabOverview, m.activeTab)
}

func TestFilterApplies(t *testing.T) {
	m := NewModel(fakeSource{attempts: attempts()}, model.HistoryConfig{Window: 3})
	m.startFilter()
	m.filterInputs[0].SetValue("1")
	m.filterInputs[1].SetValue("4")
	m.updateFilter(tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.filterMode)
	assert.Equal(t, 1, m.cfg.Last)
	assert.Equal(t, 4, m.cfg.Window)
	assert.Len(t, m.report.Attempts, 1)
}

func TestFilterRejectsGarbage(t *testing.T) {
	m := NewModel(fakeSource{}, model.HistoryConfig{})
	m.startFilter()
	m.filterInputs[0].SetValue("abc")
	m.updateFilter(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.filterMode)
	assert.NotEmpty(t, m.filterError)
}

func TestLoadErrorShown(t *testing.T) {
	m := NewModel(fakeSource{err: errors.New("db locked")}, model.HistoryConfig{})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	assert.Contains(t, m.View(), "db locked")
}

func TestWindowSteps(t *testing.T) {
	assert.Equal(t, 5, nextWindow(1))
	assert.Equal(t, 10, nextWindow(5))
	assert.Equal(t, 10, nextWindow(7))
	assert.Equal(t, 1, prevWindow(5))
	assert.Equal(t, 5, prevWindow(10))
	assert.Equal(t, 5, prevWindow(7))
}
