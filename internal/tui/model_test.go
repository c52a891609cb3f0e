package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/splits/internal/clock"
	"github.com/verte-zerg/splits/internal/model"
	"github.com/verte-zerg/splits/internal/tracker"
)

type memStore struct {
	values map[string][]byte
}

func (m *memStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStore) Save(_ context.Context, key string, value []byte) error {
	m.values[key] = value
	return nil
}

func (m *memStore) SaveWithAttempt(ctx context.Context, key string, value []byte, _ model.Attempt) (int64, error) {
	return 1, m.Save(ctx, key, value)
}

type stepClock struct{ now int64 }

func (c *stepClock) Now() int64 { return c.now }

func newTestModel(t *testing.T) (*Model, *stepClock) {
	t.Helper()
	clk := &stepClock{now: 1000}
	seed := model.Seed{Segments: []model.SeedSegment{{Name: "Walk"}, {Name: "Train"}}}
	tr := tracker.New(&memStore{values: map[string][]byte{}}, clk, seed)
	sampler := clock.NewSampler(clk, time.Millisecond)
	m, err := NewModel(context.Background(), tr, sampler, nil)
	require.NoError(t, err)
	t.Cleanup(sampler.Stop)
	return m, clk
}

func press(m *Model, s string) {
	switch s {
	case " ":
		m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	case "enter":
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	default:
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	}
}

func TestSamplerFollowsRunningState(t *testing.T) {
	m, clk := newTestModel(t)
	assert.False(t, m.sampler.Running(), "sampler should be idle while queued")

	press(m, " ")
	require.True(t, model.IsRunningStack(m.stack))
	assert.True(t, m.sampler.Running())

	clk.now = 2000
	press(m, " ")
	clk.now = 3000
	press(m, " ")
	require.True(t, model.IsCompletedStack(m.stack), "state %s", m.stack.State())
	assert.False(t, m.sampler.Running(), "sampler should stop once the attempt completes")
}

func TestStaleTicksIgnored(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, " ")
	old := make(chan int64)
	m.Update(tickMsg{ch: old, now: 99999})
	assert.NotEqual(t, int64(99999), m.now)
	m.Update(tickMsg{ch: m.ticks, now: 4242})
	assert.Equal(t, int64(4242), m.now)
}

func TestSaveFaultShowsError(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "s")
	assert.Contains(t, m.errMsg, "invalid transition")
}

func TestAddAndRenameThroughInput(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "a")
	require.Equal(t, inputAdd, m.mode)
	m.input.SetValue("Bus")
	press(m, "enter")
	segs := model.Segments(m.stack)
	require.Len(t, segs, 3)
	assert.Equal(t, "Bus", segs[2].Info().Name)
	assert.Equal(t, 2, m.selected)

	press(m, "e")
	m.input.SetValue("Tram")
	press(m, "enter")
	assert.Equal(t, "Tram", model.Segments(m.stack)[2].Info().Name)

	press(m, "K")
	assert.Equal(t, "Tram", model.Segments(m.stack)[1].Info().Name)
	assert.Equal(t, 1, m.selected)
}

func TestViewListsSegments(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 70, Height: 20})
	out := m.View()
	for _, want := range []string{"Walk", "Train", "Segment", "PB --"} {
		assert.Contains(t, out, want)
	}
}

func TestExternalUpdateReplacesStack(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(stackMsg{stack: model.EmptyStack{}})
	require.True(t, model.IsEmptyStack(m.stack))
	assert.Contains(t, m.View(), "No segments")
}
