// Package tui provides the Bubble Tea split timer interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/splits/internal/clock"
	"github.com/verte-zerg/splits/internal/model"
	"github.com/verte-zerg/splits/internal/stats"
	"github.com/verte-zerg/splits/internal/timefmt"
	"github.com/verte-zerg/splits/internal/tracker"
)

const (
	markerWidth = 2
	timeWidth   = 11
	minName     = 8
)

type inputMode int

const (
	inputNone inputMode = iota
	inputAdd
	inputRename
	inputDescribe
)

type tickMsg struct {
	ch  <-chan int64
	now int64
}

type stackMsg struct {
	stack model.Stack
}

type watchErrMsg struct {
	err error
}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	timerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	completeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	aheadStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	behindStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Model implements the Bubble Tea split timer UI.
type Model struct {
	ctx     context.Context
	tracker *tracker.Tracker
	sampler *clock.Sampler
	updates <-chan []byte
	ticks   <-chan int64

	stack    model.Stack
	now      int64
	selected int

	keys  keyMap
	help  help.Model
	input textinput.Model
	mode  inputMode

	errMsg string
	width  int
	height int
}

// NewModel constructs a timer model. updates carries stack writes made by
// other processes and may be nil.
func NewModel(ctx context.Context, tr *tracker.Tracker, sampler *clock.Sampler, updates <-chan []byte) (*Model, error) {
	stack, err := tr.Stack(ctx)
	if err != nil {
		return nil, err
	}
	input := textinput.New()
	input.CharLimit = 120
	m := &Model{
		ctx:     ctx,
		tracker: tr,
		sampler: sampler,
		updates: updates,
		stack:   stack,
		now:     tr.Now(),
		keys:    defaultKeyMap(),
		help:    help.New(),
		input:   input,
	}
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.syncSampler(), m.waitUpdate())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-lipgloss.Width(m.input.Prompt)-2, 10)
		return m, nil
	case tickMsg:
		if msg.ch != m.ticks {
			return m, nil
		}
		m.now = msg.now
		return m, waitTick(msg.ch)
	case stackMsg:
		m.setStack(msg.stack)
		return m, tea.Batch(m.syncSampler(), m.waitUpdate())
	case watchErrMsg:
		m.errMsg = msg.err.Error()
		return m, m.waitUpdate()
	case tea.KeyMsg:
		if m.mode != inputNone {
			return m.updateInput(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.sampler.Stop()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Next):
		return m, m.apply(m.tracker.Advance(m.ctx))
	case key.Matches(msg, m.keys.Reset):
		return m, m.apply(m.tracker.Reset(m.ctx))
	case key.Matches(msg, m.keys.HardReset):
		return m, m.apply(m.tracker.FullReset(m.ctx))
	case key.Matches(msg, m.keys.Save):
		stack, _, err := m.tracker.Save(m.ctx)
		return m, m.apply(stack, err)
	case key.Matches(msg, m.keys.Discard):
		return m, m.apply(m.tracker.Discard(m.ctx))
	case key.Matches(msg, m.keys.Up):
		m.selected = max(m.selected-1, 0)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.selected = min(m.selected+1, max(len(model.Segments(m.stack))-1, 0))
		return m, nil
	case key.Matches(msg, m.keys.MoveUp), key.Matches(msg, m.keys.MoveDown):
		id, ok := m.selectedID()
		if !ok {
			return m, nil
		}
		target := m.selected + 1
		if key.Matches(msg, m.keys.MoveUp) {
			target = m.selected - 1
		}
		stack, err := m.tracker.Move(m.ctx, id, target)
		if err == nil {
			m.selected = min(max(target, 0), len(model.Segments(stack))-1)
		}
		return m, m.apply(stack, err)
	case key.Matches(msg, m.keys.Delete):
		id, ok := m.selectedID()
		if !ok {
			return m, nil
		}
		return m, m.apply(m.tracker.Delete(m.ctx, id))
	case key.Matches(msg, m.keys.Add):
		return m, m.startInput(inputAdd, "New segment: ", "")
	case key.Matches(msg, m.keys.Rename):
		if seg, ok := m.selectedSegment(); ok {
			return m, m.startInput(inputRename, "Name: ", seg.Info().Name)
		}
	case key.Matches(msg, m.keys.Describe):
		if seg, ok := m.selectedSegment(); ok {
			return m, m.startInput(inputDescribe, "Description: ", seg.Info().Description)
		}
	}
	return m, nil
}

func (m *Model) startInput(mode inputMode, prompt, value string) tea.Cmd {
	m.mode = mode
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.sampler.Stop()
		return m, tea.Quit
	case tea.KeyEsc:
		m.closeInput()
		return m, nil
	case tea.KeyEnter:
		mode := m.mode
		value := strings.TrimSpace(m.input.Value())
		m.closeInput()
		return m, m.submitInput(mode, value)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.mode = inputNone
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) submitInput(mode inputMode, value string) tea.Cmd {
	if mode == inputAdd || mode == inputRename {
		if value == "" {
			m.errMsg = "segment name must not be empty"
			return nil
		}
	}
	if mode == inputAdd {
		stack, err := m.tracker.Add(m.ctx, value, "", nil)
		if err == nil {
			m.selected = len(model.Segments(stack)) - 1
		}
		return m.apply(stack, err)
	}
	id, ok := m.selectedID()
	if !ok {
		return nil
	}
	if mode == inputRename {
		return m.apply(m.tracker.Rename(m.ctx, id, value))
	}
	return m.apply(m.tracker.Describe(m.ctx, id, value))
}

// apply records the outcome of a tracker operation and keeps the sampler in
// step with the stack state.
func (m *Model) apply(stack model.Stack, err error) tea.Cmd {
	if err != nil {
		m.errMsg = err.Error()
		return nil
	}
	m.errMsg = ""
	m.setStack(stack)
	return m.syncSampler()
}

func (m *Model) setStack(stack model.Stack) {
	m.stack = stack
	m.now = m.tracker.Now()
	m.selected = min(m.selected, max(len(model.Segments(stack))-1, 0))
}

// syncSampler runs the sampler only while an attempt is running.
func (m *Model) syncSampler() tea.Cmd {
	running := model.IsRunningStack(m.stack)
	switch {
	case running && !m.sampler.Running():
		m.ticks = m.sampler.Start(m.ctx)
		return waitTick(m.ticks)
	case !running && m.sampler.Running():
		m.sampler.Stop()
		m.ticks = nil
	}
	return nil
}

func waitTick(ch <-chan int64) tea.Cmd {
	return func() tea.Msg {
		now, ok := <-ch
		if !ok {
			return nil
		}
		return tickMsg{ch: ch, now: now}
	}
}

func (m *Model) waitUpdate() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	ch := m.updates
	return func() tea.Msg {
		data, ok := <-ch
		if !ok {
			return nil
		}
		stack, err := model.UnmarshalStack(data)
		if err != nil {
			return watchErrMsg{err: fmt.Errorf("external update: %w", err)}
		}
		return stackMsg{stack: stack}
	}
}

func (m *Model) selectedSegment() (model.Segment, bool) {
	segs := model.Segments(m.stack)
	if m.selected < 0 || m.selected >= len(segs) {
		return nil, false
	}
	return segs[m.selected], true
}

func (m *Model) selectedID() (string, bool) {
	seg, ok := m.selectedSegment()
	if !ok {
		return "", false
	}
	return seg.Info().ID, true
}

// View implements tea.Model.
func (m *Model) View() string {
	width := m.width
	if width <= 0 {
		width = 60
	}
	parts := []string{m.renderHeader(), "", m.renderSegments(width)}
	if desc := m.renderDescription(width); desc != "" {
		parts = append(parts, desc)
	}
	parts = append(parts, "", m.renderFooter())
	if m.mode != inputNone {
		parts = append(parts, m.input.View())
	}
	if m.errMsg != "" {
		parts = append(parts, errorStyle.Render(m.errMsg))
	}
	parts = append(parts, m.help.View(m.keys))
	return strings.Join(parts, "\n")
}

func (m *Model) renderHeader() string {
	elapsed := stats.AttemptElapsed(m.stack, m.now)
	return titleStyle.Render("splits · "+m.stack.State().String()) + "\n" + timerStyle.Render(timefmt.Format(elapsed))
}

func (m *Model) renderSegments(width int) string {
	segs := model.Segments(m.stack)
	if len(segs) == 0 {
		return pendingStyle.Render("No segments. Press a to add one.")
	}
	nameWidth := max(width-markerWidth-3*timeWidth, minName)
	lines := make([]string, 0, len(segs)+1)
	lines = append(lines, footerStyle.Render(
		fitCell("", markerWidth, false)+
			fitCell("Segment", nameWidth, false)+
			fitCell("Split", timeWidth, true)+
			fitCell("Best", timeWidth, true)+
			fitCell("Delta", timeWidth, true)))
	for i, seg := range segs {
		lines = append(lines, m.renderRow(i, seg, nameWidth))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderRow(i int, seg model.Segment, nameWidth int) string {
	info := seg.Info()
	marker := "  "
	split := ""
	style := pendingStyle
	switch s := seg.(type) {
	case model.RunningSegment:
		marker = "> "
		split = timefmt.Format(m.now - s.Start)
		style = timerStyle
	case model.CompletedSegment:
		split = timefmt.Format(stats.SegmentSplit(s))
		style = completeStyle
	}
	if i == m.selected {
		style = selectedStyle
	}
	row := style.Render(marker + fitCell(info.Name, nameWidth, false) +
		fitCell(split, timeWidth, true) +
		fitCell(timefmt.Optional(info.PersonalBest), timeWidth, true))

	delta, ok := stats.SplitDelta(seg, m.now)
	if !ok {
		return row + fitCell("", timeWidth, true)
	}
	cell := fitCell(timefmt.FormatDelta(delta), timeWidth, true)
	if delta <= 0 {
		return row + aheadStyle.Render(cell)
	}
	return row + behindStyle.Render(cell)
}

func (m *Model) renderDescription(width int) string {
	seg, ok := m.selectedSegment()
	if !ok || seg.Info().Description == "" {
		return ""
	}
	return footerStyle.Render(strings.Join(wrapText(seg.Info().Description, width), "\n"))
}

func (m *Model) renderFooter() string {
	h := model.HistoryOf(m.stack)
	segments := []string{
		"PB " + timefmt.Optional(h.PersonalBest),
		fmt.Sprintf("Attempts %d", h.Attempts),
	}
	if h.Attempts > 0 {
		segments = append(segments, "AVG "+timefmt.Format(stats.RoundMs(h.Average)))
	}
	if eta, ok := stats.ProjectedFinish(m.stack, m.now); ok {
		segments = append(segments, "ETA "+timefmt.FormatClock(eta))
	}
	if running, ok := m.stack.(model.RunningStack); ok {
		if h.Attempts > 0 {
			segments = append(segments, "Left "+timefmt.Format(stats.EstimatedTimeRemaining(running, m.now)))
		}
		if pace, ok := stats.EstimatedPace(running, m.now); ok {
			segments = append(segments, "Pace "+timefmt.Format(pace))
		}
	}
	segments = append(segments, "SoB "+timefmt.Format(stats.TheoreticalBest(m.stack)))
	return footerStyle.Render(strings.Join(segments, "  "))
}
