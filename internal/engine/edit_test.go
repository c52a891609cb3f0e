package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/splits/internal/model"
)

func queuedNames(t *testing.T, stack model.Stack) []string {
	t.Helper()
	queued, ok := stack.(model.QueuedStack)
	require.True(t, ok, "expected queued stack, got %s", stack.State())
	names := make([]string, 0, len(queued.Queued))
	for _, seg := range queued.Queued {
		names = append(names, seg.Name)
	}
	return names
}

func TestRenameSegmentResetsAttempt(t *testing.T) {
	start := queuedStack("A", "B")
	running := Advance(start, 0)

	renamed, err := RenameSegment(running, start.Queued[1].ID, "Bee")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "Bee"}, queuedNames(t, renamed))
}

func TestDescribeSegment(t *testing.T) {
	start := queuedStack("A")
	described, err := DescribeSegment(start, start.Queued[0].ID, "walk to the platform")
	require.NoError(t, err)
	assert.Equal(t, "walk to the platform", described.(model.QueuedStack).Queued[0].Description)
	assert.Empty(t, start.Queued[0].Description)
}

func TestMoveSegment(t *testing.T) {
	start := queuedStack("A", "B", "C", "D")
	idA := start.Queued[0].ID
	idD := start.Queued[3].ID

	tests := []struct {
		name     string
		id       string
		position int
		want     []string
	}{
		{"to middle", idA, 2, []string{"B", "C", "A", "D"}},
		{"to front", idD, 0, []string{"D", "A", "B", "C"}},
		{"past end clamps", idA, 10, []string{"B", "C", "D", "A"}},
		{"negative clamps", idD, -3, []string{"D", "A", "B", "C"}},
		{"same place", idA, 0, []string{"A", "B", "C", "D"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			moved, err := MoveSegment(start, tt.id, tt.position)
			require.NoError(t, err)
			assert.Equal(t, tt.want, queuedNames(t, moved))
		})
	}
}

func TestAddSegment(t *testing.T) {
	added := AddSegment(model.EmptyStack{}, model.NewQueuedSegment("A", "", nil))
	assert.Equal(t, []string{"A"}, queuedNames(t, added))

	added = AddSegment(added, model.NewQueuedSegment("B", "", model.Best(100)))
	assert.Equal(t, []string{"A", "B"}, queuedNames(t, added))
}

func TestDeleteSegment(t *testing.T) {
	start := queuedStack("A", "B")
	deleted, err := DeleteSegment(start, start.Queued[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, queuedNames(t, deleted))

	deleted, err = DeleteSegment(deleted, start.Queued[1].ID)
	require.NoError(t, err)
	assert.True(t, model.IsEmptyStack(deleted))
}

func TestEditsRejectUnknownID(t *testing.T) {
	start := queuedStack("A")
	_, err := RenameSegment(start, "missing", "x")
	require.ErrorIs(t, err, ErrSegmentNotFound)
	_, err = DescribeSegment(start, "missing", "x")
	require.ErrorIs(t, err, ErrSegmentNotFound)
	_, err = MoveSegment(start, "missing", 0)
	require.ErrorIs(t, err, ErrSegmentNotFound)
	_, err = DeleteSegment(start, "missing")
	require.ErrorIs(t, err, ErrSegmentNotFound)
}
