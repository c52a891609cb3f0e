package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Segment", "Split", "Best"}
	rows := [][]string{
		{"Doors open", "0.41", "0.38"},
		{"Exit subway", "15:40.02", "15:37.50"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	require.Len(t, lines, 3)
	assert.Equal(t, "Segment        Split     Best", lines[0])
	assert.Equal(t, "Doors open      0.41     0.38", lines[1])
	assert.Equal(t, "Exit subway 15:40.02 15:37.50", lines[2])
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Name", "X"}, [][]string{{"駅", "1"}}, nil)
	require.Len(t, lines, 2)
	assert.Equal(t, "駅   1", lines[1])
}
