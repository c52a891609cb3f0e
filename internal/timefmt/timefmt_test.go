package timefmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0.00"},
		{380, "0.38"},
		{394110, "6:34.11"},
		{1899110, "31:39.11"},
		{3723400, "1:02:03.40"},
		{-2000, "-2.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.ms), "Format(%d)", tt.ms)
	}
}

func TestFormatDeltaAndOptional(t *testing.T) {
	assert.Equal(t, "+1.50", FormatDelta(1500))
	assert.Equal(t, "-1:01.00", FormatDelta(-61000))
	assert.Equal(t, "--", Optional(nil))
	v := int64(394110)
	assert.Equal(t, "6:34.11", Optional(&v))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"0.38", 380},
		{"6:34.11", 394110},
		{"15:37.5", 937500},
		{"31:39.11", 1899110},
		{"1:02:03.4", 3723400},
		{"45", 45000},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, "Parse(%q)", tt.in)
		assert.Equal(t, tt.want, got, "Parse(%q)", tt.in)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "1:2:3:4", "1:75", "1:60:00", ":30", "-5"} {
		_, err := Parse(in)
		assert.Error(t, err, "Parse(%q)", in)
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, ms := range []int64{380, 394110, 3723400} {
		got, err := Parse(Format(ms))
		require.NoError(t, err)
		assert.Equal(t, ms, got)
	}
}
