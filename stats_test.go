package paperlayout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHigherDistance(t *testing.T) {
	tests := []struct {
		name     string
		deltas   []int
		expected float64
	}{
		{"skips kerning buckets", []int{0, 0, 0, 1, 1, 3, 3, 3, 5}, 3},
		{"single bucket falls back", []int{4, 4}, defaultDistance},
		{"empty falls back", nil, defaultDistance},
		{"only tight buckets fall back", []int{0, 1, 1}, defaultDistance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, higherDistance(tt.deltas))
		})
	}
}

func TestCharSpacingOf(t *testing.T) {
	page := &PageGeometry{
		Width: 600,
		Chars: []Char{
			{Text: 'a', Box: Rect{X0: 0, X1: 5, Y0: 100, Y1: 110}},
			{Text: 'b', Box: Rect{X0: 8, X1: 13, Y0: 100, Y1: 110}},
			{Text: 'c', Box: Rect{X0: 16, X1: 21, Y0: 100, Y1: 110}},
			{Text: ' ', Box: Rect{X0: 21, X1: 27, Y0: 100, Y1: 110}},
			{Text: 'd', Box: Rect{X0: 27, X1: 32, Y0: 100, Y1: 110}},
			{Text: 'e', Box: Rect{X0: 35, X1: 40, Y0: 100, Y1: 110}},
		},
	}

	require.Equal(t, 3.0, charSpacingOf([]*PageGeometry{page}))
}

func TestLineDistanceOf(t *testing.T) {
	lines := []Line{
		line(0, 50, 100, 300, 110, "a"),
		line(0, 50, 114, 300, 124, "b"),
		line(0, 50, 128, 300, 138, "c"),
		line(0, 50, 150, 300, 160, "d"),
		line(1, 50, 20, 300, 30, "e"),
	}

	require.Equal(t, 4.0, lineDistanceOf(lines))
}

func TestDominantValues(t *testing.T) {
	sizes := []int{10, 10, 10, 10, 10, 9, 9, 9, 12}
	require.Equal(t, []int{10, 9}, dominantValues(sizes, 0.6))

	require.Equal(t, []string{"Times"}, dominantValues([]string{"Times", "Times", "Arial"}, 0.6))
	require.Nil(t, dominantValues([]string{}, 0.6))
}

func TestBodyWidthOf(t *testing.T) {
	var blocks []Block
	add := func(width float64, n int) {
		for i := 0; i < n; i++ {
			blocks = append(blocks, Block{Box: Rect{X0: 50, X1: 50 + width}})
		}
	}
	add(250, 4)
	add(251, 3)
	add(100, 5)
	add(500, 1)

	require.Equal(t, 251.0, bodyWidthOf(blocks, 600, 0.75))
	require.Equal(t, 0.0, bodyWidthOf(nil, 600, 0.75))
}

func TestStatistics_LineHeight(t *testing.T) {
	assert.Equal(t, 9.0, Statistics{DominantSizes: []int{9}, LineDistance: 4}.LineHeight())
	assert.Equal(t, 4.0, Statistics{LineDistance: 4}.LineHeight())
	assert.Equal(t, float64(defaultDistance), Statistics{}.LineHeight())
}

func TestComputeStatistics(t *testing.T) {
	doc := newTestDoc(
		[]Line{line(0, 50, 100, 550, 110, "body one"), line(0, 50, 114, 550, 124, "body two")},
		[]Line{line(0, 50, 140, 550, 150, "body three")},
		[]Line{styledLine(0, 50, 20, 300, 34, "Title", "Arial", 14)},
	)

	assert.Equal(t, []string{"Times"}, doc.Stats.DominantFonts)
	assert.Equal(t, []int{10}, doc.Stats.DominantSizes)
	assert.Equal(t, 500.0, doc.Stats.BodyWidth)
	assert.Equal(t, 600.0, doc.Stats.PageWidth)
	assert.True(t, doc.Stats.HasDominantFont("Times"))
	assert.False(t, doc.Stats.HasDominantSize(14))
}
