package paperlayout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectGutters_TwoColumns(t *testing.T) {
	var spans []Span
	for i := 0; i < 20; i++ {
		y := 100 + float64(i)*14
		spans = append(spans,
			span(0, 50, y, 280, y+10, "left", "Times", 10),
			span(0, 320, y, 550, y+10, "right", "Times", 10),
		)
	}

	require.Equal(t, []float64{300}, detectGutters(spans, 600))
}

func TestDetectGutters_SingleColumn(t *testing.T) {
	spans := []Span{span(0, 50, 100, 550, 110, "full width", "Times", 10)}
	require.Empty(t, detectGutters(spans, 600))
	require.Nil(t, detectGutters(nil, 600))
}

func TestGutterIndex(t *testing.T) {
	gutters := []float64{300}
	assert.Equal(t, 0, gutterIndex(Rect{X0: 50, X1: 280}, gutters))
	assert.Equal(t, 1, gutterIndex(Rect{X0: 320, X1: 550}, gutters))
	assert.Equal(t, 0, gutterIndex(Rect{X0: 320, X1: 550}, nil))
}

func TestAssignReadingOrder(t *testing.T) {
	doc := newTestDoc(
		[]Line{line(0, 320, 100, 550, 110, "right top")},
		[]Line{line(0, 50, 500, 280, 510, "left bottom")},
		[]Line{line(0, 50, 100, 280, 110, "left top")},
		[]Line{line(1, 50, 50, 280, 60, "next page")},
	)

	assert.Equal(t, 2, doc.Blocks[0].Column)
	assert.Equal(t, 0, doc.Blocks[1].Column)

	order := readingOrder(doc, nil)
	require.Equal(t, []int{2, 1, 0, 3}, order)

	// Line keys follow their block.
	l := doc.Lines[doc.Blocks[3].Lines[0]]
	assert.Equal(t, doc.Blocks[3].AbsY0, l.AbsY0)
	assert.Greater(t, l.AbsY0, doc.Blocks[0].AbsY1)
}

func TestReadingOrder_Filter(t *testing.T) {
	doc := newTestDoc(
		[]Line{line(0, 50, 100, 280, 110, "kept")},
		[]Line{line(0, 50, 200, 280, 210, "dropped")},
	)
	doc.Blocks[1].Claim(RoleRecurring, stageText, "test")

	order := readingOrder(doc, func(b *Block) bool { return b.Role() != RoleRecurring })
	require.Equal(t, []int{0}, order)
}
