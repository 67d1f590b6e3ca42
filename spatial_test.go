package paperlayout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockIndex(t *testing.T) {
	doc := newTestDoc(
		[]Line{line(0, 100, 100, 200, 110, "inside")},
		[]Line{line(0, 100, 300, 200, 310, "outside")},
		[]Line{line(1, 100, 100, 200, 110, "other page")},
		[]Line{line(0, 250, 100, 400, 110, "mostly outside")},
	)
	idx := newBlockIndex(doc)

	region := Rect{Page: 0, X0: 90, Y0: 90, X1: 280, Y1: 120}
	require.Equal(t, []int{0, 3}, idx.intersecting(region))
	require.Equal(t, []int{0}, idx.inside(doc, region))
	require.Nil(t, idx.intersecting(Rect{Page: 5, X1: 10, Y1: 10}))
}
