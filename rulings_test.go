package paperlayout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hEdge(x0, x1, y float64) Edge {
	return Edge{X0: x0, X1: x1, Top: y, Bottom: y, Width: x1 - x0, Orientation: "h"}
}

func vEdge(x, y0, y1 float64) Edge {
	return Edge{X0: x, X1: x, Top: y0, Bottom: y1, Height: y1 - y0, Orientation: "v"}
}

func TestRulingRegions_Grid(t *testing.T) {
	page := PageInfo{
		Number: 2,
		Width:  600,
		Height: 800,
		Rulings: []Edge{
			hEdge(100, 300, 100), hEdge(100, 300, 150), hEdge(100, 300, 200),
			vEdge(100, 100, 200), vEdge(200, 100, 200), vEdge(300, 100, 200),
		},
	}

	regions := rulingRegions(page, 3)
	require.Equal(t, []Rect{{Page: 2, X0: 100, Y0: 100, X1: 300, Y1: 200}}, regions)
}

func TestRulingRegions_SnapsAndJoins(t *testing.T) {
	page := PageInfo{
		Width:  600,
		Height: 800,
		Rulings: []Edge{
			// Top ruling drawn in two pieces, slightly off.
			hEdge(100, 201, 100), hEdge(200, 300, 101),
			hEdge(100, 300, 150), hEdge(100, 300, 200),
			vEdge(100, 100, 200), vEdge(201, 100, 200), vEdge(300, 100, 200),
		},
	}

	regions := rulingRegions(page, 3)
	require.Len(t, regions, 1)
	assert.InDelta(t, 100, regions[0].X0, 1)
	assert.InDelta(t, 300, regions[0].X1, 1)
	assert.InDelta(t, 100, regions[0].Y0, 1)
	assert.InDelta(t, 200, regions[0].Y1, 1)
}

func TestRulingRegions_SingleBoxIsNotATable(t *testing.T) {
	page := PageInfo{
		Width:   600,
		Height:  800,
		Rulings: boxEdges(Rect{X0: 100, Y0: 100, X1: 300, Y1: 200}),
	}

	require.Empty(t, rulingRegions(page, 3))
	require.Empty(t, rulingRegions(PageInfo{Width: 600, Height: 800}, 3))
}

func TestPathToEdge(t *testing.T) {
	edge, ok := pathToEdge(Rect{X0: 100, Y0: 150, X1: 300, Y1: 150.5})
	require.True(t, ok)
	assert.Equal(t, "h", edge.Orientation)
	assert.Equal(t, 200.0, edge.Width)

	edge, ok = pathToEdge(Rect{X0: 100, Y0: 100, X1: 100.5, Y1: 200})
	require.True(t, ok)
	assert.Equal(t, "v", edge.Orientation)

	_, ok = pathToEdge(Rect{X0: 100, Y0: 100, X1: 150, Y1: 150})
	require.False(t, ok, "filled shapes are not rulings")
}

func TestIsPageBorder(t *testing.T) {
	assert.True(t, isPageBorder(hEdge(100, 300, 10), 600, 800))
	assert.True(t, isPageBorder(hEdge(10, 590, 400), 600, 800))
	assert.True(t, isPageBorder(vEdge(590, 100, 200), 600, 800))
	assert.False(t, isPageBorder(hEdge(100, 300, 400), 600, 800))
	assert.False(t, isPageBorder(vEdge(200, 100, 200), 600, 800))
}
