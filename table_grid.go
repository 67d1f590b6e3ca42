package paperlayout

import "sort"

// GridCell is a real table cell offered to a GridFitter.
type GridCell struct {
	Cell   int // Index into Table.Cells
	Center Point
}

// GridSlot is one (row, column) position of the idealised grid.
type GridSlot struct {
	Row    int
	Column int
	Center Point
}

// Assignment maps each offered cell, by position, to a slot position.
// Unbound cells hold -1.
type Assignment []int

// GridFitter binds real cells to grid slots. At most one cell is bound
// to a slot.
type GridFitter interface {
	Assign(cells []GridCell, grid []GridSlot) Assignment
}

// GreedyFitter repeatedly binds the cell and empty slot with the globally
// smallest squared distance. Ties go to the earlier cell, then the earlier
// slot. The result is not an optimal matching.
type GreedyFitter struct{}

type gridPair struct {
	cell, slot int
	dist       float64
}

// Assign implements GridFitter.
func (GreedyFitter) Assign(cells []GridCell, grid []GridSlot) Assignment {
	out := make(Assignment, len(cells))
	for i := range out {
		out[i] = -1
	}
	if len(cells) == 0 || len(grid) == 0 {
		return out
	}

	pairs := make([]gridPair, 0, len(cells)*len(grid))
	for i, c := range cells {
		for j, s := range grid {
			dx, dy := c.Center.X-s.Center.X, c.Center.Y-s.Center.Y
			pairs = append(pairs, gridPair{cell: i, slot: j, dist: dx*dx + dy*dy})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].dist < pairs[j].dist
	})

	taken := make([]bool, len(grid))
	bound := 0
	for _, p := range pairs {
		if out[p.cell] != -1 || taken[p.slot] {
			continue
		}
		out[p.cell] = p.slot
		taken[p.slot] = true
		bound++
		if bound == len(cells) || bound == len(grid) {
			break
		}
	}
	return out
}
