package paperlayout

import (
	"math"
	"sort"

	"github.com/tidwall/rtree"
)

// crossing is a point where vertical and horizontal rulings meet.
type crossing struct {
	at Point
	v  []Edge
	h  []Edge
}

// rulingRegions finds bordered tables on a page from its ruling edges:
// rulings are snapped and joined, their crossings become cell corners, and
// cells sharing corners are grouped into one region each.
func rulingRegions(page PageInfo, tolerance float64) []Rect {
	edges := mergeEdges(page.Rulings, tolerance)
	edges = filterEdgesByLength(edges, tolerance)
	if len(edges) == 0 {
		return nil
	}

	crossings, tr := findCrossings(edges, tolerance)
	cells := crossingsToCells(crossings, tr, tolerance)

	var regions []Rect
	for _, group := range groupCells(cells) {
		r := unionRects(group)
		r.Page = page.Number
		regions = append(regions, r)
	}
	return regions
}

// mergeEdges snaps edges that are close together and joins collinear ones.
func mergeEdges(edges []Edge, tolerance float64) []Edge {
	var vEdges, hEdges []Edge
	for _, e := range edges {
		if e.Orientation == "v" {
			vEdges = append(vEdges, e)
		} else {
			hEdges = append(hEdges, e)
		}
	}
	vEdges = snapEdges(vEdges, "v", tolerance)
	hEdges = snapEdges(hEdges, "h", tolerance)

	// Group edges by orientation and position, then join within each group
	type edgeGroup struct {
		orientation string
		position    float64
	}
	grouped := make(map[edgeGroup][]Edge)
	var keys []edgeGroup
	for _, edge := range append(vEdges, hEdges...) {
		key := edgeGroup{orientation: edge.Orientation, position: edge.Top}
		if edge.Orientation == "v" {
			key.position = edge.X0
		}
		if _, ok := grouped[key]; !ok {
			keys = append(keys, key)
		}
		grouped[key] = append(grouped[key], edge)
	}

	var result []Edge
	for _, key := range keys {
		result = append(result, joinEdges(grouped[key], key.orientation, tolerance)...)
	}
	return result
}

// edgePosition is the coordinate an edge is snapped on.
func edgePosition(e Edge) float64 {
	if e.Orientation == "v" {
		return e.X0
	}
	return e.Top
}

// snapEdges moves edges within tolerance of a running cluster average onto it.
func snapEdges(edges []Edge, orientation string, tolerance float64) []Edge {
	type cluster struct {
		value float64
		edges []int
	}

	var clusters []cluster
	for i, edge := range edges {
		val := edgePosition(edge)
		found := false
		for j := range clusters {
			if math.Abs(clusters[j].value-val) <= tolerance {
				clusters[j].edges = append(clusters[j].edges, i)
				n := float64(len(clusters[j].edges))
				clusters[j].value = (clusters[j].value*(n-1) + val) / n
				found = true
				break
			}
		}
		if !found {
			clusters = append(clusters, cluster{value: val, edges: []int{i}})
		}
	}

	result := make([]Edge, len(edges))
	copy(result, edges)
	for _, c := range clusters {
		for _, idx := range c.edges {
			if orientation == "v" {
				diff := c.value - result[idx].X0
				result[idx].X0 = c.value
				result[idx].X1 += diff
			} else {
				diff := c.value - result[idx].Top
				result[idx].Top = c.value
				result[idx].Bottom += diff
			}
		}
	}
	return result
}

// joinEdges joins edges on one line whose ends are within tolerance.
func joinEdges(edges []Edge, orientation string, tolerance float64) []Edge {
	if len(edges) == 0 {
		return nil
	}

	start := func(e Edge) float64 {
		if orientation == "h" {
			return e.X0
		}
		return e.Top
	}
	end := func(e Edge) float64 {
		if orientation == "h" {
			return e.X1
		}
		return e.Bottom
	}

	sort.SliceStable(edges, func(i, j int) bool {
		return start(edges[i]) < start(edges[j])
	})

	joined := []Edge{edges[0]}
	for _, current := range edges[1:] {
		last := &joined[len(joined)-1]
		if start(current) > end(*last)+tolerance {
			joined = append(joined, current)
			continue
		}
		if end(current) <= end(*last) {
			continue
		}
		if orientation == "h" {
			last.X1 = current.X1
			last.Width = last.X1 - last.X0
		} else {
			last.Bottom = current.Bottom
			last.Height = last.Bottom - last.Top
		}
	}
	return joined
}

// filterEdgesByLength drops edges shorter than minLength.
func filterEdgesByLength(edges []Edge, minLength float64) []Edge {
	result := make([]Edge, 0, len(edges))
	for _, edge := range edges {
		length := edge.Width
		if edge.Orientation == "v" {
			length = edge.Height
		}
		if length >= minLength {
			result = append(result, edge)
		}
	}
	return result
}

// findCrossings collects the points where a vertical edge meets a horizontal
// one. The returned tree indexes crossings by position.
func findCrossings(edges []Edge, tolerance float64) ([]crossing, *rtree.RTreeG[int]) {
	var vEdges, hEdges []Edge
	for _, e := range edges {
		if e.Orientation == "v" {
			vEdges = append(vEdges, e)
		} else {
			hEdges = append(hEdges, e)
		}
	}

	tr := &rtree.RTreeG[int]{}
	var crossings []crossing
	for _, v := range vEdges {
		for _, h := range hEdges {
			if v.Top > h.Top+tolerance || v.Bottom < h.Top-tolerance ||
				v.X0 < h.X0-tolerance || v.X0 > h.X1+tolerance {
				continue
			}

			at := Point{X: v.X0, Y: h.Top}
			idx := -1
			tr.Search([2]float64{at.X - 0.1, at.Y - 0.1}, [2]float64{at.X + 0.1, at.Y + 0.1}, func(_, _ [2]float64, i int) bool {
				idx = i
				return false
			})
			if idx == -1 {
				idx = len(crossings)
				crossings = append(crossings, crossing{at: at})
				tr.Insert([2]float64{at.X, at.Y}, [2]float64{at.X, at.Y}, idx)
			}
			crossings[idx].v = append(crossings[idx].v, v)
			crossings[idx].h = append(crossings[idx].h, h)
		}
	}
	return crossings, tr
}

// connected reports whether a single ruling runs through both crossings.
func connected(a, b crossing) bool {
	if a.at.X == b.at.X {
		for _, e1 := range a.v {
			for _, e2 := range b.v {
				if e1 == e2 {
					return true
				}
			}
		}
	}
	if a.at.Y == b.at.Y {
		for _, e1 := range a.h {
			for _, e2 := range b.h {
				if e1 == e2 {
					return true
				}
			}
		}
	}
	return false
}

// crossingsToCells forms the minimal rectangles whose four corners are
// crossings connected by rulings.
func crossingsToCells(crossings []crossing, tr *rtree.RTreeG[int], tolerance float64) []Rect {
	order := make([]int, len(crossings))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := crossings[order[i]].at, crossings[order[j]].at
		if a.Y == b.Y {
			return a.X < b.X
		}
		return a.Y < b.Y
	})

	var cells []Rect
	for oi, ci := range order {
		pt := crossings[ci]
		right, below := -1, -1
		for _, cj := range order[oi+1:] {
			p := crossings[cj].at
			if p.X == pt.at.X && p.Y > pt.at.Y && (below == -1 || p.Y < crossings[below].at.Y) {
				below = cj
			}
			if p.Y == pt.at.Y && p.X > pt.at.X && (right == -1 || p.X < crossings[right].at.X) {
				right = cj
			}
		}
		if right == -1 || below == -1 || !connected(pt, crossings[below]) || !connected(pt, crossings[right]) {
			continue
		}

		corner := Point{X: crossings[right].at.X, Y: crossings[below].at.Y}
		found := false
		tr.Search([2]float64{corner.X - tolerance, corner.Y - tolerance}, [2]float64{corner.X + tolerance, corner.Y + tolerance}, func(_, _ [2]float64, i int) bool {
			if connected(crossings[i], crossings[right]) && connected(crossings[i], crossings[below]) {
				found = true
				return false
			}
			return true
		})
		if found {
			cells = append(cells, Rect{X0: pt.at.X, Y0: pt.at.Y, X1: corner.X, Y1: corner.Y})
		}
	}
	return cells
}

// groupCells groups cells sharing corners. Single-cell groups are boxes,
// not tables, and are dropped.
func groupCells(cells []Rect) [][]Rect {
	remaining := append([]Rect(nil), cells...)

	var groups [][]Rect
	for len(remaining) > 0 {
		group := []Rect{remaining[0]}
		corners := make(map[Point]bool)
		for _, c := range remaining[0].Corners() {
			corners[c] = true
		}
		remaining = remaining[1:]

		for grew := true; grew; {
			grew = false
			rest := remaining[:0]
			for _, cell := range remaining {
				shares := false
				for _, c := range cell.Corners() {
					if corners[c] {
						shares = true
						break
					}
				}
				if !shares {
					rest = append(rest, cell)
					continue
				}
				group = append(group, cell)
				for _, c := range cell.Corners() {
					corners[c] = true
				}
				grew = true
			}
			remaining = rest
		}

		if len(group) > 1 {
			groups = append(groups, group)
		}
	}
	return groups
}
