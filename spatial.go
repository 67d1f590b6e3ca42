package paperlayout

import (
	"sort"

	"github.com/tidwall/rtree"
)

// blockIndex is an R-tree of block boxes per page.
type blockIndex struct {
	pages map[int]*rtree.RTreeG[int]
}

func newBlockIndex(doc *Document) *blockIndex {
	idx := &blockIndex{pages: make(map[int]*rtree.RTreeG[int])}
	for i, b := range doc.Blocks {
		tr, ok := idx.pages[b.Page]
		if !ok {
			tr = &rtree.RTreeG[int]{}
			idx.pages[b.Page] = tr
		}
		tr.Insert([2]float64{b.Box.X0, b.Box.Y0}, [2]float64{b.Box.X1, b.Box.Y1}, i)
	}
	return idx
}

// intersecting returns the indices of blocks on r's page whose boxes touch r,
// in arena order.
func (idx *blockIndex) intersecting(r Rect) []int {
	tr, ok := idx.pages[r.Page]
	if !ok {
		return nil
	}
	var out []int
	tr.Search([2]float64{r.X0, r.Y0}, [2]float64{r.X1, r.Y1}, func(_, _ [2]float64, bi int) bool {
		out = append(out, bi)
		return true
	})
	sort.Ints(out)
	return out
}

// inside returns the blocks lying mostly within region.
func (idx *blockIndex) inside(doc *Document, region Rect) []int {
	var out []int
	for _, bi := range idx.intersecting(region) {
		if insideRegion(region, doc.Blocks[bi].Box) {
			out = append(out, bi)
		}
	}
	return out
}
