package paperlayout

import (
	"context"
	"sort"
	"strings"

	"github.com/ivanvanderbyl/paperlayout/nlp"
)

// tableBuilder turns the lines inside a table region into rows, cells and
// a fitted grid.
type tableBuilder struct {
	doc    *Document
	config Config
	lang   nlpGuard
	fitter GridFitter
}

// rowGroup is one table row before its cells are split.
type rowGroup struct {
	lines []int
	box   Rect
}

// build reconstructs t from the lines of its blocks.
func (tb *tableBuilder) build(ctx context.Context, t *Table) {
	vertical := t.Orientation.Vertical()
	groups := tb.assembleRows(t, vertical)

	rows := make([]Row, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, tb.splitCells(ctx, t, g, vertical))
	}

	tb.acceptRows(ctx, t, rows)
	for _, row := range rows {
		if row.Accepted {
			t.Rows = append(t.Rows, row)
		} else {
			t.Rejected = append(t.Rejected, row)
		}
	}

	t.Columns = inferColumns(t, vertical)
	tb.fitGrid(t, vertical)
}

// assembleRows collects the table's lines lying inside its box, ordered
// along the primary axis, and groups lines sharing a row.
func (tb *tableBuilder) assembleRows(t *Table, vertical bool) []rowGroup {
	var lines []int
	for _, bi := range t.Blocks {
		for _, li := range tb.doc.Blocks[bi].Lines {
			if insideRegion(t.Box, tb.doc.Lines[li].Box) {
				lines = append(lines, li)
			}
		}
	}
	primary := func(r Rect) float64 {
		if vertical {
			return r.X0
		}
		return r.Y0
	}
	sort.SliceStable(lines, func(i, j int) bool {
		return primary(tb.doc.Lines[lines[i]].Box) < primary(tb.doc.Lines[lines[j]].Box)
	})

	var groups []rowGroup
	for _, li := range lines {
		box := tb.doc.Lines[li].Box
		if n := len(groups); n > 0 && sharesRow(groups[n-1].box, box, vertical) {
			groups[n-1].lines = append(groups[n-1].lines, li)
			groups[n-1].box = mergeRects(groups[n-1].box, box)
			continue
		}
		groups = append(groups, rowGroup{lines: []int{li}, box: box})
	}
	return groups
}

// sharesRow is the same-row test along the table's primary axis.
func sharesRow(a, b Rect, vertical bool) bool {
	if vertical {
		return rowsOverlap(Rect{Y0: a.X0, Y1: a.X1}, Rect{Y0: b.X0, Y1: b.X1})
	}
	return rowsOverlap(a, b)
}

// splitCells merges the spans of a row into cells. Consecutive spans stay in
// one cell while the gap along the row is within CellGapFactor char spacings.
func (tb *tableBuilder) splitCells(ctx context.Context, t *Table, g rowGroup, vertical bool) Row {
	var spans []Span
	for _, li := range g.lines {
		spans = append(spans, tb.doc.Lines[li].Spans...)
	}
	row := Row{Box: g.box, Lines: g.lines}
	if len(spans) == 0 {
		return row
	}

	dir := spans[0].Dir
	if vertical != isVerticalDir(dir) {
		dir = [2]float64{1, 0}
		if vertical {
			dir = [2]float64{0, 1}
		}
	}
	sort.SliceStable(spans, func(i, j int) bool {
		return axisStart(spans[i].Box, dir) < axisStart(spans[j].Box, dir)
	})

	cellGap := tb.config.CellGapFactor * tb.doc.Stats.CharSpacing
	joinGap := tb.config.SpanJoinFactor * tb.doc.Stats.CharSpacing

	var cells [][]Span
	for i, span := range spans {
		if i == 0 || axisStart(span.Box, dir)-axisEnd(spans[i-1].Box, dir) > cellGap {
			cells = append(cells, []Span{span})
			continue
		}
		cells[len(cells)-1] = append(cells[len(cells)-1], span)
	}

	texts := make([]string, 0, len(cells))
	for _, group := range cells {
		var text strings.Builder
		box := group[0].Box
		for i, span := range group {
			if i > 0 {
				if axisStart(span.Box, dir)-axisEnd(group[i-1].Box, dir) > joinGap {
					text.WriteByte(' ')
				}
				box = mergeRects(box, span.Box)
			}
			text.WriteString(span.Text)
		}
		cellText := collapseSpaces(text.String())
		row.Cells = append(row.Cells, len(t.Cells))
		t.Cells = append(t.Cells, Cell{
			Box:      box,
			Text:     cellText,
			WordType: tb.lang.classifyText(ctx, cellText),
		})
		texts = append(texts, cellText)
	}
	row.Text = strings.Join(texts, " ")
	return row
}

// acceptRows rejects rows that read as sentences, hold at most one cell, or
// whose cell count is below half or above twice the mean of multi-cell rows.
// A rejected row between two accepted rows is reinstated.
func (tb *tableBuilder) acceptRows(ctx context.Context, t *Table, rows []Row) {
	if len(rows) == 0 {
		return
	}

	total, multi := 0, 0
	for _, row := range rows {
		if len(row.Cells) > 1 {
			total += len(row.Cells)
			multi++
		}
	}
	mean := 0.0
	if multi > 0 {
		mean = float64(total) / float64(multi)
	}

	initial := make([]bool, len(rows))
	for i, row := range rows {
		n := float64(len(row.Cells))
		initial[i] = len(row.Cells) > 1 &&
			n >= 0.5*mean && n <= 2*mean &&
			!tb.lang.isSentence(ctx, row.Text)
	}

	for i := range rows {
		rows[i].Accepted = initial[i]
		if !initial[i] && i > 0 && i < len(rows)-1 && initial[i-1] && initial[i+1] {
			rows[i].Accepted = true
		}
	}
}

// inferColumns lays out one column per cell of the reference row, the
// accepted row with the most cells. Columns span the table across rows.
func inferColumns(t *Table, vertical bool) []Column {
	ref := -1
	for i, row := range t.Rows {
		if ref == -1 || len(row.Cells) > len(t.Rows[ref].Cells) {
			ref = i
		}
	}
	if ref == -1 {
		return nil
	}

	columns := make([]Column, 0, len(t.Rows[ref].Cells))
	for _, ci := range t.Rows[ref].Cells {
		box := t.Cells[ci].Box
		if vertical {
			box.X0, box.X1 = t.Box.X0, t.Box.X1
		} else {
			box.Y0, box.Y1 = t.Box.Y0, t.Box.Y1
		}
		columns = append(columns, Column{Box: box})
	}
	return columns
}

// slotBox is the grid position where a row crosses a column.
func slotBox(row, column Rect, vertical bool) Rect {
	if vertical {
		return Rect{Page: row.Page, X0: row.X0, X1: row.X1, Y0: column.Y0, Y1: column.Y1}
	}
	return Rect{Page: row.Page, X0: column.X0, X1: column.X1, Y0: row.Y0, Y1: row.Y1}
}

// fitGrid binds the real cells of accepted rows to the row by column grid.
// Positions left unbound become blank placeholders, so every row ends up
// with one cell per column.
func (tb *tableBuilder) fitGrid(t *Table, vertical bool) {
	width := len(t.Columns)
	if width == 0 {
		return
	}

	slots := make([]GridSlot, 0, len(t.Rows)*width)
	boxes := make([]Rect, 0, len(t.Rows)*width)
	for r, row := range t.Rows {
		for c, col := range t.Columns {
			box := slotBox(row.Box, col.Box, vertical)
			slots = append(slots, GridSlot{Row: r, Column: c, Center: Point{X: box.CenterX(), Y: box.CenterY()}})
			boxes = append(boxes, box)
		}
	}

	var cells []GridCell
	for _, row := range t.Rows {
		for _, ci := range row.Cells {
			box := t.Cells[ci].Box
			cells = append(cells, GridCell{Cell: ci, Center: Point{X: box.CenterX(), Y: box.CenterY()}})
		}
	}

	assignment := tb.fitter.Assign(cells, slots)
	bound := make([]int, len(slots))
	for i := range bound {
		bound[i] = -1
	}
	for i, s := range assignment {
		if i < len(cells) && s >= 0 && s < len(slots) && bound[s] == -1 {
			bound[s] = cells[i].Cell
		}
	}

	for r := range t.Rows {
		grid := make([]int, width)
		for c := 0; c < width; c++ {
			s := r*width + c
			ci := bound[s]
			if ci >= 0 {
				t.Cells[ci].Activated = true
			} else {
				ci = len(t.Cells)
				t.Cells = append(t.Cells, Cell{Box: boxes[s], WordType: nlp.Unknown, Placeholder: true})
			}
			grid[c] = ci
			t.Columns[c].Cells = append(t.Columns[c].Cells, ci)
		}
		t.Rows[r].Cells = grid
	}
}

// wordCells counts the cells classified as words.
func wordCells(t *Table, cells []int) int {
	n := 0
	for _, ci := range cells {
		if t.Cells[ci].WordType == nlp.Word {
			n++
		}
	}
	return n
}

// resolveHeader compares the words in the first row and the first column.
// The first row is the header when it holds strictly more words; otherwise
// the first column is. The header is removed from the data grid.
func resolveHeader(t *Table) {
	if len(t.Rows) == 0 || len(t.Columns) == 0 {
		return
	}

	if wordCells(t, t.Rows[0].Cells) > wordCells(t, t.Columns[0].Cells) {
		t.Rows[0].IsHeader = true
		t.Header = &TableHeader{Kind: HeaderRow, Cells: t.Rows[0].Cells}
		t.Rows = t.Rows[1:]
		for c := range t.Columns {
			t.Columns[c].Cells = t.Columns[c].Cells[1:]
		}
		return
	}

	t.Columns[0].IsHeader = true
	t.Header = &TableHeader{Kind: HeaderColumn, Cells: t.Columns[0].Cells}
	t.Columns = t.Columns[1:]
}
