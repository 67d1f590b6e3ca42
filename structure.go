package paperlayout

import (
	"sort"
	"strings"
)

// assembler merges spans into lines and lines into blocks for one page at a time.
type assembler struct {
	config       Config
	charSpacing  float64
	lineDistance float64
}

// lineBuilder accumulates the spans of one line.
type lineBuilder struct {
	spans  []Span
	box    Rect
	bucket Orientation
}

// assembleLines groups a page's spans into lines. Spans are only merged within
// one gutter-delimited column and one orientation bucket; a span joins a line
// when their row ranges overlap by at least RowOverlapRatio.
func (a *assembler) assembleLines(spans []Span, gutters []float64) []Line {
	if len(spans) == 0 {
		return nil
	}

	columns := make(map[int][]Span)
	var order []int
	for _, span := range spans {
		if strings.TrimSpace(span.Text) == "" {
			continue
		}
		col := gutterIndex(span.Box, gutters)
		if _, ok := columns[col]; !ok {
			order = append(order, col)
		}
		columns[col] = append(columns[col], span)
	}
	sort.Ints(order)

	var lines []Line
	for _, col := range order {
		colSpans := columns[col]
		sort.SliceStable(colSpans, func(i, j int) bool {
			if colSpans[i].Box.Y0 != colSpans[j].Box.Y0 {
				return colSpans[i].Box.Y0 < colSpans[j].Box.Y0
			}
			return colSpans[i].Box.X0 < colSpans[j].Box.X0
		})

		var builders []*lineBuilder
		for _, span := range colSpans {
			bucket := orientationOf(span.Dir)
			var target *lineBuilder
			for i := len(builders) - 1; i >= 0; i-- {
				lb := builders[i]
				if lb.bucket == bucket && a.sameRow(lb.box, span.Box, span.Dir) {
					target = lb
					break
				}
			}
			if target == nil {
				builders = append(builders, &lineBuilder{spans: []Span{span}, box: span.Box, bucket: bucket})
				continue
			}
			target.spans = append(target.spans, span)
			target.box = mergeRects(target.box, span.Box)
		}

		colLines := make([]Line, 0, len(builders))
		for _, lb := range builders {
			colLines = append(colLines, a.buildLine(lb.spans))
		}
		sort.SliceStable(colLines, func(i, j int) bool {
			if colLines[i].Box.Y0 != colLines[j].Box.Y0 {
				return colLines[i].Box.Y0 < colLines[j].Box.Y0
			}
			return colLines[i].Box.X0 < colLines[j].Box.X0
		})
		lines = append(lines, colLines...)
	}

	return lines
}

// sameRow checks whether a span shares a row with a line box. For vertical
// text the row runs along X.
func (a *assembler) sameRow(line, span Rect, dir [2]float64) bool {
	if isVerticalDir(dir) {
		return overlapRatio(line.X0, line.X1, span.X0, span.X1) >= a.config.RowOverlapRatio
	}
	return overlapRatio(line.Y0, line.Y1, span.Y0, span.Y1) >= a.config.RowOverlapRatio
}

// axisStart and axisEnd measure a box along the writing direction so that
// earlier text always has the smaller start.
func axisStart(r Rect, dir [2]float64) float64 {
	if isVerticalDir(dir) {
		if dir[1] < 0 {
			return -r.Y1
		}
		return r.Y0
	}
	if dir[0] < 0 {
		return -r.X1
	}
	return r.X0
}

func axisEnd(r Rect, dir [2]float64) float64 {
	if isVerticalDir(dir) {
		if dir[1] < 0 {
			return -r.Y0
		}
		return r.Y1
	}
	if dir[0] < 0 {
		return -r.X0
	}
	return r.X1
}

// buildLine orders spans along the writing direction and derives the line's
// text, box, fonts and size. Font and size are the most common over spans,
// so a leading footnote marker does not set the line size.
func (a *assembler) buildLine(spans []Span) Line {
	if len(spans) == 0 {
		return Line{Block: -1}
	}

	ordered := make([]Span, len(spans))
	copy(ordered, spans)
	dir := ordered[0].Dir
	sort.SliceStable(ordered, func(i, j int) bool {
		return axisStart(ordered[i].Box, dir) < axisStart(ordered[j].Box, dir)
	})

	joinGap := a.charSpacing * a.config.SpanJoinFactor
	var text strings.Builder
	box := ordered[0].Box
	fonts := make([]string, 0, len(ordered))
	sizes := make([]int, 0, len(ordered))
	for i, span := range ordered {
		if i > 0 {
			prev := ordered[i-1]
			gap := axisStart(span.Box, dir) - axisEnd(prev.Box, dir)
			if gap < -joinGap || gap > joinGap {
				text.WriteByte(' ')
			}
			box = mergeRects(box, span.Box)
		}
		text.WriteString(span.Text)
		fonts = append(fonts, span.Font)
		sizes = append(sizes, int(span.Size))
	}
	size, _ := mostCommon(sizes)

	var rankedFonts []string
	for _, r := range rankByFrequency(fonts) {
		rankedFonts = append(rankedFonts, r.Value)
	}

	return Line{
		Spans: ordered,
		Text:  collapseSpaces(text.String()),
		Box:   box,
		Fonts: rankedFonts,
		Font:  rankedFonts[0],
		Size:  size,
		Dir:   dir,
		Block: -1,
	}
}

// splitBlocks partitions page lines, as ordered by assembleLines, into
// blocks. A new block starts on a column or orientation change, or when the
// gap to the previous line exceeds BlockGapFactor line distances and the two
// lines do not share a row.
func (a *assembler) splitBlocks(lines []Line, gutters []float64) [][]int {
	if len(lines) == 0 {
		return nil
	}

	maxGap := a.config.BlockGapFactor * a.lineDistance
	var groups [][]int
	current := []int{0}
	for i := 1; i < len(lines); i++ {
		prev, line := lines[i-1], lines[i]

		newBlock := gutterIndex(prev.Box, gutters) != gutterIndex(line.Box, gutters) ||
			orientationOf(prev.Dir) != orientationOf(line.Dir)
		if !newBlock {
			gap := line.Box.Y0 - prev.Box.Y1
			if isVerticalDir(line.Dir) {
				gap = line.Box.X0 - prev.Box.X1
			}
			newBlock = gap > maxGap && !rowsOverlap(prev.Box, line.Box)
		}

		if newBlock {
			groups = append(groups, current)
			current = nil
		}
		current = append(current, i)
	}
	return append(groups, current)
}

// BuildBlock derives a block from its lines: union box, hyphenation-aware
// text, most common font and size, and orientation by majority vote. An
// empty line list yields the zero Block.
func BuildBlock(lines []Line) Block {
	if len(lines) == 0 {
		return Block{}
	}

	box := lines[0].Box
	fonts := make([]string, 0, len(lines))
	sizes := make([]int, 0, len(lines))
	dirs := make([][2]float64, 0, len(lines))
	texts := make([]string, 0, len(lines))
	for i, line := range lines {
		if i > 0 {
			box = mergeRects(box, line.Box)
		}
		fonts = append(fonts, line.Font)
		sizes = append(sizes, line.Size)
		dirs = append(dirs, line.Dir)
		texts = append(texts, line.Text)
	}

	font, _ := mostCommon(fonts)
	size, _ := mostCommon(sizes)

	return Block{
		Page:        box.Page,
		Box:         box,
		Text:        joinBlockText(texts),
		Font:        font,
		Size:        size,
		Orientation: voteOrientation(dirs),
	}
}

// joinBlockText joins line texts, removing a trailing hyphen when the next
// line continues in lowercase.
func joinBlockText(texts []string) string {
	var b strings.Builder
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if b.Len() == 0 {
			b.WriteString(text)
			continue
		}
		joined := b.String()
		if strings.HasSuffix(joined, "-") && startsWithLower(text) {
			b.Reset()
			b.WriteString(strings.TrimSuffix(joined, "-"))
			b.WriteString(text)
			continue
		}
		b.WriteByte(' ')
		b.WriteString(text)
	}
	return b.String()
}
