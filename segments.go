package paperlayout

import (
	"math"
	"sort"
)

// Table areas without rulings are found by tagging lines on their
// horizontal segmentation (PDF-TREX): a line split into several segments is
// a table line, a single segment spanning over half the page is text.

// lineType is the classification of a line during table area search.
type lineType int

const (
	textLine    lineType = iota // one segment spanning > 50% of the page
	tableLine                   // several segments
	unknownLine                 // one narrow segment
)

// Fallback gap thresholds when a page has too few gaps to measure.
const (
	defaultSegmentGap = 20.0
	minSegmentGap     = 5.0
	maxSegmentGap     = 100.0
	maxGapOutlier     = 200.0
)

// segmentGapThreshold is the median span gap inside lines plus 1.5 standard
// deviations, clamped to sensible bounds.
func segmentGapThreshold(lines []Line) float64 {
	var gaps []float64
	for _, line := range lines {
		spans := sortedSpans(line)
		for i := 1; i < len(spans); i++ {
			gap := spans[i].Box.X0 - spans[i-1].Box.X1
			if gap > 0 && gap < maxGapOutlier {
				gaps = append(gaps, gap)
			}
		}
	}
	if len(gaps) < 3 {
		return defaultSegmentGap
	}
	return clamp(median(gaps)+1.5*stdDev(gaps), minSegmentGap, maxSegmentGap)
}

func sortedSpans(line Line) []Span {
	spans := append([]Span(nil), line.Spans...)
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Box.X0 < spans[j].Box.X0 })
	return spans
}

// lineSegments merges the spans of a line whose gaps stay within gap.
func lineSegments(line Line, gap float64) []Rect {
	spans := sortedSpans(line)
	if len(spans) == 0 {
		return nil
	}
	segments := []Rect{spans[0].Box}
	for _, s := range spans[1:] {
		last := &segments[len(segments)-1]
		if s.Box.X0-last.X1 > gap {
			segments = append(segments, s.Box)
			continue
		}
		*last = mergeRects(*last, s.Box)
	}
	return segments
}

func tagLine(segments []Rect, pageWidth float64) lineType {
	switch {
	case len(segments) > 1:
		return tableLine
	case len(segments) == 1 && segments[0].Width() > pageWidth*0.5:
		return textLine
	}
	return unknownLine
}

// segmentRegions returns the areas of a page made of consecutive table and
// unknown lines that hold at least two table lines. Vertical lines and
// recurring blocks are ignored.
func segmentRegions(doc *Document, page PageInfo) []Rect {
	var lines []Line
	for _, line := range doc.Lines {
		if line.Box.Page != page.Number || isVerticalDir(line.Dir) {
			continue
		}
		if line.Block >= 0 && doc.Blocks[line.Block].role == RoleRecurring {
			continue
		}
		lines = append(lines, line)
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Box.Y0 < lines[j].Box.Y0 })

	gap := segmentGapThreshold(lines)

	var regions []Rect
	var area Rect
	inArea, tableLines := false, 0
	flush := func() {
		if inArea && tableLines >= 2 {
			regions = append(regions, area)
		}
		inArea, tableLines = false, 0
	}

	for _, line := range lines {
		kind := tagLine(lineSegments(line, gap), page.Width)
		if kind == textLine {
			flush()
			continue
		}
		if !inArea {
			area, inArea = line.Box, true
		} else {
			area = mergeRects(area, line.Box)
		}
		if kind == tableLine {
			tableLines++
		}
	}
	flush()
	return regions
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)))
}
