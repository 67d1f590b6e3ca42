package paperlayout

import (
	"math"
	"sort"
)

// detectGutters finds the x positions of column gutters on a page using a
// vertical projection profile of span boxes. Spans are never merged across
// a gutter.
func detectGutters(spans []Span, pageWidth float64) []float64 {
	if len(spans) == 0 || pageWidth <= 0 {
		return nil
	}

	// Build vertical projection profile (histogram of text density)
	binWidth := 1.0 // 1 point resolution
	numBins := int(math.Ceil(pageWidth / binWidth))
	bins := make([]int, numBins)

	for _, span := range spans {
		if isVerticalDir(span.Dir) {
			continue
		}
		startBin := int(span.Box.X0 / binWidth)
		endBin := int(math.Ceil(span.Box.X1 / binWidth))

		for bin := startBin; bin < endBin && bin < numBins; bin++ {
			if bin >= 0 {
				bins[bin]++
			}
		}
	}

	return findSignificantValleys(bins, pageWidth)
}

// findSignificantValleys identifies gaps in the text density histogram
func findSignificantValleys(bins []int, pageWidth float64) []float64 {
	if len(bins) == 0 {
		return nil
	}

	var sum int
	var nonZero int
	for _, count := range bins {
		sum += count
		if count > 0 {
			nonZero++
		}
	}

	if nonZero == 0 {
		return nil
	}

	avgDensity := float64(sum) / float64(nonZero)

	const minValleyWidth = 8.0  // Academic gutters are narrow
	const valleyThreshold = 0.1 // Valley density < 10% of average

	var valleys []float64
	valleyStart := -1
	threshold := int(avgDensity * valleyThreshold)

	for i, count := range bins {
		if count <= threshold {
			if valleyStart == -1 {
				valleyStart = i
			}
			continue
		}
		if valleyStart != -1 {
			if float64(i-valleyStart) >= minValleyWidth {
				valleys = append(valleys, float64(valleyStart+i)/2.0)
			}
			valleyStart = -1
		}
	}

	// Margins are valleys too; keep only interior ones.
	const edgeMargin = 50.0
	var filtered []float64
	for _, valley := range valleys {
		if valley > edgeMargin && valley < pageWidth-edgeMargin {
			filtered = append(filtered, valley)
		}
	}

	return filtered
}

// gutterIndex returns which column a box falls into given sorted gutters.
func gutterIndex(r Rect, gutters []float64) int {
	center := r.CenterX()
	return sort.SearchFloat64s(gutters, center)
}

// assignReadingOrder buckets blocks into equal-width bands across the
// document width and computes the absolute reading-order keys of blocks and
// lines. Band order dominates vertical position, and page order dominates both.
func assignReadingOrder(doc *Document, bands int) {
	if len(doc.Blocks) == 0 {
		return
	}
	if bands <= 0 {
		bands = 1
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	sideLength := 0.0
	for _, b := range doc.Blocks {
		minX = math.Min(minX, b.Box.X0)
		maxX = math.Max(maxX, b.Box.X1)
		sideLength = math.Max(sideLength, b.Box.Y1)
	}
	for _, p := range doc.Pages {
		sideLength = math.Max(sideLength, p.Height)
	}

	colLength := (maxX - minX) / float64(bands)

	for i := range doc.Blocks {
		b := &doc.Blocks[i]
		b.Column = bandOf(b.Box.X0, minX, colLength, bands)
		offset := float64(b.Column)*sideLength + float64(b.Page)*float64(bands)*sideLength
		b.AbsY0 = b.Box.Y0 + offset
		b.AbsY1 = b.Box.Y1 + offset

		for _, li := range b.Lines {
			line := &doc.Lines[li]
			line.AbsY0 = b.AbsY0 + (line.Box.Y0 - b.Box.Y0)
			line.AbsY1 = b.AbsY0 + (line.Box.Y1 - b.Box.Y0)
		}
	}
}

// bandOf returns the band index of x.
func bandOf(x, minX, colLength float64, bands int) int {
	if colLength <= 0 {
		return 0
	}
	col := int((x - minX) / colLength)
	if col < 0 {
		return 0
	}
	if col >= bands {
		return bands - 1
	}
	return col
}

// readingOrder returns block indices sorted by absolute reading order.
func readingOrder(doc *Document, keep func(*Block) bool) []int {
	var out []int
	for i := range doc.Blocks {
		if keep == nil || keep(&doc.Blocks[i]) {
			out = append(out, i)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := doc.Blocks[out[i]], doc.Blocks[out[j]]
		if a.AbsY0 != b.AbsY0 {
			return a.AbsY0 < b.AbsY0
		}
		return a.Box.X0 < b.Box.X0
	})
	return out
}
