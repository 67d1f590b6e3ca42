package paperlayout

import (
	"math"
	"unicode"
)

// defaultDistance is used when a gap distribution has too few buckets.
const defaultDistance = 2

// Statistics is the typographic baseline of a document.
type Statistics struct {
	CharSpacing   float64  `json:"charSpacing"`
	LineDistance  float64  `json:"lineDistance"`
	DominantSizes []int    `json:"dominantSizes"`
	DominantFonts []string `json:"dominantFonts"`
	BodyWidth     float64  `json:"bodyWidth"`
	PageWidth     float64  `json:"pageWidth"`
	PageHeight    float64  `json:"pageHeight"`
}

// LineHeight is the dominant font size, falling back to the line distance.
func (s Statistics) LineHeight() float64 {
	if len(s.DominantSizes) > 0 && s.DominantSizes[0] > 0 {
		return float64(s.DominantSizes[0])
	}
	if s.LineDistance > 0 {
		return s.LineDistance
	}
	return defaultDistance
}

// HasDominantFont reports whether font is in the dominant set.
func (s Statistics) HasDominantFont(font string) bool {
	for _, f := range s.DominantFonts {
		if f == font {
			return true
		}
	}
	return false
}

// HasDominantSize reports whether size is in the dominant set.
func (s Statistics) HasDominantSize(size int) bool {
	for _, v := range s.DominantSizes {
		if v == size {
			return true
		}
	}
	return false
}

// higherDistance picks the most frequent gap bucket above 1 from integer
// gaps. The 0 and 1 buckets are kerning and tight-set text, not spacing.
func higherDistance(deltas []int) float64 {
	ranking := rankByFrequency(deltas)
	if len(ranking) <= 1 {
		return defaultDistance
	}
	for _, r := range ranking {
		if r.Value > 1 {
			return float64(r.Value)
		}
	}
	return defaultDistance
}

// charSpacingOf computes the normal horizontal gap between consecutive
// non-space characters across all pages.
func charSpacingOf(pages []*PageGeometry) float64 {
	var deltas []int
	for _, page := range pages {
		var prev *Char
		for i := range page.Chars {
			ch := &page.Chars[i]
			if unicode.IsSpace(ch.Text) {
				continue
			}
			if prev != nil {
				delta := int(ch.Box.X0 - prev.Box.X1)
				if delta >= 0 && float64(delta) <= page.Width {
					deltas = append(deltas, delta)
				}
			}
			prev = ch
		}
	}
	return higherDistance(deltas)
}

// lineDistanceOf computes the normal vertical gap between consecutive lines
// on the same page that do not share a row.
func lineDistanceOf(lines []Line) float64 {
	var deltas []int
	for i := 1; i < len(lines); i++ {
		prev, line := lines[i-1], lines[i]
		if prev.Box.Page != line.Box.Page || rowsOverlap(prev.Box, line.Box) {
			continue
		}
		delta := int(line.Box.Y0 - prev.Box.Y1)
		if delta >= 0 {
			deltas = append(deltas, delta)
		}
	}
	return higherDistance(deltas)
}

// dominantValues scans values in descending frequency and keeps each one
// whose count is at least ratio times the previous kept count.
func dominantValues[T comparable](values []T, ratio float64) []T {
	ranking := rankByFrequency(values)
	if len(ranking) == 0 {
		return nil
	}
	out := []T{ranking[0].Value}
	prev := ranking[0].Count
	for _, r := range ranking[1:] {
		if float64(r.Count)/float64(prev) < ratio {
			break
		}
		out = append(out, r.Value)
		prev = r.Count
	}
	return out
}

// bodyWidthOf returns the largest accepted width among block widths wider
// than a quarter page. Widths are accepted in descending frequency while each
// count stays at least ratio times the previous accepted count.
func bodyWidthOf(blocks []Block, pageWidth, ratio float64) float64 {
	var widths []int
	for _, b := range blocks {
		if w := b.Box.Width(); w > pageWidth/4 {
			widths = append(widths, int(w))
		}
	}
	ranking := rankByFrequency(widths)
	if len(ranking) == 0 {
		return 0
	}

	best := ranking[0].Value
	prev := ranking[0].Count
	for _, r := range ranking[1:] {
		if float64(r.Count)/float64(prev) < ratio {
			break
		}
		best = max(best, r.Value)
		prev = r.Count
	}
	return float64(best)
}

// computeStatistics fills the font, size and width baselines once blocks exist.
func computeStatistics(doc *Document, config Config) {
	fonts := make([]string, 0, len(doc.Lines))
	sizes := make([]int, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		fonts = append(fonts, line.Font)
		sizes = append(sizes, line.Size)
	}
	doc.Stats.DominantFonts = dominantValues(fonts, config.DominantRatio)
	doc.Stats.DominantSizes = dominantValues(sizes, config.DominantRatio)

	for _, p := range doc.Pages {
		doc.Stats.PageWidth = math.Max(doc.Stats.PageWidth, p.Width)
		doc.Stats.PageHeight = math.Max(doc.Stats.PageHeight, p.Height)
	}
	doc.Stats.BodyWidth = bodyWidthOf(doc.Blocks, doc.Stats.PageWidth, config.BodyWidthRatio)
}
