package paperlayout

import (
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"go.uber.org/zap"
)

// markMetaPatterns claims Meta for blocks matching a metadata pattern.
func markMetaPatterns(doc *Document, patterns []MetaPattern) int {
	n := 0
	for i := range doc.Blocks {
		b := &doc.Blocks[i]
		if name, ok := matchMetaPattern(patterns, b.Text); ok {
			if b.Claim(RoleMeta, stageText, "pattern "+name) {
				n++
			}
		}
	}
	return n
}

// rectKey identifies a position regardless of page.
type rectKey struct {
	x0, y0, x1, y1 float64
}

// markGeometricDuplicates finds rectangles repeated more than repeats times.
// Within each such group every block but the one with the longest text is
// recurring; the survivor is left for the text classifier.
func markGeometricDuplicates(doc *Document, repeats int) int {
	groups := make(map[rectKey][]int)
	var order []rectKey
	for i, b := range doc.Blocks {
		k := rectKey{b.Box.X0, b.Box.Y0, b.Box.X1, b.Box.Y1}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	n := 0
	for _, k := range order {
		members := groups[k]
		if len(members) <= repeats {
			continue
		}
		keep := longestText(doc, members)
		for _, bi := range members {
			if bi == keep {
				continue
			}
			reason := fmt.Sprintf("rectangle repeated %d times", len(members))
			if doc.Blocks[bi].Claim(RoleRecurring, stageText, reason) {
				n++
			}
		}
	}
	return n
}

// longestText returns the member with the longest text, first on ties.
func longestText(doc *Document, members []int) int {
	best := members[0]
	for _, bi := range members[1:] {
		if utf8.RuneCountInString(doc.Blocks[bi].Text) > utf8.RuneCountInString(doc.Blocks[best].Text) {
			best = bi
		}
	}
	return best
}

// duplicateMatcher compares block texts for textual duplicates.
type duplicateMatcher struct {
	window    int
	threshold float64
	metric    strutil.StringMetric
}

func newDuplicateMatcher(config Config) duplicateMatcher {
	return duplicateMatcher{
		window:    config.FuzzyWindow,
		threshold: config.FuzzyThreshold,
		metric:    metrics.NewLevenshtein(),
	}
}

// match compares two alphanumeric-normalised texts. Identical texts match.
// Texts at least two windows long match when both their leading and their
// trailing windows are similar enough; shorter texts need an exact match.
func (m duplicateMatcher) match(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}

	ra, rb := []rune(a), []rune(b)
	if len(ra) < 2*m.window || len(rb) < 2*m.window {
		return false
	}

	head := strutil.Similarity(string(ra[:m.window]), string(rb[:m.window]), m.metric)
	tail := strutil.Similarity(string(ra[len(ra)-m.window:]), string(rb[len(rb)-m.window:]), m.metric)
	return head >= m.threshold && tail >= m.threshold
}

// markTextualDuplicates groups blocks whose texts match and marks every
// block but the longest of each group as recurring.
func markTextualDuplicates(doc *Document, config Config) int {
	m := newDuplicateMatcher(config)

	candidates := make([]int, 0, len(doc.Blocks))
	normalized := make(map[int]string, len(doc.Blocks))
	for i := range doc.Blocks {
		if doc.Blocks[i].role == RoleRecurring {
			continue
		}
		candidates = append(candidates, i)
		normalized[i] = alphanumeric(doc.Blocks[i].Text)
	}

	n := 0
	done := make(map[int]bool)
	for ci, a := range candidates {
		if done[a] {
			continue
		}
		group := []int{a}
		for _, b := range candidates[ci+1:] {
			if !done[b] && m.match(normalized[a], normalized[b]) {
				group = append(group, b)
			}
		}
		if len(group) < 2 {
			continue
		}

		sort.SliceStable(group, func(i, j int) bool {
			return utf8.RuneCountInString(doc.Blocks[group[i]].Text) > utf8.RuneCountInString(doc.Blocks[group[j]].Text)
		})
		for _, bi := range group {
			done[bi] = true
		}
		for _, bi := range group[1:] {
			reason := fmt.Sprintf("text duplicates block %d", group[0])
			if doc.Blocks[bi].Claim(RoleRecurring, stageText, reason) {
				n++
			}
		}
	}
	return n
}

// columnOccupancy counts candidate blocks per band and reports which bands
// hold at least ratio of the average band occupancy.
func columnOccupancy(doc *Document, candidates []int, bands int, ratio float64) []bool {
	inOrder := make([]bool, bands)
	if len(candidates) == 0 || bands <= 0 {
		return inOrder
	}

	counts := make([]int, bands)
	for _, bi := range candidates {
		counts[doc.Blocks[bi].Column]++
	}
	avg := float64(len(candidates)) / float64(bands)
	for i, c := range counts {
		inOrder[i] = float64(c) >= ratio*avg
	}
	return inOrder
}

// classifyTextArea claims Text for every unclassified block with a dominant
// font or size that sits in an occupied column band.
func classifyTextArea(doc *Document, config Config, log *zap.Logger) int {
	var candidates []int
	for i := range doc.Blocks {
		if doc.Blocks[i].role == RoleUnclassified && doc.Blocks[i].Text != "" {
			candidates = append(candidates, i)
		}
	}

	inOrder := columnOccupancy(doc, candidates, config.ColumnBands, config.OccupancyRatio)
	stats := doc.Stats

	n := 0
	for _, bi := range candidates {
		b := &doc.Blocks[bi]
		b.Features = TextFeatures{
			CommonFont:  stats.HasDominantFont(b.Font),
			CommonSize:  stats.HasDominantSize(b.Size),
			InOrder:     inOrder[b.Column],
			NormalWidth: hasNormalWidth(b.Box.Width(), stats.BodyWidth, config.BodyWidthTolerance),
		}
		f := b.Features
		if (f.CommonFont || f.CommonSize) && f.InOrder {
			if b.Claim(RoleText, stageText, "body typography") {
				n++
			}
		}
	}

	log.Debug("text area classified", zap.Int("candidates", len(candidates)), zap.Int("text", n))
	return n
}

// hasNormalWidth reports whether width is within tolerance of the body width.
func hasNormalWidth(width, body, tolerance float64) bool {
	if body <= 0 {
		return false
	}
	return math.Abs(width-body) <= tolerance*body
}
