package paperlayout

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// mergeRects merges two rectangles into their bounding box. The page of r1 is kept.
func mergeRects(r1, r2 Rect) Rect {
	return Rect{
		Page: r1.Page,
		X0:   math.Min(r1.X0, r2.X0),
		Y0:   math.Min(r1.Y0, r2.Y0),
		X1:   math.Max(r1.X1, r2.X1),
		Y1:   math.Max(r1.Y1, r2.Y1),
	}
}

// unionRects returns the bounding box of all rects, or a zero Rect.
func unionRects(rects []Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	out := rects[0]
	for _, r := range rects[1:] {
		out = mergeRects(out, r)
	}
	return out
}

// rectsOverlap checks if two rectangles overlap
func rectsOverlap(r1, r2 Rect) bool {
	return !(r1.X1 <= r2.X0 || r2.X1 <= r1.X0 || r1.Y1 <= r2.Y0 || r2.Y1 <= r1.Y0)
}

// rectContains checks if rect1 contains rect2
func rectContains(r1, r2 Rect) bool {
	return r1.X0 <= r2.X0 && r1.Y0 <= r2.Y0 && r1.X1 >= r2.X1 && r1.Y1 >= r2.Y1
}

// intersection returns the overlapping part of two rectangles.
func intersection(r1, r2 Rect) (Rect, bool) {
	out := Rect{
		Page: r1.Page,
		X0:   math.Max(r1.X0, r2.X0),
		Y0:   math.Max(r1.Y0, r2.Y0),
		X1:   math.Min(r1.X1, r2.X1),
		Y1:   math.Min(r1.Y1, r2.Y1),
	}
	if out.X1 <= out.X0 || out.Y1 <= out.Y0 {
		return Rect{}, false
	}
	return out, true
}

// insideRegion reports whether r lies in region: at least half of its area,
// or its center for degenerate boxes.
func insideRegion(region, r Rect) bool {
	if r.Area() <= 0 {
		return pointInRect(Point{X: r.CenterX(), Y: r.CenterY()}, region)
	}
	inter, ok := intersection(region, r)
	if !ok {
		return false
	}
	return inter.Area() >= 0.5*r.Area()
}

// pointInRect checks whether p lies inside r, borders included.
func pointInRect(p Point, r Rect) bool {
	return p.X >= r.X0 && p.X <= r.X1 && p.Y >= r.Y0 && p.Y <= r.Y1
}

// pointStrictlyInRect checks whether p lies inside r, borders excluded.
func pointStrictlyInRect(p Point, r Rect) bool {
	return p.X > r.X0 && p.X < r.X1 && p.Y > r.Y0 && p.Y < r.Y1
}

// expandRect expands a rectangle by the given amount in all directions
func expandRect(rect Rect, amount float64) Rect {
	return Rect{
		Page: rect.Page,
		X0:   rect.X0 - amount,
		Y0:   rect.Y0 - amount,
		X1:   rect.X1 + amount,
		Y1:   rect.Y1 + amount,
	}
}

// cornerDistance is the smallest distance between any corner of a and any corner of b.
func cornerDistance(a, b Rect) float64 {
	best := math.Inf(1)
	for _, p := range a.Corners() {
		for _, q := range b.Corners() {
			if d := math.Hypot(p.X-q.X, p.Y-q.Y); d < best {
				best = d
			}
		}
	}
	return best
}

// rowsOverlap is the same-row test: either box's vertical range contains
// an edge of the other.
func rowsOverlap(a, b Rect) bool {
	return (a.Y0 <= b.Y0 && b.Y0 <= a.Y1) ||
		(a.Y0 <= b.Y1 && b.Y1 <= a.Y1) ||
		(b.Y0 <= a.Y0 && a.Y0 <= b.Y1)
}

// overlapRatio returns the overlap of [a0,a1] and [b0,b1] relative to the shorter range.
func overlapRatio(a0, a1, b0, b1 float64) float64 {
	overlap := math.Min(a1, b1) - math.Max(a0, b0)
	shorter := math.Min(a1-a0, b1-b0)
	if shorter <= 0 {
		if overlap >= 0 {
			return 1
		}
		return 0
	}
	return overlap / shorter
}

// rangesIntersect reports whether two closed ranges share a point.
func rangesIntersect(a0, a1, b0, b1 float64) bool {
	return a0 <= b1 && b0 <= a1
}

// clamp restricts a value to a range
func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ranked is one bucket of a frequency ranking.
type ranked[T comparable] struct {
	Value T
	Count int
	first int
}

// rankByFrequency counts values and orders them by descending count.
// Equal counts keep first-seen order.
func rankByFrequency[T comparable](values []T) []ranked[T] {
	index := make(map[T]int)
	var buckets []ranked[T]
	for i, v := range values {
		if at, ok := index[v]; ok {
			buckets[at].Count++
			continue
		}
		index[v] = len(buckets)
		buckets = append(buckets, ranked[T]{Value: v, Count: 1, first: i})
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Count > buckets[j].Count
	})
	return buckets
}

// mostCommon returns the most frequent value, first seen on ties.
func mostCommon[T comparable](values []T) (T, bool) {
	ranking := rankByFrequency(values)
	if len(ranking) == 0 {
		var zero T
		return zero, false
	}
	return ranking[0].Value, true
}

// collapseSpaces replaces runs of whitespace with a single space and trims.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// wordCount counts whitespace separated words.
func wordCount(s string) int {
	return len(strings.Fields(s))
}

// nonSpaceCount counts non-whitespace runes.
func nonSpaceCount(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// endsWithPeriod reports whether trimmed text ends with a full stop.
func endsWithPeriod(s string) bool {
	return strings.HasSuffix(strings.TrimSpace(s), ".")
}

// startsWithLower reports whether the first letter-like rune is lowercase.
func startsWithLower(s string) bool {
	for _, r := range strings.TrimSpace(s) {
		return unicode.IsLower(r)
	}
	return false
}

// startsWithDigit reports whether trimmed text begins with a digit.
func startsWithDigit(s string) bool {
	for _, r := range strings.TrimSpace(s) {
		return unicode.IsDigit(r)
	}
	return false
}

// alphanumeric strips everything but letters, digits and underscores.
func alphanumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
