// Package detect defines table region detection on rendered pages.
package detect

import (
	"context"
	"image"
)

// Class is the label of a detected region.
type Class string

const (
	BorderedTable   Class = "Bordered_Table"
	Cell            Class = "Cell"
	BorderlessTable Class = "Borderless_Table"
)

// Valid reports whether c is one of the known classes.
func (c Class) Valid() bool {
	switch c {
	case BorderedTable, Cell, BorderlessTable:
		return true
	}
	return false
}

// IsTable reports whether the region outlines a whole table.
func (c Class) IsTable() bool {
	return c == BorderedTable || c == BorderlessTable
}

// Region is a candidate bounding box in image pixel coordinates.
type Region struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Score float64 `json:"score"`
	Class Class   `json:"class"`
}

// Scale multiplies all coordinates by factor.
func (r Region) Scale(factor float64) Region {
	r.X1 *= factor
	r.Y1 *= factor
	r.X2 *= factor
	r.Y2 *= factor
	return r
}

// Detector finds table regions on a page image.
type Detector interface {
	Detect(ctx context.Context, page image.Image) ([]Region, error)
}

// Confident keeps table regions scoring strictly above min.
func Confident(regions []Region, min float64) []Region {
	var out []Region
	for _, r := range regions {
		if r.Score > min && r.Class.IsTable() {
			out = append(out, r)
		}
	}
	return out
}
