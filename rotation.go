package paperlayout

import (
	"math"
)

// Orientation is the writing direction bucket of a line or block. The
// dominant axis of the direction vector picks horizontal or vertical, its
// sign picks the bucket.
type Orientation int

const (
	// OrientationRightDown is ordinary left-to-right text.
	OrientationRightDown Orientation = iota
	// OrientationRightUp is horizontal text running right-to-left, as on an
	// upside-down page.
	OrientationRightUp
	// OrientationDownRight is text running top-to-bottom.
	OrientationDownRight
	// OrientationDownLeft is text running bottom-to-top.
	OrientationDownLeft
)

func (o Orientation) String() string {
	switch o {
	case OrientationRightDown:
		return "right-down"
	case OrientationRightUp:
		return "right-up"
	case OrientationDownRight:
		return "down-right"
	case OrientationDownLeft:
		return "down-left"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Vertical reports whether rows of this orientation run along the Y axis.
// It agrees with isVerticalDir for every direction in the bucket.
func (o Orientation) Vertical() bool {
	return o == OrientationDownRight || o == OrientationDownLeft
}

// orientationOf maps a direction vector to its bucket.
func orientationOf(dir [2]float64) Orientation {
	if isVerticalDir(dir) {
		if dir[1] >= 0 {
			return OrientationDownRight
		}
		return OrientationDownLeft
	}
	if dir[0] >= 0 {
		return OrientationRightDown
	}
	return OrientationRightUp
}

// voteOrientation picks the most frequent bucket; ties go to the lowest
// bucket index.
func voteOrientation(dirs [][2]float64) Orientation {
	var counts [4]int
	for _, d := range dirs {
		counts[orientationOf(d)]++
	}
	best := 0
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return Orientation(best)
}

// directionFromAngle converts a char rotation in radians (counter-clockwise,
// PDF convention) to a direction vector in top-left page coordinates.
func directionFromAngle(angle float64) [2]float64 {
	dx := math.Cos(angle)
	dy := -math.Sin(angle)
	// Snap near-axis values so tiny skews vote with their axis.
	if math.Abs(dx) < 1e-6 {
		dx = 0
	}
	if math.Abs(dy) < 1e-6 {
		dy = 0
	}
	return [2]float64{dx, dy}
}

// isVerticalDir reports whether a direction runs mostly along Y.
func isVerticalDir(dir [2]float64) bool {
	return math.Abs(dir[1]) > math.Abs(dir[0])
}
