package landmark

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when point sets cannot be combined.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoFace is the in-band "no detection" signal of a detector backend.
	ErrNoFace = errors.New("no face found")
)

// Point represents a 2D point in image pixel space
type Point struct {
	X, Y int
}

// String formats the point the way detectors print it ("X-Y")
func (p Point) String() string {
	return fmt.Sprintf("%d-%d", p.X, p.Y)
}

// PointSet is an ordered sequence of landmarks for one face.
// Index i of one set is the same landmark as index i of another.
type PointSet []Point

// Clone returns a copy that shares no memory with s
func (s PointSet) Clone() PointSet {
	if s == nil {
		return nil
	}
	out := make(PointSet, len(s))
	copy(out, s)
	return out
}

// Rect is an axis-aligned rectangle
type Rect struct {
	X, Y          int // top-left
	Width, Height int
}

// BoundingRect computes the tight bounding rectangle around all points
func (s PointSet) BoundingRect() Rect {
	if len(s) == 0 {
		return Rect{}
	}
	minX, minY := s[0].X, s[0].Y
	maxX, maxY := s[0].X, s[0].Y
	for i := 1; i < len(s); i++ {
		if s[i].X < minX {
			minX = s[i].X
		}
		if s[i].X > maxX {
			maxX = s[i].X
		}
		if s[i].Y < minY {
			minY = s[i].Y
		}
		if s[i].Y > maxY {
			maxY = s[i].Y
		}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
