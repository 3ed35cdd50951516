package landmark

import "fmt"

// boundaryPadding is the fraction of the bounding rect kept between
// the rect edges and the synthesized points.
const boundaryPadding = 0.1

// BoundaryPoints produces two extra anchor points near the top of the face:
// the top-left and top-right corners of the bounding rect, each inset by 10%
// of the rect's width and height.
func BoundaryPoints(points PointSet) (Point, Point, error) {
	if len(points) == 0 {
		return Point{}, Point{}, fmt.Errorf("boundary points of empty set: %w", ErrInvalidInput)
	}

	r := points.BoundingRect()
	spacerW := int(float64(r.Width) * boundaryPadding)
	spacerH := int(float64(r.Height) * boundaryPadding)

	topLeft := Point{X: r.X + spacerW, Y: r.Y + spacerH}
	topRight := Point{X: r.X + r.Width - spacerW, Y: r.Y + spacerH}
	return topLeft, topRight, nil
}

// WithBoundaryPoints returns a copy of points with both boundary points
// appended. An empty set is returned unchanged.
func WithBoundaryPoints(points PointSet) PointSet {
	out := make(PointSet, len(points), len(points)+2)
	copy(out, points)
	if len(points) == 0 {
		return out
	}
	topLeft, topRight, _ := BoundaryPoints(points)
	return append(out, topLeft, topRight)
}
