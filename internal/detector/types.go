package detector

import "github.com/dudu/facemorph/internal/landmark"

// Point is a sub-pixel model coordinate
type Point struct {
	X, Y float32
}

// Pixel truncates to integer pixel coordinates
func (p Point) Pixel() landmark.Point {
	return landmark.Point{X: int(p.X), Y: int(p.Y)}
}

// BoundingBox represents a face bounding box
type BoundingBox struct {
	X1, Y1 float32 // top-left
	X2, Y2 float32 // bottom-right
}

// Width returns box width
func (b BoundingBox) Width() float32 {
	return b.X2 - b.X1
}

// Height returns box height
func (b BoundingBox) Height() float32 {
	return b.Y2 - b.Y1
}

// Center returns box center point
func (b BoundingBox) Center() Point {
	return Point{X: (b.X1 + b.X2) / 2, Y: (b.Y1 + b.Y2) / 2}
}

// Area returns box area
func (b BoundingBox) Area() float32 {
	return b.Width() * b.Height()
}

// Face is one SCRFD detection
type Face struct {
	BoundingBox BoundingBox
	Score       float32
}

// numLandmarks is the point count of the 2d106det model
const numLandmarks = 106

// Landmarks106 represents 106 facial landmark points from insightface
type Landmarks106 [numLandmarks]Point

// PointSet converts the landmarks to integer pixels, keeping model order
func (l *Landmarks106) PointSet() landmark.PointSet {
	out := make(landmark.PointSet, len(l))
	for i, p := range l {
		out[i] = p.Pixel()
	}
	return out
}
