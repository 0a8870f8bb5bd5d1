package valueobjects

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a screen-space coordinate relative to the canvas origin, in pixels.
// Unlike Position it carries no validation: pointer events arrive as-is and are
// checked when converted into logical space.
type Point struct {
	X float64
	Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Vec returns the point as a gonum vector
func (p Point) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// PointFromVec converts a gonum vector into a screen point
func PointFromVec(v r2.Vec) Point {
	return Point{X: v.X, Y: v.Y}
}

// Sub returns p - q as a vector
func (p Point) Sub(q Point) r2.Vec {
	return r2.Sub(p.Vec(), q.Vec())
}

// Size is a width/height pair: a rendering surface or a node's extent.
type Size struct {
	Width  float64
	Height float64
}

// Valid reports whether both dimensions are finite and strictly positive.
func (s Size) Valid() bool {
	return isValidCoordinate(s.Width) && isValidCoordinate(s.Height) &&
		s.Width > 0 && s.Height > 0
}

// Center returns the midpoint of a surface of this size anchored at the origin.
func (s Size) Center() r2.Vec {
	return r2.Vec{X: s.Width / 2, Y: s.Height / 2}
}

// Half returns half the extent as a vector.
func (s Size) Half() r2.Vec {
	return r2.Vec{X: s.Width / 2, Y: s.Height / 2}
}
