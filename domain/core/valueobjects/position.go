package valueobjects

import (
	"math"

	pkgerrors "ideamap-canvas/pkg/errors"

	"gonum.org/v1/gonum/spatial/r2"
)

// Position is a value object representing a node's coordinates in logical space
type Position struct {
	x float64
	y float64
}

// NewPosition creates a logical position with validation
func NewPosition(x, y float64) (Position, error) {
	if !isValidCoordinate(x) || !isValidCoordinate(y) {
		return Position{}, pkgerrors.NewInvalidGeometry("invalid coordinates: must be finite numbers")
	}
	return Position{x: x, y: y}, nil
}

// PositionFromVec converts a gonum vector into a validated position
func PositionFromVec(v r2.Vec) (Position, error) {
	return NewPosition(v.X, v.Y)
}

// X returns the X coordinate
func (p Position) X() float64 {
	return p.x
}

// Y returns the Y coordinate
func (p Position) Y() float64 {
	return p.y
}

// Vec returns the position as a gonum vector
func (p Position) Vec() r2.Vec {
	return r2.Vec{X: p.x, Y: p.y}
}

// DistanceTo calculates the Euclidean distance to another position
func (p Position) DistanceTo(other Position) float64 {
	return r2.Norm(r2.Sub(p.Vec(), other.Vec()))
}

// Equals checks if two positions are equal
func (p Position) Equals(other Position) bool {
	const epsilon = 1e-9
	return math.Abs(p.x-other.x) < epsilon &&
		math.Abs(p.y-other.y) < epsilon
}

// Translate moves the position by the given offsets
func (p Position) Translate(dx, dy float64) (Position, error) {
	return NewPosition(p.x+dx, p.y+dy)
}

// Delta returns the vector that moves other onto p
func (p Position) Delta(other Position) r2.Vec {
	return r2.Sub(p.Vec(), other.Vec())
}

// Midpoint calculates the midpoint between two positions
func (p Position) Midpoint(other Position) Position {
	return Position{
		x: (p.x + other.x) / 2,
		y: (p.y + other.y) / 2,
	}
}

// IsFinite reports whether both components of v are finite numbers
func IsFinite(v r2.Vec) bool {
	return isValidCoordinate(v.X) && isValidCoordinate(v.Y)
}

// isValidCoordinate checks if a coordinate is a valid finite number
func isValidCoordinate(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
