// Package transform maps points between screen space (pointer coordinates
// relative to the canvas origin) and logical space (where node positions live).
//
//	logical = (screen - pan) / scale
//	screen  = logical*scale + pan
package transform

import (
	"math"

	"ideamap-canvas/domain/core/valueobjects"
	pkgerrors "ideamap-canvas/pkg/errors"

	"gonum.org/v1/gonum/spatial/r2"
)

// Transform is a pan offset plus a uniform scale factor.
type Transform struct {
	Pan   r2.Vec
	Scale float64
}

// Identity is the transform with no pan and unit scale
var Identity = Transform{Scale: 1}

// New creates a transform from its parts
func New(pan r2.Vec, scale float64) Transform {
	return Transform{Pan: pan, Scale: scale}
}

// Validate rejects a zero or non-finite scale and a non-finite pan
func (t Transform) Validate() error {
	if t.Scale == 0 {
		return pkgerrors.NewZeroScale()
	}
	if math.IsNaN(t.Scale) || math.IsInf(t.Scale, 0) {
		return pkgerrors.NewInvalidGeometry("scale must be finite")
	}
	if !valueobjects.IsFinite(t.Pan) {
		return pkgerrors.NewInvalidGeometry("pan offset must be finite")
	}
	return nil
}

// ToLogical converts a screen point into logical space
func (t Transform) ToLogical(screen valueobjects.Point) (r2.Vec, error) {
	if err := t.Validate(); err != nil {
		return r2.Vec{}, err
	}
	out := r2.Scale(1/t.Scale, r2.Sub(screen.Vec(), t.Pan))
	if !valueobjects.IsFinite(out) {
		return r2.Vec{}, pkgerrors.NewInvalidGeometry("logical point is not finite")
	}
	return out, nil
}

// ToLogicalPosition is ToLogical returning a validated node position
func (t Transform) ToLogicalPosition(screen valueobjects.Point) (valueobjects.Position, error) {
	v, err := t.ToLogical(screen)
	if err != nil {
		return valueobjects.Position{}, err
	}
	return valueobjects.PositionFromVec(v)
}

// ToScreen converts a logical point into screen space
func (t Transform) ToScreen(logical r2.Vec) (valueobjects.Point, error) {
	if err := t.Validate(); err != nil {
		return valueobjects.Point{}, err
	}
	out := r2.Add(r2.Scale(t.Scale, logical), t.Pan)
	if !valueobjects.IsFinite(out) {
		return valueobjects.Point{}, pkgerrors.NewInvalidGeometry("screen point is not finite")
	}
	return valueobjects.PointFromVec(out), nil
}

// ToLogicalDelta converts a screen-space displacement into a logical one.
// Pan does not apply to displacements.
func (t Transform) ToLogicalDelta(d r2.Vec) (r2.Vec, error) {
	if err := t.Validate(); err != nil {
		return r2.Vec{}, err
	}
	out := r2.Scale(1/t.Scale, d)
	if !valueobjects.IsFinite(out) {
		return r2.Vec{}, pkgerrors.NewInvalidGeometry("logical delta is not finite")
	}
	return out, nil
}

// ToLogical is the functional form of Transform.ToLogical
func ToLogical(screen valueobjects.Point, pan r2.Vec, scale float64) (r2.Vec, error) {
	return New(pan, scale).ToLogical(screen)
}

// ToScreen is the functional form of Transform.ToScreen
func ToScreen(logical r2.Vec, pan r2.Vec, scale float64) (valueobjects.Point, error) {
	return New(pan, scale).ToScreen(logical)
}
