// Package edges holds the on-screen geometry of links between nodes: the
// curve each link is drawn as and the zone around it that accepts hovers
// and clicks.
package edges

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const curveSamples = 24

// Curve is a quadratic Bezier in screen space
type Curve struct {
	From    r2.Vec
	Control r2.Vec
	To      r2.Vec
}

// NewCurve bends the segment from -> to by offset pixels along its left
// normal. A zero offset, or coincident endpoints, yields a straight line.
func NewCurve(from, to r2.Vec, offset float64) Curve {
	mid := r2.Scale(0.5, r2.Add(from, to))
	dir := r2.Sub(to, from)
	if offset == 0 || r2.Norm(dir) == 0 {
		return Curve{From: from, Control: mid, To: to}
	}
	normal := r2.Unit(r2.Vec{X: -dir.Y, Y: dir.X})
	return Curve{From: from, Control: r2.Add(mid, r2.Scale(offset, normal)), To: to}
}

// At evaluates the curve at t in [0, 1]
func (c Curve) At(t float64) r2.Vec {
	u := 1 - t
	return r2.Add(
		r2.Add(r2.Scale(u*u, c.From), r2.Scale(2*u*t, c.Control)),
		r2.Scale(t*t, c.To),
	)
}

// Midpoint is the point on the curve at t = 0.5
func (c Curve) Midpoint() r2.Vec {
	return c.At(0.5)
}

// Straight reports whether the control point lies on the chord midpoint
func (c Curve) Straight() bool {
	mid := r2.Scale(0.5, r2.Add(c.From, c.To))
	return r2.Norm(r2.Sub(mid, c.Control)) < 1e-9
}

// Distance returns the distance from p to the curve, measured against a
// sampled polyline.
func (c Curve) Distance(p r2.Vec) float64 {
	best := math.Inf(1)
	prev := c.From
	for i := 1; i <= curveSamples; i++ {
		next := c.At(float64(i) / curveSamples)
		best = math.Min(best, segmentDistance(p, prev, next))
		prev = next
	}
	return best
}

// Zone is the hit area around a curve
type Zone struct {
	// MidpointRadius is the radius of the disc around the curve midpoint
	MidpointRadius float64
	// StrokeTolerance is how far from the stroke itself still counts
	StrokeTolerance float64
}

// Contains reports whether p falls in the zone around c
func (z Zone) Contains(c Curve, p r2.Vec) bool {
	if r2.Norm(r2.Sub(p, c.Midpoint())) <= z.MidpointRadius {
		return true
	}
	return z.StrokeTolerance > 0 && c.Distance(p) <= z.StrokeTolerance
}

func segmentDistance(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	l2 := r2.Dot(ab, ab)
	if l2 == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	t := r2.Dot(r2.Sub(p, a), ab) / l2
	t = math.Max(0, math.Min(1, t))
	return r2.Norm(r2.Sub(p, r2.Add(a, r2.Scale(t, ab))))
}
