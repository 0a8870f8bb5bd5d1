package layout

import (
	"math"

	"ideamap-canvas/domain/core/aggregates"
	"ideamap-canvas/domain/core/valueobjects"
	pkgerrors "ideamap-canvas/pkg/errors"

	"gonum.org/v1/gonum/spatial/r2"
)

// RadialSettings tune the radial layout
type RadialSettings struct {
	Center        r2.Vec
	RadiusPerNode float64
	MaxRadius     float64
}

// Radius returns min(n*RadiusPerNode, MaxRadius)
func (s RadialSettings) Radius(n int) float64 {
	return math.Min(float64(n)*s.RadiusPerNode, s.MaxRadius)
}

// Radial puts the best-connected node at the center and spreads the rest
// evenly on a circle, in graph order, starting at angle zero.
//
// Connectivity counts live links in both directions. Ties go to the node
// that comes first in graph order.
func Radial(g *aggregates.Graph, s RadialSettings) (Result, error) {
	ids := g.NodeIDs()
	if len(ids) == 0 {
		return Result{}, pkgerrors.NewEmptyGraph("radial layout")
	}

	center := ids[0]
	best := g.Degree(center)
	for _, id := range ids[1:] {
		if d := g.Degree(id); d > best {
			center, best = id, d
		}
	}

	n := len(ids)
	radius := s.Radius(n)
	result := Result{Kind: KindRadial, Center: center, Placements: make([]Placement, 0, n)}

	index := 0
	for _, id := range ids {
		var v r2.Vec
		if id.Equals(center) {
			v = s.Center
		} else {
			angle := 2 * math.Pi * float64(index) / float64(n-1)
			v = r2.Add(s.Center, r2.Vec{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)})
			index++
		}

		pos, err := valueobjects.PositionFromVec(v)
		if err != nil {
			return Result{}, pkgerrors.Wrap(err, "radial layout")
		}
		result.Placements = append(result.Placements, Placement{NodeID: id, Position: pos})
	}

	return result, nil
}
