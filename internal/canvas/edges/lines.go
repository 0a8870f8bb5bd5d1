package edges

import (
	"ideamap-canvas/domain/core/aggregates"
	"ideamap-canvas/domain/core/entities"
	"ideamap-canvas/internal/canvas/transform"
)

// Settings control link geometry and hit zones, in screen pixels
type Settings struct {
	HitRadius       float64
	StrokeTolerance float64
	CurveOffset     float64
}

// DefaultSettings returns the stock link geometry
func DefaultSettings() Settings {
	return Settings{
		HitRadius:       12,
		StrokeTolerance: 4,
		CurveOffset:     30,
	}
}

// Zone returns the hit zone described by the settings
func (s Settings) Zone() Zone {
	return Zone{MidpointRadius: s.HitRadius, StrokeTolerance: s.StrokeTolerance}
}

// Line is one drawable link. A bidirectional pair collapses into a single
// straight line whose Edge is the first direction in graph order.
type Line struct {
	Edge          entities.Edge
	Bidirectional bool
	Curve         Curve
}

// Edges returns the directed edges the line stands for
func (l Line) Edges() []entities.Edge {
	if l.Bidirectional {
		return []entities.Edge{l.Edge, l.Edge.Reverse()}
	}
	return []entities.Edge{l.Edge}
}

// BuildLines lays out every live edge of g in screen space.
// Edges whose endpoints cannot be projected are left out.
func BuildLines(g *aggregates.Graph, tr transform.Transform, s Settings) []Line {
	seen := make(map[string]bool)
	var lines []Line

	for _, edge := range g.Edges() {
		pair := edge.PairKey()
		if seen[pair] {
			continue
		}

		source, err := g.GetNode(edge.Source)
		if err != nil {
			continue
		}
		target, err := g.GetNode(edge.Target)
		if err != nil {
			continue
		}
		from, err := tr.ToScreen(source.Position().Vec())
		if err != nil {
			continue
		}
		to, err := tr.ToScreen(target.Position().Vec())
		if err != nil {
			continue
		}

		bidirectional := g.IsBidirectional(edge.Source, edge.Target)
		offset := s.CurveOffset
		if bidirectional {
			offset = 0
			seen[pair] = true
		}

		lines = append(lines, Line{
			Edge:          edge,
			Bidirectional: bidirectional,
			Curve:         NewCurve(from.Vec(), to.Vec(), offset),
		})
	}
	return lines
}
