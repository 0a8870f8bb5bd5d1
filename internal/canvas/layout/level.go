package layout

import (
	"ideamap-canvas/domain/core/aggregates"
	"ideamap-canvas/domain/core/valueobjects"
	pkgerrors "ideamap-canvas/pkg/errors"
)

// LevelSettings tune the level (flowchart) layout
type LevelSettings struct {
	SpacingX float64
	SpacingY float64
	StartY   float64
	// Width is the horizontal extent each level is centered in
	Width float64
}

// Level groups nodes into horizontal bands by link distance from the roots.
//
// Roots are linked nodes nothing points at. With none (every linked node sits
// on a cycle) the first linked node in graph order is the root; with no links
// at all there is no root and every node shares the first band, in graph
// order. A breadth-first walk from all roots at once
// follows links in both directions and assigns each node once, first visit
// wins. Nodes the walk never reaches go into one extra band after the deepest.
func Level(g *aggregates.Graph, s LevelSettings) (Result, error) {
	ids := g.NodeIDs()
	if len(ids) == 0 {
		return Result{}, pkgerrors.NewEmptyGraph("level layout")
	}

	levels := make(map[valueobjects.NodeID]int, len(ids))
	var bands [][]valueobjects.NodeID
	assign := func(id valueobjects.NodeID, level int) {
		levels[id] = level
		for len(bands) <= level {
			bands = append(bands, nil)
		}
		bands[level] = append(bands[level], id)
	}

	queue := findRoots(g, ids)
	for _, root := range queue {
		assign(root, 0)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		neighbors := append(g.Outgoing(current), g.Incoming(current)...)
		for _, next := range neighbors {
			if _, visited := levels[next]; visited {
				continue
			}
			assign(next, levels[current]+1)
			queue = append(queue, next)
		}
	}

	trailing := len(bands)
	for _, id := range ids {
		if _, visited := levels[id]; !visited {
			assign(id, trailing)
		}
	}

	placed := make(map[valueobjects.NodeID]valueobjects.Position, len(ids))
	for level, band := range bands {
		startX := (s.Width - float64(len(band)-1)*s.SpacingX) / 2
		y := s.StartY + float64(level)*s.SpacingY
		for i, id := range band {
			pos, err := valueobjects.NewPosition(startX+float64(i)*s.SpacingX, y)
			if err != nil {
				return Result{}, pkgerrors.Wrap(err, "level layout")
			}
			placed[id] = pos
		}
	}

	result := Result{Kind: KindLevel, Levels: levels, Placements: make([]Placement, 0, len(ids))}
	for _, id := range ids {
		result.Placements = append(result.Placements, Placement{NodeID: id, Position: placed[id]})
	}
	return result, nil
}

func findRoots(g *aggregates.Graph, ids []valueobjects.NodeID) []valueobjects.NodeID {
	var roots []valueobjects.NodeID
	var firstLinked *valueobjects.NodeID

	for _, id := range ids {
		out := len(g.Outgoing(id))
		in := len(g.Incoming(id))
		if firstLinked == nil && out+in > 0 {
			linked := id
			firstLinked = &linked
		}
		if in == 0 && out > 0 {
			roots = append(roots, id)
		}
	}

	if len(roots) == 0 && firstLinked != nil {
		return []valueobjects.NodeID{*firstLinked}
	}
	return roots
}
