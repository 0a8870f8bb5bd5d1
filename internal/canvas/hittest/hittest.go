// Package hittest routes a screen point to the node, link or bare canvas
// underneath it. Nodes are drawn above links, so a node always wins.
package hittest

import (
	"math"

	"ideamap-canvas/domain/core/aggregates"
	"ideamap-canvas/domain/core/valueobjects"
	"ideamap-canvas/internal/canvas/edges"
	"ideamap-canvas/internal/canvas/transform"

	"gonum.org/v1/gonum/spatial/r2"
)

// Kind is what a pointer landed on
type Kind int

const (
	Canvas Kind = iota
	Node
	Edge
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case Node:
		return "node"
	case Edge:
		return "edge"
	default:
		return "canvas"
	}
}

// Hit is the result of a pick
type Hit struct {
	Kind   Kind
	NodeID valueobjects.NodeID
	Line   edges.Line
}

// Tester picks targets using fixed node extents and link zones
type Tester struct {
	NodeSize valueobjects.Size
	Edges    edges.Settings
}

// Pick returns the topmost target under p: a node, else a link zone, else
// the canvas.
func (t Tester) Pick(g *aggregates.Graph, tr transform.Transform, p valueobjects.Point) Hit {
	if id, ok := t.NodeAt(g, tr, p); ok {
		return Hit{Kind: Node, NodeID: id}
	}
	if line, ok := t.EdgeAt(g, tr, p); ok {
		return Hit{Kind: Edge, Line: line}
	}
	return Hit{Kind: Canvas}
}

// NodeAt returns the node whose rendered rectangle contains p. Later nodes
// are drawn on top, so the search runs back to front.
func (t Tester) NodeAt(g *aggregates.Graph, tr transform.Transform, p valueobjects.Point) (valueobjects.NodeID, bool) {
	if tr.Validate() != nil || !valueobjects.IsFinite(p.Vec()) {
		return valueobjects.NodeID{}, false
	}
	half := r2.Scale(math.Abs(tr.Scale), t.NodeSize.Half())

	nodes := g.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		center, err := tr.ToScreen(nodes[i].Position().Vec())
		if err != nil {
			continue
		}
		box := r2.Box{Min: r2.Sub(center.Vec(), half), Max: r2.Add(center.Vec(), half)}
		if box.Contains(p.Vec()) {
			return nodes[i].ID(), true
		}
	}
	return valueobjects.NodeID{}, false
}

// EdgeAt returns the link whose hit zone contains p, nearest first
func (t Tester) EdgeAt(g *aggregates.Graph, tr transform.Transform, p valueobjects.Point) (edges.Line, bool) {
	if tr.Validate() != nil || !valueobjects.IsFinite(p.Vec()) {
		return edges.Line{}, false
	}
	zone := t.Edges.Zone()

	var (
		best     edges.Line
		bestDist = math.Inf(1)
		found    bool
	)
	for _, line := range edges.BuildLines(g, tr, t.Edges) {
		if !zone.Contains(line.Curve, p.Vec()) {
			continue
		}
		d := math.Min(r2.Norm(r2.Sub(p.Vec(), line.Curve.Midpoint())), line.Curve.Distance(p.Vec()))
		if d < bestDist {
			best, bestDist, found = line, d, true
		}
	}
	return best, found
}
