package entities

import (
	"ideamap-canvas/domain/core/valueobjects"
)

// Edge is a directed connection derived from a node's connection list.
// Edges are never stored on their own; the graph computes them on demand.
type Edge struct {
	Source valueobjects.NodeID
	Target valueobjects.NodeID
}

// NewEdge creates an edge value, rejecting self-loops
func NewEdge(source, target valueobjects.NodeID) (Edge, error) {
	if source.Equals(target) {
		return Edge{}, errSelfReference(source)
	}
	return Edge{Source: source, Target: target}, nil
}

// Key returns the stable "source->target" identity of the edge
func (e Edge) Key() string {
	return e.Source.String() + "->" + e.Target.String()
}

// Reverse returns the opposite direction
func (e Edge) Reverse() Edge {
	return Edge{Source: e.Target, Target: e.Source}
}

// PairKey identifies the unordered node pair, so A->B and B->A share it
func (e Edge) PairKey() string {
	a, b := e.Source.String(), e.Target.String()
	if b < a {
		a, b = b, a
	}
	return a + "<->" + b
}
