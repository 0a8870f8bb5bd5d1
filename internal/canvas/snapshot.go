package canvas

import (
	"errors"
	"fmt"

	"ideamap-canvas/domain/core/aggregates"
	"ideamap-canvas/domain/core/entities"
	"ideamap-canvas/domain/core/valueobjects"
)

// NodeSnapshot is the host's view of one node: the fields the canvas reads.
type NodeSnapshot struct {
	ID          string   `json:"id" yaml:"id" validate:"required"`
	X           float64  `json:"x" yaml:"x"`
	Y           float64  `json:"y" yaml:"y"`
	Connections []string `json:"connections,omitempty" yaml:"connections,omitempty"`
	Category    string   `json:"category,omitempty" yaml:"category,omitempty"`
	ParentID    string   `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Label       string   `json:"label,omitempty" yaml:"label,omitempty"`
}

// BuildGraph turns a snapshot into a graph, keeping the input order.
// Nodes with an empty ID or a non-finite position are left out and reported
// in the returned error; the graph still holds every valid node.
func BuildGraph(snapshot []NodeSnapshot) (*aggregates.Graph, error) {
	nodes := make([]*entities.Node, 0, len(snapshot))
	var errs []error

	for i, s := range snapshot {
		node, err := s.toNode()
		if err != nil {
			errs = append(errs, fmt.Errorf("node %d (%q): %w", i, s.ID, err))
			continue
		}
		nodes = append(nodes, node)
	}

	return aggregates.ReconstructGraph(nodes), errors.Join(errs...)
}

// Snapshot renders the graph back into host form
func Snapshot(g *aggregates.Graph) []NodeSnapshot {
	out := make([]NodeSnapshot, 0, g.Len())
	for _, n := range g.Nodes() {
		s := NodeSnapshot{
			ID:       n.ID().String(),
			X:        n.Position().X(),
			Y:        n.Position().Y(),
			Category: n.Category(),
			ParentID: n.ParentID().String(),
			Label:    n.Label(),
		}
		for _, c := range n.Connections() {
			s.Connections = append(s.Connections, c.String())
		}
		out = append(out, s)
	}
	return out
}

func (s NodeSnapshot) toNode() (*entities.Node, error) {
	id, err := valueobjects.NewNodeIDFromString(s.ID)
	if err != nil {
		return nil, err
	}
	pos, err := valueobjects.NewPosition(s.X, s.Y)
	if err != nil {
		return nil, err
	}

	// Blank targets are skipped; dangling ones are kept and ignored by the graph
	conns := make([]valueobjects.NodeID, 0, len(s.Connections))
	for _, c := range s.Connections {
		if target, err := valueobjects.NewNodeIDFromString(c); err == nil {
			conns = append(conns, target)
		}
	}

	var parent valueobjects.NodeID
	if s.ParentID != "" {
		parent, _ = valueobjects.NewNodeIDFromString(s.ParentID)
	}

	node, err := entities.ReconstructNode(id, pos, conns, s.Category, parent)
	if err != nil {
		return nil, err
	}
	node.SetLabel(s.Label)
	return node, nil
}
