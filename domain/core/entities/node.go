package entities

import (
	"strings"

	"ideamap-canvas/domain/core/valueobjects"
	pkgerrors "ideamap-canvas/pkg/errors"
)

// Node is the on-canvas representation of one idea.
// The canvas owns position and connections; everything else is read-only
// data supplied by the host's store.
type Node struct {
	id          valueobjects.NodeID
	position    valueobjects.Position
	connections []valueobjects.NodeID
	category    string
	parentID    valueobjects.NodeID
	label       string
}

// NewNode creates a node at the given logical position
func NewNode(id valueobjects.NodeID, position valueobjects.Position) (*Node, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node ID cannot be empty")
	}

	return &Node{
		id:          id,
		position:    position,
		connections: []valueobjects.NodeID{},
	}, nil
}

// ReconstructNode rebuilds a node from a host snapshot.
// Self references and repeated targets in connections are dropped, first
// occurrence wins, so a malformed snapshot cannot break the invariants.
func ReconstructNode(
	id valueobjects.NodeID,
	position valueobjects.Position,
	connections []valueobjects.NodeID,
	category string,
	parentID valueobjects.NodeID,
) (*Node, error) {
	node, err := NewNode(id, position)
	if err != nil {
		return nil, err
	}

	for _, target := range connections {
		// Ignore the error: dropping bad links is exactly what we want here
		_ = node.ConnectTo(target)
	}
	node.SetCategory(category)
	if !parentID.Equals(id) {
		node.parentID = parentID
	}

	return node, nil
}

// ID returns the node's unique identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// Position returns the node's position
func (n *Node) Position() valueobjects.Position {
	return n.position
}

// Category returns the grouping label, empty when unset
func (n *Node) Category() string {
	return n.category
}

// SetCategory sets the grouping label used by clustering
func (n *Node) SetCategory(category string) {
	n.category = strings.TrimSpace(category)
}

// Label returns the display text
func (n *Node) Label() string {
	return n.label
}

// SetLabel sets the display text
func (n *Node) SetLabel(label string) {
	n.label = label
}

// ParentID returns the node this one is bound to, zero when free-standing
func (n *Node) ParentID() valueobjects.NodeID {
	return n.parentID
}

// BindTo attaches the node to a parent so it follows the parent's moves
func (n *Node) BindTo(parentID valueobjects.NodeID) error {
	if parentID.Equals(n.id) {
		return pkgerrors.NewSelfReference(n.id.String())
	}
	n.parentID = parentID
	return nil
}

// Unbind detaches the node from its parent
func (n *Node) Unbind() {
	n.parentID = valueobjects.NodeID{}
}

// MoveTo moves the node to a new position.
// It reports whether the position actually changed.
func (n *Node) MoveTo(position valueobjects.Position) bool {
	if position.Equals(n.position) {
		return false
	}
	n.position = position
	return true
}

// ConnectTo appends a directed connection to targetID
func (n *Node) ConnectTo(targetID valueobjects.NodeID) error {
	if targetID.IsZero() {
		return pkgerrors.NewValidationError("target ID cannot be empty")
	}

	// Check for self-reference
	if n.id.Equals(targetID) {
		return errSelfReference(n.id)
	}

	// Check for duplicate connection
	if n.HasConnectionTo(targetID) {
		return pkgerrors.NewConflictError("connection already exists: " + n.id.String() + "->" + targetID.String())
	}

	n.connections = append(n.connections, targetID)
	return nil
}

// Disconnect removes the connection to targetID
func (n *Node) Disconnect(targetID valueobjects.NodeID) error {
	for i, existing := range n.connections {
		if existing.Equals(targetID) {
			n.connections = append(n.connections[:i:i], n.connections[i+1:]...)
			return nil
		}
	}

	return pkgerrors.NewEdgeNotFound(n.id.String(), targetID.String())
}

// HasConnectionTo checks if this node has a connection to the target
func (n *Node) HasConnectionTo(targetID valueobjects.NodeID) bool {
	for _, existing := range n.connections {
		if existing.Equals(targetID) {
			return true
		}
	}
	return false
}

// Connections returns a copy of the outgoing connection list, in insertion order
func (n *Node) Connections() []valueobjects.NodeID {
	out := make([]valueobjects.NodeID, len(n.connections))
	copy(out, n.connections)
	return out
}

func errSelfReference(id valueobjects.NodeID) error {
	return pkgerrors.NewSelfReference(id.String())
}
