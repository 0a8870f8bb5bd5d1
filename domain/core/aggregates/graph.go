package aggregates

import (
	"time"

	"ideamap-canvas/domain/core/entities"
	"ideamap-canvas/domain/core/valueobjects"
	"ideamap-canvas/domain/events"
	pkgerrors "ideamap-canvas/pkg/errors"
)

// Graph is the aggregate root for the canvas node set.
// It preserves the host's node order, which every deterministic tie-break
// in layout and hit-testing relies on.
type Graph struct {
	order  []valueobjects.NodeID
	nodes  map[valueobjects.NodeID]*entities.Node
	events []events.DomainEvent
	now    func() time.Time
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		nodes:  make(map[valueobjects.NodeID]*entities.Node),
		events: []events.DomainEvent{},
		now:    time.Now,
	}
}

// ReconstructGraph builds a graph from a host snapshot.
// Repeated IDs keep their first occurrence. No events are recorded.
func ReconstructGraph(nodes []*entities.Node) *Graph {
	g := NewGraph()
	for _, node := range nodes {
		if node == nil {
			continue
		}
		if _, exists := g.nodes[node.ID()]; exists {
			continue
		}
		g.order = append(g.order, node.ID())
		g.nodes[node.ID()] = node
	}
	return g
}

// Len returns the number of nodes
func (g *Graph) Len() int {
	return len(g.order)
}

// AddNode appends a node at the end of the order
func (g *Graph) AddNode(node *entities.Node) error {
	if node == nil {
		return pkgerrors.NewValidationError("node cannot be nil")
	}

	if _, exists := g.nodes[node.ID()]; exists {
		return pkgerrors.NewConflictError("node already exists in graph: " + node.ID().String())
	}

	g.order = append(g.order, node.ID())
	g.nodes[node.ID()] = node
	return nil
}

// GetNode retrieves a node by ID
func (g *Graph) GetNode(nodeID valueobjects.NodeID) (*entities.Node, error) {
	node, exists := g.nodes[nodeID]
	if !exists {
		return nil, pkgerrors.NewNotFoundError("node " + nodeID.String())
	}
	return node, nil
}

// HasNode checks if a node exists in the graph without error
func (g *Graph) HasNode(nodeID valueobjects.NodeID) bool {
	_, exists := g.nodes[nodeID]
	return exists
}

// Nodes returns the nodes in insertion order
func (g *Graph) Nodes() []*entities.Node {
	nodes := make([]*entities.Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// NodeIDs returns the node identifiers in insertion order
func (g *Graph) NodeIDs() []valueobjects.NodeID {
	ids := make([]valueobjects.NodeID, len(g.order))
	copy(ids, g.order)
	return ids
}

// IndexOf returns the position of the node in the order, or -1
func (g *Graph) IndexOf(nodeID valueobjects.NodeID) int {
	for i, id := range g.order {
		if id.Equals(nodeID) {
			return i
		}
	}
	return -1
}

// MoveNode moves a single node. It reports whether the position changed.
func (g *Graph) MoveNode(nodeID valueobjects.NodeID, position valueobjects.Position) (bool, error) {
	node, err := g.GetNode(nodeID)
	if err != nil {
		return false, err
	}

	old := node.Position()
	if !node.MoveTo(position) {
		return false, nil
	}

	g.addEvent(events.NewNodeMoved(nodeID, old, position, g.now()))
	return true, nil
}

// MoveGroup moves a node to position and translates every node bound under it
// by the same delta. Either every member moves or none does.
func (g *Graph) MoveGroup(nodeID valueobjects.NodeID, position valueobjects.Position) ([]valueobjects.NodeID, error) {
	node, err := g.GetNode(nodeID)
	if err != nil {
		return nil, err
	}

	delta := position.Delta(node.Position())
	members := append([]valueobjects.NodeID{nodeID}, g.Descendants(nodeID)...)

	targets := make([]valueobjects.Position, len(members))
	targets[0] = position
	for i := 1; i < len(members); i++ {
		next, err := g.nodes[members[i]].Position().Translate(delta.X, delta.Y)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "group member "+members[i].String())
		}
		targets[i] = next
	}

	var moved []valueobjects.NodeID
	for i, id := range members {
		changed, err := g.MoveNode(id, targets[i])
		if err != nil {
			return moved, err
		}
		if changed {
			moved = append(moved, id)
		}
	}
	return moved, nil
}

// Connect adds the directed link source -> target.
// Both endpoints must exist; self-loops and duplicates are rejected.
func (g *Graph) Connect(sourceID, targetID valueobjects.NodeID) error {
	source, err := g.GetNode(sourceID)
	if err != nil {
		return err
	}
	if sourceID.Equals(targetID) {
		return pkgerrors.NewSelfReference(sourceID.String())
	}
	if !g.HasNode(targetID) {
		return pkgerrors.NewNotFoundError("node " + targetID.String())
	}

	if err := source.ConnectTo(targetID); err != nil {
		return err
	}

	g.addEvent(events.NewNodesConnected(sourceID, targetID, g.now()))
	return nil
}

// Disconnect removes the directed link source -> target
func (g *Graph) Disconnect(sourceID, targetID valueobjects.NodeID) error {
	return g.disconnect(sourceID, targetID, events.ReasonExplicit)
}

func (g *Graph) disconnect(sourceID, targetID valueobjects.NodeID, reason string) error {
	source, err := g.GetNode(sourceID)
	if err != nil {
		return err
	}

	if err := source.Disconnect(targetID); err != nil {
		return err
	}

	g.addEvent(events.NewNodesDisconnected(sourceID, targetID, reason, g.now()))
	return nil
}

// IsBidirectional reports whether both a -> b and b -> a exist
func (g *Graph) IsBidirectional(a, b valueobjects.NodeID) bool {
	na, okA := g.nodes[a]
	nb, okB := g.nodes[b]
	if !okA || !okB {
		return false
	}
	return na.HasConnectionTo(b) && nb.HasConnectionTo(a)
}

// RemoveNode deletes a node and every link pointing at it.
// Children bound to the node become free-standing.
func (g *Graph) RemoveNode(nodeID valueobjects.NodeID) error {
	if !g.HasNode(nodeID) {
		return pkgerrors.NewNotFoundError("node " + nodeID.String())
	}

	for _, id := range g.order {
		if id.Equals(nodeID) {
			continue
		}
		other := g.nodes[id]
		if other.HasConnectionTo(nodeID) {
			if err := g.disconnect(id, nodeID, events.ReasonCascade); err != nil {
				return err
			}
		}
		if other.ParentID().Equals(nodeID) {
			other.Unbind()
		}
	}

	idx := g.IndexOf(nodeID)
	delete(g.nodes, nodeID)
	g.order = append(g.order[:idx:idx], g.order[idx+1:]...)
	g.addEvent(events.NewNodeRemoved(nodeID, g.now()))
	return nil
}

// Edges returns every live edge in node order then connection order.
// Links whose target is not in the graph are skipped.
func (g *Graph) Edges() []entities.Edge {
	var edges []entities.Edge
	for _, id := range g.order {
		for _, target := range g.nodes[id].Connections() {
			if !g.HasNode(target) {
				continue
			}
			edges = append(edges, entities.Edge{Source: id, Target: target})
		}
	}
	return edges
}

// Outgoing returns the live outgoing neighbors of a node in connection order
func (g *Graph) Outgoing(nodeID valueobjects.NodeID) []valueobjects.NodeID {
	node, exists := g.nodes[nodeID]
	if !exists {
		return nil
	}
	var out []valueobjects.NodeID
	for _, target := range node.Connections() {
		if g.HasNode(target) {
			out = append(out, target)
		}
	}
	return out
}

// Incoming returns the nodes linking to nodeID, in node order
func (g *Graph) Incoming(nodeID valueobjects.NodeID) []valueobjects.NodeID {
	var in []valueobjects.NodeID
	for _, id := range g.order {
		if !id.Equals(nodeID) && g.nodes[id].HasConnectionTo(nodeID) {
			in = append(in, id)
		}
	}
	return in
}

// Degree returns the number of live links touching the node, in either direction
func (g *Graph) Degree(nodeID valueobjects.NodeID) int {
	return len(g.Outgoing(nodeID)) + len(g.Incoming(nodeID))
}

// Descendants returns every node bound under nodeID, breadth first.
// Binding cycles are cut at the first revisit.
func (g *Graph) Descendants(nodeID valueobjects.NodeID) []valueobjects.NodeID {
	visited := map[valueobjects.NodeID]bool{nodeID: true}
	queue := []valueobjects.NodeID{nodeID}
	var out []valueobjects.NodeID

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, id := range g.order {
			if visited[id] || !g.nodes[id].ParentID().Equals(current) {
				continue
			}
			visited[id] = true
			out = append(out, id)
			queue = append(queue, id)
		}
	}
	return out
}

// GetUncommittedEvents returns all uncommitted domain events
func (g *Graph) GetUncommittedEvents() []events.DomainEvent {
	out := make([]events.DomainEvent, len(g.events))
	copy(out, g.events)
	return out
}

// MarkEventsAsCommitted clears the uncommitted events
func (g *Graph) MarkEventsAsCommitted() {
	g.events = []events.DomainEvent{}
}

// Private helper methods

func (g *Graph) addEvent(event events.DomainEvent) {
	g.events = append(g.events, event)
}
