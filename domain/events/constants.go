package events

// Event types raised by the canvas graph aggregate
const (
	// Node events
	TypeNodeMoved   = "node.moved"
	TypeNodeRemoved = "node.removed"

	// Edge events
	TypeNodesConnected    = "edge.connected"
	TypeNodesDisconnected = "edge.disconnected"
)

// Disconnect reasons carried on NodesDisconnected
const (
	// ReasonExplicit is an unlink requested by the user or the host
	ReasonExplicit = "explicit"

	// ReasonCascade is an unlink caused by deleting one of the endpoints
	ReasonCascade = "cascade"
)
