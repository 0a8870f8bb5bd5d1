package events

import (
	"time"

	"ideamap-canvas/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// NodeMoved is raised when a node is moved to a new position
type NodeMoved struct {
	BaseEvent
	NodeID      valueobjects.NodeID   `json:"node_id"`
	OldPosition valueobjects.Position `json:"old_position"`
	NewPosition valueobjects.Position `json:"new_position"`
}

// NewNodeMoved creates a NodeMoved event
func NewNodeMoved(nodeID valueobjects.NodeID, oldPos, newPos valueobjects.Position, timestamp time.Time) NodeMoved {
	return NodeMoved{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   TypeNodeMoved,
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID:      nodeID,
		OldPosition: oldPos,
		NewPosition: newPos,
	}
}

// NodeRemoved is raised after a node and all links touching it are gone
type NodeRemoved struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
}

// NewNodeRemoved creates a NodeRemoved event
func NewNodeRemoved(nodeID valueobjects.NodeID, timestamp time.Time) NodeRemoved {
	return NodeRemoved{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   TypeNodeRemoved,
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID: nodeID,
	}
}

// Edge Events

// NodesConnected is raised when a directed link source -> target is added
type NodesConnected struct {
	BaseEvent
	SourceID valueobjects.NodeID `json:"source_id"`
	TargetID valueobjects.NodeID `json:"target_id"`
}

// NewNodesConnected creates a NodesConnected event
func NewNodesConnected(sourceID, targetID valueobjects.NodeID, timestamp time.Time) NodesConnected {
	return NodesConnected{
		BaseEvent: BaseEvent{
			AggregateID: sourceID.String(),
			EventType:   TypeNodesConnected,
			Timestamp:   timestamp,
			Version:     1,
		},
		SourceID: sourceID,
		TargetID: targetID,
	}
}

// NodesDisconnected is raised when a directed link source -> target is removed
type NodesDisconnected struct {
	BaseEvent
	SourceID valueobjects.NodeID `json:"source_id"`
	TargetID valueobjects.NodeID `json:"target_id"`
	Reason   string              `json:"reason"`
}

// NewNodesDisconnected creates a NodesDisconnected event
func NewNodesDisconnected(sourceID, targetID valueobjects.NodeID, reason string, timestamp time.Time) NodesDisconnected {
	return NodesDisconnected{
		BaseEvent: BaseEvent{
			AggregateID: sourceID.String(),
			EventType:   TypeNodesDisconnected,
			Timestamp:   timestamp,
			Version:     1,
		},
		SourceID: sourceID,
		TargetID: targetID,
		Reason:   reason,
	}
}
