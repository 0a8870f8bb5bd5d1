package valueobjects

import (
	"strings"

	pkgerrors "ideamap-canvas/pkg/errors"

	"github.com/google/uuid"
)

// NodeID is a value object representing an opaque node identifier.
// Identifiers come from the host's data store, so any non-empty string is accepted.
type NodeID struct {
	value string
}

// NewNodeID creates a new random NodeID
func NewNodeID() NodeID {
	return NodeID{value: uuid.New().String()}
}

// NewNodeIDFromString creates a NodeID from an existing string
func NewNodeIDFromString(id string) (NodeID, error) {
	if strings.TrimSpace(id) == "" {
		return NodeID{}, pkgerrors.NewValidationError("node ID cannot be empty")
	}
	return NodeID{value: id}, nil
}

// MustNodeID is NewNodeIDFromString for literals known to be valid
func MustNodeID(id string) NodeID {
	nid, err := NewNodeIDFromString(id)
	if err != nil {
		panic(err)
	}
	return nid
}

// String returns the string representation of the NodeID
func (id NodeID) String() string {
	return id.value
}

// Equals checks if two NodeIDs are equal
func (id NodeID) Equals(other NodeID) bool {
	return id.value == other.value
}

// IsZero checks if the NodeID is the zero value
func (id NodeID) IsZero() bool {
	return id.value == ""
}
