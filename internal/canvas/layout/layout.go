// Package layout computes node positions from the link graph.
//
// Radial and Level are geometric layouts returning a position per node.
// Cluster is a grouping transform: it partitions nodes into category buckets
// and aggregates cross-bucket links, without placing individual nodes.
// All functions are pure over the graph snapshot they are given.
package layout

import (
	"ideamap-canvas/domain/core/valueobjects"

	"gonum.org/v1/gonum/spatial/r2"
)

// Kind names a layout algorithm
type Kind string

const (
	KindRadial  Kind = "radial"
	KindLevel   Kind = "level"
	KindCluster Kind = "cluster"
)

// ParseKind validates a layout name
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindRadial, KindLevel, KindCluster:
		return Kind(s), true
	default:
		return "", false
	}
}

// Placement is the computed position for one node
type Placement struct {
	NodeID   valueobjects.NodeID
	Position valueobjects.Position
}

// Result is the output of a geometric layout, in graph node order
type Result struct {
	Kind       Kind
	Placements []Placement

	// Center is the node the radial layout was built around
	Center valueobjects.NodeID

	// Levels holds the band each node landed in for the level layout
	Levels map[valueobjects.NodeID]int
}

// Position returns the computed position for id
func (r Result) Position(id valueobjects.NodeID) (valueobjects.Position, bool) {
	for _, p := range r.Placements {
		if p.NodeID.Equals(id) {
			return p.Position, true
		}
	}
	return valueobjects.Position{}, false
}

// Settings bundles the tunables for every algorithm
type Settings struct {
	Radial  RadialSettings
	Level   LevelSettings
	Cluster ClusterSettings
}

// DefaultSettings returns the stock layout tunables
func DefaultSettings() Settings {
	return Settings{
		Radial: RadialSettings{
			Center:        r2.Vec{X: 400, Y: 300},
			RadiusPerNode: 50,
			MaxRadius:     300,
		},
		Level: LevelSettings{
			SpacingX: 220,
			SpacingY: 160,
			StartY:   80,
			Width:    1200,
		},
		Cluster: ClusterSettings{
			Uncategorized: "uncategorized",
			CellWidth:     360,
			CellHeight:    280,
			Gap:           40,
		},
	}
}
