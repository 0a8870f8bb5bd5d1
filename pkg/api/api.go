// Package api defines the contracts for the layout service requests and responses.
// It decouples the wire structure from the canvas domain types.
package api

// Node is one entry of a host node snapshot.
type Node struct {
	ID          string   `json:"id" yaml:"id" validate:"required"`
	X           float64  `json:"x" yaml:"x"`
	Y           float64  `json:"y" yaml:"y"`
	Connections []string `json:"connections,omitempty" yaml:"connections,omitempty"`
	Category    string   `json:"category,omitempty" yaml:"category,omitempty"`
	ParentID    string   `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Label       string   `json:"label,omitempty" yaml:"label,omitempty"`
}

// Size is a container or node extent in pixels.
type Size struct {
	Width  float64 `json:"width" yaml:"width" validate:"gt=0"`
	Height float64 `json:"height" yaml:"height" validate:"gt=0"`
}

// LayoutRequest is the expected body for a POST /layout/{kind} request.
// Width overrides the level layout's horizontal extent when set.
type LayoutRequest struct {
	Nodes []Node  `json:"nodes" yaml:"nodes" validate:"required,min=1,dive"`
	Width float64 `json:"width,omitempty" yaml:"width,omitempty" validate:"gte=0"`
}

// Placement is the computed position of one node.
type Placement struct {
	ID    string  `json:"id" yaml:"id"`
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	Level *int    `json:"level,omitempty" yaml:"level,omitempty"`
}

// LayoutResponse is the API representation of a computed layout.
type LayoutResponse struct {
	Kind       string      `json:"kind" yaml:"kind"`
	Center     string      `json:"center,omitempty" yaml:"center,omitempty"`
	Placements []Placement `json:"placements" yaml:"placements"`
}

// ClusterRequest is the expected body for a POST /clusters request.
type ClusterRequest struct {
	Nodes []Node `json:"nodes" yaml:"nodes" validate:"required,min=1,dive"`
}

// Bucket is one category container on the cluster board.
type Bucket struct {
	Key     string   `json:"key" yaml:"key"`
	Members []string `json:"members" yaml:"members"`
	X       float64  `json:"x" yaml:"x"`
	Y       float64  `json:"y" yaml:"y"`
	Width   float64  `json:"width" yaml:"width"`
	Height  float64  `json:"height" yaml:"height"`
}

// BucketEdge aggregates the links running between two buckets.
type BucketEdge struct {
	From          string `json:"from" yaml:"from"`
	To            string `json:"to" yaml:"to"`
	Count         int    `json:"count" yaml:"count"`
	Bidirectional bool   `json:"bidirectional" yaml:"bidirectional"`
}

// ClusterResponse is the API representation of a category clustering.
type ClusterResponse struct {
	Buckets []Bucket     `json:"buckets" yaml:"buckets"`
	Edges   []BucketEdge `json:"edges" yaml:"edges"`
}

// ViewportRequest is the expected body for POST /fit and POST /center.
type ViewportRequest struct {
	Nodes     []Node `json:"nodes" yaml:"nodes" validate:"required,min=1,dive"`
	Container Size   `json:"container" yaml:"container"`
}

// ViewportResponse carries the resulting scale and pan offset.
type ViewportResponse struct {
	Scale float64 `json:"scale" yaml:"scale"`
	PanX  float64 `json:"pan_x" yaml:"pan_x"`
	PanY  float64 `json:"pan_y" yaml:"pan_y"`
}

// ErrorResponse is a standardized error message for API responses.
type ErrorResponse struct {
	Error string `json:"error" yaml:"error"`
	Code  string `json:"code,omitempty" yaml:"code,omitempty"`
}
