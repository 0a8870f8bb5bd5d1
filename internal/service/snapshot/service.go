// Package snapshot runs canvas computations over a host node snapshot. It
// backs both the HTTP layout service and canvasctl, so the two surfaces
// always produce identical results for the same input.
package snapshot

import (
	"context"

	"ideamap-canvas/domain/core/valueobjects"
	"ideamap-canvas/internal/canvas"
	"ideamap-canvas/internal/canvas/layout"
	"ideamap-canvas/internal/config"
	"ideamap-canvas/pkg/api"
	pkgerrors "ideamap-canvas/pkg/errors"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Service computes layouts, clusterings and viewport fits
type Service struct {
	logger  *zap.Logger
	metrics canvas.Metrics
	tracer  trace.Tracer
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger handed to each canvas
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records every computation on m
func WithMetrics(m canvas.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTracer sets the tracer for layout and viewport spans
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) { s.tracer = tracer }
}

// NewService creates a snapshot service
func NewService(opts ...Option) *Service {
	s := &Service{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FromAPI converts wire nodes into canvas snapshots
func FromAPI(nodes []api.Node) []canvas.NodeSnapshot {
	out := make([]canvas.NodeSnapshot, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, canvas.NodeSnapshot{
			ID:          n.ID,
			X:           n.X,
			Y:           n.Y,
			Connections: n.Connections,
			Category:    n.Category,
			ParentID:    n.ParentID,
			Label:       n.Label,
		})
	}
	return out
}

// Layout runs a placement layout. width overrides the level layout's
// horizontal extent when positive. The returned nodes carry the new
// positions, in input order.
func (s *Service) Layout(ctx context.Context, cfg *config.Config, nodes []canvas.NodeSnapshot, kind layout.Kind, width float64) (api.LayoutResponse, []canvas.NodeSnapshot, error) {
	if kind != layout.KindRadial && kind != layout.KindLevel {
		return api.LayoutResponse{}, nil, pkgerrors.NewValidationError("unknown layout: " + string(kind))
	}

	c, err := s.open(cfg, nodes, valueobjects.Size{Width: width, Height: 1})
	if err != nil {
		return api.LayoutResponse{}, nil, err
	}
	defer c.Close()

	result, ok := c.ApplyLayout(ctx, kind)
	if !ok {
		return api.LayoutResponse{}, nil, pkgerrors.NewEmptyGraph(string(kind) + " layout")
	}

	resp := api.LayoutResponse{
		Kind:       string(result.Kind),
		Placements: make([]api.Placement, 0, len(result.Placements)),
	}
	if !result.Center.IsZero() {
		resp.Center = result.Center.String()
	}
	for _, p := range result.Placements {
		placement := api.Placement{ID: p.NodeID.String(), X: p.Position.X(), Y: p.Position.Y()}
		if level, ok := result.Levels[p.NodeID]; ok {
			placement.Level = &level
		}
		resp.Placements = append(resp.Placements, placement)
	}
	return resp, c.Nodes(), nil
}

// Clusters groups the snapshot by category
func (s *Service) Clusters(ctx context.Context, cfg *config.Config, nodes []canvas.NodeSnapshot) (api.ClusterResponse, error) {
	c, err := s.open(cfg, nodes, valueobjects.Size{Width: 1, Height: 1})
	if err != nil {
		return api.ClusterResponse{}, err
	}
	defer c.Close()

	out, ok := c.Clusters(ctx)
	if !ok {
		return api.ClusterResponse{}, pkgerrors.NewEmptyGraph("cluster layout")
	}

	resp := api.ClusterResponse{
		Buckets: make([]api.Bucket, 0, len(out.Buckets)),
		Edges:   make([]api.BucketEdge, 0, len(out.Edges)),
	}
	for _, b := range out.Buckets {
		size := b.Bounds.Size()
		bucket := api.Bucket{
			Key:     b.Key,
			Members: make([]string, 0, len(b.Members)),
			X:       b.Bounds.Min.X,
			Y:       b.Bounds.Min.Y,
			Width:   size.X,
			Height:  size.Y,
		}
		for _, id := range b.Members {
			bucket.Members = append(bucket.Members, id.String())
		}
		resp.Buckets = append(resp.Buckets, bucket)
	}
	for _, e := range out.Edges {
		resp.Edges = append(resp.Edges, api.BucketEdge{
			From:          e.From,
			To:            e.To,
			Count:         e.Count(),
			Bidirectional: e.Bidirectional(),
		})
	}
	return resp, nil
}

// Fit returns the viewport that fits every node into container
func (s *Service) Fit(ctx context.Context, cfg *config.Config, nodes []canvas.NodeSnapshot, container valueobjects.Size) (api.ViewportResponse, error) {
	return s.viewport(cfg, nodes, container, "fit to screen", (*canvas.Canvas).FitToScreen)
}

// Center returns the viewport that centers the nodes' centroid at scale 1
func (s *Service) Center(ctx context.Context, cfg *config.Config, nodes []canvas.NodeSnapshot, container valueobjects.Size) (api.ViewportResponse, error) {
	return s.viewport(cfg, nodes, container, "center view", (*canvas.Canvas).CenterView)
}

func (s *Service) viewport(cfg *config.Config, nodes []canvas.NodeSnapshot, container valueobjects.Size, op string, apply func(*canvas.Canvas) bool) (api.ViewportResponse, error) {
	if !container.Valid() {
		return api.ViewportResponse{}, pkgerrors.NewInvalidGeometry("container size must be positive")
	}

	c, err := s.open(cfg, nodes, container)
	if err != nil {
		return api.ViewportResponse{}, err
	}
	defer c.Close()

	if !apply(c) {
		return api.ViewportResponse{}, pkgerrors.NewEmptyGraph(op)
	}

	state := c.Viewport()
	return api.ViewportResponse{Scale: state.Scale, PanX: state.Pan.X, PanY: state.Pan.Y}, nil
}

// open builds a throwaway canvas over nodes. Snapshots holding unusable
// nodes are refused outright rather than silently trimmed.
func (s *Service) open(cfg *config.Config, nodes []canvas.NodeSnapshot, container valueobjects.Size) (*canvas.Canvas, error) {
	if len(nodes) == 0 {
		return nil, pkgerrors.NewEmptyGraph("snapshot")
	}
	if _, err := canvas.BuildGraph(nodes); err != nil {
		return nil, pkgerrors.Wrap(err, "invalid snapshot")
	}

	opts := []canvas.Option{canvas.WithLogger(s.logger)}
	if s.metrics != nil {
		opts = append(opts, canvas.WithMetrics(s.metrics))
	}
	if s.tracer != nil {
		opts = append(opts, canvas.WithTracer(s.tracer))
	}

	sizer := canvas.SizerFunc(func() valueobjects.Size { return container })
	c, err := canvas.New(cfg, nil, sizer, opts...)
	if err != nil {
		return nil, err
	}
	c.SetNodes(nodes)
	return c, nil
}
