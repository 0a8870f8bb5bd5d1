package canvas

import (
	"context"

	"ideamap-canvas/domain/core/valueobjects"
	"ideamap-canvas/internal/canvas/edges"
	"ideamap-canvas/internal/canvas/layout"
	pkgerrors "ideamap-canvas/pkg/errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
)

// Select marks a node as selected. Unknown IDs clear the selection.
func (c *Canvas) Select(id valueobjects.NodeID) bool {
	c.lock()
	defer c.unlock()

	if !c.graph.HasNode(id) {
		c.selected = nil
		c.reject("select", pkgerrors.NewNotFoundError("node "+id.String()))
		return false
	}
	c.selected = &id
	return true
}

// Selected returns the selected node
func (c *Canvas) Selected() (valueobjects.NodeID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selected == nil {
		return valueobjects.NodeID{}, false
	}
	return *c.selected, true
}

// StartConnecting enters connect mode from the selected node. The next
// press on another node links to it; a press anywhere else cancels.
func (c *Canvas) StartConnecting() bool {
	c.lock()
	defer c.unlock()

	if c.selected == nil {
		c.logger.Debug("Connect mode needs a selected node")
		return false
	}
	source := *c.selected
	c.connectFrom = &source
	return true
}

// Connecting returns the connect-mode source, if the mode is active
func (c *Canvas) Connecting() (valueobjects.NodeID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connectFrom == nil {
		return valueobjects.NodeID{}, false
	}
	return *c.connectFrom, true
}

// Connect links source -> target. Self links, duplicates and unknown nodes
// are ignored.
func (c *Canvas) Connect(source, target valueobjects.NodeID) bool {
	c.lock()
	defer c.unlock()
	return c.connectLocked(source, target)
}

// Disconnect removes source -> target if it exists
func (c *Canvas) Disconnect(source, target valueobjects.NodeID) bool {
	c.lock()
	defer c.unlock()
	return c.disconnectLocked(source, target)
}

// DeleteSelected removes the selected node and every link pointing at it
func (c *Canvas) DeleteSelected() bool {
	c.lock()
	defer c.unlock()

	if c.selected == nil {
		return false
	}
	id := *c.selected
	c.selected = nil
	if c.connectFrom != nil && c.connectFrom.Equals(id) {
		c.connectFrom = nil
	}
	c.hovered = nil

	if err := c.graph.RemoveNode(id); err != nil {
		c.reject("delete", err, zap.String("nodeID", id.String()))
		return false
	}
	return true
}

// HoveredEdge returns the link under the pointer from the last move
func (c *Canvas) HoveredEdge() (edges.Line, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hovered == nil {
		return edges.Line{}, false
	}
	return *c.hovered, true
}

// CenterView pans so the centroid of all nodes sits mid-container.
// An empty canvas is left alone.
func (c *Canvas) CenterView() bool {
	c.lock()
	defer c.unlock()

	_, span := c.tracer.Start(context.Background(), "viewport.center",
		trace.WithAttributes(attribute.Int("canvas.nodes", c.graph.Len())))
	defer span.End()

	if err := c.viewport.CenterOn(c.positions(), c.sizer.ContainerSize()); err != nil {
		span.RecordError(err)
		c.reject("center view", err)
		return false
	}
	c.metrics.RecordViewport("center")
	return true
}

// FitToScreen scales and pans so every node fits in the container
func (c *Canvas) FitToScreen() bool {
	c.lock()
	defer c.unlock()

	_, span := c.tracer.Start(context.Background(), "viewport.fit",
		trace.WithAttributes(attribute.Int("canvas.nodes", c.graph.Len())))
	defer span.End()

	if err := c.viewport.FitToScreen(c.positions(), c.tester.NodeSize, c.sizer.ContainerSize()); err != nil {
		span.RecordError(err)
		c.reject("fit to screen", err)
		return false
	}
	span.SetAttributes(attribute.Float64("viewport.scale", c.viewport.Scale()))
	c.metrics.RecordViewport("fit")
	return true
}

// ResetView returns to unit scale with no pan
func (c *Canvas) ResetView() {
	c.lock()
	defer c.unlock()

	c.viewport.Reset()
	c.metrics.RecordViewport("reset")
}

// ApplyLayout runs a geometric layout and writes the positions back,
// emitting one move intent per node that actually moved. The level layout
// is centered in the live container width.
func (c *Canvas) ApplyLayout(ctx context.Context, kind layout.Kind) (layout.Result, bool) {
	c.lock()
	defer c.unlock()

	result, err := c.layouts.Run(ctx, kind, c.graph, c.sizer.ContainerSize().Width)
	if err != nil {
		c.reject("layout", err, zap.String("kind", string(kind)))
		return layout.Result{}, false
	}

	for _, p := range result.Placements {
		if _, err := c.graph.MoveNode(p.NodeID, p.Position); err != nil {
			c.reject("layout placement", err, zap.String("nodeID", p.NodeID.String()))
		}
	}
	return result, true
}

// Clusters groups the nodes by category
func (c *Canvas) Clusters(ctx context.Context) (layout.Clustering, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out, err := c.layouts.Clusters(ctx, c.graph)
	if err != nil {
		c.reject("clusters", err)
		return layout.Clustering{}, false
	}
	return out, true
}

func (c *Canvas) connectLocked(source, target valueobjects.NodeID) bool {
	if err := c.graph.Connect(source, target); err != nil {
		c.reject("connect", err,
			zap.String("source", source.String()),
			zap.String("target", target.String()))
		return false
	}
	return true
}

func (c *Canvas) disconnectLocked(source, target valueobjects.NodeID) bool {
	if err := c.graph.Disconnect(source, target); err != nil {
		c.reject("disconnect", err,
			zap.String("source", source.String()),
			zap.String("target", target.String()))
		return false
	}
	return true
}

func (c *Canvas) positions() []r2.Vec {
	nodes := c.graph.Nodes()
	out := make([]r2.Vec, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Position().Vec())
	}
	return out
}
