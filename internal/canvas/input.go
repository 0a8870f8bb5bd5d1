package canvas

import (
	"time"

	"ideamap-canvas/domain/core/valueobjects"
	"ideamap-canvas/internal/canvas/drag"
	"ideamap-canvas/internal/canvas/hittest"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
)

// PointerEvent is a pointer or touch event in screen space. Clicks is the
// host's click count (2 for a double click); zero means the canvas should
// detect double clicks itself.
type PointerEvent struct {
	ID     int
	Point  valueobjects.Point
	Clicks int
}

// WheelEvent is a wheel or pinch step at a screen point
type WheelEvent struct {
	DeltaY float64
	Point  valueobjects.Point
}

// Key is a keyboard shortcut name
type Key string

const (
	KeyPlus      Key = "+"
	KeyEquals    Key = "="
	KeyMinus     Key = "-"
	KeyDelete    Key = "Delete"
	KeyBackspace Key = "Backspace"
	KeyConnect   Key = "c"
	KeyEscape    Key = "Escape"
	KeyCenter    Key = "0"
	KeyFit       Key = "f"
)

// PointerDown routes a press to connect mode, a node drag, a link removal,
// node creation or a canvas pan. A press from a second pointer while a drag
// or pan is active is ignored.
func (c *Canvas) PointerDown(ev PointerEvent) hittest.Hit {
	c.lock()
	defer c.unlock()

	if c.drag.State() == drag.Dragging || c.pan != nil {
		c.logger.Debug("Ignoring pointer while another interaction is active",
			zap.Int("pointerID", ev.ID))
		return hittest.Hit{Kind: hittest.Canvas}
	}

	tr := c.viewport.Transform()
	hit := c.tester.Pick(c.graph, tr, ev.Point)

	if c.connectFrom != nil {
		c.finishConnect(hit)
		return hit
	}

	switch hit.Kind {
	case hittest.Node:
		c.beginDrag(ev, hit.NodeID)
	case hittest.Edge:
		for _, e := range hit.Line.Edges() {
			c.disconnectLocked(e.Source, e.Target)
		}
		c.hovered = nil
	default:
		c.selected = nil
		if c.isDoubleClick(ev) {
			c.createAt(ev.Point)
			return hit
		}
		c.pan = &panSession{pointerID: ev.ID, origin: ev.Point, last: ev.Point}
	}
	return hit
}

// PointerMove feeds the active drag or pan, or updates link hover
func (c *Canvas) PointerMove(ev PointerEvent) {
	c.lock()
	defer c.unlock()

	if c.drag.State() == drag.Dragging {
		c.drag.Move(ev.ID, ev.Point)
		return
	}

	if c.pan != nil {
		if c.pan.pointerID == ev.ID {
			c.panTo(ev.Point)
		}
		return
	}

	hit := c.tester.Pick(c.graph, c.viewport.Transform(), ev.Point)
	if hit.Kind == hittest.Edge {
		line := hit.Line
		c.hovered = &line
	} else {
		c.hovered = nil
	}
}

// PointerUp ends the drag or pan driven by this pointer, wherever it is
// released. The last pending move is applied first.
func (c *Canvas) PointerUp(ev PointerEvent) {
	c.lock()
	defer c.unlock()

	if c.drag.Owns(ev.ID) {
		c.drag.Move(ev.ID, ev.Point)
		c.flushLocked()
		if s, ok := c.drag.End(ev.ID); ok {
			c.emit(func(i Intents) { i.OnDragState(s.NodeID, drag.PhaseEnded) })
		}
		return
	}

	if c.pan != nil && c.pan.pointerID == ev.ID {
		c.endPan()
	}
}

// LostPointerCapture cancels whatever the pointer was driving
func (c *Canvas) LostPointerCapture(pointerID int) {
	c.lock()
	defer c.unlock()

	if c.drag.Owns(pointerID) {
		c.cancelDrag()
	}
	if c.pan != nil && c.pan.pointerID == pointerID {
		c.endPan()
	}
}

// Blur cancels every active interaction, as when the window loses focus
func (c *Canvas) Blur() {
	c.lock()
	defer c.unlock()

	c.cancelDrag()
	c.endPan()
	c.hovered = nil
}

// Wheel zooms one step
func (c *Canvas) Wheel(ev WheelEvent) {
	c.lock()
	defer c.unlock()

	if err := c.viewport.Wheel(ev.DeltaY, ev.Point); err != nil {
		c.reject("wheel", err)
		return
	}
	if ev.DeltaY != 0 {
		c.metrics.RecordViewport("wheel")
	}
}

// Key runs a keyboard shortcut and reports whether it was recognised
func (c *Canvas) Key(k Key) bool {
	switch k {
	case KeyPlus, KeyEquals:
		c.keyZoom(true)
	case KeyMinus:
		c.keyZoom(false)
	case KeyDelete, KeyBackspace:
		c.DeleteSelected()
	case KeyConnect:
		c.StartConnecting()
	case KeyEscape:
		c.Cancel()
	case KeyCenter:
		c.CenterView()
	case KeyFit:
		c.FitToScreen()
	default:
		return false
	}
	return true
}

// Cancel leaves connect mode and abandons any drag or pan
func (c *Canvas) Cancel() {
	c.lock()
	defer c.unlock()

	c.connectFrom = nil
	c.cancelDrag()
	c.endPan()
}

func (c *Canvas) keyZoom(in bool) {
	c.lock()
	defer c.unlock()

	if err := c.viewport.KeyZoom(in); err != nil {
		c.reject("key zoom", err)
		return
	}
	c.metrics.RecordViewport("key_zoom")
}

func (c *Canvas) beginDrag(ev PointerEvent, id valueobjects.NodeID) {
	node, err := c.graph.GetNode(id)
	if err != nil {
		c.reject("begin drag", err)
		return
	}

	selected := id
	c.selected = &selected

	if err := c.drag.Begin(ev.ID, id, ev.Point, node.Position(), c.viewport.Transform()); err != nil {
		c.reject("begin drag", err, zap.String("nodeID", id.String()))
		return
	}
	c.emit(func(i Intents) { i.OnDragState(id, drag.PhaseStarted) })
}

func (c *Canvas) cancelDrag() {
	if s, ok := c.drag.Cancel(); ok {
		c.emit(func(i Intents) { i.OnDragState(s.NodeID, drag.PhaseCancelled) })
	}
}

// panTo moves the viewport once the pointer has left the dead zone
func (c *Canvas) panTo(p valueobjects.Point) {
	if !c.pan.moved {
		if r2.Norm(p.Sub(c.pan.origin)) < c.deadZone {
			return
		}
		c.pan.moved = true
	}

	if err := c.viewport.PanBy(p.Sub(c.pan.last)); err != nil {
		c.reject("pan", err)
		return
	}
	c.pan.last = p
}

func (c *Canvas) endPan() {
	if c.pan == nil {
		return
	}
	if c.pan.moved {
		c.metrics.RecordViewport("pan")
	}
	c.pan = nil
}

// isDoubleClick trusts the host's click count when given, otherwise pairs
// this press with the previous canvas press.
func (c *Canvas) isDoubleClick(ev PointerEvent) bool {
	if ev.Clicks > 0 {
		return ev.Clicks >= 2
	}

	now := c.now()
	double := !c.lastClickAt.IsZero() &&
		now.Sub(c.lastClickAt) <= c.doubleClick &&
		r2.Norm(ev.Point.Sub(c.lastClickPos)) <= c.deadZone
	if double {
		c.lastClickAt = time.Time{}
	} else {
		c.lastClickAt = now
		c.lastClickPos = ev.Point
	}
	return double
}

// createAt asks the host for a new node under the pointer
func (c *Canvas) createAt(p valueobjects.Point) {
	pos, err := c.viewport.Transform().ToLogicalPosition(p)
	if err != nil {
		c.reject("create node", err)
		return
	}
	id := valueobjects.NewNodeID()
	c.emit(func(i Intents) { i.OnCreate(id, pos) })
}

// finishConnect completes or abandons connect mode
func (c *Canvas) finishConnect(hit hittest.Hit) {
	source := *c.connectFrom
	c.connectFrom = nil

	if hit.Kind != hittest.Node {
		c.logger.Debug("Connect cancelled", zap.String("source", source.String()))
		return
	}
	c.connectLocked(source, hit.NodeID)
}
