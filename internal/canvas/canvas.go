// Package canvas is the interactive engine behind the graph views.
//
// A Canvas owns a snapshot of the host's nodes, the viewport, the drag
// engine, selection and connect mode. Pointer, wheel and key events go in;
// intents (move, connect, disconnect, delete, create, drag state) come out.
// Every soft failure is logged, counted and turned into a no-op.
package canvas

import (
	"context"
	"sync"
	"time"

	"ideamap-canvas/domain/core/aggregates"
	"ideamap-canvas/domain/core/valueobjects"
	"ideamap-canvas/domain/events"
	"ideamap-canvas/internal/canvas/drag"
	"ideamap-canvas/internal/canvas/edges"
	"ideamap-canvas/internal/canvas/hittest"
	"ideamap-canvas/internal/canvas/layout"
	"ideamap-canvas/internal/canvas/transform"
	"ideamap-canvas/internal/canvas/viewport"
	"ideamap-canvas/internal/config"
	pkgerrors "ideamap-canvas/pkg/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
)

const tracerName = "ideamap-canvas/canvas"

// Option configures a Canvas
type Option func(*Canvas)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Canvas) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m Metrics) Option {
	return func(c *Canvas) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithFrameScheduler sets how drag frames are scheduled. The default is
// drag.Manual: the host calls Flush once per paint.
func WithFrameScheduler(factory drag.SchedulerFactory) Option {
	return func(c *Canvas) {
		if factory != nil {
			c.schedulerFactory = factory
		}
	}
}

// WithTickerFrames flushes drag frames from a background ticker running at
// drag.frame_interval. ApplyConfig retunes the interval. The ticker stops
// when ctx is done or the canvas is closed.
func WithTickerFrames(ctx context.Context) Option {
	return func(c *Canvas) {
		c.tickerCtx = ctx
	}
}

// WithTracer sets the tracer used for layout and viewport spans
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Canvas) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// ViewportState is a read-only copy of the viewport
type ViewportState struct {
	Scale float64
	Pan   r2.Vec
}

// panSession tracks a background drag that moves the viewport
type panSession struct {
	pointerID int
	origin    valueobjects.Point
	last      valueobjects.Point
	moved     bool
}

// Canvas is safe for concurrent use. Intents are delivered after the
// internal lock is released, in the order they were produced.
type Canvas struct {
	mu sync.Mutex

	graph    *aggregates.Graph
	viewport *viewport.Controller
	drag     *drag.Engine
	frames   drag.FrameScheduler
	layouts  *layout.Runner
	tester   hittest.Tester

	intents Intents
	sizer   ContainerSizer
	logger  *zap.Logger
	metrics Metrics
	tracer  trace.Tracer

	schedulerFactory drag.SchedulerFactory
	tickerCtx        context.Context

	deadZone    float64
	doubleClick time.Duration
	now         func() time.Time

	selected     *valueobjects.NodeID
	connectFrom  *valueobjects.NodeID
	hovered      *edges.Line
	pan          *panSession
	lastClickAt  time.Time
	lastClickPos valueobjects.Point

	outbox []func(Intents)
}

// New creates a canvas with an empty node set. A nil cfg uses the defaults.
func New(cfg *config.Config, intents Intents, sizer ContainerSizer, opts ...Option) (*Canvas, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, pkgerrors.Wrap(err, "canvas config")
	}
	if intents == nil {
		intents = IntentFuncs{}
	}
	if sizer == nil {
		return nil, pkgerrors.NewValidationError("container sizer is required")
	}

	c := &Canvas{
		graph:            aggregates.NewGraph(),
		intents:          intents,
		sizer:            sizer,
		logger:           zap.NewNop(),
		metrics:          nopMetrics{},
		schedulerFactory: drag.Manual,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	if c.tickerCtx != nil {
		c.schedulerFactory = drag.Ticker(c.tickerCtx, cfg.Drag.FrameInterval)
	}

	c.viewport = viewport.New(ViewportSettings(cfg))
	c.layouts = layout.NewRunner(LayoutSettings(cfg), c.logger.Named("layout"), c.tracer, c.metrics)
	c.frames = c.schedulerFactory(func() { c.Flush() })
	c.drag = drag.NewEngine(c.frames)
	c.applyConfig(cfg)

	return c, nil
}

// Close stops the frame scheduler
func (c *Canvas) Close() {
	c.frames.Stop()
}

// SetNodes replaces the node snapshot. Invalid entries are skipped. An
// active drag survives; if its node is gone later frames are no-ops.
func (c *Canvas) SetNodes(snapshot []NodeSnapshot) {
	c.lock()
	defer c.unlock()

	g, err := BuildGraph(snapshot)
	if err != nil {
		c.logger.Debug("Skipped invalid nodes in snapshot", zap.Error(err))
		c.metrics.RecordRejection(string(pkgerrors.CodeInvalidInput))
	}
	c.graph = g

	if c.selected != nil && !g.HasNode(*c.selected) {
		c.selected = nil
	}
	if c.connectFrom != nil && !g.HasNode(*c.connectFrom) {
		c.connectFrom = nil
	}
	c.hovered = nil
}

// Nodes returns the current node set in host form
func (c *Canvas) Nodes() []NodeSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot(c.graph)
}

// Lines returns the drawable links under the current viewport
func (c *Canvas) Lines() []edges.Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return edges.BuildLines(c.graph, c.viewport.Transform(), c.tester.Edges)
}

// IsBidirectional reports whether a and b link to each other
func (c *Canvas) IsBidirectional(a, b valueobjects.NodeID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.graph.IsBidirectional(a, b)
}

// Viewport returns the current scale and pan
func (c *Canvas) Viewport() ViewportState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ViewportState{Scale: c.viewport.Scale(), Pan: c.viewport.Pan()}
}

// Transform returns the current screen/logical mapping
func (c *Canvas) Transform() transform.Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport.Transform()
}

// Pick reports what lies under a screen point
func (c *Canvas) Pick(p valueobjects.Point) hittest.Hit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tester.Pick(c.graph, c.viewport.Transform(), p)
}

// DragSession returns the active drag, if any
func (c *Canvas) DragSession() (drag.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drag.Session()
}

// Panning reports whether a background pan is in progress
func (c *Canvas) Panning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pan != nil
}

// ApplyConfig swaps in new tunables. The current scale is re-clamped to the
// new limits; an invalid configuration is ignored.
func (c *Canvas) ApplyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	if err := cfg.Validate(); err != nil {
		c.logger.Warn("Ignoring invalid canvas configuration", zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyConfig(cfg)
	c.viewport.SetSettings(ViewportSettings(cfg))
	c.layouts.SetSettings(LayoutSettings(cfg))
}

func (c *Canvas) applyConfig(cfg *config.Config) {
	c.tester = hittest.Tester{NodeSize: NodeSize(cfg), Edges: EdgeSettings(cfg)}
	c.deadZone = cfg.Drag.DeadZone
	c.doubleClick = cfg.Drag.DoubleClickWindow
	if ticker, ok := c.frames.(*drag.TickerFrames); ok && c.tickerCtx != nil {
		ticker.SetInterval(cfg.Drag.FrameInterval)
	}
}

// Flush applies the pending drag move, if any. With the default manual
// scheduler the host calls it once per paint; a ticker scheduler calls it
// from its own goroutine.
func (c *Canvas) Flush() drag.Result {
	c.lock()
	defer c.unlock()
	return c.flushLocked()
}

func (c *Canvas) flushLocked() drag.Result {
	session, active := c.drag.Session()
	result, err := c.drag.Flush(c.viewport.Transform(), graphTarget{c.graph})
	if result == drag.ResultNone || result == drag.ResultUnchanged {
		return result
	}

	c.metrics.RecordDrag(string(result))
	if err != nil {
		c.reject("drag frame", err, zap.String("nodeID", session.NodeID.String()))
		return result
	}

	c.metrics.RecordFrame()
	if active {
		id := session.NodeID
		c.emit(func(i Intents) { i.OnDragState(id, drag.PhaseMoving) })
	}
	return result
}

// lock takes the canvas lock. Pair it with unlock, which delivers the
// intents queued while it was held.
func (c *Canvas) lock() {
	c.mu.Lock()
}

func (c *Canvas) unlock() {
	c.collectEvents()
	calls := c.outbox
	c.outbox = nil
	c.mu.Unlock()

	for _, call := range calls {
		call(c.intents)
	}
}

func (c *Canvas) emit(call func(Intents)) {
	c.outbox = append(c.outbox, call)
}

// collectEvents turns graph events into intents
func (c *Canvas) collectEvents() {
	for _, ev := range c.graph.GetUncommittedEvents() {
		switch e := ev.(type) {
		case events.NodeMoved:
			c.emit(func(i Intents) { i.OnMove(e.NodeID, e.NewPosition) })
		case events.NodesConnected:
			c.metrics.RecordEdge("connect")
			c.emit(func(i Intents) { i.OnConnect(e.SourceID, e.TargetID) })
		case events.NodesDisconnected:
			c.metrics.RecordEdge("disconnect")
			c.emit(func(i Intents) { i.OnDisconnect(e.SourceID, e.TargetID) })
		case events.NodeRemoved:
			c.emit(func(i Intents) { i.OnDelete(e.NodeID) })
		}
	}
	c.graph.MarkEventsAsCommitted()
}

// reject logs and counts a soft failure
func (c *Canvas) reject(op string, err error, fields ...zap.Field) {
	code := pkgerrors.CodeOf(err)
	c.metrics.RecordRejection(code.String())
	c.logger.Debug("Operation ignored",
		append([]zap.Field{
			zap.String("op", op),
			zap.String("reason", code.String()),
			zap.Error(err),
		}, fields...)...)
}

// graphTarget lets the drag engine write into the graph. Moving a node
// carries everything bound under it.
type graphTarget struct {
	g *aggregates.Graph
}

func (t graphTarget) NodePosition(id valueobjects.NodeID) (valueobjects.Position, bool) {
	node, err := t.g.GetNode(id)
	if err != nil {
		return valueobjects.Position{}, false
	}
	return node.Position(), true
}

func (t graphTarget) MoveNode(id valueobjects.NodeID, position valueobjects.Position) (bool, error) {
	moved, err := t.g.MoveGroup(id, position)
	return len(moved) > 0, err
}
