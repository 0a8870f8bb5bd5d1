package canvas

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"ideamap-canvas/domain/core/valueobjects"
	"ideamap-canvas/internal/canvas/drag"
	"ideamap-canvas/internal/canvas/hittest"
	"ideamap-canvas/internal/canvas/layout"
	"ideamap-canvas/internal/config"
	"ideamap-canvas/internal/infrastructure/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

// recorder is an Intents fake that keeps every call
type recorder struct {
	mu          sync.Mutex
	moves       map[string]valueobjects.Position
	moveCount   int
	connects    [][2]string
	disconnects [][2]string
	deletes     []string
	creates     []valueobjects.Position
	phases      []drag.Phase
}

func newRecorder() *recorder {
	return &recorder{moves: make(map[string]valueobjects.Position)}
}

func (r *recorder) OnMove(id valueobjects.NodeID, pos valueobjects.Position) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moves[id.String()] = pos
	r.moveCount++
}

func (r *recorder) OnConnect(s, t valueobjects.NodeID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connects = append(r.connects, [2]string{s.String(), t.String()})
}

func (r *recorder) OnDisconnect(s, t valueobjects.NodeID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disconnects = append(r.disconnects, [2]string{s.String(), t.String()})
}

func (r *recorder) OnDelete(id valueobjects.NodeID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes = append(r.deletes, id.String())
}

func (r *recorder) OnCreate(_ valueobjects.NodeID, pos valueobjects.Position) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates = append(r.creates, pos)
}

func (r *recorder) OnDragState(_ valueobjects.NodeID, phase drag.Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, phase)
}

func (r *recorder) move(id string) (valueobjects.Position, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.moves[id]
	return p, ok
}

// mockIntents is a testify mock for exact call expectations
type mockIntents struct {
	mock.Mock
}

func (m *mockIntents) OnMove(id valueobjects.NodeID, pos valueobjects.Position) {
	m.Called(id, pos)
}

func (m *mockIntents) OnConnect(s, t valueobjects.NodeID) {
	m.Called(s, t)
}

func (m *mockIntents) OnDisconnect(s, t valueobjects.NodeID) {
	m.Called(s, t)
}

func (m *mockIntents) OnDelete(id valueobjects.NodeID) {
	m.Called(id)
}

func (m *mockIntents) OnCreate(id valueobjects.NodeID, pos valueobjects.Position) {
	m.Called(id, pos)
}

func (m *mockIntents) OnDragState(id valueobjects.NodeID, phase drag.Phase) {
	m.Called(id, phase)
}

var container = SizerFunc(func() valueobjects.Size {
	return valueobjects.Size{Width: 800, Height: 600}
})

func newTestCanvas(t *testing.T, intents Intents, nodes []NodeSnapshot, opts ...Option) *Canvas {
	t.Helper()
	c, err := New(config.Default(), intents, container, opts...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	c.SetNodes(nodes)
	return c
}

func id(s string) valueobjects.NodeID {
	return valueobjects.MustNodeID(s)
}

func assertPos(t *testing.T, want r2.Vec, got valueobjects.Position) {
	t.Helper()
	assert.InDelta(t, want.X, got.X(), 1e-9)
	assert.InDelta(t, want.Y, got.Y(), 1e-9)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, nil, nil)
	assert.Error(t, err)

	bad := config.Default()
	bad.Viewport.MinScale = 0
	_, err = New(bad, nil, container)
	assert.Error(t, err)

	c, err := New(nil, nil, container)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, 1.0, c.Viewport().Scale)
}

func TestCanvas_EndToEndLayouts(t *testing.T) {
	rec := newRecorder()
	nodes := []NodeSnapshot{
		{ID: "A", X: 0, Y: 0, Connections: []string{"B"}},
		{ID: "B", X: 300, Y: 0, Connections: []string{"C"}},
		{ID: "C", X: 150, Y: 260},
	}
	c := newTestCanvas(t, rec, nodes)

	result, ok := c.ApplyLayout(context.Background(), layout.KindRadial)
	require.True(t, ok)
	assert.Equal(t, "B", result.Center.String())

	b, _ := rec.move("B")
	a, _ := rec.move("A")
	cc, _ := rec.move("C")
	assertPos(t, r2.Vec{X: 400, Y: 300}, b)
	assertPos(t, r2.Vec{X: 550, Y: 300}, a)
	assertPos(t, r2.Vec{X: 250, Y: 300}, cc)
	assert.InDelta(t, a.DistanceTo(b), cc.DistanceTo(b), 1e-9)
	assert.Equal(t, 3, rec.moveCount)

	c.SetNodes(nodes)
	result, ok = c.ApplyLayout(context.Background(), layout.KindLevel)
	require.True(t, ok)
	assert.Equal(t, 0, result.Levels[id("A")])
	assert.Equal(t, 1, result.Levels[id("B")])
	assert.Equal(t, 2, result.Levels[id("C")])

	// Single-node bands sit in the middle of the 800px container
	a, _ = rec.move("A")
	assertPos(t, r2.Vec{X: 400, Y: 80}, a)
}

func TestCanvas_ApplyLayoutSkipsUnchanged(t *testing.T) {
	rec := newRecorder()
	c := newTestCanvas(t, rec, []NodeSnapshot{{ID: "solo", X: 400, Y: 300}})

	_, ok := c.ApplyLayout(context.Background(), layout.KindRadial)
	require.True(t, ok)
	assert.Zero(t, rec.moveCount)

	_, ok = c.ApplyLayout(context.Background(), layout.KindCluster)
	assert.False(t, ok)
}

func TestCanvas_EmptyGraphIsSilent(t *testing.T) {
	metrics := observability.NewCollector("test")
	rec := newRecorder()
	c := newTestCanvas(t, rec, nil, WithMetrics(metrics))

	before := c.Viewport()
	assert.False(t, c.CenterView())
	assert.False(t, c.FitToScreen())
	_, ok := c.ApplyLayout(context.Background(), layout.KindLevel)
	assert.False(t, ok)
	_, ok = c.Clusters(context.Background())
	assert.False(t, ok)

	assert.Equal(t, before, c.Viewport())
	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.Rejections.WithLabelValues("empty_graph")))
}

func TestCanvas_DragHasNoJump(t *testing.T) {
	rec := newRecorder()
	c := newTestCanvas(t, rec, []NodeSnapshot{{ID: "n", X: 100, Y: 100}})

	hit := c.PointerDown(PointerEvent{ID: 1, Point: valueobjects.Pt(100, 100)})
	require.Equal(t, hittest.Node, hit.Kind)
	assert.False(t, c.Panning())

	c.PointerMove(PointerEvent{ID: 1, Point: valueobjects.Pt(112, 93)})
	assert.Equal(t, drag.ResultApplied, c.Flush())
	assert.False(t, c.Panning())

	got, ok := rec.move("n")
	require.True(t, ok)
	assertPos(t, r2.Vec{X: 112, Y: 93}, got)

	c.PointerUp(PointerEvent{ID: 1, Point: valueobjects.Pt(112, 93)})
	assert.Equal(t, []drag.Phase{drag.PhaseStarted, drag.PhaseMoving, drag.PhaseEnded}, rec.phases)

	_, dragging := c.DragSession()
	assert.False(t, dragging)
	selected, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, "n", selected.String())
}

func TestCanvas_RepeatedPointerPositionIsNotAFrame(t *testing.T) {
	metrics := observability.NewCollector("test")
	rec := newRecorder()
	c := newTestCanvas(t, rec, []NodeSnapshot{{ID: "n", X: 100, Y: 100}}, WithMetrics(metrics))

	c.PointerDown(PointerEvent{ID: 1, Point: valueobjects.Pt(100, 100)})
	c.PointerMove(PointerEvent{ID: 1, Point: valueobjects.Pt(112, 93)})
	assert.Equal(t, drag.ResultApplied, c.Flush())

	c.PointerMove(PointerEvent{ID: 1, Point: valueobjects.Pt(112, 93)})
	assert.Equal(t, drag.ResultUnchanged, c.Flush())
	c.PointerUp(PointerEvent{ID: 1, Point: valueobjects.Pt(112, 93)})

	assert.Equal(t, 1, rec.moveCount)
	assert.Equal(t, []drag.Phase{drag.PhaseStarted, drag.PhaseMoving, drag.PhaseEnded}, rec.phases)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DragUpdates.WithLabelValues("applied")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.DragUpdates.WithLabelValues("unchanged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FramesFlushed))
}

func TestCanvas_CanvasPressNeverDrags(t *testing.T) {
	rec := newRecorder()
	c := newTestCanvas(t, rec, []NodeSnapshot{{ID: "n", X: 100, Y: 100}})

	hit := c.PointerDown(PointerEvent{ID: 1, Point: valueobjects.Pt(600, 500)})
	require.Equal(t, hittest.Canvas, hit.Kind)
	assert.True(t, c.Panning())
	_, dragging := c.DragSession()
	assert.False(t, dragging)

	// Sweep the pointer across the node while panning
	c.PointerMove(PointerEvent{ID: 1, Point: valueobjects.Pt(100, 100)})
	assert.Equal(t, drag.ResultNone, c.Flush())
	c.PointerUp(PointerEvent{ID: 1, Point: valueobjects.Pt(100, 100)})

	assert.Zero(t, rec.moveCount)
	assert.Empty(t, rec.phases)
	assert.False(t, c.Panning())
}

func TestCanvas_DragOffsetHeld(t *testing.T) {
	rec := newRecorder()
	c := newTestCanvas(t, rec, []NodeSnapshot{{ID: "n", X: 100, Y: 100}})

	// Grab the node 30px right of its center
	c.PointerDown(PointerEvent{ID: 1, Point: valueobjects.Pt(130, 100)})
	c.PointerMove(PointerEvent{ID: 1, Point: valueobjects.Pt(140, 100)})
	c.PointerMove(PointerEvent{ID: 1, Point: valueobjects.Pt(150, 120)})
	c.Flush()

	got, _ := rec.move("n")
	assertPos(t, r2.Vec{X: 120, Y: 120}, got)
	assert.Equal(t, 1, rec.moveCount, "moves between frames coalesce")
}

func TestCanvas_PointerUpAppliesLastMove(t *testing.T) {
	rec := newRecorder()
	c := newTestCanvas(t, rec, []NodeSnapshot{{ID: "n", X: 100, Y: 100}})

	c.PointerDown(PointerEvent{ID: 1, Point: valueobjects.Pt(100, 100)})
	c.PointerMove(PointerEvent{ID: 1, Point: valueobjects.Pt(150, 100)})
	c.PointerUp(PointerEvent{ID: 1, Point: valueobjects.Pt(160, 100)})

	got, _ := rec.move("n")
	assertPos(t, r2.Vec{X: 160, Y: 100}, got)
	assert.Equal(t, drag.ResultNone, c.Flush())
}

func TestCanvas_GroupMovesRigidly(t *testing.T) {
	rec := newRecorder()
	c := newTestCanvas(t, rec, []NodeSnapshot{
		{ID: "parent", X: 100, Y: 100},
		{ID: "child", X: 300, Y: 300, ParentID: "parent"},
	})

	c.PointerDown(PointerEvent{ID: 1, Point: valueobjects.Pt(100, 100)})
	c.PointerMove(PointerEvent{ID: 1, Point: valueobjects.Pt(110, 120)})
	c.Flush()

	parent, _ := rec.move("parent")
	child, _ := rec.move("child")
	assertPos(t, r2.Vec{X: 110, Y: 120}, parent)
	assertPos(t, r2.Vec{X: 310, Y: 320}, child)
}

func TestCanvas_SecondPointerIgnored(t *testing.T) {
	c := newTestCanvas(t, newRecorder(), []NodeSnapshot{
		{ID: "a", X: 100, Y: 100},
		{ID: "b", X: 500, Y: 100},
	})

	c.PointerDown(PointerEvent{ID: 1, Point: valueobjects.Pt(100, 100)})
	c.PointerDown(PointerEvent{ID: 2, Point: valueobjects.Pt(500, 100)})

	session, ok := c.DragSession()
	require.True(t, ok)
	assert.Equal(t, 1, session.PointerID)
	assert.Equal(t, "a", session.NodeID.String())

	// Pointer 2 can neither move nor end pointer 1's drag
	c.PointerUp(PointerEvent{ID: 2, Point: valueobjects.Pt(0, 0)})
	_, ok = c.DragSession()
	assert.True(t, ok)
}

func TestCanvas_DeletedNodeMidDrag(t *testing.T) {
	rec := newRecorder()
	c := newTestCanvas(t, rec, []NodeSnapshot{{ID: "n", X: 100, Y: 100}, {ID: "m", X: 400, Y: 400}})

	c.PointerDown(PointerEvent{ID: 1, Point: valueobjects.Pt(100, 100)})
	c.SetNodes([]NodeSnapshot{{ID: "m", X: 400, Y: 400}})

	assert.NotPanics(t, func() {
		c.PointerMove(PointerEvent{ID: 1, Point: valueobjects.Pt(120, 100)})
		assert.Equal(t, drag.ResultStale, c.Flush())
		c.PointerUp(PointerEvent{ID: 1, Point: valueobjects.Pt(130, 100)})
	})

	assert.Zero(t, rec.moveCount)
	_, dragging := c.DragSession()
	assert.False(t, dragging)
	_, selected := c.Selected()
	assert.False(t, selected)
}

func TestCanvas_BlurAndCaptureLossEndInteractions(t *testing.T) {
	rec := newRecorder()
	c := newTestCanvas(t, rec, []NodeSnapshot{{ID: "n", X: 100, Y: 100}})

	c.PointerDown(PointerEvent{ID: 1, Point: valueobjects.Pt(100, 100)})
	c.Blur()
	_, dragging := c.DragSession()
	assert.False(t, dragging)
	assert.Equal(t, drag.PhaseCancelled, rec.phases[len(rec.phases)-1])

	c.PointerDown(PointerEvent{ID: 3, Point: valueobjects.Pt(600, 500)})
	assert.True(t, c.Panning())
	c.LostPointerCapture(3)
	assert.False(t, c.Panning())

	c.PointerDown(PointerEvent{ID: 4, Point: valueobjects.Pt(100, 100)})
	c.Key(KeyEscape)
	_, dragging = c.DragSession()
	assert.False(t, dragging)
}

func TestCanvas_PanWithDeadZone(t *testing.T) {
	rec := newRecorder()
	c := newTestCanvas(t, rec, []NodeSnapshot{{ID: "n", X: 100, Y: 100}})

	hit := c.PointerDown(PointerEvent{ID: 1, Point: valueobjects.Pt(600, 500)})
	require.Equal(t, hittest.Canvas, hit.Kind)

	c.PointerMove(PointerEvent{ID: 1, Point: valueobjects.Pt(601, 501)})
	assert.Equal(t, r2.Vec{}, c.Viewport().Pan)

	c.PointerMove(PointerEvent{ID: 1, Point: valueobjects.Pt(650, 520)})
	c.PointerMove(PointerEvent{ID: 1, Point: valueobjects.Pt(660, 530)})
	c.PointerUp(PointerEvent{ID: 1, Point: valueobjects.Pt(660, 530)})

	assert.Equal(t, r2.Vec{X: 60, Y: 30}, c.Viewport().Pan)
	assert.False(t, c.Panning())
	assert.Zero(t, rec.moveCount, "panning never moves nodes")
}

func TestCanvas_ConnectMode(t *testing.T) {
	rec := newRecorder()
	c := newTestCanvas(t, rec, []NodeSnapshot{
		{ID: "a", X: 100, Y: 100},
		{ID: "b", X: 500, Y: 100},
	})

	assert.False(t, c.StartConnecting(), "needs a selection")

	require.True(t, c.Select(id("a")))
	require.True(t, c.Key(KeyConnect))
	source, ok := c.Connecting()
	require.True(t, ok)
	assert.Equal(t, "a", source.String())

	hit := c.PointerDown(PointerEvent{ID: 1, Point: valueobjects.Pt(500, 100)})
	assert.Equal(t, hittest.Node, hit.Kind)
	assert.Equal(t, [][2]string{{"a", "b"}}, rec.connects)
	_, ok = c.Connecting()
	assert.False(t, ok)
	_, dragging := c.DragSession()
	assert.False(t, dragging, "completing a connection does not start a drag")

	// A press on empty canvas cancels without linking
	c.Select(id("b"))
	c.StartConnecting()
	c.PointerDown(PointerEvent{ID: 1, Point: valueobjects.Pt(300, 500)})
	_, ok = c.Connecting()
	assert.False(t, ok)
	assert.Len(t, rec.connects, 1)
	assert.False(t, c.Panning())
}

func TestCanvas_ConnectRejections(t *testing.T) {
	metrics := observability.NewCollector("test")
	rec := newRecorder()
	c := newTestCanvas(t, rec, []NodeSnapshot{
		{ID: "a", X: 100, Y: 100},
		{ID: "b", X: 500, Y: 100},
	}, WithMetrics(metrics))

	assert.False(t, c.Connect(id("a"), id("a")))
	assert.True(t, c.Connect(id("a"), id("b")))
	assert.False(t, c.Connect(id("a"), id("b")))
	assert.False(t, c.Connect(id("a"), id("ghost")))
	assert.False(t, c.Disconnect(id("b"), id("a")))

	assert.Equal(t, [][2]string{{"a", "b"}}, rec.connects)
	assert.Empty(t, rec.disconnects)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Rejections.WithLabelValues("self_reference")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Rejections.WithLabelValues("duplicate_edge")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Rejections.WithLabelValues("stale_reference")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Rejections.WithLabelValues("edge_not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EdgesChanged.WithLabelValues("connect")))

	nodes := c.Nodes()
	assert.Equal(t, []string{"b"}, nodes[0].Connections)
	assert.Empty(t, nodes[1].Connections)
}

func TestCanvas_ClickEdgeRemovesBothDirections(t *testing.T) {
	rec := newRecorder()
	c := newTestCanvas(t, rec, []NodeSnapshot{
		{ID: "a", X: 100, Y: 300, Connections: []string{"b"}},
		{ID: "b", X: 500, Y: 300, Connections: []string{"a"}},
	})
	require.True(t, c.IsBidirectional(id("a"), id("b")))

	c.PointerMove(PointerEvent{ID: 1, Point: valueobjects.Pt(305, 302)})
	hovered, ok := c.HoveredEdge()
	require.True(t, ok)
	assert.True(t, hovered.Bidirectional)

	hit := c.PointerDown(PointerEvent{ID: 1, Point: valueobjects.Pt(300, 300)})
	assert.Equal(t, hittest.Edge, hit.Kind)
	assert.ElementsMatch(t, [][2]string{{"a", "b"}, {"b", "a"}}, rec.disconnects)
	assert.False(t, c.IsBidirectional(id("a"), id("b")))
	assert.Empty(t, c.Lines())
	assert.False(t, c.Panning())
}

func TestCanvas_DeleteCascades(t *testing.T) {
	intents := &mockIntents{}
	intents.On("OnDisconnect", id("A"), id("B")).Once()
	intents.On("OnDelete", id("B")).Once()

	c := newTestCanvas(t, intents, []NodeSnapshot{
		{ID: "A", X: 100, Y: 100, Connections: []string{"B"}},
		{ID: "B", X: 500, Y: 100, Connections: []string{"A"}},
	})

	require.True(t, c.Select(id("B")))
	require.True(t, c.Key(KeyDelete))

	intents.AssertExpectations(t)
	nodes := c.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, "A", nodes[0].ID)
	assert.Empty(t, nodes[0].Connections)

	assert.False(t, c.DeleteSelected(), "nothing selected anymore")
}

func TestCanvas_DoubleClickCreates(t *testing.T) {
	rec := newRecorder()
	c := newTestCanvas(t, rec, []NodeSnapshot{{ID: "n", X: 100, Y: 100}})

	c.Key(KeyPlus) // scale 1.2
	c.PointerDown(PointerEvent{ID: 1, Point: valueobjects.Pt(600, 480), Clicks: 2})

	require.Len(t, rec.creates, 1)
	assertPos(t, r2.Vec{X: 500, Y: 400}, rec.creates[0])
	assert.False(t, c.Panning())
}

func TestCanvas_DoubleClickTiming(t *testing.T) {
	rec := newRecorder()
	c := newTestCanvas(t, rec, nil)

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	press := func(x, y float64) {
		c.PointerDown(PointerEvent{ID: 1, Point: valueobjects.Pt(x, y)})
		c.PointerUp(PointerEvent{ID: 1, Point: valueobjects.Pt(x, y)})
	}

	press(200, 200)
	clock = clock.Add(100 * time.Millisecond)
	press(201, 200)
	assert.Len(t, rec.creates, 1)

	// A third quick press starts a new pair
	clock = clock.Add(100 * time.Millisecond)
	press(201, 200)
	assert.Len(t, rec.creates, 1)

	clock = clock.Add(time.Second)
	press(201, 200)
	assert.Len(t, rec.creates, 1, "too slow")
}

func TestCanvas_ZoomClampsThroughInput(t *testing.T) {
	c := newTestCanvas(t, newRecorder(), []NodeSnapshot{{ID: "n", X: 100, Y: 100}})

	for i := 0; i < 50; i++ {
		c.Wheel(WheelEvent{DeltaY: -1, Point: valueobjects.Pt(400, 300)})
	}
	assert.InDelta(t, 3.0, c.Viewport().Scale, 1e-12)

	for i := 0; i < 50; i++ {
		c.Key(KeyMinus)
	}
	assert.InDelta(t, 0.2, c.Viewport().Scale, 1e-12)

	c.Wheel(WheelEvent{DeltaY: math.NaN()})
	assert.InDelta(t, 0.2, c.Viewport().Scale, 1e-12)
}

func TestCanvas_FitToScreenContainsNodes(t *testing.T) {
	c := newTestCanvas(t, newRecorder(), []NodeSnapshot{
		{ID: "a", X: -400, Y: 0},
		{ID: "b", X: 1000, Y: 200},
		{ID: "c", X: 300, Y: 900},
	})

	require.True(t, c.Key(KeyFit))
	tr := c.Transform()
	assert.LessOrEqual(t, tr.Scale, 1.0)

	for _, n := range c.Nodes() {
		p, err := tr.ToScreen(r2.Vec{X: n.X, Y: n.Y})
		require.NoError(t, err)
		assert.True(t, p.X >= 0 && p.X <= 800, "x %v", p.X)
		assert.True(t, p.Y >= 0 && p.Y <= 600, "y %v", p.Y)
	}

	require.True(t, c.Key(KeyCenter))
	c.ResetView()
	assert.Equal(t, ViewportState{Scale: 1}, c.Viewport())
}

func TestCanvas_ApplyConfigReclamps(t *testing.T) {
	c := newTestCanvas(t, newRecorder(), nil)
	for i := 0; i < 20; i++ {
		c.Key(KeyEquals)
	}
	require.InDelta(t, 3.0, c.Viewport().Scale, 1e-12)

	cfg := config.Default()
	cfg.Viewport.MaxScale = 2
	c.ApplyConfig(cfg)
	assert.InDelta(t, 2.0, c.Viewport().Scale, 1e-12)

	bad := config.Default()
	bad.Viewport.MaxScale = 0.01
	c.ApplyConfig(bad)
	assert.InDelta(t, 2.0, c.Viewport().Scale, 1e-12)
}

func TestCanvas_SetNodesSkipsInvalid(t *testing.T) {
	c := newTestCanvas(t, newRecorder(), []NodeSnapshot{
		{ID: "ok", X: 1, Y: 2, Connections: []string{"ok", "gone", ""}, Category: " ideas "},
		{ID: "", X: 0, Y: 0},
		{ID: "nan", X: math.NaN(), Y: 0},
	})

	nodes := c.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, "ok", nodes[0].ID)
	assert.Equal(t, []string{"gone"}, nodes[0].Connections)
	assert.Equal(t, "ideas", nodes[0].Category)
	assert.Empty(t, c.Lines(), "dangling links are not drawn")
}

func TestCanvas_Clusters(t *testing.T) {
	c := newTestCanvas(t, newRecorder(), []NodeSnapshot{
		{ID: "a", Category: "work", Connections: []string{"b"}},
		{ID: "b", Category: "home"},
		{ID: "c"},
	})

	out, ok := c.Clusters(context.Background())
	require.True(t, ok)
	keys := make([]string, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		keys = append(keys, b.Key)
	}
	assert.Equal(t, []string{"home", "uncategorized", "work"}, keys)
	require.Len(t, out.Edges, 1)
	assert.Equal(t, 1, out.Edges[0].Count())
}

func TestCanvas_TickerFrames(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := newRecorder()
	c := newTestCanvas(t, rec, []NodeSnapshot{{ID: "n", X: 100, Y: 100}},
		WithFrameScheduler(drag.Ticker(ctx, 2*time.Millisecond)))

	c.PointerDown(PointerEvent{ID: 1, Point: valueobjects.Pt(100, 100)})
	c.PointerMove(PointerEvent{ID: 1, Point: valueobjects.Pt(140, 100)})

	assert.Eventually(t, func() bool {
		p, ok := rec.move("n")
		return ok && math.Abs(p.X()-140) < 1e-9
	}, time.Second, 2*time.Millisecond)
}

func TestCanvas_TickerFramesFollowConfig(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Default()
	cfg.Drag.FrameInterval = time.Hour
	rec := newRecorder()
	c, err := New(cfg, rec, container, WithTickerFrames(ctx))
	require.NoError(t, err)
	defer c.Close()
	c.SetNodes([]NodeSnapshot{{ID: "n", X: 100, Y: 100}})

	ticker, ok := c.frames.(*drag.TickerFrames)
	require.True(t, ok)
	assert.Equal(t, time.Hour, ticker.Interval())

	c.PointerDown(PointerEvent{ID: 1, Point: valueobjects.Pt(100, 100)})
	c.PointerMove(PointerEvent{ID: 1, Point: valueobjects.Pt(140, 100)})
	time.Sleep(20 * time.Millisecond)
	_, moved := rec.move("n")
	assert.False(t, moved, "no tick yet at the configured interval")

	faster := config.Default()
	faster.Drag.FrameInterval = 2 * time.Millisecond
	c.ApplyConfig(faster)
	assert.Equal(t, 2*time.Millisecond, ticker.Interval())

	assert.Eventually(t, func() bool {
		p, ok := rec.move("n")
		return ok && math.Abs(p.X()-140) < 1e-9
	}, time.Second, 2*time.Millisecond)
}

func TestCanvas_IntentsMayReenter(t *testing.T) {
	var c *Canvas
	done := make(chan struct{})
	intents := IntentFuncs{
		Connect: func(_, _ valueobjects.NodeID) {
			// Reading back from inside a callback must not deadlock
			_ = c.Nodes()
			close(done)
		},
	}
	c = newTestCanvas(t, intents, []NodeSnapshot{{ID: "a"}, {ID: "b", X: 400}})

	c.Connect(id("a"), id("b"))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback did not run")
	}
}
