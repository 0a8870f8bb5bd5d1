// Package drag implements the pointer drag state machine for moving nodes.
//
// The pointer-to-node-center offset is captured once when a drag starts and
// held for the whole session, so the node never jumps under the pointer.
// Moves are coalesced: only the last pointer position seen before a frame
// flush is applied.
package drag

import (
	"ideamap-canvas/domain/core/valueobjects"
	"ideamap-canvas/internal/canvas/transform"
	pkgerrors "ideamap-canvas/pkg/errors"

	"gonum.org/v1/gonum/spatial/r2"
)

// State is the engine state
type State int

const (
	Idle State = iota
	Dragging
)

// String returns the state name
func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Phase is a drag lifecycle notification for the rendering layer
type Phase string

const (
	PhaseStarted   Phase = "started"
	PhaseMoving    Phase = "moving"
	PhaseEnded     Phase = "ended"
	PhaseCancelled Phase = "cancelled"
)

// Result describes what a flush did
type Result string

const (
	// ResultNone means nothing was pending
	ResultNone Result = "none"
	// ResultApplied means the node was written
	ResultApplied Result = "applied"
	// ResultUnchanged means the frame landed on the node's current position
	ResultUnchanged Result = "unchanged"
	// ResultDropped means the frame was skipped on invalid geometry
	ResultDropped Result = "dropped"
	// ResultStale means the dragged node no longer exists
	ResultStale Result = "stale"
)

// Target is the node store a drag writes into
type Target interface {
	// NodePosition returns the node's logical position, false when it is gone
	NodePosition(id valueobjects.NodeID) (valueobjects.Position, bool)
	// MoveNode writes the new logical position for id and reports whether
	// anything moved
	MoveNode(id valueobjects.NodeID, position valueobjects.Position) (bool, error)
}

// Session is the state held between pointer-down and pointer-up
type Session struct {
	NodeID    valueobjects.NodeID
	PointerID int
	Offset    r2.Vec
	Origin    valueobjects.Point
	Moved     bool
}

// Engine tracks at most one drag session
type Engine struct {
	session *Session
	pending *valueobjects.Point
	frames  FrameScheduler
}

// NewEngine creates an idle engine. A nil scheduler means moves are only
// applied on explicit Flush calls.
func NewEngine(frames FrameScheduler) *Engine {
	if frames == nil {
		frames = NewManualFrames()
	}
	return &Engine{frames: frames}
}

// State returns Idle or Dragging
func (e *Engine) State() State {
	if e.session != nil {
		return Dragging
	}
	return Idle
}

// Session returns a copy of the active session
func (e *Engine) Session() (Session, bool) {
	if e.session == nil {
		return Session{}, false
	}
	return *e.session, true
}

// Begin starts dragging nodeID. The offset between the pointer and the
// node's on-screen center is computed here, under the current transform.
func (e *Engine) Begin(pointerID int, nodeID valueobjects.NodeID, pointer valueobjects.Point, nodeCenter valueobjects.Position, tr transform.Transform) error {
	if e.session != nil {
		return pkgerrors.NewConflictError("a drag is already in progress")
	}
	if !valueobjects.IsFinite(pointer.Vec()) {
		return pkgerrors.NewInvalidGeometry("pointer position is not finite")
	}

	center, err := tr.ToScreen(nodeCenter.Vec())
	if err != nil {
		return err
	}

	e.session = &Session{
		NodeID:    nodeID,
		PointerID: pointerID,
		Offset:    pointer.Sub(center),
		Origin:    pointer,
	}
	e.pending = nil
	return nil
}

// Owns reports whether pointerID drives the active session
func (e *Engine) Owns(pointerID int) bool {
	return e.session != nil && e.session.PointerID == pointerID
}

// Move records the latest pointer position and asks for a frame.
// Moves from other pointers are ignored.
func (e *Engine) Move(pointerID int, pointer valueobjects.Point) bool {
	if !e.Owns(pointerID) {
		return false
	}
	p := pointer
	e.pending = &p
	e.frames.Request()
	return true
}

// HasPending reports whether a move is waiting for a flush
func (e *Engine) HasPending() bool {
	return e.pending != nil
}

// Flush applies the pending move using the transform current at flush time.
// Invalid geometry skips the frame but keeps the session alive. A frame that
// would not move the node reports ResultUnchanged.
func (e *Engine) Flush(tr transform.Transform, target Target) (Result, error) {
	if e.session == nil || e.pending == nil {
		return ResultNone, nil
	}
	pointer := *e.pending
	e.pending = nil

	if _, ok := target.NodePosition(e.session.NodeID); !ok {
		return ResultStale, pkgerrors.NewNotFoundError("dragged node " + e.session.NodeID.String())
	}

	screenCenter := valueobjects.PointFromVec(r2.Sub(pointer.Vec(), e.session.Offset))
	position, err := tr.ToLogicalPosition(screenCenter)
	if err != nil {
		return ResultDropped, err
	}

	changed, err := target.MoveNode(e.session.NodeID, position)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return ResultStale, err
		}
		return ResultDropped, err
	}
	if !changed {
		return ResultUnchanged, nil
	}

	e.session.Moved = true
	return ResultApplied, nil
}

// End finishes the session owned by pointerID and returns it
func (e *Engine) End(pointerID int) (Session, bool) {
	if !e.Owns(pointerID) {
		return Session{}, false
	}
	return e.Cancel()
}

// Cancel drops the active session regardless of pointer and discards any
// pending move.
func (e *Engine) Cancel() (Session, bool) {
	if e.session == nil {
		return Session{}, false
	}
	s := *e.session
	e.session = nil
	e.pending = nil
	return s, true
}
