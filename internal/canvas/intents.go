package canvas

import (
	"time"

	"ideamap-canvas/domain/core/valueobjects"
	"ideamap-canvas/internal/canvas/drag"
)

// Intents receives the changes the canvas asks the host to persist.
// Calls are made after the canvas lock is released, so an implementation
// may call back into the canvas.
type Intents interface {
	OnMove(id valueobjects.NodeID, position valueobjects.Position)
	OnConnect(source, target valueobjects.NodeID)
	OnDisconnect(source, target valueobjects.NodeID)
	OnDelete(id valueobjects.NodeID)
	OnCreate(id valueobjects.NodeID, position valueobjects.Position)
	OnDragState(id valueobjects.NodeID, phase drag.Phase)
}

// IntentFuncs adapts plain functions to Intents. Nil fields are skipped.
type IntentFuncs struct {
	Move       func(id valueobjects.NodeID, position valueobjects.Position)
	Connect    func(source, target valueobjects.NodeID)
	Disconnect func(source, target valueobjects.NodeID)
	Delete     func(id valueobjects.NodeID)
	Create     func(id valueobjects.NodeID, position valueobjects.Position)
	DragState  func(id valueobjects.NodeID, phase drag.Phase)
}

func (f IntentFuncs) OnMove(id valueobjects.NodeID, position valueobjects.Position) {
	if f.Move != nil {
		f.Move(id, position)
	}
}

func (f IntentFuncs) OnConnect(source, target valueobjects.NodeID) {
	if f.Connect != nil {
		f.Connect(source, target)
	}
}

func (f IntentFuncs) OnDisconnect(source, target valueobjects.NodeID) {
	if f.Disconnect != nil {
		f.Disconnect(source, target)
	}
}

func (f IntentFuncs) OnDelete(id valueobjects.NodeID) {
	if f.Delete != nil {
		f.Delete(id)
	}
}

func (f IntentFuncs) OnCreate(id valueobjects.NodeID, position valueobjects.Position) {
	if f.Create != nil {
		f.Create(id, position)
	}
}

func (f IntentFuncs) OnDragState(id valueobjects.NodeID, phase drag.Phase) {
	if f.DragState != nil {
		f.DragState(id, phase)
	}
}

// ContainerSizer reports the rendering surface size. It is asked on every
// center and fit so resizes are always seen.
type ContainerSizer interface {
	ContainerSize() valueobjects.Size
}

// SizerFunc adapts a function to ContainerSizer
type SizerFunc func() valueobjects.Size

// ContainerSize calls f
func (f SizerFunc) ContainerSize() valueobjects.Size {
	return f()
}

// Metrics receives interaction counters. The observability Collector
// implements it.
type Metrics interface {
	RecordDrag(result string)
	RecordFrame()
	RecordEdge(op string)
	RecordViewport(op string)
	RecordRejection(reason string)
	RecordLayout(kind string, nodes int, d time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) RecordDrag(string)                       {}
func (nopMetrics) RecordFrame()                            {}
func (nopMetrics) RecordEdge(string)                       {}
func (nopMetrics) RecordViewport(string)                   {}
func (nopMetrics) RecordRejection(string)                  {}
func (nopMetrics) RecordLayout(string, int, time.Duration) {}
