package drag

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// FrameScheduler coalesces flush requests so at most one flush runs per
// render tick.
type FrameScheduler interface {
	// Request asks for a flush before the next frame. Repeated calls within
	// one frame collapse into one.
	Request()
	// Stop releases any resources held by the scheduler
	Stop()
}

// SchedulerFactory builds a scheduler around the canvas flush callback
type SchedulerFactory func(flush func()) FrameScheduler

// ManualFrames is a dirty flag for hosts that drive their own render loop
// and call Flush once per paint.
type ManualFrames struct {
	requested atomic.Bool
}

// NewManualFrames creates a manual scheduler
func NewManualFrames() *ManualFrames {
	return &ManualFrames{}
}

// Manual is a SchedulerFactory for ManualFrames; the flush callback is unused
func Manual(func()) FrameScheduler {
	return NewManualFrames()
}

// Request marks a frame as needed
func (m *ManualFrames) Request() {
	m.requested.Store(true)
}

// Pending reports and clears the dirty flag
func (m *ManualFrames) Pending() bool {
	return m.requested.Swap(false)
}

// Stop is a no-op
func (m *ManualFrames) Stop() {}

// TickerFrames flushes on a fixed interval from its own goroutine, but only
// when something was requested since the previous tick.
type TickerFrames struct {
	interval  atomic.Int64
	flush     func()
	requested atomic.Bool
	reset     chan struct{}
	cancel    context.CancelFunc
	done      chan struct{}
	stopOnce  sync.Once
}

// NewTickerFrames starts a ticker scheduler. It stops when ctx is done or
// Stop is called.
func NewTickerFrames(ctx context.Context, interval time.Duration, flush func()) *TickerFrames {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	ctx, cancel := context.WithCancel(ctx)
	t := &TickerFrames{
		flush:  flush,
		reset:  make(chan struct{}, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	t.interval.Store(int64(interval))
	go t.run(ctx)
	return t
}

// Ticker returns a SchedulerFactory for TickerFrames
func Ticker(ctx context.Context, interval time.Duration) SchedulerFactory {
	return func(flush func()) FrameScheduler {
		return NewTickerFrames(ctx, interval, flush)
	}
}

// Request marks a frame as needed
func (t *TickerFrames) Request() {
	t.requested.Store(true)
}

// Interval returns the current tick interval
func (t *TickerFrames) Interval() time.Duration {
	return time.Duration(t.interval.Load())
}

// SetInterval changes the tick interval from the next tick on. It never
// blocks, so it is safe to call from inside a flush.
func (t *TickerFrames) SetInterval(interval time.Duration) {
	if interval <= 0 || t.interval.Swap(int64(interval)) == int64(interval) {
		return
	}
	select {
	case t.reset <- struct{}{}:
	default:
	}
}

// Stop ends the ticker goroutine and waits for it to exit
func (t *TickerFrames) Stop() {
	t.stopOnce.Do(func() {
		t.cancel()
		<-t.done
	})
}

func (t *TickerFrames) run(ctx context.Context) {
	defer close(t.done)

	ticker := time.NewTicker(t.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.reset:
			ticker.Reset(t.Interval())
		case <-ticker.C:
			if t.requested.Swap(false) && t.flush != nil {
				t.flush()
			}
		}
	}
}
