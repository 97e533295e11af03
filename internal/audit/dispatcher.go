package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int

	// DropIfFull makes Emit lossy under backpressure. The session
	// lifecycle must never stall on a slow sink: a login or forced
	// logout completes whether or not its audit event fits the buffer,
	// and the loss stays visible through Dropped.
	DropIfFull bool
}

// Dispatcher decouples session-lifecycle bookkeeping from sink I/O.
// The Manager emits from whatever goroutine drove the transition
// (hydration, a credential exchange, a guard sweep); one forwarder
// goroutine delivers to the sink in emission order.
type Dispatcher struct {
	sink    Sink
	events  chan Event
	block   bool
	dropped atomic.Uint64

	closed    atomic.Bool
	closeOnce sync.Once
	quit      chan struct{}
	drained   chan struct{}
}

// NewDispatcher starts the forwarder. Returns nil when auditing is
// disabled; a nil Dispatcher accepts Emit, Close, and Dropped as
// no-ops, so callers never branch on the config.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = 1
	}

	d := &Dispatcher{
		sink:    sink,
		events:  make(chan Event, buffer),
		block:   !cfg.DropIfFull,
		quit:    make(chan struct{}),
		drained: make(chan struct{}),
	}

	go d.forward()
	return d
}

// forward delivers buffered events until Close, then flushes whatever
// the session lifecycle managed to queue, so shutdown loses nothing
// that was accepted.
func (d *Dispatcher) forward() {
	defer close(d.drained)

	for {
		select {
		case event := <-d.events:
			d.sink.Emit(context.Background(), event)
		case <-d.quit:
			for {
				select {
				case event := <-d.events:
					d.sink.Emit(context.Background(), event)
				default:
					return
				}
			}
		}
	}
}

// Emit queues an event for delivery. In lossy mode a full buffer
// increments the drop counter instead of blocking; in blocking mode
// Emit waits until the buffer accepts the event, the caller's ctx
// ends, or the dispatcher closes.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.closed.Load() {
		return
	}

	if !d.block {
		select {
		case d.events <- event:
		case <-d.quit:
		default:
			d.dropped.Add(1)
		}
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case d.events <- event:
	case <-ctx.Done():
	case <-d.quit:
	}
}

// Close stops accepting events and blocks until the forwarder has
// drained the buffer. Safe to call more than once.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.quit)
		<-d.drained
	})
}

// Dropped reports how many events were discarded under backpressure
// since the dispatcher started.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
