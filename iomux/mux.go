// Package iomux multiplexes the probed FIFO backend's edge conditions
// with the agent's message queue, the way io.c's fifo_spin/fifo_sleep
// let the debugger core either poll for an edge or block until one (or a
// queued message) arrives.
package iomux

import (
	"context"
	"errors"
	"sync"

	"github.com/glankk/rdb/iodev"
)

// ErrNoBackend is returned by Init when no candidate backend probes
// successfully.
var ErrNoBackend = errors.New("iomux: no backend responded to probe")

// Event is the reason Spin or Sleep returned.
type Event int

const (
	// EventNone means neither a FIFO edge nor a message was ready
	// (from Spin; Sleep returns it only with ctx's error on cancellation).
	EventNone Event = iota
	// EventOff is a power-off edge.
	EventOff
	// EventRX is an RX-ready edge.
	EventRX
	// EventMQ is a dequeued message.
	EventMQ
)

// MQ is the agent's message queue, the Go side of the mips OSMesgQueue
// io.c's fifo_sleep blocks on.
type MQ struct {
	ch chan any
}

// NewMQ creates a message queue with the given buffer depth.
func NewMQ(depth int) *MQ {
	return &MQ{ch: make(chan any, depth)}
}

// Send enqueues a message, the non-blocking case (a depth-1 queue that's
// already full drops silently, matching an OSMesgQueue send with
// OS_MESG_NOBLOCK at the call sites that feed this queue).
func (q *MQ) Send(msg any) {
	select {
	case q.ch <- msg:
	default:
	}
}

// TryRecv dequeues a message if one is ready, without blocking.
func (q *MQ) TryRecv() (any, bool) {
	select {
	case msg := <-q.ch:
		return msg, true
	default:
		return nil, false
	}
}

// Mux selects the first probe-succeeding backend and routes every
// subsequent FIFO call to it.
type Mux struct {
	backend iodev.Backend

	mu        sync.Mutex
	armedMQ   *MQ
	armedMask iodev.IRQSet
}

// Init probes backends in order and binds to the first one that
// responds, mirroring io_init's fixed probe list.
func (m *Mux) Init(backends []iodev.Backend) error {
	for _, b := range backends {
		if b.Probe() {
			m.backend = b
			return nil
		}
	}
	return ErrNoBackend
}

// Backend returns the bound backend, or nil if Init has not succeeded.
func (m *Mux) Backend() iodev.Backend { return m.backend }

func (m *Mux) edges(mask iodev.IRQSet) (Event, bool) {
	irqs := m.backend.IRQs()
	if mask&iodev.IRQOff != 0 && irqs&iodev.IRQOff != 0 {
		return EventOff, true
	}
	if mask&iodev.IRQRX != 0 && irqs&iodev.IRQRX != 0 {
		return EventRX, true
	}
	return EventNone, false
}

// Spin returns the earliest of: a masked power-off edge, a masked
// RX-ready edge, or a non-blocking dequeue from mq. It never blocks.
func (m *Mux) Spin(mq *MQ, mask iodev.IRQSet) (Event, any) {
	if ev, ok := m.edges(mask); ok {
		return ev, nil
	}
	if msg, ok := mq.TryRecv(); ok {
		return EventMQ, msg
	}
	return EventNone, nil
}

func (m *Mux) arm(mq *MQ, mask iodev.IRQSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.armedMQ = mq
	m.armedMask = mask
}

func (m *Mux) disarm() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.armedMQ = nil
	m.armedMask = 0
}

// Sleep has Spin's edge semantics, but when no edge is immediately true
// it registers mq as the recipient for mask's events inside a critical
// section, then blocks receiving from mq, then unregisters — exactly
// fifo_sleep's shape.
func (m *Mux) Sleep(ctx context.Context, mq *MQ, mask iodev.IRQSet) (Event, any, error) {
	if ev, ok := m.edges(mask); ok {
		return ev, nil, nil
	}
	m.arm(mq, mask)
	defer m.disarm()
	select {
	case msg := <-mq.ch:
		return EventMQ, msg, nil
	case <-ctx.Done():
		return EventNone, nil, ctx.Err()
	}
}

// IRQsMasked returns the intersection of currently-asserted FIFO IRQs
// with those armed by the last Sleep call still in progress (queue
// non-nil). It's meant to be polled from whatever plays the role of the
// interrupt dispatcher (see Dispatcher).
func (m *Mux) IRQsMasked() iodev.IRQSet {
	m.mu.Lock()
	mq, mask := m.armedMQ, m.armedMask
	m.mu.Unlock()
	if mq == nil || m.backend == nil {
		return 0
	}
	return m.backend.IRQs() & mask
}

// Wake delivers msg to the currently armed queue, if any, waking a
// blocked Sleep the way a real FIFO interrupt handler posts to the
// registered OSMesgQueue.
func (m *Mux) Wake(msg any) {
	m.mu.Lock()
	mq := m.armedMQ
	m.mu.Unlock()
	if mq != nil {
		mq.Send(msg)
	}
}
