// Package agent runs the debugger core's thread: it probes an IO
// backend, owns the packet connection built on top of it, and pumps
// spec.md §4.7's event loop — waiting for a FIFO edge or a host
// notification and dispatching each to the rdb package. Grounded on
// cmd/controller/main.go's Init-then-for-loop-pump shape (gui.App.Frame
// called forever there; rdb.Debugger's event handlers called forever
// here).
package agent

import (
	"context"
	"log"

	"periph.io/x/host/v3"

	"github.com/glankk/rdb/iodev"
	"github.com/glankk/rdb/iomux"
	"github.com/glankk/rdb/rdb"
	"github.com/glankk/rdb/rsp"
)

// threadFaultMsg is posted by NotifyThreadFault, the Go side of the
// host runtime's trap handler doing osSendMesg(&rdb_mq, thread, ...).
type threadFaultMsg struct {
	thread rdb.Thread
}

// libraryChangedMsg is posted by NotifyLibraryChanged, the Go side of
// rdb_lib_changed's osSendMesg(&rdb_mq, RDB_EVENT_LIB, ...).
type libraryChangedMsg struct{}

// Agent owns the debugger core, its packet connection, and the IO
// multiplexer feeding it, and runs the event loop on its own
// goroutine — the Go shape of the dedicated runtime-monitor-priority
// thread rdb_start creates.
type Agent struct {
	debugger *rdb.Debugger
	mux      *iomux.Mux
	conn     *rsp.Conn
	mq       *iomux.MQ

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// Start probes backends in order, binds the packet connection to
// whichever one responds, constructs the debugger core over threads
// and libs, and launches the event-loop goroutine. Exempt is the
// breakpoint-forbidden address range table (see cmd/rdbsymgen).
func Start(backends []iodev.Backend, threads rdb.ThreadHost, libs rdb.OverlayHost, exempt []rdb.AddressRange) (*Agent, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}

	mux := &iomux.Mux{}
	if err := mux.Init(backends); err != nil {
		return nil, err
	}

	backend := mux.Backend()
	conn := rsp.NewConn(backend, backend)
	d := rdb.New(conn, threads, libs, exempt)

	ctx, cancel := context.WithCancel(context.Background())
	a := &Agent{
		debugger: d,
		mux:      mux,
		conn:     conn,
		mq:       iomux.NewMQ(8),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go a.run()
	return a, nil
}

// NotifyThreadFault is how the host program's trap/break handler tells
// the agent a thread stopped, the Go call a real interrupt/exception
// handler makes in place of osSendMesg(&rdb_mq, thread, OS_MESG_NOBLOCK).
// Safe to call from any goroutine; never blocks.
func (a *Agent) NotifyThreadFault(t rdb.Thread) {
	a.mq.Send(threadFaultMsg{thread: t})
}

// NotifyLibraryChanged is how the host program's overlay loader tells
// the agent a library loaded or unloaded, the Go call standing in for
// rdb_lib_changed's osSendMesg(&rdb_mq, RDB_EVENT_LIB, ...). Safe to
// call from any goroutine; never blocks.
func (a *Agent) NotifyLibraryChanged() {
	a.mq.Send(libraryChangedMsg{})
}

// Stop cancels the event loop and waits for it to exit.
func (a *Agent) Stop() {
	a.cancel()
	<-a.done
}

// run is the event loop of spec.md §4.7: build the IRQ mask, wait,
// dispatch, forever, until Stop cancels the context.
func (a *Agent) run() {
	defer close(a.done)
	for {
		mask := iodev.IRQRX
		if a.debugger.Attached() {
			mask |= iodev.IRQOff
		}

		var ev iomux.Event
		var msg any
		if a.debugger.Attached() && !a.debugger.Running() {
			// Stopped and waiting on the host debugger: busy-poll for
			// low-latency interactive response instead of blocking.
			ev, msg = a.mux.Spin(a.mq, mask)
		} else {
			var err error
			ev, msg, err = a.mux.Sleep(a.ctx, a.mq, mask)
			if err != nil {
				return
			}
		}

		if err := a.dispatch(ev, msg); err != nil {
			log.Printf("rdb: %v", err)
		}

		select {
		case <-a.ctx.Done():
			return
		default:
		}
	}
}

func (a *Agent) dispatch(ev iomux.Event, msg any) error {
	switch ev {
	case iomux.EventOff:
		a.debugger.OnFIFOOff()
		return nil
	case iomux.EventRX:
		return a.handleRX()
	case iomux.EventMQ:
		return a.handleMsg(msg)
	default:
		return nil
	}
}

// handleRX consumes exactly one introducer byte, the way the event
// loop's FIFO-rx case dispatches '$'/'%' to handle_pkt and a bare 0x03
// to an immediate SIGINT stop-reply. Any other byte is a stray
// mid-packet fragment (e.g. a "+"/"-" ack the host is not owed a
// response to here) and is discarded.
func (a *Agent) handleRX() error {
	b, err := a.conn.NextByte()
	if err != nil {
		return err
	}
	switch b {
	case '$':
		return a.debugger.HandlePacket(false)
	case '%':
		return a.debugger.HandlePacket(true)
	case 0x03:
		return a.debugger.OnBreak()
	default:
		return nil
	}
}

func (a *Agent) handleMsg(msg any) error {
	switch m := msg.(type) {
	case threadFaultMsg:
		return a.debugger.OnThreadEvent(m.thread)
	case libraryChangedMsg:
		return a.debugger.OnLibraryEvent()
	default:
		return nil
	}
}
