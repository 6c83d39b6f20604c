package rdb

import (
	"github.com/glankk/rdb/rsp"
)

// Debugger holds all agent state: flags, thread selectors, the
// software breakpoint table, the single watchpoint, and the packet
// connection. It is the Go shape of the zero-initialized, process-wide
// `struct rdb`.
type Debugger struct {
	conn  *rsp.Conn
	host  ThreadHost
	libs  OverlayHost
	// Exempt lists the address ranges breakpoints may never be placed
	// in — the runtime-primitive functions the agent itself depends on.
	// Supplied at construction (spec.md's design notes suggest these are
	// generated from build-time symbol metadata rather than embedded as
	// literals; see cmd/rdbsymgen).
	Exempt []AddressRange

	attached    bool
	running     bool
	stepping    bool
	libsChanged bool

	cthread Thread
	gthread Thread

	swbkp    [SwbkpMax]swbkp
	stepBkp  [2]swbkp
	stepThr  Thread
	stepPri  int

	watch watchpoint

	libNum int
}

// New constructs a Debugger bound to conn for packet I/O, host for
// thread/memory access, and libs for overlay enumeration.
func New(conn *rsp.Conn, host ThreadHost, libs OverlayHost, exempt []AddressRange) *Debugger {
	d := &Debugger{conn: conn, host: host, libs: libs, Exempt: exempt}
	host.SetWatch(0)
	return d
}

func (d *Debugger) mem() Memory { return d.host.Memory() }

// Attached reports whether a debugger session is currently active,
// the Go read of rdb.attached. The agent event loop consults it to
// decide whether to mask the power-off edge.
func (d *Debugger) Attached() bool { return d.attached }

// Running reports whether target threads are currently resumed, the
// Go read of rdb.running. The agent event loop consults it, together
// with Attached, to decide between a blocking wait and a busy-poll
// wait for low-latency interactive response while stopped.
func (d *Debugger) Running() bool { return d.running }

// run is the idempotent transition to "threads executing": programs
// the watch register and resumes every non-exempt thread.
func (d *Debugger) run() {
	if d.running {
		return
	}
	d.running = true
	d.host.SetWatch(watchLo(d.watch))
	d.host.StartAll()
}

// stop is the idempotent transition to "threads suspended": stops
// every non-exempt thread, disables the watch register, and if a step
// was in flight clears its breakpoints and restores priority.
func (d *Debugger) stop() {
	if !d.running {
		return
	}
	d.host.StopAll()
	d.host.SetWatch(0)
	d.running = false

	if d.stepping {
		if d.stepThr.Priority() == appMaxPriority {
			d.stepThr.SetPriority(d.stepPri)
		}
		clearBkp(d.mem(), &d.stepBkp[0])
		clearBkp(d.mem(), &d.stepBkp[1])
		d.stepping = false
	}
}

// appMaxPriority mirrors OS_PRIORITY_APPMAX, the ceiling priority a
// stepping thread is temporarily promoted to.
const appMaxPriority = 255

// attach is the implicit transition the first successfully-decoded
// packet triggers: stop every thread and select the first enumerable
// thread as both selectors.
func (d *Debugger) attach() {
	if d.attached {
		return
	}
	d.attached = true
	d.running = true
	d.stop()
	d.cthread, _ = firstThread(d.host)
	d.gthread = d.cthread
}

// detach clears the watchpoint and every software/step breakpoint,
// resumes all threads, and resets every flag.
func (d *Debugger) detach() {
	if !d.attached {
		return
	}
	d.host.SetWatch(0)
	for i := range d.swbkp {
		clearBkp(d.mem(), &d.swbkp[i])
	}
	clearBkp(d.mem(), &d.stepBkp[0])
	clearBkp(d.mem(), &d.stepBkp[1])

	d.attached = false
	d.conn.NoAck = false
	d.running = false
	d.stepping = false

	d.host.StartAll()
}

// StopReply assembles and sends the RSP 'T' stop-reply packet for
// thread, the way stop_reply does: signal, thread id, PC, watch-hit
// detail, and a pending library-change segment if any.
func (d *Debugger) StopReply(thread Thread) error {
	sig, watchHit := causeToSignal(thread.Context().Cause, d.watch.active)

	d.conn.PktStart(false)
	d.conn.Putc('T')
	d.conn.PutHexN(uint64(sig), 2)

	if thread.ID() != 0 {
		d.conn.PutString("thread:")
		d.conn.PutHex(uint64(thread.ID()))
		d.conn.Putc(';')
	}

	d.conn.PutString("25:")
	d.conn.PutHexN(GetReg(thread, 0x25), 16)
	d.conn.Putc(';')

	if watchHit {
		switch d.watch.typ {
		case WatchRead:
			d.conn.Putc('r')
		case WatchAccess:
			d.conn.Putc('a')
		}
		d.conn.PutString("watch:")
		d.conn.PutHex(uint64(d.watch.addr))
		d.conn.Putc(';')
	}

	if d.libsChanged {
		d.conn.PutString("library:")
		if lib, named, _ := d.libs.ChangedLibrary(); named {
			if lib.LoadAddr != 0 {
				d.conn.Putc('+')
			} else {
				d.conn.Putc('-')
			}
			if lib.Kind == LibOverlay {
				d.conn.PutString("ovl_")
			}
			d.conn.PutString(lib.Name)
			d.conn.PutString(".o")
			if lib.LoadAddr != 0 {
				d.conn.PutString(",s,")
				d.conn.PutHex(uint64(lib.LoadAddr))
			}
		}
		d.conn.Putc(';')
		d.libsChanged = false
		d.libs.ClearChanged()
	}

	return d.conn.PktFinish()
}

// step plans and installs the step breakpoints for thread and resumes
// it, or — if neither candidate address could be armed — synthesizes a
// SIGINT stop-reply without resuming.
func (d *Debugger) step(thread Thread) error {
	pc := uint32(thread.Context().Pc)
	a0, a1 := plannedPCs(d.mem(), thread, pc)

	set := 0
	if a0 != 0 && setBkp(d.mem(), d.Exempt, &d.stepBkp[0], a0) {
		set++
	}
	if a1 != 0 && setBkp(d.mem(), d.Exempt, &d.stepBkp[1], a1) {
		set++
	}

	if set != 0 {
		d.stepThr = thread
		d.stepPri = thread.Priority()
		if d.stepPri < appMaxPriority {
			thread.SetPriority(appMaxPriority)
		}
		d.stepping = true
		d.run()
		return nil
	}

	d.cthread = thread
	d.gthread = thread
	thread.Context().Cause = 0
	return d.StopReply(thread)
}

// OnFIFOOff handles the FIFO power-off edge: an unconditional detach.
func (d *Debugger) OnFIFOOff() {
	d.detach()
}

// OnThreadEvent handles a CPU-break/fault message: once attached, stop
// the threads (if running), select the faulted thread, and reply.
func (d *Debugger) OnThreadEvent(faulted Thread) error {
	if !d.attached {
		return nil
	}
	d.stop()
	d.cthread = faulted
	d.gthread = faulted
	return d.StopReply(faulted)
}

// OnLibraryEvent handles a library-changed message: set the flag, and
// if threads are running, stop and emit a synthetic-SIGINT stop-reply
// for the current thread.
func (d *Debugger) OnLibraryEvent() error {
	if !d.attached {
		return nil
	}
	d.libsChanged = true
	if d.running {
		d.stop()
		d.cthread.Context().Cause = 0
		return d.StopReply(d.cthread)
	}
	return nil
}

// OnBreak handles a single 0x03 (Ctrl-C) byte received outside of a
// packet: only meaningful once attached and running.
func (d *Debugger) OnBreak() error {
	if d.attached && d.running {
		d.stop()
		d.cthread.Context().Cause = 0
		return d.StopReply(d.cthread)
	}
	return nil
}

// HandlePacket consumes one $-or-%-introduced packet already signaled
// by the transport (the caller has read the introducer byte), runs
// getpkt, implicitly attaches on a valid packet, dispatches to the
// first matching handler, and replies E00/empty as appropriate.
func (d *Debugger) HandlePacket(notif bool) error {
	sc, err := d.conn.GetPkt(notif)
	if err != nil {
		return nil
	}
	d.attach()

	for _, h := range dispatchTable {
		if sc.Lit(h.prefix) == 0 {
			if !h.fn(d, sc) {
				return d.conn.PutPkt(false, "E00")
			}
			return nil
		}
	}

	return d.conn.PutPkt(false, "")
}
