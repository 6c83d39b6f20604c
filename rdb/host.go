// Package rdb implements the debugger core: state machine, packet
// dispatch table, register file, breakpoint/watchpoint bookkeeping,
// step planner, and stop-reply assembly. Grounded on gui/event.go's
// EventRouter/Filter ordered-dispatch idiom (adapted from GUI event
// filters to RSP command-prefix handlers) and semantically a direct
// translation of original_source/src/rdb/rdb.c.
package rdb

// ThreadID identifies a target thread the way GDB's RSP thread-id field
// does: a small nonzero integer, with 0 reserved for "any"/"the
// currently selected thread" depending on context, and -1 (encoded as
// the literal "-1" on the wire) meaning "all"/"the first thread".
type ThreadID uint32

// ThreadContext is the MIPS VR4300 register file captured at the point
// a thread last stopped, the Go shape of __OSThreadContext.
type ThreadContext struct {
	At, V0, V1             uint64
	A0, A1, A2, A3         uint64
	T0, T1, T2, T3         uint64
	T4, T5, T6, T7         uint64
	S0, S1, S2, S3         uint64
	S4, S5, S6, S7         uint64
	T8, T9                 uint64
	Gp, Sp, S8, Ra         uint64
	Sr, Lo, Hi             uint64
	BadVAddr, Cause, Pc    uint64
	F                      [16]uint64
	Fpcsr                  uint32
}

// Thread is one schedulable target thread.
type Thread interface {
	ID() ThreadID
	Context() *ThreadContext
	Priority() int
	SetPriority(p int)
}

// Memory is the CPU-addressable memory the agent inspects and patches.
// Implementations are responsible for whatever cache writeback/
// invalidation their platform requires around WriteWord (the VR4300
// needs a D-cache writeback plus I-cache invalidate of the patched
// word; a host-side simulator needs none). Callers always gate access
// through CheckAddr first, exactly as the source dereferences a raw
// pointer only after check_addr passes.
type Memory interface {
	ReadByte(addr uint32) byte
	WriteByte(addr uint32, b byte)
	ReadWord(addr uint32) uint32
	WriteWord(addr uint32, word uint32)
}

// ThreadHost is the host runtime's thread/scheduler collaborator:
// thread enumeration (already filtered to non-exempt threads, the way
// for_each_thread skips the agent/VI/PI/idle threads), start/stop, and
// the watch-register and memory collaborators threads share.
type ThreadHost interface {
	// ForEach calls fn for each enumerable thread in host-defined
	// (scheduler queue) order, stopping early if fn returns false.
	ForEach(fn func(Thread) bool)
	Start(t Thread)
	Stop(t Thread)
	StartAll()
	StopAll()
	// SetWatch programs the watch register directly from the bit
	// pattern watchLo computes; 0 disables it.
	SetWatch(lo uint32)
	Memory() Memory
}

func firstThread(h ThreadHost) (Thread, bool) {
	var found Thread
	h.ForEach(func(t Thread) bool {
		found = t
		return false
	})
	return found, found != nil
}

func threadByID(h ThreadHost, id ThreadID) (Thread, bool) {
	var found Thread
	h.ForEach(func(t Thread) bool {
		if t.ID() == id {
			found = t
			return false
		}
		return true
	})
	return found, found != nil
}

// CheckAddr reports whether addr lies in the KSEG0/KSEG1 window the
// agent is permitted to touch and is aligned to size, mirroring
// check_addr's range 0x80000000..0xC0000000.
func CheckAddr(addr uint32, size uint32) bool {
	return addr >= 0x80000000 && addr < 0xC0000000 && addr&(size-1) == 0
}
