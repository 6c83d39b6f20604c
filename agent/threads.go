package agent

import (
	_ "embed"

	"github.com/fxamacker/cbor/v2"

	"github.com/glankk/rdb/rdb"
)

// threadDesc is one row of the build-time thread table, the same kind
// of generated symbol metadata cmd/rdbsymgen is already expected to
// produce for overlay.Reporter's category tables and Debugger.Exempt
// (see debugger.go's comment on Exempt): addr is the address of this
// thread's OSThread struct in target RAM.
type threadDesc struct {
	Name   string `cbor:"name"`
	ID     uint32 `cbor:"id"`
	Addr   uint32 `cbor:"addr"`
	Exempt bool   `cbor:"exempt"`
}

type threadTable struct {
	Threads []threadDesc `cbor:"threads"`
}

//go:embed threads.cbor
var embeddedThreads []byte

func decodeThreadTable(blob []byte) threadTable {
	var t threadTable
	if len(blob) == 0 {
		return t
	}
	if err := cbor.Unmarshal(blob, &t); err != nil {
		return threadTable{}
	}
	return t
}

// OSThread layout this agent assumes of the target build, standing in
// for the real SDK's __OSThreadContext (not available to this module;
// cmd/rdbsymgen would normally emit these offsets straight from the
// target's own headers): a 4-byte id, a 4-byte priority, a 4-byte
// stopped flag this host pokes directly in place of a real scheduler
// call, then the context as 35 consecutive 8-byte GPRs (At..Pc), 16
// 8-byte FPR slots, and a trailing 4-byte fpcsr.
const (
	threadPriorityOff = 4
	threadStoppedOff  = 8
	threadContextOff  = 12
)

var ctxFieldOffsets = []struct {
	off uint32
	get func(*rdb.ThreadContext) uint64
	set func(*rdb.ThreadContext, uint64)
}{
	{0 * 8, func(c *rdb.ThreadContext) uint64 { return c.At }, func(c *rdb.ThreadContext, v uint64) { c.At = v }},
	{1 * 8, func(c *rdb.ThreadContext) uint64 { return c.V0 }, func(c *rdb.ThreadContext, v uint64) { c.V0 = v }},
	{2 * 8, func(c *rdb.ThreadContext) uint64 { return c.V1 }, func(c *rdb.ThreadContext, v uint64) { c.V1 = v }},
	{3 * 8, func(c *rdb.ThreadContext) uint64 { return c.A0 }, func(c *rdb.ThreadContext, v uint64) { c.A0 = v }},
	{4 * 8, func(c *rdb.ThreadContext) uint64 { return c.A1 }, func(c *rdb.ThreadContext, v uint64) { c.A1 = v }},
	{5 * 8, func(c *rdb.ThreadContext) uint64 { return c.A2 }, func(c *rdb.ThreadContext, v uint64) { c.A2 = v }},
	{6 * 8, func(c *rdb.ThreadContext) uint64 { return c.A3 }, func(c *rdb.ThreadContext, v uint64) { c.A3 = v }},
	{7 * 8, func(c *rdb.ThreadContext) uint64 { return c.T0 }, func(c *rdb.ThreadContext, v uint64) { c.T0 = v }},
	{8 * 8, func(c *rdb.ThreadContext) uint64 { return c.T1 }, func(c *rdb.ThreadContext, v uint64) { c.T1 = v }},
	{9 * 8, func(c *rdb.ThreadContext) uint64 { return c.T2 }, func(c *rdb.ThreadContext, v uint64) { c.T2 = v }},
	{10 * 8, func(c *rdb.ThreadContext) uint64 { return c.T3 }, func(c *rdb.ThreadContext, v uint64) { c.T3 = v }},
	{11 * 8, func(c *rdb.ThreadContext) uint64 { return c.T4 }, func(c *rdb.ThreadContext, v uint64) { c.T4 = v }},
	{12 * 8, func(c *rdb.ThreadContext) uint64 { return c.T5 }, func(c *rdb.ThreadContext, v uint64) { c.T5 = v }},
	{13 * 8, func(c *rdb.ThreadContext) uint64 { return c.T6 }, func(c *rdb.ThreadContext, v uint64) { c.T6 = v }},
	{14 * 8, func(c *rdb.ThreadContext) uint64 { return c.T7 }, func(c *rdb.ThreadContext, v uint64) { c.T7 = v }},
	{15 * 8, func(c *rdb.ThreadContext) uint64 { return c.S0 }, func(c *rdb.ThreadContext, v uint64) { c.S0 = v }},
	{16 * 8, func(c *rdb.ThreadContext) uint64 { return c.S1 }, func(c *rdb.ThreadContext, v uint64) { c.S1 = v }},
	{17 * 8, func(c *rdb.ThreadContext) uint64 { return c.S2 }, func(c *rdb.ThreadContext, v uint64) { c.S2 = v }},
	{18 * 8, func(c *rdb.ThreadContext) uint64 { return c.S3 }, func(c *rdb.ThreadContext, v uint64) { c.S3 = v }},
	{19 * 8, func(c *rdb.ThreadContext) uint64 { return c.S4 }, func(c *rdb.ThreadContext, v uint64) { c.S4 = v }},
	{20 * 8, func(c *rdb.ThreadContext) uint64 { return c.S5 }, func(c *rdb.ThreadContext, v uint64) { c.S5 = v }},
	{21 * 8, func(c *rdb.ThreadContext) uint64 { return c.S6 }, func(c *rdb.ThreadContext, v uint64) { c.S6 = v }},
	{22 * 8, func(c *rdb.ThreadContext) uint64 { return c.S7 }, func(c *rdb.ThreadContext, v uint64) { c.S7 = v }},
	{23 * 8, func(c *rdb.ThreadContext) uint64 { return c.T8 }, func(c *rdb.ThreadContext, v uint64) { c.T8 = v }},
	{24 * 8, func(c *rdb.ThreadContext) uint64 { return c.T9 }, func(c *rdb.ThreadContext, v uint64) { c.T9 = v }},
	{25 * 8, func(c *rdb.ThreadContext) uint64 { return c.Gp }, func(c *rdb.ThreadContext, v uint64) { c.Gp = v }},
	{26 * 8, func(c *rdb.ThreadContext) uint64 { return c.Sp }, func(c *rdb.ThreadContext, v uint64) { c.Sp = v }},
	{27 * 8, func(c *rdb.ThreadContext) uint64 { return c.S8 }, func(c *rdb.ThreadContext, v uint64) { c.S8 = v }},
	{28 * 8, func(c *rdb.ThreadContext) uint64 { return c.Ra }, func(c *rdb.ThreadContext, v uint64) { c.Ra = v }},
	{29 * 8, func(c *rdb.ThreadContext) uint64 { return c.Sr }, func(c *rdb.ThreadContext, v uint64) { c.Sr = v }},
	{30 * 8, func(c *rdb.ThreadContext) uint64 { return c.Lo }, func(c *rdb.ThreadContext, v uint64) { c.Lo = v }},
	{31 * 8, func(c *rdb.ThreadContext) uint64 { return c.Hi }, func(c *rdb.ThreadContext, v uint64) { c.Hi = v }},
	{32 * 8, func(c *rdb.ThreadContext) uint64 { return c.BadVAddr }, func(c *rdb.ThreadContext, v uint64) { c.BadVAddr = v }},
	{33 * 8, func(c *rdb.ThreadContext) uint64 { return c.Cause }, func(c *rdb.ThreadContext, v uint64) { c.Cause = v }},
	{34 * 8, func(c *rdb.ThreadContext) uint64 { return c.Pc }, func(c *rdb.ThreadContext, v uint64) { c.Pc = v }},
}

const (
	ctxWordFields = 35
	ctxFPRBase    = ctxWordFields * 8
	ctxFpcsrOff   = ctxFPRBase + 16*8
	ctxSize       = ctxFpcsrOff + 4
)

func readU64(mem rdb.Memory, addr uint32) uint64 {
	hi := mem.ReadWord(addr)
	lo := mem.ReadWord(addr + 4)
	return uint64(hi)<<32 | uint64(lo)
}

func writeU64(mem rdb.Memory, addr uint32, v uint64) {
	mem.WriteWord(addr, uint32(v>>32))
	mem.WriteWord(addr+4, uint32(v))
}

// readContext loads the full register file for the OSThread at addr.
func readContext(mem rdb.Memory, addr uint32) rdb.ThreadContext {
	var c rdb.ThreadContext
	base := addr + threadContextOff
	for _, f := range ctxFieldOffsets {
		f.set(&c, readU64(mem, base+f.off))
	}
	for i := range c.F {
		c.F[i] = readU64(mem, base+ctxFPRBase+uint32(i)*8)
	}
	c.Fpcsr = mem.ReadWord(base + ctxFpcsrOff)
	return c
}

// writeContext stores the full register file back, the flush a
// ThreadHost.Start performs before resuming so any GDB-side register
// edit (handleGStore/handlePStore) takes effect on the real target.
func writeContext(mem rdb.Memory, addr uint32, c *rdb.ThreadContext) {
	base := addr + threadContextOff
	for _, f := range ctxFieldOffsets {
		writeU64(mem, base+f.off, f.get(c))
	}
	for i := range c.F {
		writeU64(mem, base+ctxFPRBase+uint32(i)*8, c.F[i])
	}
	mem.WriteWord(base+ctxFpcsrOff, c.Fpcsr)
}

// targetThread is one table-described OSThread, with its context
// cached in Go until the next Refresh/Flush round-trips it to target
// RAM.
type targetThread struct {
	mem  rdb.Memory
	desc threadDesc
	ctx  rdb.ThreadContext
}

func (t *targetThread) ID() rdb.ThreadID            { return rdb.ThreadID(t.desc.ID) }
func (t *targetThread) Context() *rdb.ThreadContext { return &t.ctx }

func (t *targetThread) Priority() int {
	return int(int32(t.mem.ReadWord(t.desc.Addr + threadPriorityOff)))
}

func (t *targetThread) SetPriority(p int) {
	t.mem.WriteWord(t.desc.Addr+threadPriorityOff, uint32(int32(p)))
}

// refresh reloads this thread's cached context from target RAM, the
// step a fault notifier performs before telling the agent about it.
func (t *targetThread) refresh() { t.ctx = readContext(t.mem, t.desc.Addr) }

// flush writes the cached context back, the step ThreadHost.Start
// performs so a GDB-side register edit actually reaches the target.
func (t *targetThread) flush() { writeContext(t.mem, t.desc.Addr, &t.ctx) }

// TargetThreadHost enumerates a fixed, build-time-known set of OSThread
// structs over a Memory collaborator, standing in for the source's
// direct walk of the live active-thread queue (whose head pointer and
// qnext offset are themselves target-build symbol metadata this module
// has no header to source from; see DESIGN.md).
type TargetThreadHost struct {
	mem     rdb.Memory
	threads []*targetThread
}

// NewTargetThreadHost builds a host over mem from the embedded thread
// table, refreshing every thread's context once up front.
func NewTargetThreadHost(mem rdb.Memory) *TargetThreadHost {
	return newTargetThreadHostFromCBOR(mem, embeddedThreads)
}

func newTargetThreadHostFromCBOR(mem rdb.Memory, blob []byte) *TargetThreadHost {
	table := decodeThreadTable(blob)
	h := &TargetThreadHost{mem: mem}
	for _, d := range table.Threads {
		t := &targetThread{mem: mem, desc: d}
		t.refresh()
		h.threads = append(h.threads, t)
	}
	return h
}

func (h *TargetThreadHost) ForEach(fn func(rdb.Thread) bool) {
	for _, t := range h.threads {
		if t.desc.Exempt {
			continue
		}
		if !fn(t) {
			return
		}
	}
}

// Start flushes the cached context (picking up any GDB-side edit) and
// clears a target-defined "stopped" flag stored just past priority.
func (h *TargetThreadHost) Start(t rdb.Thread) {
	tt, ok := t.(*targetThread)
	if !ok {
		return
	}
	tt.flush()
	h.mem.WriteWord(tt.desc.Addr+threadStoppedOff, 0)
}

// Stop sets the same stopped flag and refreshes the cached context so
// a subsequent GetReg/handleG sees whatever the target last ran with.
func (h *TargetThreadHost) Stop(t rdb.Thread) {
	tt, ok := t.(*targetThread)
	if !ok {
		return
	}
	h.mem.WriteWord(tt.desc.Addr+threadStoppedOff, 1)
	tt.refresh()
}

func (h *TargetThreadHost) StartAll() {
	h.ForEach(func(t rdb.Thread) bool { h.Start(t); return true })
}

func (h *TargetThreadHost) StopAll() {
	h.ForEach(func(t rdb.Thread) bool { h.Stop(t); return true })
}

// watchRegAddr is the fixed target address of the VR4300 watch-lo
// register shadow this host pokes on SetWatch, another build-time
// constant cmd/rdbsymgen would ordinarily emit.
const watchRegAddr = 0x80100FF0

func (h *TargetThreadHost) SetWatch(lo uint32) {
	h.mem.WriteWord(watchRegAddr, lo)
}

func (h *TargetThreadHost) Memory() rdb.Memory { return h.mem }

var _ rdb.ThreadHost = (*TargetThreadHost)(nil)

// RefreshFaulted reloads and returns the thread matching id after a
// trap, the call cmd/rdbd's fault poller makes before handing the
// thread to Agent.NotifyThreadFault.
func (h *TargetThreadHost) RefreshFaulted(id rdb.ThreadID) (rdb.Thread, bool) {
	for _, t := range h.threads {
		if rdb.ThreadID(t.desc.ID) == id {
			t.refresh()
			return t, true
		}
	}
	return nil, false
}
