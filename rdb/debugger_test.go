package rdb

import (
	"bytes"
	"io"
	"testing"

	"github.com/glankk/rdb/rsp"
)

// fakeMemory is a flat byte-addressable window starting at base,
// exercising ReadByte/WriteByte/ReadWord/WriteWord the way a real
// KSEG0 window over RDRAM would.
type fakeMemory struct {
	base uint32
	buf  []byte
}

func newFakeMemory(base uint32, size int) *fakeMemory {
	return &fakeMemory{base: base, buf: make([]byte, size)}
}

func (m *fakeMemory) idx(addr uint32) int { return int(addr - m.base) }

func (m *fakeMemory) ReadByte(addr uint32) byte     { return m.buf[m.idx(addr)] }
func (m *fakeMemory) WriteByte(addr uint32, b byte) { m.buf[m.idx(addr)] = b }

func (m *fakeMemory) ReadWord(addr uint32) uint32 {
	i := m.idx(addr)
	return uint32(m.buf[i])<<24 | uint32(m.buf[i+1])<<16 | uint32(m.buf[i+2])<<8 | uint32(m.buf[i+3])
}

func (m *fakeMemory) WriteWord(addr uint32, w uint32) {
	i := m.idx(addr)
	m.buf[i] = byte(w >> 24)
	m.buf[i+1] = byte(w >> 16)
	m.buf[i+2] = byte(w >> 8)
	m.buf[i+3] = byte(w)
}

type fakeThread struct {
	id  ThreadID
	ctx ThreadContext
	pri int
}

func (t *fakeThread) ID() ThreadID             { return t.id }
func (t *fakeThread) Context() *ThreadContext  { return &t.ctx }
func (t *fakeThread) Priority() int            { return t.pri }
func (t *fakeThread) SetPriority(p int)        { t.pri = p }

type fakeHost struct {
	threads   []*fakeThread
	mem       *fakeMemory
	started   map[ThreadID]bool
	watchLo   uint32
	startAllN int
	stopAllN  int
}

func newFakeHost(mem *fakeMemory, threads ...*fakeThread) *fakeHost {
	return &fakeHost{threads: threads, mem: mem, started: map[ThreadID]bool{}}
}

func (h *fakeHost) ForEach(fn func(Thread) bool) {
	for _, t := range h.threads {
		if !fn(t) {
			return
		}
	}
}

func (h *fakeHost) Start(t Thread) { h.started[t.ID()] = true }
func (h *fakeHost) Stop(t Thread)  { h.started[t.ID()] = false }

func (h *fakeHost) StartAll() {
	h.startAllN++
	for _, t := range h.threads {
		h.started[t.ID()] = true
	}
}

func (h *fakeHost) StopAll() {
	h.stopAllN++
	for _, t := range h.threads {
		h.started[t.ID()] = false
	}
}

func (h *fakeHost) SetWatch(lo uint32) { h.watchLo = lo }
func (h *fakeHost) Memory() Memory     { return h.mem }

type fakeOverlay struct {
	libs    []Library
	pos     int
	changed *Library
	pending bool
}

func (o *fakeOverlay) ResetCursors() { o.pos = 0 }

func (o *fakeOverlay) Next() (Library, bool) {
	if o.pos >= len(o.libs) {
		return Library{}, false
	}
	lib := o.libs[o.pos]
	o.pos++
	return lib, true
}

func (o *fakeOverlay) ChangedLibrary() (Library, bool, bool) {
	if o.changed == nil {
		return Library{}, false, o.pending
	}
	return *o.changed, true, o.pending
}

func (o *fakeOverlay) ClearChanged() { o.pending = false }

func newTestDebugger() (*Debugger, *fakeHost, *fakeThread, *bytes.Buffer) {
	mem := newFakeMemory(0x80000000, 0x1000)
	th := &fakeThread{id: 1}
	host := newFakeHost(mem, th)
	var out bytes.Buffer
	conn := rsp.NewConn(&bytes.Buffer{}, &out)
	conn.NoAck = true
	d := New(conn, host, &fakeOverlay{}, nil)
	return d, host, th, &out
}

func TestAttachSelectsFirstThreadAndStops(t *testing.T) {
	d, host, th, _ := newTestDebugger()
	d.attach()
	if !d.attached || d.running {
		t.Fatalf("attach: attached=%v running=%v, want attached, stopped", d.attached, d.running)
	}
	if d.cthread != th || d.gthread != th {
		t.Fatalf("attach did not select the only thread as current/general")
	}
	if host.stopAllN == 0 {
		t.Fatalf("attach did not stop all threads")
	}
}

func TestRunStopIdempotent(t *testing.T) {
	d, host, _, _ := newTestDebugger()
	d.attach()
	d.run()
	d.run()
	if host.startAllN != 1 {
		t.Fatalf("run: StartAll called %d times, want 1 (idempotent)", host.startAllN)
	}
	stopsBefore := host.stopAllN
	d.stop()
	d.stop()
	if host.stopAllN != stopsBefore+1 {
		t.Fatalf("stop: StopAll called %d times after idempotent stop, want %d", host.stopAllN, stopsBefore+1)
	}
}

func TestDetachClearsBreakpointsAndResumes(t *testing.T) {
	d, host, _, _ := newTestDebugger()
	d.attach()
	if !setBkp(d.mem(), d.Exempt, &d.swbkp[0], 0x80000100) {
		t.Fatalf("setBkp failed on a valid address")
	}
	if d.mem().ReadWord(0x80000100) != trapWord {
		t.Fatalf("setBkp did not install the trap word")
	}
	d.detach()
	if d.attached {
		t.Fatalf("detach left attached=true")
	}
	if d.swbkp[0].active {
		t.Fatalf("detach left a breakpoint slot active")
	}
	if !host.started[1] {
		t.Fatalf("detach did not resume threads")
	}
}

func TestSetBkpRefusesExemptRange(t *testing.T) {
	mem := newFakeMemory(0x80000000, 0x1000)
	exempt := []AddressRange{{Start: 0x80000100, End: 0x80000200}}
	var b swbkp
	if setBkp(mem, exempt, &b, 0x80000150) {
		t.Fatalf("setBkp installed a breakpoint inside an exempt range")
	}
}

func TestSetBkpRefusesUnalignedAddress(t *testing.T) {
	mem := newFakeMemory(0x80000000, 0x1000)
	var b swbkp
	if setBkp(mem, nil, &b, 0x80000101) {
		t.Fatalf("setBkp installed a breakpoint at an unaligned address")
	}
}

func TestClearBkpPreservesSelfModifiedCode(t *testing.T) {
	mem := newFakeMemory(0x80000000, 0x1000)
	var b swbkp
	setBkp(mem, nil, &b, 0x80000100)
	mem.WriteWord(0x80000100, 0xDEADBEEF)
	clearBkp(mem, &b)
	if mem.ReadWord(0x80000100) != 0xDEADBEEF {
		t.Fatalf("clearBkp clobbered code the program had since rewritten")
	}
	if b.active {
		t.Fatalf("clearBkp left the slot active")
	}
}

func TestCauseToSignal(t *testing.T) {
	cases := []struct {
		cause     uint64
		watch     bool
		wantSig   Signal
		wantWatch bool
	}{
		{0 << 2, false, SIGINT, false},
		{10 << 2, false, SIGILL, false},
		{15 << 2, false, SIGFPE, false},
		{4 << 2, false, SIGSEGV, false},
		{7 << 2, false, SIGBUS, false},
		{9 << 2, false, SIGTRAP, false},
		{23 << 2, true, SIGTRAP, true},
		{23 << 2, false, SIGTRAP, false},
	}
	for _, c := range cases {
		sig, watchHit := causeToSignal(c.cause, c.watch)
		if sig != c.wantSig || watchHit != c.wantWatch {
			t.Errorf("causeToSignal(%#x, %v) = (%v, %v), want (%v, %v)",
				c.cause, c.watch, sig, watchHit, c.wantSig, c.wantWatch)
		}
	}
}

func TestPlannedPCsBranch(t *testing.T) {
	mem := newFakeMemory(0x80000000, 0x1000)
	// BEQ $zero, $zero, 4 -> opcode 4, rs=0, rt=0, offset=4 (pre-shifted)
	mem.WriteWord(0x80000000, (4<<26)|(0<<21)|(0<<16)|1)
	th := &fakeThread{id: 1}
	a0, a1 := plannedPCs(mem, th, 0x80000000)
	if a0 != 0x80000008 || a1 != 0x80000008 {
		t.Fatalf("plannedPCs(BEQ) = (%#x, %#x), want (%#x, %#x)", a0, a1, 0x80000008, 0x80000008)
	}
}

func TestPlannedPCsJR(t *testing.T) {
	mem := newFakeMemory(0x80000000, 0x1000)
	// JR $ra -> opcode 0, rs=31 (ra), funct 0x08
	mem.WriteWord(0x80000000, (0<<26)|(31<<21)|0x08)
	th := &fakeThread{id: 1}
	th.ctx.Ra = 0x80001234
	a0, a1 := plannedPCs(mem, th, 0x80000000)
	if a0 != 0x80001234 || a1 != 0 {
		t.Fatalf("plannedPCs(JR $ra) = (%#x, %#x), want (%#x, 0)", a0, a1, 0x80001234)
	}
}

func TestStepInstallsBreakpointsAndRuns(t *testing.T) {
	d, host, th, _ := newTestDebugger()
	d.attach()
	// Non-branching instruction (NOP, SLL $zero,$zero,0) at PC.
	d.mem().WriteWord(0x80000200, 0)
	th.ctx.Pc = 0x80000200
	if err := d.step(th); err != nil {
		t.Fatalf("step returned error: %v", err)
	}
	if !d.stepping {
		t.Fatalf("step did not enter stepping state")
	}
	if !d.stepBkp[0].active || d.stepBkp[0].addr != 0x80000204 {
		t.Fatalf("step did not arm a breakpoint at PC+4")
	}
	if !host.started[th.id] {
		t.Fatalf("step did not resume the thread")
	}
	if th.pri != appMaxPriority {
		t.Fatalf("step did not raise thread priority, got %d", th.pri)
	}
	d.stop()
	if d.stepping {
		t.Fatalf("stop did not clear stepping state")
	}
	if th.pri != 0 {
		t.Fatalf("stop did not restore thread priority, got %d", th.pri)
	}
}

func TestStopReplyFormatsThreadAndPC(t *testing.T) {
	d, _, th, out := newTestDebugger()
	d.attach()
	th.ctx.Pc = 0x80001000
	th.ctx.Cause = 9 << 2 // breakpoint
	if err := d.StopReply(th); err != nil {
		t.Fatalf("StopReply: %v", err)
	}
	got := decodeOutPkt(t, out)
	want := "T05thread:1;25:0000000080001000;"
	if got != want {
		t.Fatalf("StopReply payload = %q, want %q", got, want)
	}
}

// decodeOutPkt locates the last $-or-%-framed packet written to out,
// decodes it via the rsp package itself (which resolves escapes), and
// expands its run-length units, so assertions see semantic content
// rather than RLE/escape-mangled wire bytes.
func decodeOutPkt(t *testing.T, out *bytes.Buffer) string {
	t.Helper()
	data := out.Bytes()
	i := bytes.LastIndexAny(data, "$%")
	if i < 0 {
		t.Fatalf("no packet found in output %q", data)
	}
	conn := rsp.NewConn(bytes.NewReader(data[i+1:]), io.Discard)
	conn.NoAck = true
	sc, err := conn.GetPkt(data[i] == '%')
	if err != nil {
		t.Fatalf("decoding output packet %q: %v", data, err)
	}
	return string(expandRLE(sc.Rest()))
}

// expandRLE undoes PktFinish's run-length encoding: "X*N" stands for X
// followed by N-29 more copies of X.
func expandRLE(b []byte) []byte {
	var out []byte
	for i := 0; i < len(b); i++ {
		if b[i] == '*' && len(out) > 0 && i+1 < len(b) {
			for n := int(b[i+1]) - 29; n > 0; n-- {
				out = append(out, out[len(out)-1])
			}
			i++
			continue
		}
		out = append(out, b[i])
	}
	return out
}

func handlePayload(t *testing.T, d *Debugger, in *bytes.Buffer, out *bytes.Buffer, payload string) string {
	t.Helper()
	framed := encodeTestPacket(payload)
	in.Write(framed)
	if err := d.HandlePacket(false); err != nil {
		t.Fatalf("HandlePacket(%q): %v", payload, err)
	}
	return decodeOutPkt(t, out)
}

// encodeTestPacket frames payload as ...#cc (GetPkt's caller has already
// consumed the leading '$'/'%' introducer, so it is not included here),
// assuming no bytes in payload require escaping (true for every fixed
// command string this test file sends).
func encodeTestPacket(payload string) []byte {
	var csum byte
	for i := 0; i < len(payload); i++ {
		csum += payload[i]
	}
	const hex = "0123456789abcdef"
	buf := append([]byte(nil), payload...)
	buf = append(buf, '#', hex[csum>>4], hex[csum&0xF])
	return buf
}

func newDispatchDebugger() (*Debugger, *bytes.Buffer, *bytes.Buffer) {
	mem := newFakeMemory(0x80000000, 0x1000)
	th := &fakeThread{id: 1}
	host := newFakeHost(mem, th)
	in := &bytes.Buffer{}
	out := &bytes.Buffer{}
	conn := rsp.NewConn(in, out)
	conn.NoAck = true
	d := New(conn, host, &fakeOverlay{}, nil)
	return d, in, out
}

func TestHandlePacketQSupported(t *testing.T) {
	d, in, out := newDispatchDebugger()
	got := handlePayload(t, d, in, out, "qSupported:multiprocess+;swbreak+")
	if !bytes.Contains([]byte(got), []byte("QStartNoAckMode+")) {
		t.Fatalf("qSupported reply = %q, missing QStartNoAckMode+", got)
	}
}

func TestHandlePacketQueryHaltRepliesStopReply(t *testing.T) {
	d, in, out := newDispatchDebugger()
	got := handlePayload(t, d, in, out, "?")
	if len(got) == 0 || got[0] != 'T' {
		t.Fatalf("'?' reply = %q, want a T stop-reply", got)
	}
}

func TestHandlePacketUnknownRepliesEmpty(t *testing.T) {
	d, in, out := newDispatchDebugger()
	got := handlePayload(t, d, in, out, "vMustReplyEmpty")
	if got != "" {
		t.Fatalf("unrecognized command reply = %q, want an empty packet", got)
	}
}

func TestHandlePacketMalformedRepliesE00(t *testing.T) {
	d, in, out := newDispatchDebugger()
	got := handlePayload(t, d, in, out, "P-not-hex")
	if !bytes.Contains([]byte(got), []byte("E00")) {
		t.Fatalf("malformed P reply = %q, want E00", got)
	}
}

func TestHandlePacketPWriteThenPReadRoundTrip(t *testing.T) {
	d, in, out := newDispatchDebugger()
	handlePayload(t, d, in, out, "?") // attach + select current/general thread
	out.Reset()
	got := handlePayload(t, d, in, out, "P02=0000000000001234")
	if !bytes.Contains([]byte(got), []byte("OK")) {
		t.Fatalf("P reply = %q, want OK", got)
	}
	out.Reset()
	got = handlePayload(t, d, in, out, "p02")
	if got != "0000000000001234" {
		t.Fatalf("p02 reply = %q, want the value just stored", got)
	}
}

func TestHandlePacketMemoryReadWrite(t *testing.T) {
	d, in, out := newDispatchDebugger()
	handlePayload(t, d, in, out, "?")
	out.Reset()
	handlePayload(t, d, in, out, "M80000100,2:abcd")
	out.Reset()
	got := handlePayload(t, d, in, out, "m80000100,2")
	if got != "abcd" {
		t.Fatalf("m reply = %q, want \"abcd\"", got)
	}
}

func TestHandlePacketZZInsertAndRemoveBreakpoint(t *testing.T) {
	d, in, out := newDispatchDebugger()
	handlePayload(t, d, in, out, "?")
	out.Reset()
	got := handlePayload(t, d, in, out, "Z0,80000100,4")
	if !bytes.Contains([]byte(got), []byte("OK")) {
		t.Fatalf("Z0 reply = %q, want OK", got)
	}
	if d.mem().ReadWord(0x80000100) != trapWord {
		t.Fatalf("Z0 did not install the trap word")
	}
	out.Reset()
	got = handlePayload(t, d, in, out, "z0,80000100,4")
	if !bytes.Contains([]byte(got), []byte("OK")) {
		t.Fatalf("z0 reply = %q, want OK", got)
	}
	if d.swbkp[0].active {
		t.Fatalf("z0 did not clear the breakpoint")
	}
}

func TestHandlePacketQXferLibrariesRead(t *testing.T) {
	d, in, out := newDispatchDebugger()
	handlePayload(t, d, in, out, "?")
	d.libs = &fakeOverlay{libs: []Library{
		{Kind: LibStatic, Name: "boot", LoadAddr: 0x80000450},
		{Kind: LibOverlay, Name: "stage2", LoadAddr: 0x80100000},
	}}
	out.Reset()
	got := handlePayload(t, d, in, out, "qXfer:libraries:read::0,1000")
	if !bytes.Contains([]byte(got), []byte(`<library name="boot.o">`)) {
		t.Fatalf("qXfer:libraries:read reply = %q, missing static library entry", got)
	}
	if !bytes.Contains([]byte(got), []byte(`<library name="ovl_stage2.o">`)) {
		t.Fatalf("qXfer:libraries:read reply = %q, missing overlay library entry", got)
	}
	if len(got) == 0 || got[0] != 'l' {
		t.Fatalf("qXfer:libraries:read reply did not start with the 'l' (last-chunk) prefix: %q", got)
	}
}

func TestHandlePacketDetach(t *testing.T) {
	d, in, out := newDispatchDebugger()
	handlePayload(t, d, in, out, "?")
	out.Reset()
	got := handlePayload(t, d, in, out, "D")
	if !bytes.Contains([]byte(got), []byte("OK")) {
		t.Fatalf("D reply = %q, want OK", got)
	}
	if d.attached {
		t.Fatalf("D did not detach")
	}
}
