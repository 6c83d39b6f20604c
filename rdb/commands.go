package rdb

import "github.com/glankk/rdb/rsp"

// cmdHandler binds one command prefix to the function that consumes the
// rest of the payload and replies. fn returns false to signal a
// malformed packet (HandlePacket answers "E00"); a well-formed command
// that simply has nothing more to say (the async 'c'/'C'/'s'/'S'/'k')
// also returns true without calling PutPkt.
type cmdHandler struct {
	prefix string
	fn     func(d *Debugger, sc *rsp.Scanner) bool
}

// dispatchTable is the static, ordered command table HandlePacket walks:
// the first entry whose prefix matches at the scanner's current position
// owns the rest of the payload. Order mirrors rdb.c's pkt_handlers[].
var dispatchTable = []cmdHandler{
	{"qSupported", handleQSupported},
	{"QStartNoAckMode", handleQStartNoAckMode},
	{"qAttached", handleQAttached},
	{"qfThreadInfo", handleQfThreadInfo},
	{"qsThreadInfo", handleQsThreadInfo},
	{"qC", handleQC},
	{"H", handleH},
	{"T", handleT},
	{"?", handleQueryHalt},
	{"g", handleG},
	{"G", handleGStore},
	{"p", handleP},
	{"P", handlePStore},
	{"m", handleM},
	{"M", handleMStore},
	{"z", handleZ},
	{"Z", handleZInsert},
	{"c", handleC},
	{"C", handleCSig},
	{"s", handleS},
	{"S", handleSSig},
	{"D", handleD},
	{"k", handleK},
	{"qXfer:features:read:target.xml:", handleQXferFeaturesRead},
	{"qXfer:libraries:read::", handleQXferLibrariesRead},
}

func tid(t Thread) ThreadID {
	if t == nil {
		return 0
	}
	return t.ID()
}

func handleQSupported(d *Debugger, sc *rsp.Scanner) bool {
	d.conn.PutPkt(false, "QStartNoAckMode+;qXfer:features:read+;qXfer:libraries:read+")
	return true
}

// handleQStartNoAckMode answers OK under the still-active ack handshake,
// then disables it — the stub only stops acking once the ack for this
// very reply has been exchanged.
func handleQStartNoAckMode(d *Debugger, sc *rsp.Scanner) bool {
	if !sc.EOP() {
		return false
	}
	d.conn.PutPkt(false, "OK")
	d.conn.NoAck = true
	return true
}

func handleQAttached(d *Debugger, sc *rsp.Scanner) bool {
	if !sc.EOP() {
		return false
	}
	d.conn.PutPkt(false, "1")
	return true
}

func handleQfThreadInfo(d *Debugger, sc *rsp.Scanner) bool {
	if !sc.EOP() {
		return false
	}
	d.conn.PktStart(false)
	d.conn.Putc('m')
	first := true
	d.host.ForEach(func(t Thread) bool {
		if !first {
			d.conn.Putc(',')
		}
		first = false
		d.conn.PutHex(uint64(t.ID()))
		return true
	})
	d.conn.PktFinish()
	return true
}

func handleQsThreadInfo(d *Debugger, sc *rsp.Scanner) bool {
	if !sc.EOP() {
		return false
	}
	d.conn.PutPkt(false, "l")
	return true
}

func handleQC(d *Debugger, sc *rsp.Scanner) bool {
	if !sc.EOP() {
		return false
	}
	d.conn.PktStart(false)
	d.conn.PutString("QC")
	d.conn.PutHex(uint64(tid(d.cthread)))
	d.conn.PktFinish()
	return true
}

// handleH selects the current ('c') or general ('g') thread by id, "-1"
// meaning the first enumerable thread.
func handleH(d *Debugger, sc *rsp.Scanner) bool {
	op, ok := sc.Char()
	if !ok {
		return false
	}
	var thread Thread
	var found bool
	if sc.Lit("-1") == 0 {
		thread, found = firstThread(d.host)
	} else {
		id, ok2 := sc.Hex32(0)
		if !ok2 {
			return false
		}
		thread, found = threadByID(d.host, ThreadID(id))
	}
	if !sc.EOP() || !found {
		return false
	}
	switch op {
	case 'c':
		d.cthread = thread
	case 'g':
		d.gthread = thread
	default:
		return false
	}
	d.conn.PutPkt(false, "OK")
	return true
}

func handleT(d *Debugger, sc *rsp.Scanner) bool {
	if sc.Lit("-1") == 0 {
		if !sc.EOP() {
			return false
		}
		d.conn.PutPkt(false, "OK")
		return true
	}
	id, ok := sc.Hex32(0)
	if !ok || !sc.EOP() {
		return false
	}
	if _, found := threadByID(d.host, ThreadID(id)); !found {
		return false
	}
	d.conn.PutPkt(false, "OK")
	return true
}

func handleQueryHalt(d *Debugger, sc *rsp.Scanner) bool {
	if !sc.EOP() {
		return false
	}
	d.StopReply(d.cthread)
	return true
}

func handleG(d *Debugger, sc *rsp.Scanner) bool {
	if !sc.EOP() {
		return false
	}
	d.conn.PktStart(false)
	for i := 0; i < regCount; i++ {
		d.conn.PutHexN(GetReg(d.gthread, i), 16)
	}
	d.conn.PktFinish()
	return true
}

func handleGStore(d *Debugger, sc *rsp.Scanner) bool {
	for i := 0; i < regCount; i++ {
		v, ok := sc.Hex64(16)
		if !ok {
			break
		}
		SetReg(d.gthread, i, v)
	}
	if !sc.EOP() {
		return false
	}
	d.conn.PutPkt(false, "OK")
	return true
}

func handleP(d *Debugger, sc *rsp.Scanner) bool {
	r, ok := sc.Hex32(0)
	if !ok || !sc.EOP() {
		return false
	}
	d.conn.PktStart(false)
	d.conn.PutHexN(GetReg(d.gthread, int(r)), 16)
	d.conn.PktFinish()
	return true
}

func handlePStore(d *Debugger, sc *rsp.Scanner) bool {
	r, ok := sc.Hex32(0)
	if !ok || sc.Lit("=") != 0 {
		return false
	}
	v, ok2 := sc.Hex64(16)
	if !ok2 || !sc.EOP() {
		return false
	}
	SetReg(d.gthread, int(r), v)
	d.conn.PutPkt(false, "OK")
	return true
}

// handleM replies with as many bytes as fall inside the permitted
// window, truncating the reply instead of failing the command — reads
// that run off the end of RAM just get less data back.
func handleM(d *Debugger, sc *rsp.Scanner) bool {
	addr, ok := sc.Hex32(0)
	if !ok || sc.Lit(",") != 0 {
		return false
	}
	length, ok2 := sc.Hex32(0)
	if !ok2 || !sc.EOP() {
		return false
	}
	mem := d.mem()
	d.conn.PktStart(false)
	for length != 0 && CheckAddr(addr, 1) {
		d.conn.PutHexN(uint64(mem.ReadByte(addr)), 2)
		addr++
		length--
	}
	d.conn.PktFinish()
	return true
}

func handleMStore(d *Debugger, sc *rsp.Scanner) bool {
	addr, ok := sc.Hex32(0)
	if !ok || sc.Lit(",") != 0 {
		return false
	}
	length, ok2 := sc.Hex32(0)
	if !ok2 || sc.Lit(":") != 0 {
		return false
	}
	mem := d.mem()
	for length != 0 {
		if !CheckAddr(addr, 1) {
			return false
		}
		b, ok3 := sc.Hex8(2)
		if !ok3 {
			return false
		}
		mem.WriteByte(addr, b)
		addr++
		length--
	}
	if !sc.EOP() {
		return false
	}
	d.conn.PutPkt(false, "OK")
	return true
}

func handleZ(d *Debugger, sc *rsp.Scanner) bool {
	typ, ok := sc.Char()
	if !ok || sc.Lit(",") != 0 {
		return false
	}
	addr, ok2 := sc.Hex32(0)
	if !ok2 || sc.Lit(",") != 0 {
		return false
	}
	if _, ok3 := sc.Hex32(0); !ok3 {
		return false
	}
	if !sc.EOP() {
		return false
	}
	switch typ {
	case '0':
		for i := range d.swbkp {
			if d.swbkp[i].active && d.swbkp[i].addr == addr {
				clearBkp(d.mem(), &d.swbkp[i])
				break
			}
		}
	case '2', '3', '4':
		if d.watch.active && d.watch.addr == addr {
			d.watch.active = false
			if d.running {
				d.host.SetWatch(0)
			}
		}
	default:
		return false
	}
	d.conn.PutPkt(false, "OK")
	return true
}

func handleZInsert(d *Debugger, sc *rsp.Scanner) bool {
	typ, ok := sc.Char()
	if !ok || sc.Lit(",") != 0 {
		return false
	}
	addr, ok2 := sc.Hex32(0)
	if !ok2 || sc.Lit(",") != 0 {
		return false
	}
	length, ok3 := sc.Hex32(0)
	if !ok3 || !sc.EOP() {
		return false
	}
	switch typ {
	case '0':
		if length != 4 {
			return false
		}
		slot := -1
		for i := range d.swbkp {
			if d.swbkp[i].active && d.swbkp[i].addr == addr {
				slot = i
				break
			}
		}
		if slot < 0 {
			for i := range d.swbkp {
				if !d.swbkp[i].active {
					slot = i
					break
				}
			}
		}
		if slot < 0 || !setBkp(d.mem(), d.Exempt, &d.swbkp[slot], addr) {
			return false
		}
	case '2', '3', '4':
		typ := WatchType(typ - '1')
		if d.watch.active && (d.watch.addr != addr || d.watch.length != length || d.watch.typ != typ) {
			return false
		}
		d.watch = watchpoint{active: true, addr: addr, length: length, typ: typ}
		if d.running {
			d.host.SetWatch(watchLo(d.watch))
		}
	default:
		return false
	}
	d.conn.PutPkt(false, "OK")
	return true
}

// handleC and handleCSig send no reply of their own — execution resumes
// silently and the eventual stop produces the next packet.
func handleC(d *Debugger, sc *rsp.Scanner) bool {
	addr := uint32(d.cthread.Context().Pc)
	if a, ok := sc.Hex32(0); ok {
		addr = a
	}
	if !sc.EOP() {
		return false
	}
	d.cthread.Context().Pc = uint64(addr)
	d.run()
	return true
}

func handleCSig(d *Debugger, sc *rsp.Scanner) bool {
	if _, ok := sc.Hex32(0); !ok {
		return false
	}
	addr := uint32(d.cthread.Context().Pc)
	if sc.Lit(";") == 0 {
		a, ok2 := sc.Hex32(0)
		if !ok2 {
			return false
		}
		addr = a
	}
	if !sc.EOP() {
		return false
	}
	d.cthread.Context().Pc = uint64(addr)
	d.run()
	return true
}

func handleS(d *Debugger, sc *rsp.Scanner) bool {
	addr := uint32(d.cthread.Context().Pc)
	if a, ok := sc.Hex32(0); ok {
		addr = a
	}
	if !sc.EOP() {
		return false
	}
	d.cthread.Context().Pc = uint64(addr)
	d.step(d.cthread)
	return true
}

func handleSSig(d *Debugger, sc *rsp.Scanner) bool {
	if _, ok := sc.Hex32(0); !ok {
		return false
	}
	addr := uint32(d.cthread.Context().Pc)
	if sc.Lit(";") == 0 {
		a, ok2 := sc.Hex32(0)
		if !ok2 {
			return false
		}
		addr = a
	}
	if !sc.EOP() {
		return false
	}
	d.cthread.Context().Pc = uint64(addr)
	d.step(d.cthread)
	return true
}

func handleD(d *Debugger, sc *rsp.Scanner) bool {
	if !sc.EOP() {
		return false
	}
	d.conn.PutPkt(false, "OK")
	d.detach()
	return true
}

// handleK sends no reply: GDB's 'k' is fire-and-forget.
func handleK(d *Debugger, sc *rsp.Scanner) bool {
	d.detach()
	return true
}

func handleQXferFeaturesRead(d *Debugger, sc *rsp.Scanner) bool {
	if _, ok := sc.Hex32(0); !ok || sc.Lit(",") != 0 {
		return false
	}
	if _, ok := sc.Hex32(0); !ok {
		return false
	}
	if !sc.EOP() {
		return false
	}
	d.conn.PktStart(false)
	d.conn.Putc('l')
	d.conn.PutString(targetXML)
	d.conn.PktFinish()
	return true
}

// maxXferLibs bounds how many <library> entries one qXfer:libraries:read
// reply carries, the way the source batches the overlay table across
// several requests rather than building the whole list in one buffer.
const maxXferLibs = 15

// handleQXferLibrariesRead walks the host's loaded-library cursors,
// resetting them at offset 0, and answers with an 'm' (more follows) or
// 'l' (last chunk) prefixed XML fragment. The opening <library-list> tag
// is only emitted on the very first chunk (libNum == 0); the closing tag
// only on the last.
func handleQXferLibrariesRead(d *Debugger, sc *rsp.Scanner) bool {
	offset, ok := sc.Hex32(0)
	if !ok || sc.Lit(",") != 0 {
		return false
	}
	if _, ok := sc.Hex32(0); !ok {
		return false
	}
	if !sc.EOP() {
		return false
	}

	if offset == 0 {
		d.libs.ResetCursors()
		d.libNum = 0
	}

	var libs []Library
	for len(libs) < maxXferLibs {
		lib, ok := d.libs.Next()
		if !ok {
			break
		}
		libs = append(libs, lib)
	}
	more := len(libs) == maxXferLibs

	d.conn.PktStart(false)
	if more {
		d.conn.Putc('m')
	} else {
		d.conn.Putc('l')
	}
	if d.libNum == 0 {
		d.conn.PutString("<library-list>")
	}
	for _, lib := range libs {
		xferLib(d.conn, lib)
	}
	d.libNum += len(libs)
	if !more {
		d.conn.PutString("</library-list>")
	}
	d.conn.PktFinish()
	return true
}

func xferLib(conn *rsp.Conn, lib Library) {
	conn.PutString(`<library name="`)
	if lib.Kind == LibOverlay {
		conn.PutString("ovl_")
	}
	conn.PutString(lib.Name)
	conn.PutString(`.o"><section address="0x`)
	conn.PutHex(uint64(lib.LoadAddr))
	conn.PutString(`"/></library>`)
}

// targetXML is the static GDB target description advertised by
// qXfer:features:read:target.xml:, naming every register index regs.go
// maps plus the unmapped ones GDB still expects a slot for.
const targetXML = `<?xml version="1.0"?>
<!DOCTYPE target SYSTEM "gdb-target.dtd">
<target>
  <architecture>mips:4300</architecture>
  <feature name="org.gnu.gdb.mips.cpu">
    <reg name="r0" bitsize="64" regnum="0"/>
    <reg name="at" bitsize="64"/>
    <reg name="v0" bitsize="64"/>
    <reg name="v1" bitsize="64"/>
    <reg name="a0" bitsize="64"/>
    <reg name="a1" bitsize="64"/>
    <reg name="a2" bitsize="64"/>
    <reg name="a3" bitsize="64"/>
    <reg name="t0" bitsize="64"/>
    <reg name="t1" bitsize="64"/>
    <reg name="t2" bitsize="64"/>
    <reg name="t3" bitsize="64"/>
    <reg name="t4" bitsize="64"/>
    <reg name="t5" bitsize="64"/>
    <reg name="t6" bitsize="64"/>
    <reg name="t7" bitsize="64"/>
    <reg name="s0" bitsize="64"/>
    <reg name="s1" bitsize="64"/>
    <reg name="s2" bitsize="64"/>
    <reg name="s3" bitsize="64"/>
    <reg name="s4" bitsize="64"/>
    <reg name="s5" bitsize="64"/>
    <reg name="s6" bitsize="64"/>
    <reg name="s7" bitsize="64"/>
    <reg name="t8" bitsize="64"/>
    <reg name="t9" bitsize="64"/>
    <reg name="k0" bitsize="64"/>
    <reg name="k1" bitsize="64"/>
    <reg name="gp" bitsize="64"/>
    <reg name="sp" bitsize="64"/>
    <reg name="s8" bitsize="64"/>
    <reg name="ra" bitsize="64"/>
    <reg name="sr" bitsize="64"/>
    <reg name="lo" bitsize="64"/>
    <reg name="hi" bitsize="64"/>
    <reg name="bad" bitsize="64"/>
    <reg name="cause" bitsize="64"/>
    <reg name="pc" bitsize="64"/>
  </feature>
  <feature name="org.gnu.gdb.mips.fpu">
    <reg name="f0" bitsize="64" type="ieee_double"/>
    <reg name="f1" bitsize="64" type="ieee_double"/>
    <reg name="f2" bitsize="64" type="ieee_double"/>
    <reg name="f3" bitsize="64" type="ieee_double"/>
    <reg name="f4" bitsize="64" type="ieee_double"/>
    <reg name="f5" bitsize="64" type="ieee_double"/>
    <reg name="f6" bitsize="64" type="ieee_double"/>
    <reg name="f7" bitsize="64" type="ieee_double"/>
    <reg name="f8" bitsize="64" type="ieee_double"/>
    <reg name="f9" bitsize="64" type="ieee_double"/>
    <reg name="f10" bitsize="64" type="ieee_double"/>
    <reg name="f11" bitsize="64" type="ieee_double"/>
    <reg name="f12" bitsize="64" type="ieee_double"/>
    <reg name="f13" bitsize="64" type="ieee_double"/>
    <reg name="f14" bitsize="64" type="ieee_double"/>
    <reg name="f15" bitsize="64" type="ieee_double"/>
    <reg name="fsr" bitsize="32"/>
  </feature>
</target>
`
