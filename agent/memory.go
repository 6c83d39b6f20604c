package agent

import (
	"context"
	"encoding/binary"

	"github.com/glankk/rdb/pi"
	"github.com/glankk/rdb/rdb"
)

// targetMemory implements rdb.Memory over a pi.Transport, the Go
// replacement for the source's direct KSEG0/KSEG1 pointer dereference:
// this agent runs off-target, so every byte/word access the debugger
// core performs is a PI-bus transfer instead of a load/store
// instruction. check_addr has already range-checked addr to
// 0x80000000..0xC0000000 before any of these are called.
type targetMemory struct {
	transport *pi.Transport
}

func newTargetMemory(t *pi.Transport) *targetMemory {
	return &targetMemory{transport: t}
}

// phys mirrors the DMA engine's own ramAddr masking: KSEG0/KSEG1 both
// alias the low 29 bits of the physical address space.
func (m *targetMemory) phys(addr uint32) uint32 { return addr & 0x1FFFFFFF }

func (m *targetMemory) ReadByte(addr uint32) byte {
	var buf [1]byte
	p := m.phys(addr)
	m.transport.ReadBytes(context.Background(), p, p, buf[:])
	return buf[0]
}

func (m *targetMemory) WriteByte(addr uint32, b byte) {
	p := m.phys(addr)
	buf := [1]byte{b}
	m.transport.WriteBytes(context.Background(), p, p, buf[:])
}

func (m *targetMemory) ReadWord(addr uint32) uint32 {
	var buf [4]byte
	p := m.phys(addr)
	m.transport.ReadBytes(context.Background(), p, p, buf[:])
	return binary.BigEndian.Uint32(buf[:])
}

func (m *targetMemory) WriteWord(addr uint32, word uint32) {
	p := m.phys(addr)
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], word)
	m.transport.WriteBytes(context.Background(), p, p, buf[:])
}

var _ rdb.Memory = (*targetMemory)(nil)
