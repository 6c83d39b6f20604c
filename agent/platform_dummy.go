//go:build !linux || !arm

package agent

import (
	"sync"

	"github.com/glankk/rdb/iodev"
	"github.com/glankk/rdb/rdb"
)

// simMemory is a flat byte-addressable fake standing in for target RAM
// on dev machines and in CI, the same role iodev.Sim plays for the FIFO
// transport: something that satisfies the collaborator interface
// without real hardware behind it.
type simMemory struct {
	mu    sync.Mutex
	bytes map[uint32]byte
}

func newSimMemory() *simMemory {
	return &simMemory{bytes: make(map[uint32]byte)}
}

func (m *simMemory) ReadByte(addr uint32) byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bytes[addr]
}

func (m *simMemory) WriteByte(addr uint32, b byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bytes[addr] = b
}

func (m *simMemory) ReadWord(addr uint32) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var w uint32
	for i := uint32(0); i < 4; i++ {
		w = w<<8 | uint32(m.bytes[addr+i])
	}
	return w
}

func (m *simMemory) WriteWord(addr uint32, word uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := uint32(0); i < 4; i++ {
		m.bytes[addr+i] = byte(word >> (8 * (3 - i)))
	}
}

var _ rdb.Memory = (*simMemory)(nil)

// OpenHardware returns a simulated FIFO backend and memory for builds
// without real PI bus hardware, the same dummy-platform fallback
// cmd/controller/platform_dummy.go provides when no DRM/camera hardware
// is present.
func OpenHardware() ([]iodev.Backend, rdb.Memory, error) {
	sim := iodev.NewSim()
	sim.PowerOn()
	return []iodev.Backend{sim}, newSimMemory(), nil
}
