//go:build linux && arm

package agent

import (
	"encoding/binary"
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/glankk/rdb/iodev"
	"github.com/glankk/rdb/pi"
	"github.com/glankk/rdb/rdb"
)

// PI register offsets, the same fixed addresses ed64_x.c and hb_io.c
// address through IO_READ/IO_WRITE (PI_DRAM_ADDR_REG through
// PI_BSD_DOM1_PWD_REG), here reached over a register bridge conn
// instead of a cached-uncached KSEG1 pointer.
const (
	piDRAMAddrReg = 0x00
	piCartAddrReg = 0x04
	piRdLenReg    = 0x08
	piWrLenReg    = 0x0C
	piStatusReg   = 0x10
	piDom1LatReg  = 0x14
	piDom1PwdReg  = 0x18

	piStatusDMABusy = 1 << 0
	piStatusIOBusy  = 1 << 1

	cartBase = 0x05000000
	dmaBase  = 0x05000000
)

// byteOrder is the wire order for register access over the bridge: the
// target is big-endian MIPS, and the bridge passes register addresses
// and values through unchanged.
var byteOrder = binary.BigEndian

// halfDuplexConn adapts a spi.Conn (periph reports SPI as full-duplex,
// since Tx shifts both directions at once) to the half-duplex,
// write-address-then-clock-value shape pi.Dev32 expects, the same
// register-bridge framing ed64_x.c's REGS_PTR memory window provides
// over the PI bus.
type halfDuplexConn struct {
	spi.Conn
}

func (halfDuplexConn) Duplex() conn.Duplex { return conn.Half }

func openBus() (*pi.Dev32, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("agent: periph init: %w", err)
	}
	p, err := spireg.Open("")
	if err != nil {
		return nil, fmt.Errorf("agent: open SPI bridge: %w", err)
	}
	c, err := p.Connect(20*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("agent: connect SPI bridge: %w", err)
	}
	return &pi.Dev32{Conn: halfDuplexConn{c}, Order: byteOrder}, nil
}

// regTiming reads and writes the BSD DOM1 timing registers directly,
// the iodev.DomainTiming a Cart saves and restores around a locked
// section, mirroring cart_lock_safe/cart_lock/cart_unlock.
type regTiming struct {
	bus pi.Bus
}

func (t regTiming) Get() (lat, pwd uint32, err error) {
	lat, err = t.bus.ReadRaw32(piDom1LatReg)
	if err != nil {
		return 0, 0, err
	}
	pwd, err = t.bus.ReadRaw32(piDom1PwdReg)
	return lat, pwd, err
}

func (t regTiming) Set(lat, pwd uint32) error {
	if err := t.bus.WriteRaw32(piDom1LatReg, lat); err != nil {
		return err
	}
	return t.bus.WriteRaw32(piDom1PwdReg, pwd)
}

// OpenHardware builds the real-hardware probe list and memory
// collaborator: a PI register bus over the SPI bridge, a split PIO/DMA
// transport on top of it, both cartridge-FIFO protocols (EverDrive64-X-
// style and homeboy-style) wired to probe against it in turn (mirroring
// io_init's fixed candidate list of everdrive64_x and homeboy_iodev),
// and a Memory that reads and writes target RAM over the same
// transport in place of the source's direct pointer access.
func OpenHardware() ([]iodev.Backend, rdb.Memory, error) {
	dev, err := openBus()
	if err != nil {
		return nil, nil, err
	}
	busy := func() (bool, error) {
		sta, err := dev.ReadUint32(piStatusReg)
		if err != nil {
			return false, err
		}
		return sta&(piStatusDMABusy|piStatusIOBusy) != 0, nil
	}
	bus := pi.NewRegBus(dev, busy)
	transport := &pi.Transport{
		Bus: bus,
		DMA: &pi.RegDMAEngine{
			Bus:         bus,
			DRAMAddrReg: piDRAMAddrReg,
			CartAddrReg: piCartAddrReg,
			RdLenReg:    piRdLenReg,
			WrLenReg:    piWrLenReg,
		},
	}

	cart := &iodev.Cart{
		Bus:       bus,
		Transport: transport,
		Base:      cartBase,
		Timing:    regTiming{bus: bus},
	}
	dma := &iodev.DMA{
		Bus:  bus,
		Base: dmaBase,
	}
	return []iodev.Backend{cart, dma}, newTargetMemory(transport), nil
}
