// Package pi implements the cartridge-interface (PI) transport: raw
// 32-bit register access and the PIO/DMA-split buffer transfer that the
// IO device backends build on.
package pi

import (
	"encoding/binary"
	"errors"

	"periph.io/x/conn/v3"
)

// ErrNotHalfDuplex mirrors periph's conn/mmr check: a register bus must be
// addressed over a half-duplex conn.Conn (write address, read/write value).
var ErrNotHalfDuplex = errors.New("pi: connection must be half-duplex")

// Dev32 exposes memory-mapped registers in a 32-bit address space, the
// same shape as periph's conn/mmr.Dev8 and Dev16 generalized to a 32-bit
// register address (the PI bus's device-address space is 32 bits wide).
type Dev32 struct {
	Conn  conn.Conn
	Order binary.ByteOrder
}

func (d *Dev32) check() error {
	if d.Conn == nil {
		return errors.New("pi: missing connection")
	}
	if d.Conn.Duplex() != conn.Half {
		return ErrNotHalfDuplex
	}
	return nil
}

// ReadUint32 loads one 32-bit register.
func (d *Dev32) ReadUint32(reg uint32) (uint32, error) {
	if err := d.check(); err != nil {
		return 0, err
	}
	var r [4]byte
	var v [4]byte
	d.Order.PutUint32(r[:], reg)
	err := d.Conn.Tx(r[:], v[:])
	return d.Order.Uint32(v[:]), err
}

// WriteUint32 stores one 32-bit register.
func (d *Dev32) WriteUint32(reg uint32, v uint32) error {
	if err := d.check(); err != nil {
		return err
	}
	var a [8]byte
	d.Order.PutUint32(a[:4], reg)
	d.Order.PutUint32(a[4:], v)
	return d.Conn.Tx(a[:], nil)
}

// Bus is the raw PI register interface a Transport is built on. A real
// build backs this with a Dev32 over a conn.Conn to the cartridge domain;
// tests back it with an in-memory fake.
type Bus interface {
	// ReadRaw32 waits for the bus to go idle, then loads one 32-bit
	// register at the given device address.
	ReadRaw32(devAddr uint32) (uint32, error)
	// WriteRaw32 waits for the bus to go idle, then stores one 32-bit
	// register at the given device address.
	WriteRaw32(devAddr uint32, value uint32) error
	// Busy reports whether a DMA or PIO transfer is currently in flight.
	Busy() (bool, error)
}

// RegBus adapts a Dev32 register window to Bus.
type RegBus struct {
	Dev  *Dev32
	busy func() (bool, error)
}

// NewRegBus builds a Bus over dev, with busy reported by the supplied
// callback (wired to the real PI status register, or in the simulator to
// a fake's in-flight flag).
func NewRegBus(dev *Dev32, busy func() (bool, error)) *RegBus {
	return &RegBus{Dev: dev, busy: busy}
}

func (b *RegBus) waitIdle() error {
	for {
		busy, err := b.busy()
		if err != nil {
			return err
		}
		if !busy {
			return nil
		}
	}
}

func (b *RegBus) ReadRaw32(devAddr uint32) (uint32, error) {
	if err := b.waitIdle(); err != nil {
		return 0, err
	}
	return b.Dev.ReadUint32(devAddr)
}

func (b *RegBus) WriteRaw32(devAddr uint32, value uint32) error {
	if err := b.waitIdle(); err != nil {
		return err
	}
	return b.Dev.WriteUint32(devAddr, value)
}

func (b *RegBus) Busy() (bool, error) {
	return b.busy()
}
