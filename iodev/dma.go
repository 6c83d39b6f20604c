package iodev

import "github.com/glankk/rdb/pi"

// DMA register layout, word-indexed from a device base address, mirroring
// hb_io.c's hb_regs_t (key, fifo_status, fifo_dram_addr, fifo_rd_len,
// fifo_wr_len).
const (
	dmaRegKey          = 0 * 4
	dmaRegFIFOStatus   = 11 * 4
	dmaRegFIFODRAMAddr = 12 * 4
	dmaRegFIFORdLen    = 13 * 4
	dmaRegFIFOWrLen    = 14 * 4
)

const (
	dmaFIFOStaPWR = 1 << 0
	dmaFIFOStaRXF = 1 << 1
	dmaFIFOStaTXE = 1 << 2

	dmaKeyMagic = 0x1234
)

// DMA is the DMA-addressed FIFO backend (hb_io.c's homeboy_iodev): the
// device is told a DRAM address and a length and moves the bytes itself,
// with the caller polling status rather than driving a byte-window.
type DMA struct {
	Bus  pi.Bus
	Base uint32
}

func (d *DMA) regAddr(reg uint32) uint32 { return d.Base + reg }

func (d *DMA) status() (uint32, error) {
	return d.Bus.ReadRaw32(d.regAddr(dmaRegFIFOStatus))
}

func (d *DMA) canRd() (bool, error) {
	sta, err := d.status()
	if err != nil {
		return false, err
	}
	return sta&(dmaFIFOStaPWR|dmaFIFOStaRXF) == dmaFIFOStaPWR, nil
}

func (d *DMA) canWr() (bool, error) {
	sta, err := d.status()
	if err != nil {
		return false, err
	}
	return sta&(dmaFIFOStaPWR|dmaFIFOStaTXE) == dmaFIFOStaPWR, nil
}

// Probe checks the device's key register for the homeboy magic value.
func (d *DMA) Probe() bool {
	key, err := d.Bus.ReadRaw32(d.regAddr(dmaRegKey))
	return err == nil && key == dmaKeyMagic
}

// IRQs reports FIFO_IRQ_OFF/FIFO_IRQ_RX from the status register.
func (d *DMA) IRQs() IRQSet {
	sta, err := d.status()
	if err != nil {
		return 0
	}
	var ret IRQSet
	if sta&dmaFIFOStaPWR == 0 {
		ret |= IRQOff
	}
	if sta&(dmaFIFOStaPWR|dmaFIFOStaRXF) == dmaFIFOStaPWR {
		ret |= IRQRX
	}
	return ret
}

// Pwr reports whether the FIFO currently has power.
func (d *DMA) Pwr() bool {
	sta, err := d.status()
	return err == nil && sta&dmaFIFOStaPWR == dmaFIFOStaPWR
}

// PollRX reports whether a Read would return data immediately.
func (d *DMA) PollRX() bool {
	ok, err := d.canRd()
	return err == nil && ok
}

// Read asks the device to DMA n_bytes into the address represented by
// buf, blocking until the FIFO is ready to start, then returns the
// number of bytes the device actually consumed (n_bytes minus whatever
// residual it leaves in the length register, per hb_io.c's fifo_read).
func (d *DMA) Read(buf []byte) (int, error) {
	n := len(buf)
	if n == 0 {
		return 0, nil
	}
	for {
		ok, err := d.canRd()
		if err != nil {
			return 0, err
		}
		if ok {
			break
		}
	}
	ramAddr := bufAddr(buf)
	if err := d.Bus.WriteRaw32(d.regAddr(dmaRegFIFODRAMAddr), ramAddr); err != nil {
		return 0, err
	}
	if err := d.Bus.WriteRaw32(d.regAddr(dmaRegFIFORdLen), uint32(n)); err != nil {
		return 0, err
	}
	residual, err := d.Bus.ReadRaw32(d.regAddr(dmaRegFIFORdLen))
	if err != nil {
		return 0, err
	}
	return n - int(residual), nil
}

// Write asks the device to DMA n_bytes out of buf, the write-direction
// twin of Read.
func (d *DMA) Write(buf []byte) (int, error) {
	n := len(buf)
	if n == 0 {
		return 0, nil
	}
	for {
		ok, err := d.canWr()
		if err != nil {
			return 0, err
		}
		if ok {
			break
		}
	}
	ramAddr := bufAddr(buf)
	if err := d.Bus.WriteRaw32(d.regAddr(dmaRegFIFODRAMAddr), ramAddr); err != nil {
		return 0, err
	}
	if err := d.Bus.WriteRaw32(d.regAddr(dmaRegFIFOWrLen), uint32(n)); err != nil {
		return 0, err
	}
	residual, err := d.Bus.ReadRaw32(d.regAddr(dmaRegFIFOWrLen))
	if err != nil {
		return 0, err
	}
	return n - int(residual), nil
}
