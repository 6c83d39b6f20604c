package pi

import (
	"context"
	"sync"
)

// CacheMaintainer performs the writeback/invalidate the real PI DMA
// engine requires around a transfer, so DMA doesn't race a CPU cache
// still holding dirty or stale lines over the transferred range. A
// simulator build supplies a no-op implementation.
type CacheMaintainer interface {
	// Writeback flushes dirty lines covering [ramAddr, ramAddr+size)
	// to RAM before a device-bound (write) DMA.
	Writeback(ramAddr uint32, size int) error
	// WritebackInvalidate flushes and then invalidates lines covering
	// [ramAddr, ramAddr+size) before a RAM-bound (read) DMA, so the
	// CPU doesn't later observe stale cached data.
	WritebackInvalidate(ramAddr uint32, size int) error
}

// Completion delivers one DMA-done signal per transfer. It mirrors
// dma_rp2.go's IRQ.Set(ch, callback) interrupt-to-channel bridge: Arm
// registers interest before the transfer is kicked, and Signal (called
// from whatever simulates the completion interrupt) wakes the waiter
// exactly once.
type Completion struct {
	mu   sync.Mutex
	wait chan struct{}
}

// Arm prepares to receive the next completion and returns the channel
// that closes when it arrives.
func (c *Completion) Arm() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wait = make(chan struct{})
	return c.wait
}

// Signal fires the most recently armed completion, if any.
func (c *Completion) Signal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.wait != nil {
		close(c.wait)
		c.wait = nil
	}
}

// RegDMAEngine drives a register-programmed DMA engine: write the RAM
// address, the device address, then the length register matching the
// transfer direction, exactly as pi.c's dma_read/dma_write do for
// PI_DRAM_ADDR_REG/PI_CART_ADDR_REG/PI_RD_LEN_REG/PI_WR_LEN_REG.
type RegDMAEngine struct {
	Bus   Bus
	Cache CacheMaintainer

	DRAMAddrReg uint32
	CartAddrReg uint32
	RdLenReg    uint32
	WrLenReg    uint32

	// Completion, if non-nil, is armed before the length register is
	// written and waited on for the done signal. If nil, completion is
	// detected by polling Bus.Busy, the irqf==0 path in the original.
	Completion *Completion
}

// arm registers for the next completion, if a Completion is set; the
// result is nil when completion is to be detected by polling.
func (e *RegDMAEngine) arm() <-chan struct{} {
	if e.Completion == nil {
		return nil
	}
	return e.Completion.Arm()
}

func (e *RegDMAEngine) waitDone(ctx context.Context, done <-chan struct{}) error {
	if done != nil {
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	for {
		busy, err := e.Bus.Busy()
		if err != nil {
			return err
		}
		if !busy {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// DMAWrite moves size bytes from RAM at ramAddr to the device at
// devAddr (a "read" from the cartridge's perspective of PI_RD_LEN_REG).
func (e *RegDMAEngine) DMAWrite(ctx context.Context, devAddr, ramAddr uint32, size int) error {
	if size == 0 {
		return nil
	}
	if e.Cache != nil {
		if err := e.Cache.Writeback(ramAddr, size); err != nil {
			return err
		}
	}
	if err := e.Bus.WriteRaw32(e.DRAMAddrReg, ramAddr&0x1FFFFFFF); err != nil {
		return err
	}
	if err := e.Bus.WriteRaw32(e.CartAddrReg, devAddr&0x1FFFFFFF); err != nil {
		return err
	}
	done := e.arm()
	if err := e.Bus.WriteRaw32(e.RdLenReg, uint32(size-1)); err != nil {
		return err
	}
	return e.waitDone(ctx, done)
}

// DMARead moves size bytes from the device at devAddr into RAM at
// ramAddr (PI_WR_LEN_REG, a "write" into RAM from the cartridge's
// perspective).
func (e *RegDMAEngine) DMARead(ctx context.Context, devAddr, ramAddr uint32, size int) error {
	if size == 0 {
		return nil
	}
	if e.Cache != nil {
		if err := e.Cache.WritebackInvalidate(ramAddr, size); err != nil {
			return err
		}
	}
	if err := e.Bus.WriteRaw32(e.DRAMAddrReg, ramAddr&0x1FFFFFFF); err != nil {
		return err
	}
	if err := e.Bus.WriteRaw32(e.CartAddrReg, devAddr&0x1FFFFFFF); err != nil {
		return err
	}
	done := e.arm()
	if err := e.Bus.WriteRaw32(e.WrLenReg, uint32(size-1)); err != nil {
		return err
	}
	return e.waitDone(ctx, done)
}
