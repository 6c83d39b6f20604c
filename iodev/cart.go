package iodev

import (
	"context"
	"sync"

	"github.com/glankk/rdb/pi"
)

// Cart register layout, word-indexed from a device base address the way
// ed64_x.c addresses REGS_PTR[reg]. The exact bit assignments below are
// this driver's own register map (the upstream header defining them was
// not part of the retrieved source); the protocol they implement —
// open/magic-check/command-counter/activity-poll — follows ed64_x.c
// exactly.
const (
	regKey    = 0 * 4
	regEDID   = 1 * 4
	regUSBCfg = 2 * 4
	regUSBDat = 3 * 4
)

const (
	usbStaPWR  = 1 << 0
	usbStaRXF  = 1 << 1
	usbStaTXE  = 1 << 2
	usbStaACT  = 1 << 3
	usbStaCTRShift = 4
	usbStaCTRMask  = 0x1FF << usbStaCTRShift

	usbLECfg = 1 << 20
	usbLECtr = 1 << 21
	usbCfgRD = 1 << 16
	usbCfgWR = 1 << 17
)

const (
	keyUnlock   = 0xAA55
	keyLock     = 0
	edidMagic   = 0xED64
	chunkMax    = 512
	readTimeout = 8196
)

// DomainTiming saves and restores the PI BSD DOM1 LAT/PWD timing
// registers Cart.lock overrides for the duration of a critical section,
// mirroring cart_lock_safe/cart_lock/cart_unlock's save-install-restore
// pattern.
type DomainTiming interface {
	Get() (lat, pwd uint32, err error)
	Set(lat, pwd uint32) error
}

// Cart is the register-mapped FIFO backend (ed64_x.c's everdrive64_x).
type Cart struct {
	Bus       pi.Bus
	Transport *pi.Transport
	Base      uint32
	Timing    DomainTiming

	mu         sync.Mutex
	savedLat   uint32
	savedPwd   uint32
}

func (c *Cart) regAddr(reg uint32) uint32 { return c.Base + reg }

func (c *Cart) regRd(reg uint32) (uint32, error) {
	return c.Bus.ReadRaw32(c.regAddr(reg))
}

func (c *Cart) regWr(reg, v uint32) error {
	return c.Bus.WriteRaw32(c.regAddr(reg), v)
}

// lockSafe mirrors cart_lock_safe: acquire exclusive PI access and save
// the current domain timing, without changing it.
func (c *Cart) lockSafe() error {
	c.mu.Lock()
	lat, pwd, err := c.Timing.Get()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.savedLat, c.savedPwd = lat, pwd
	return nil
}

// lock mirrors cart_lock: lockSafe, then install the cartridge's own
// timing.
func (c *Cart) lock() error {
	if err := c.lockSafe(); err != nil {
		return err
	}
	return c.Timing.Set(4, 12)
}

// unlock mirrors cart_unlock: restore saved timing and release PI
// access.
func (c *Cart) unlock() error {
	err := c.Timing.Set(c.savedLat, c.savedPwd)
	c.mu.Unlock()
	return err
}

func (c *Cart) fifoCanRd() (bool, error) {
	cfg, err := c.regRd(regUSBCfg)
	if err != nil {
		return false, err
	}
	return cfg&(usbStaPWR|usbStaRXF) == usbStaPWR, nil
}

func (c *Cart) fifoCanWr() (bool, error) {
	cfg, err := c.regRd(regUSBCfg)
	if err != nil {
		return false, err
	}
	return cfg&(usbStaPWR|usbStaTXE) == usbStaPWR, nil
}

// Probe opens the device's registers and checks the EverDrive64-X magic
// number, exactly as ed64_x.c's probe.
func (c *Cart) Probe() bool {
	if err := c.lockSafe(); err != nil {
		return false
	}
	defer c.unlock()

	if err := c.regWr(regKey, keyUnlock); err != nil {
		return false
	}
	edid, err := c.regRd(regEDID)
	if err != nil || (edid>>16) != edidMagic {
		c.regWr(regKey, keyLock)
		return false
	}
	return true
}

// IRQs reports FIFO_IRQ_OFF/FIFO_IRQ_RX without blocking, skipping the
// check entirely while a PI transfer is already in flight (fifo_irqs
// checks __pi_busy first so it never stalls the interrupt dispatcher).
func (c *Cart) IRQs() IRQSet {
	busy, err := c.Bus.Busy()
	if err != nil || busy {
		return 0
	}
	cfg, err := c.regRd(regUSBCfg)
	if err != nil {
		return 0
	}
	var ret IRQSet
	if cfg&usbStaPWR == 0 {
		ret |= IRQOff
	}
	if cfg&(usbStaPWR|usbStaRXF) == usbStaPWR {
		ret |= IRQRX
	}
	return ret
}

// Pwr reports whether the FIFO currently has power.
func (c *Cart) Pwr() bool {
	if err := c.lock(); err != nil {
		return false
	}
	defer c.unlock()
	cfg, err := c.regRd(regUSBCfg)
	return err == nil && cfg&usbStaPWR == usbStaPWR
}

// PollRX reports whether a Read would return data immediately.
func (c *Cart) PollRX() bool {
	if err := c.lock(); err != nil {
		return false
	}
	defer c.unlock()
	ok, err := c.fifoCanRd()
	return err == nil && ok
}

// Read moves up to len(buf) bytes from the FIFO, chunked to 512 bytes,
// honoring the 8196-consecutive-poll no-progress timeout and the
// odd-counter byte-swap quirk.
func (c *Cart) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	if err := c.lock(); err != nil {
		return 0, err
	}
	defer c.unlock()

	for {
		ok, err := c.fifoCanRd()
		if err != nil {
			return 0, err
		}
		if ok {
			break
		}
	}

	nRd := 0
	p := buf
	for {
		chunk := chunkMax
		if chunk > len(p) {
			chunk = len(p)
		}
		ctr := uint32(chunkMax - chunk)
		if err := c.regWr(regUSBCfg, usbLECfg|usbCfgRD|usbStaACT|(usbLECtr|(ctr<<usbStaCTRShift))); err != nil {
			return nRd, err
		}
		timeouts := 0
		for {
			cfg, err := c.regRd(regUSBCfg)
			if err != nil {
				return nRd, err
			}
			if cfg&usbStaACT == 0 {
				break
			}
			if cfg&usbStaRXF == usbStaRXF {
				timeouts++
			} else {
				timeouts = 0
			}
			if timeouts == readTimeout {
				break
			}
		}
		if err := c.regWr(regUSBCfg, usbLECfg|usbCfgRD); err != nil {
			return nRd, err
		}

		cfg, err := c.regRd(regUSBCfg)
		if err != nil {
			return nRd, err
		}
		newCtr := (cfg & usbStaCTRMask) >> usbStaCTRShift
		if newCtr == 0 {
			newCtr = chunkMax
		}
		chunkSize := int(newCtr) - int(ctr)
		if chunkSize < 0 {
			chunkSize = 0
		}

		datBase := c.regAddr(regUSBDat)
		if newCtr&1 != 0 {
			if chunkSize > 1 {
				if err := c.pioReadAt(datBase+ctr, p[:chunkSize-1]); err != nil {
					return nRd, err
				}
			}
			if err := c.pioReadAt(datBase+newCtr, p[chunkSize-1:chunkSize]); err != nil {
				return nRd, err
			}
		} else {
			if err := c.pioReadAt(datBase+ctr, p[:chunkSize]); err != nil {
				return nRd, err
			}
		}

		p = p[chunkSize:]
		nRd += chunkSize

		if len(p) == 0 {
			break
		}
		ok, err := c.fifoCanRd()
		if err != nil {
			return nRd, err
		}
		if !ok {
			break
		}
	}
	return nRd, nil
}

// Write sends buf to the FIFO, chunked to 512 bytes, arming the counter
// and transfer-direction bits before kicking each chunk.
func (c *Cart) Write(buf []byte) (int, error) {
	if err := c.lock(); err != nil {
		return 0, err
	}
	defer c.unlock()

	nWr := 0
	p := buf
	for len(p) != 0 {
		chunk := chunkMax
		if chunk > len(p) {
			chunk = len(p)
		}

		for {
			ok, err := c.fifoCanWr()
			if err != nil {
				return nWr, err
			}
			if ok {
				break
			}
		}

		ctr := uint32(chunkMax - chunk)
		if err := c.regWr(regUSBCfg, usbLECfg|usbCfgWR|(usbLECtr|(ctr<<usbStaCTRShift))); err != nil {
			return nWr, err
		}
		datBase := c.regAddr(regUSBDat)
		if err := c.pioWriteAt(datBase+ctr, p[:chunk]); err != nil {
			return nWr, err
		}

		if err := c.regWr(regUSBCfg, usbLECfg|usbCfgWR|usbStaACT|(usbLECtr|(ctr<<usbStaCTRShift))); err != nil {
			return nWr, err
		}
		for {
			cfg, err := c.regRd(regUSBCfg)
			if err != nil {
				return nWr, err
			}
			if cfg&usbStaACT == 0 {
				break
			}
		}

		p = p[chunk:]
		nWr += chunk
	}
	return nWr, nil
}

// pioReadAt and pioWriteAt perform the pi_read_locked/pi_write_locked
// chunk copy between the shared USB data window and a host buffer. The
// buffer's own address stands in for pi.c's ram_addr, which the split
// planner needs purely to compute alignment, not to dereference.
func (c *Cart) pioReadAt(devAddr uint32, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	_, err := c.Transport.ReadBytes(context.Background(), devAddr, bufAddr(buf), buf)
	return err
}

func (c *Cart) pioWriteAt(devAddr uint32, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	_, err := c.Transport.WriteBytes(context.Background(), devAddr, bufAddr(buf), buf)
	return err
}
