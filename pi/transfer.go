package pi

import "context"

// DMAEngine performs the aligned middle segment of a split transfer,
// the interface a Transport drives instead of calling RegDMAEngine
// directly so tests can fake it. RegDMAEngine is the real
// register-programmed implementation.
type DMAEngine interface {
	DMAWrite(ctx context.Context, devAddr, ramAddr uint32, size int) error
	DMARead(ctx context.Context, devAddr, ramAddr uint32, size int) error
}

// Transport drives a Bus through the PIO/DMA-split transfer algorithm:
// a leading PIO segment up to 8-byte RAM alignment, an aligned DMA
// segment ending on 2-byte alignment, and a trailing PIO segment. When
// the device and RAM addresses disagree in parity, DMA is impossible and
// the whole transfer falls back to PIO.
type Transport struct {
	Bus Bus
	DMA DMAEngine
}

// ReadRaw32 waits for bus idle, then loads one 32-bit register.
func (t *Transport) ReadRaw32(devAddr uint32) (uint32, error) {
	return t.Bus.ReadRaw32(devAddr)
}

// WriteRaw32 waits for bus idle, then stores one 32-bit register.
func (t *Transport) WriteRaw32(devAddr uint32, value uint32) error {
	return t.Bus.WriteRaw32(devAddr, value)
}

// pioWrite moves buf (indexed relative to ramAddr) into the device at
// dev_addr, word at a time, preserving any device bytes that fall
// outside the requested range on a partially-covered boundary word.
func (t *Transport) pioWrite(devAddr, ramAddr uint32, buf []byte) error {
	size := uint32(len(buf))
	if size == 0 {
		return nil
	}
	devS := devAddr &^ 0x3
	devE := (devAddr + size + 0x3) &^ 0x3
	ramS := ramAddr
	ramE := ramS + size
	ramP := ramAddr - (devAddr - devS)

	for devP := devS; devP < devE; devP += 4 {
		w, err := t.Bus.ReadRaw32(devP)
		if err != nil {
			return err
		}
		for i := 0; i < 4; i++ {
			var b byte
			if ramP >= ramS && ramP < ramE {
				b = buf[ramP-ramS]
			} else {
				b = byte(w >> 24)
			}
			w = (w << 8) | uint32(b)
			ramP++
		}
		if err := t.Bus.WriteRaw32(devP, w); err != nil {
			return err
		}
	}
	return nil
}

// pioRead loads from the device into buf (indexed relative to ramAddr).
func (t *Transport) pioRead(devAddr, ramAddr uint32, buf []byte) error {
	size := uint32(len(buf))
	if size == 0 {
		return nil
	}
	devS := devAddr &^ 0x3
	devE := (devAddr + size + 0x3) &^ 0x3
	ramS := ramAddr
	ramE := ramS + size
	ramP := ramAddr - (devAddr - devS)

	for devP := devS; devP < devE; devP += 4 {
		w, err := t.Bus.ReadRaw32(devP)
		if err != nil {
			return err
		}
		for i := 0; i < 4; i++ {
			if ramP >= ramS && ramP < ramE {
				buf[ramP-ramS] = byte(w >> 24)
			}
			w <<= 8
			ramP++
		}
	}
	return nil
}

// split computes the PIO-head, DMA, and PIO-tail segment sizes for a
// ramAddr-aligned transfer of size bytes, mirroring do_transfer's
// three-way boundary split. ok is false when device/RAM parity forbids
// DMA and the whole transfer must fall back to PIO.
func split(devAddr, ramAddr, size uint32) (pioHead, dma, pioTail uint32, ok bool) {
	if (devAddr^ramAddr)&1 != 0 {
		return size, 0, 0, false
	}
	ramS := ramAddr
	ramE := ramAddr + size
	ramAlignS := (ramS + 0x7) &^ 0x7
	if ramE > ramAlignS {
		ramAlignE := ramE &^ 0x1
		pioHead = ramAlignS - ramS
		pioTail = ramE - ramAlignE
		dma = size - pioHead - pioTail
		return pioHead, dma, pioTail, true
	}
	return size, 0, 0, true
}

// WriteBytes writes buf to the device starting at devAddr; ramAddr is
// the logical target-RAM address buf represents (buf[0] == ramAddr),
// which the split planner uses purely for its alignment math.
func (t *Transport) WriteBytes(ctx context.Context, devAddr, ramAddr uint32, buf []byte) (int, error) {
	size := uint32(len(buf))
	pioHead, dma, pioTail, ok := split(devAddr, ramAddr, size)
	if !ok {
		if err := t.pioWrite(devAddr, ramAddr, buf); err != nil {
			return 0, err
		}
		return len(buf), nil
	}
	if dma == 0 {
		if err := t.pioWrite(devAddr, ramAddr, buf); err != nil {
			return 0, err
		}
		return len(buf), nil
	}
	if err := t.pioWrite(devAddr, ramAddr, buf[:pioHead]); err != nil {
		return 0, err
	}
	devAlignE := devAddr + size - pioTail
	ramAlignE := ramAddr + size - pioTail
	if err := t.pioWrite(devAlignE, ramAlignE, buf[size-pioTail:]); err != nil {
		return 0, err
	}
	devAlignS := devAddr + pioHead
	ramAlignS := ramAddr + pioHead
	if err := t.DMA.DMAWrite(ctx, devAlignS, ramAlignS, int(dma)); err != nil {
		return 0, err
	}
	return len(buf), nil
}

// ReadBytes reads len(buf) bytes from the device starting at devAddr
// into buf; ramAddr plays the same role as in WriteBytes.
func (t *Transport) ReadBytes(ctx context.Context, devAddr, ramAddr uint32, buf []byte) (int, error) {
	size := uint32(len(buf))
	pioHead, dma, pioTail, ok := split(devAddr, ramAddr, size)
	if !ok {
		if err := t.pioRead(devAddr, ramAddr, buf); err != nil {
			return 0, err
		}
		return len(buf), nil
	}
	if dma == 0 {
		if err := t.pioRead(devAddr, ramAddr, buf); err != nil {
			return 0, err
		}
		return len(buf), nil
	}
	if err := t.pioRead(devAddr, ramAddr, buf[:pioHead]); err != nil {
		return 0, err
	}
	devAlignE := devAddr + size - pioTail
	ramAlignE := ramAddr + size - pioTail
	if err := t.pioRead(devAlignE, ramAlignE, buf[size-pioTail:]); err != nil {
		return 0, err
	}
	devAlignS := devAddr + pioHead
	ramAlignS := ramAddr + pioHead
	if err := t.DMA.DMARead(ctx, devAlignS, ramAlignS, int(dma)); err != nil {
		return 0, err
	}
	return len(buf), nil
}
