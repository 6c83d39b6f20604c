package iodev

import "unsafe"

// bufAddr exposes a buffer's backing address the way hb_io.c passes
// K0_TO_PHYS(ptr) to the device's DMA address register.
func bufAddr(buf []byte) uint32 {
	if len(buf) == 0 {
		return 0
	}
	return uint32(uintptr(unsafe.Pointer(&buf[0])))
}
