//go:build !linux

package iomux

import "errors"

// Dispatcher is unavailable off Linux; platform builds targeting the
// real cartridge hardware drive IRQsMasked from their own interrupt
// vector instead.
type Dispatcher struct{}

func NewDispatcher(mux *Mux) (*Dispatcher, error) {
	return nil, errors.New("iomux: epoll dispatcher requires linux")
}

func (d *Dispatcher) Signal()     {}
func (d *Dispatcher) Close() error { return nil }
