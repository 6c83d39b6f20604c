//go:build linux

package iomux

import (
	"golang.org/x/sys/unix"
)

// Dispatcher plays the role of the interrupt dispatcher on a Linux
// development host: rather than a real FIFO-edge interrupt line, it
// epoll-waits on an eventfd a backend's host-side simulator signals, and
// on each wakeup calls IRQsMasked and wakes the armed queue if anything
// matched. Modeled on cmd/controller/debug_rpi.go's direct
// golang.org/x/sys/unix use for host-side I/O plumbing.
type Dispatcher struct {
	mux     *Mux
	epfd    int
	eventfd int
	stop    chan struct{}
	done    chan struct{}
}

// NewDispatcher creates an epoll-backed dispatcher bound to mux. Call
// Signal (typically from a backend's simulator or real interrupt
// forwarder) to request a poll pass.
func NewDispatcher(mux *Mux) (*Dispatcher, error) {
	efd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		return nil, err
	}
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		unix.Close(efd)
		return nil, err
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(efd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, efd, &ev); err != nil {
		unix.Close(efd)
		unix.Close(epfd)
		return nil, err
	}
	d := &Dispatcher{
		mux:     mux,
		epfd:    epfd,
		eventfd: efd,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go d.run()
	return d, nil
}

// Signal requests that the dispatcher re-check IRQsMasked.
func (d *Dispatcher) Signal() {
	var one [8]byte
	one[7] = 1
	unix.Write(d.eventfd, one[:])
}

func (d *Dispatcher) run() {
	defer close(d.done)
	events := make([]unix.EpollEvent, 1)
	for {
		select {
		case <-d.stop:
			return
		default:
		}
		n, err := unix.EpollWait(d.epfd, events, 50)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		if n == 0 {
			continue
		}
		var drain [8]byte
		unix.Read(d.eventfd, drain[:])
		if irqs := d.mux.IRQsMasked(); irqs != 0 {
			d.mux.Wake(irqs)
		}
	}
}

// Close stops the dispatcher's goroutine and releases its descriptors.
func (d *Dispatcher) Close() error {
	close(d.stop)
	d.Signal()
	<-d.done
	unix.Close(d.eventfd)
	return unix.Close(d.epfd)
}
