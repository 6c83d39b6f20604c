package iodev

// Sim is an in-memory fake Backend modeled on driver/mjolnir/sim.go's
// goroutine-plus-channel Simulator: a private goroutine owns the FIFO's
// state, and every access — a real Read/Write or a test's Feed/PowerOn —
// is a closure handed to that goroutine over a channel, so nothing
// outside it ever touches the buffers directly.
type Sim struct {
	cmds  chan func(*simState)
	close chan struct{}
}

type simState struct {
	pwr bool
	rx  []byte
}

// NewSim starts a simulated FIFO with no power; tests call PowerOn to
// make it probe-able and readable/writable.
func NewSim() *Sim {
	s := &Sim{
		cmds:  make(chan func(*simState)),
		close: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Sim) run() {
	st := &simState{}
	for {
		select {
		case <-s.close:
			s.close <- struct{}{}
			return
		case cmd := <-s.cmds:
			cmd(st)
		}
	}
}

func (s *Sim) do(f func(*simState)) {
	done := make(chan struct{})
	s.cmds <- func(st *simState) {
		f(st)
		close(done)
	}
	<-done
}

// Close stops the simulator's goroutine.
func (s *Sim) Close() {
	s.close <- struct{}{}
	<-s.close
}

// PowerOn/PowerOff flip the FIFO's power state, driving the IRQOff edge.
func (s *Sim) PowerOn()  { s.do(func(st *simState) { st.pwr = true }) }
func (s *Sim) PowerOff() { s.do(func(st *simState) { st.pwr = false }) }

// Feed appends bytes to the simulated FIFO's receive queue, as if the
// host side had just sent them.
func (s *Sim) Feed(data []byte) {
	s.do(func(st *simState) {
		st.rx = append(st.rx, data...)
	})
}

// Probe reports power as presence, the way a real backend's probe
// checks for a live device.
func (s *Sim) Probe() bool {
	var pwr bool
	s.do(func(st *simState) { pwr = st.pwr })
	return pwr
}

func (s *Sim) IRQs() IRQSet {
	var ret IRQSet
	s.do(func(st *simState) {
		if !st.pwr {
			ret |= IRQOff
			return
		}
		if len(st.rx) > 0 {
			ret |= IRQRX
		}
	})
	return ret
}

func (s *Sim) Pwr() bool {
	var pwr bool
	s.do(func(st *simState) { pwr = st.pwr })
	return pwr
}

func (s *Sim) PollRX() bool {
	var has bool
	s.do(func(st *simState) { has = st.pwr && len(st.rx) > 0 })
	return has
}

func (s *Sim) Read(buf []byte) (int, error) {
	var n int
	s.do(func(st *simState) {
		n = copy(buf, st.rx)
		st.rx = st.rx[n:]
	})
	return n, nil
}

// Write accepts the whole buffer instantly; tests that need to observe
// what was sent should wrap Sim and record writes at the call site.
func (s *Sim) Write(buf []byte) (int, error) {
	return len(buf), nil
}
