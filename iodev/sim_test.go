package iodev

import "testing"

func TestSimPowerAndIRQs(t *testing.T) {
	s := NewSim()
	defer s.Close()

	if s.Probe() {
		t.Fatal("expected Probe to fail before PowerOn")
	}
	if irqs := s.IRQs(); irqs&IRQOff == 0 {
		t.Error("expected IRQOff before power on")
	}

	s.PowerOn()
	if !s.Probe() {
		t.Fatal("expected Probe to succeed after PowerOn")
	}
	if irqs := s.IRQs(); irqs&IRQOff != 0 {
		t.Error("did not expect IRQOff after power on")
	}
}

func TestSimFeedAndRead(t *testing.T) {
	s := NewSim()
	defer s.Close()
	s.PowerOn()

	if s.PollRX() {
		t.Fatal("expected no RX data yet")
	}
	s.Feed([]byte("hi"))
	if !s.PollRX() {
		t.Fatal("expected RX data after Feed")
	}

	buf := make([]byte, 2)
	n, err := s.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 2 || string(buf) != "hi" {
		t.Errorf("Read = %q (%d), want %q (2)", buf, n, "hi")
	}
	if s.PollRX() {
		t.Error("expected RX queue drained")
	}
}

func TestSimConcurrentAccessDoesNotRace(t *testing.T) {
	s := NewSim()
	defer s.Close()
	s.PowerOn()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			s.Feed([]byte{byte(i)})
		}
		close(done)
	}()
	buf := make([]byte, 1)
	for i := 0; i < 100; i++ {
		s.Read(buf)
	}
	<-done
}
