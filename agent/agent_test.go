package agent

import (
	"sync"
	"testing"
	"time"

	"github.com/glankk/rdb/iodev"
	"github.com/glankk/rdb/rdb"
)

// recordingBackend wraps iodev.Sim's probe/IRQ/read behavior but
// captures every Write call so tests can inspect what the agent sent
// back, the way iomux's own tests drive iodev.Sim directly but this
// package additionally needs the reply bytes.
type recordingBackend struct {
	*iodev.Sim
	mu  sync.Mutex
	out []byte
}

func (r *recordingBackend) Write(buf []byte) (int, error) {
	r.mu.Lock()
	r.out = append(r.out, buf...)
	r.mu.Unlock()
	return len(buf), nil
}

func (r *recordingBackend) snapshot() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return string(r.out)
}

type noopMemory struct{}

func (noopMemory) ReadByte(uint32) byte     { return 0 }
func (noopMemory) WriteByte(uint32, byte)   {}
func (noopMemory) ReadWord(uint32) uint32   { return 0 }
func (noopMemory) WriteWord(uint32, uint32) {}

type fakeThread struct {
	id  rdb.ThreadID
	ctx rdb.ThreadContext
	pri int
}

func (t *fakeThread) ID() rdb.ThreadID            { return t.id }
func (t *fakeThread) Context() *rdb.ThreadContext { return &t.ctx }
func (t *fakeThread) Priority() int               { return t.pri }
func (t *fakeThread) SetPriority(p int)           { t.pri = p }

type fakeHost struct {
	threads []*fakeThread
}

func (h *fakeHost) ForEach(fn func(rdb.Thread) bool) {
	for _, t := range h.threads {
		if !fn(t) {
			return
		}
	}
}
func (h *fakeHost) Start(rdb.Thread)   {}
func (h *fakeHost) Stop(rdb.Thread)    {}
func (h *fakeHost) StartAll()          {}
func (h *fakeHost) StopAll()           {}
func (h *fakeHost) SetWatch(uint32)    {}
func (h *fakeHost) Memory() rdb.Memory { return noopMemory{} }

type fakeOverlay struct{}

func (fakeOverlay) ResetCursors() {}
func (fakeOverlay) Next() (rdb.Library, bool) {
	return rdb.Library{}, false
}
func (fakeOverlay) ChangedLibrary() (rdb.Library, bool, bool) { return rdb.Library{}, false, false }
func (fakeOverlay) ClearChanged()                             {}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestStartHandlesQSupportedPacket(t *testing.T) {
	sim := iodev.NewSim()
	defer sim.Close()
	sim.PowerOn()
	backend := &recordingBackend{Sim: sim}

	host := &fakeHost{threads: []*fakeThread{{id: 1}}}
	a, err := Start([]iodev.Backend{backend}, host, fakeOverlay{}, nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer a.Stop()

	sim.Feed([]byte("$qSupported#37"))

	waitFor(t, time.Second, func() bool {
		return len(backend.snapshot()) > 0
	})
	reply := backend.snapshot()
	if !contains(reply, "QStartNoAckMode") {
		t.Fatalf("reply %q missing QStartNoAckMode capability", reply)
	}
}

func TestNotifyThreadFaultProducesStopReply(t *testing.T) {
	sim := iodev.NewSim()
	defer sim.Close()
	sim.PowerOn()
	backend := &recordingBackend{Sim: sim}

	thread := &fakeThread{id: 1}
	host := &fakeHost{threads: []*fakeThread{thread}}
	a, err := Start([]iodev.Backend{backend}, host, fakeOverlay{}, nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer a.Stop()

	// Attach first (a stop-reply before attach has nothing to select).
	sim.Feed([]byte("$?#3f"))
	waitFor(t, time.Second, func() bool { return len(backend.snapshot()) > 0 })

	before := len(backend.snapshot())
	a.NotifyThreadFault(thread)
	waitFor(t, time.Second, func() bool { return len(backend.snapshot()) > before })

	// cause == 0 decodes to exception code 0 ("int"), which
	// causeToSignal maps to SIGINT (2) — see rdb/signal.go.
	reply := backend.snapshot()
	if !contains(reply, "T02") {
		t.Fatalf("expected a T02 stop-reply to follow, got %q", reply[before:])
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
