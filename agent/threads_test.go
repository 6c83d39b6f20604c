package agent

import (
	"testing"

	"github.com/glankk/rdb/rdb"
)

func TestEmbeddedThreadTableDecodes(t *testing.T) {
	table := decodeThreadTable(embeddedThreads)
	if len(table.Threads) == 0 {
		t.Fatal("expected the embedded table to carry at least one thread")
	}
}

func TestTargetThreadHostSkipsExemptThreads(t *testing.T) {
	mem := newSimMemory()
	h := NewTargetThreadHost(mem)

	seen := map[rdb.ThreadID]bool{}
	h.ForEach(func(th rdb.Thread) bool {
		seen[th.ID()] = true
		return true
	})

	// "idle" (id 1) and "padmgr" (id 5) are exempt in the embedded
	// table; only "main"/"graph"/"audio" should be enumerable.
	if seen[1] || seen[5] {
		t.Fatalf("exempt thread leaked into ForEach: %v", seen)
	}
	if !seen[2] || !seen[3] || !seen[4] {
		t.Fatalf("expected non-exempt threads present, got %v", seen)
	}
}

func TestTargetThreadStartFlushesEditedRegister(t *testing.T) {
	mem := newSimMemory()
	h := NewTargetThreadHost(mem)

	var main rdb.Thread
	h.ForEach(func(th rdb.Thread) bool {
		if th.ID() == 2 {
			main = th
			return false
		}
		return true
	})
	if main == nil {
		t.Fatal("expected to find thread id 2 (\"main\")")
	}

	main.Context().Pc = 0x80123456
	h.Start(main)

	tt := main.(*targetThread)
	got := readContext(mem, tt.desc.Addr)
	if got.Pc != 0x80123456 {
		t.Fatalf("Pc not flushed to target memory: got %#x", got.Pc)
	}
}

func TestTargetThreadStopRefreshesFromMemory(t *testing.T) {
	mem := newSimMemory()
	h := NewTargetThreadHost(mem)

	var main rdb.Thread
	h.ForEach(func(th rdb.Thread) bool {
		if th.ID() == 2 {
			main = th
			return false
		}
		return true
	})

	tt := main.(*targetThread)
	var c rdb.ThreadContext
	c.Cause = 0x18
	writeContext(mem, tt.desc.Addr, &c)

	h.Stop(main)

	if main.Context().Cause != 0x18 {
		t.Fatalf("Context not refreshed from memory after Stop: %+v", main.Context())
	}
}

func TestPriorityReadsAndWritesThroughMemory(t *testing.T) {
	mem := newSimMemory()
	h := NewTargetThreadHost(mem)

	var main rdb.Thread
	h.ForEach(func(th rdb.Thread) bool {
		if th.ID() == 2 {
			main = th
			return false
		}
		return true
	})

	main.SetPriority(100)
	if got := main.Priority(); got != 100 {
		t.Fatalf("Priority roundtrip failed: got %d", got)
	}
}

func TestSetWatchWritesFixedAddress(t *testing.T) {
	mem := newSimMemory()
	h := NewTargetThreadHost(mem)
	h.SetWatch(0xDEADBEEF)
	if got := mem.ReadWord(watchRegAddr); got != 0xDEADBEEF {
		t.Fatalf("SetWatch did not reach watchRegAddr: got %#x", got)
	}
}
