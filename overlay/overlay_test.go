package overlay

import (
	"testing"

	"github.com/glankk/rdb/rdb"
)

func newTestReporter() *Reporter {
	// No tables at all: every category is empty.
	return NewFromCBOR(nil)
}

func TestNewFromCBORBlankBlobIsEmpty(t *testing.T) {
	r := NewFromCBOR(nil)
	if _, ok := r.Next(); ok {
		t.Fatal("expected no libraries from a blank table set")
	}
}

func TestEmbeddedTableDecodes(t *testing.T) {
	r := New()
	if len(r.tables.GameState) == 0 {
		t.Fatal("expected the embedded table to carry at least one game-state symbol")
	}
}

func TestNextSkipsUnloadedSlots(t *testing.T) {
	r := New()
	// Load only the third game-state slot ("opening" in the embedded
	// table); the first two and the fourth stay unloaded.
	r.Update(CategoryGameState, 2, 0x80800000, 0x80804000, 0x80700000)

	lib, ok := r.Next()
	if !ok {
		t.Fatal("expected one loaded library")
	}
	if lib.Name != "opening" || lib.Kind != rdb.LibOverlay || lib.LoadAddr != 0x80700000 {
		t.Fatalf("unexpected library: %+v", lib)
	}

	if _, ok := r.Next(); ok {
		t.Fatal("expected no further libraries after the one loaded slot")
	}
}

func TestNextTriesCategoriesInFixedOrder(t *testing.T) {
	r := New()
	// Load one slot in each of actor and kaleido; kaleido must come
	// back first even though actor is updated first,
	// because the fixed category order is gamestate -> kaleido -> actor
	// -> effect.
	r.Update(CategoryActor, 0, 0x80900000, 0x80904000, 0x80810000)
	r.Update(CategoryKaleido, 0, 0x80910000, 0x80914000, 0x80820000)

	first, ok := r.Next()
	if !ok || first.LoadAddr != 0x80820000 {
		t.Fatalf("expected kaleido's slot first, got %+v (ok=%v)", first, ok)
	}
	second, ok := r.Next()
	if !ok || second.LoadAddr != 0x80810000 {
		t.Fatalf("expected actor's slot second, got %+v (ok=%v)", second, ok)
	}
}

func TestResetCursorsRewindsEveryCategory(t *testing.T) {
	r := New()
	r.Update(CategoryGameState, 0, 0x80800000, 0x80804000, 0x80700000)

	if _, ok := r.Next(); !ok {
		t.Fatal("expected the loaded slot on the first pass")
	}
	if _, ok := r.Next(); ok {
		t.Fatal("expected cursor exhaustion before reset")
	}

	r.ResetCursors()
	if _, ok := r.Next(); !ok {
		t.Fatal("expected the same slot again after ResetCursors")
	}
}

func TestNotifyChangedAndClearChanged(t *testing.T) {
	r := New()

	if _, _, pending := r.ChangedLibrary(); pending {
		t.Fatal("expected no pending change before NotifyChanged")
	}

	lib := rdb.Library{Kind: rdb.LibOverlay, Name: "opening", LoadAddr: 0x80700000}
	r.NotifyChanged(lib, true)

	got, named, pending := r.ChangedLibrary()
	if !pending || !named || got != lib {
		t.Fatalf("unexpected changed state: %+v named=%v pending=%v", got, named, pending)
	}

	r.ClearChanged()
	if _, _, pending := r.ChangedLibrary(); pending {
		t.Fatal("expected ClearChanged to consume the pending event")
	}
}

func TestNotifyChangedUnnamedStillPending(t *testing.T) {
	r := New()
	r.NotifyChanged(rdb.Library{}, false)

	_, named, pending := r.ChangedLibrary()
	if !pending || named {
		t.Fatalf("expected a pending, unnamed change, got named=%v pending=%v", named, pending)
	}
}

func TestUpdateOutOfRangeIndexIsNoop(t *testing.T) {
	r := newTestReporter()
	r.Update(CategoryGameState, 0, 0x80800000, 0x80804000, 0x80700000)
	if _, ok := r.Next(); ok {
		t.Fatal("expected Update against a blank (zero-length) table to be a no-op")
	}
}
