// Package overlay implements rdb.OverlayHost over the target's
// build-time overlay symbol tables, mirroring rdb.c's
// next_gamestate_lib/next_kaleido_lib/next_actor_lib/next_effect_lib
// and the rdb_lib_changed/rdb_changed_lib bookkeeping they feed.
package overlay

import (
	_ "embed"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/glankk/rdb/rdb"
)

// Category indexes the four overlay tables qXfer:libraries:read walks,
// in the fixed order handle_qXfer_libraries_read tries them: one slot
// per output chunk entry, first category to yield a loaded symbol
// wins, each category's own cursor advancing past unloaded symbols it
// skips along the way. A poller in package agent names these when
// reporting what it read from target memory via Update.
type Category int

const (
	CategoryGameState Category = iota
	CategoryKaleido
	CategoryActor
	CategoryEffect
	categoryCount
)

// symbol is one build-time-known overlay slot: its reported name and
// the struct address the agent's memory poller reads vram_start,
// vram_end and loaded_ram_addr from. Go has no access to the target's
// C struct layouts, so those three fields are carried alongside the
// table instead of being derived from fixed offsets into StructAddr;
// Update is how a poller (in package agent) reports what it read.
type symbol struct {
	Name       string `cbor:"name"`
	StructAddr uint32 `cbor:"struct_addr"`
}

// tableSet is the build-time CBOR shape produced by cmd/rdbsymgen, one
// symbol slice per category in the fixed order above.
type tableSet struct {
	GameState []symbol `cbor:"game_state"`
	Kaleido   []symbol `cbor:"kaleido"`
	Actor     []symbol `cbor:"actor"`
	Effect    []symbol `cbor:"effect"`
}

func (t tableSet) category(c Category) []symbol {
	switch c {
	case CategoryGameState:
		return t.GameState
	case CategoryKaleido:
		return t.Kaleido
	case CategoryActor:
		return t.Actor
	case CategoryEffect:
		return t.Effect
	default:
		return nil
	}
}

//go:embed tables.cbor
var embeddedTables []byte

// decodeTables parses a cmd/rdbsymgen-produced CBOR blob. A blank or
// malformed blob degrades to an empty table set (no overlays reported)
// rather than panicking a long-running agent process.
func decodeTables(blob []byte) tableSet {
	if len(blob) == 0 {
		return tableSet{}
	}
	var t tableSet
	if err := cbor.Unmarshal(blob, &t); err != nil {
		return tableSet{}
	}
	return t
}

// live mirrors one symbol's currently-reported load state. VRAMStart
// == 0 means unloaded, matching the source's ovl->vramStart == NULL
// test.
type live struct {
	vramStart, vramEnd uint32
	loadAddr           uint32
}

// Reporter is the overlay package's rdb.OverlayHost: a build-time
// table of overlay symbols plus the live load state an agent's memory
// poller feeds in through Update, with the same per-category cursor
// and changed-library bookkeeping as the source's struct rdb fields
// rdb.lib_gamestate_pos / ..._kaleido_pos / ..._actor_pos / ..._effect_pos
// and rdb_changed_lib.
type Reporter struct {
	mu sync.Mutex

	tables tableSet
	state  [categoryCount][]live

	cursor [categoryCount]int

	changed      rdb.Library
	changedNamed bool
	pending      bool
}

// New builds a Reporter from the embedded build-time table.
func New() *Reporter {
	return NewFromCBOR(embeddedTables)
}

// NewFromCBOR builds a Reporter from an explicit CBOR blob, letting
// cmd/rdbd substitute a freshly-generated table without a rebuild.
func NewFromCBOR(blob []byte) *Reporter {
	t := decodeTables(blob)
	r := &Reporter{tables: t}
	for c := Category(0); c < categoryCount; c++ {
		r.state[c] = make([]live, len(t.category(c)))
	}
	return r
}

// Update records the load state an agent's memory poller observed for
// slot index of category, the Go-side equivalent of the target
// refreshing ovl->vramStart/vramEnd/loadedRamAddr in place.
func (r *Reporter) Update(cat Category, index int, vramStart, vramEnd, loadAddr uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.state[cat]) {
		return
	}
	r.state[cat][index] = live{vramStart: vramStart, vramEnd: vramEnd, loadAddr: loadAddr}
}

// NotifyChanged records a library-load/unload edge for the next
// stop-reply's library segment, the Go equivalent of rdb_lib_changed:
// named false means "no particular library" (rdb_changed_lib == NULL,
// still producing a bare "library:;" segment).
func (r *Reporter) NotifyChanged(lib rdb.Library, named bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changed = lib
	r.changedNamed = named
	r.pending = true
}

// toLibrary converts category c's slot idx into the rdb.Library it
// reports, the Go shape of rdb_gamestate_lib/rdb_kaleido_lib/
// rdb_actor_lib/rdb_effect_lib. All four source constructors always
// set lib->type = RDB_LIB_OVERLAY — RDB_LIB_STATIC is a declared but
// never-assigned enum alternative in the reference source, kept here
// only so LibKind can still represent a future statically-linked
// module.
func (t tableSet) toLibrary(c Category, idx int, st live) rdb.Library {
	return rdb.Library{
		Kind:      rdb.LibOverlay,
		Name:      t.category(c)[idx].Name,
		VRAMStart: st.vramStart,
		VRAMEnd:   st.vramEnd,
		LoadAddr:  st.loadAddr,
	}
}

// nextInCategory advances c's cursor past unloaded slots and returns
// the first loaded one it finds, the Go shape of next_gamestate_lib's
// "while (pos < count) { ...; if (ovl->vramStart == NULL) pos++; else
// { pos++; return lib; } }" loop — each call consumes at most one
// loaded entry, leaving the cursor just past it.
func (r *Reporter) nextInCategory(c Category) (rdb.Library, bool) {
	slots := r.state[c]
	for r.cursor[c] < len(slots) {
		idx := r.cursor[c]
		r.cursor[c]++
		st := slots[idx]
		if st.vramStart == 0 {
			continue
		}
		return r.tables.toLibrary(c, idx, st), true
	}
	return rdb.Library{}, false
}

// ResetCursors rewinds every category's cursor, the way
// handle_qXfer_libraries_read resets rdb.lib_*_pos to 0 when offset
// == 0.
func (r *Reporter) ResetCursors() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.cursor {
		r.cursor[c] = 0
	}
}

// Next tries each category once, in gamestate -> kaleido -> actor ->
// effect order, returning the first loaded library any of them
// yields — the Go shape of handle_qXfer_libraries_read's per-slot
// "if (!next_gamestate_lib(&lib)) ... else if (!next_kaleido_lib(&lib))
// ..." fallthrough. ok is false only once every category is
// exhausted.
func (r *Reporter) Next() (rdb.Library, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := Category(0); c < categoryCount; c++ {
		if lib, ok := r.nextInCategory(c); ok {
			return lib, true
		}
	}
	return rdb.Library{}, false
}

// ChangedLibrary reports the library named by the most recent
// NotifyChanged call and whether a change is pending, the Go read of
// rdb.libs_changed / rdb_changed_lib.
func (r *Reporter) ChangedLibrary() (rdb.Library, bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.changed, r.changedNamed, r.pending
}

// ClearChanged consumes the pending library-change event, the
// stop_reply side effect of "rdb.libs_changed = 0".
func (r *Reporter) ClearChanged() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = false
	r.changedNamed = false
	r.changed = rdb.Library{}
}
