package rdb

// LibKind distinguishes a statically-linked module from a dynamically
// relocated overlay, mirroring RDB_LIB_STATIC/RDB_LIB_OVERLAY.
type LibKind int

const (
	LibStatic LibKind = iota
	LibOverlay
)

// Library describes one loaded (or just-unloaded) code/data module as
// reported to the host debugger. LoadAddr == 0 means unloaded — the
// zero value of an absent load address, matching the source's
// load_addr == NULL.
type Library struct {
	Kind               LibKind
	Name               string
	VRAMStart, VRAMEnd uint32
	LoadAddr           uint32
}

// OverlayHost enumerates the host program's overlay/library tables for
// qXfer:libraries:read, and reports the single library a
// library-changed event concerns for the stop-reply's library segment.
// Implemented by the overlay package.
type OverlayHost interface {
	// ResetCursors rewinds per-category enumeration cursors; called when
	// a qXfer:libraries:read request's offset is 0, the way
	// handle_qXfer_libraries_read resets rdb.lib_*_pos.
	ResetCursors()
	// Next returns the next loaded library across all categories in
	// table order, advancing cursors; ok is false once every category is
	// exhausted.
	Next() (lib Library, ok bool)
	// ChangedLibrary returns the library named in the most recent
	// library-change event, and whether one is pending. A pending event
	// with named == false (the zero Library) still produces a bare
	// "library:;" segment, matching rdb_changed_lib == NULL.
	ChangedLibrary() (lib Library, named bool, pending bool)
	// ClearChanged consumes the pending library-change event, the
	// stop_reply side effect of "rdb.libs_changed = 0".
	ClearChanged()
}
