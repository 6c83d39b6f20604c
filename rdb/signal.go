package rdb

// Signal is the POSIX-numbered signal RSP stop replies report, the
// debugger core's translation of a VR4300 exception cause.
type Signal int

const (
	SIGINT  Signal = 2
	SIGILL  Signal = 4
	SIGTRAP Signal = 5
	SIGFPE  Signal = 8
	SIGBUS  Signal = 10
	SIGSEGV Signal = 11
)

// causeToSignal maps the exception code in bits [6:2] of Cause to a
// signal, exactly stop_reply's switch over (cause >> 2) & 0x1F. watchHit
// reports whether this was a watch exception that should be reported
// while a watchpoint is armed.
func causeToSignal(cause uint64, watchActive bool) (sig Signal, watchHit bool) {
	switch (cause >> 2) & 0x1F {
	case 0: // int
		return SIGINT, false
	case 10: // ri
		return SIGILL, false
	case 15: // fpe
		return SIGFPE, false
	case 2, 3, 4, 5: // tlbl, tlbs, adel, ades
		return SIGSEGV, false
	case 6, 7: // ibe, dbe
		return SIGBUS, false
	case 8, 9, 13: // sys, bp, tr
		return SIGTRAP, false
	case 23: // watch
		return SIGTRAP, watchActive
	default:
		return SIGTRAP, false
	}
}
