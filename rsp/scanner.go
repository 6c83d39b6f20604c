package rsp

// hexUint is the set of unsigned integer widths the scanner decodes
// hex fields into, the way bc/bytewords.Decode is generic over
// ~string | ~[]byte for its one shape-varying parameter.
type hexUint interface {
	~uint8 | ~uint32 | ~uint64
}

// Scanner walks a packet's normalized (already-unescaped) payload the
// way getpkt's pkt_scan_* family walks rdb.rx_buf[rdb.ipkt_pos:rdb.ipkt_size].
type Scanner struct {
	buf []byte
	pos int
}

// NewScanner wraps an already-decoded payload, for tests and for
// scanning a buffer obtained some way other than Conn.GetPkt.
func NewScanner(buf []byte) *Scanner {
	return &Scanner{buf: buf}
}

// Lit consumes the literal string s if the payload starts with it at
// the current position, advancing past it and returning 0. Otherwise
// the position is left unchanged and the lexicographic byte delta at
// the first mismatch is returned (0 only on success), mirroring
// pkt_scan_lit's comparison-for-diagnostics return value.
func (s *Scanner) Lit(lit string) int {
	p := s.pos
	for i := 0; i < len(lit); i++ {
		if p == len(s.buf) {
			return int(lit[i])
		}
		if lit[i] != s.buf[p] {
			return int(lit[i]) - int(s.buf[p])
		}
		p++
	}
	s.pos = p
	return 0
}

// Char reads one byte, or reports false at end of packet.
func (s *Scanner) Char() (byte, bool) {
	if s.pos == len(s.buf) {
		return 0, false
	}
	c := s.buf[s.pos]
	s.pos++
	return c, true
}

func scanHex[T hexUint](s *Scanner, width int) (T, bool) {
	var v T
	n := 0
	greedy := width < 1
	for s.pos+n != len(s.buf) && (greedy || n != width) {
		x, ok := hexVal(s.buf[s.pos+n])
		if !ok {
			break
		}
		v = v<<4 | T(x)
		n++
	}
	if greedy {
		width = n
	}
	if n == 0 || n != width {
		return 0, false
	}
	s.pos += n
	return v, true
}

// Hex8 reads an 8-bit hex field of exactly width digits, or (width<1)
// greedily but at least one digit.
func (s *Scanner) Hex8(width int) (uint8, bool) { return scanHex[uint8](s, width) }

// Hex32 reads a 32-bit hex field, same width convention as Hex8.
func (s *Scanner) Hex32(width int) (uint32, bool) { return scanHex[uint32](s, width) }

// Hex64 reads a 64-bit hex field, same width convention as Hex8.
func (s *Scanner) Hex64(width int) (uint64, bool) { return scanHex[uint64](s, width) }

// EOP asserts the scanner has consumed the entire payload.
func (s *Scanner) EOP() bool {
	return s.pos == len(s.buf)
}

// Rest returns the unconsumed tail of the payload, for handlers (like
// the memory-write commands) that take a raw byte or hex-encoded blob
// as their final field.
func (s *Scanner) Rest() []byte {
	return s.buf[s.pos:]
}

// Reset rebinds the scanner to a new payload, for reuse across packets.
func (s *Scanner) Reset(buf []byte) {
	s.buf = buf
	s.pos = 0
}
