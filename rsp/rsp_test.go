package rsp

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

// fakeWriter records every Write call separately so retransmission can
// be observed.
type fakeWriter struct {
	writes [][]byte
}

func (w *fakeWriter) Write(p []byte) (int, error) {
	cp := append([]byte(nil), p...)
	w.writes = append(w.writes, cp)
	return len(p), nil
}

func encodeRoundTrip(t *testing.T, payload string) []byte {
	t.Helper()
	w := &bytes.Buffer{}
	c := &Conn{w: w, NoAck: true}
	if err := c.PutPkt(false, payload); err != nil {
		t.Fatalf("PutPkt: %v", err)
	}
	return w.Bytes()
}

func TestPutPktFramesWithDollarAndChecksum(t *testing.T) {
	out := encodeRoundTrip(t, "qSupported")
	if out[0] != '$' {
		t.Fatalf("expected leading '$', got %q", out[0])
	}
	if i := bytes.IndexByte(out, '#'); i == -1 || i != len(out)-3 {
		t.Fatalf("expected '#' 3 bytes from the end, got %q", out)
	}
}

func TestNotificationFramesWithPercent(t *testing.T) {
	w := &bytes.Buffer{}
	c := &Conn{w: w, NoAck: true}
	if err := c.PutPkt(true, "Stop:T0"); err != nil {
		t.Fatalf("PutPkt: %v", err)
	}
	if w.Bytes()[0] != '%' {
		t.Fatalf("expected leading '%%', got %q", w.Bytes()[0])
	}
}

func TestEscapingOfFramingBytes(t *testing.T) {
	for _, special := range []byte{'#', '$', '%', '*', '}'} {
		out := encodeRoundTrip(t, string(special))
		payload := out[1 : len(out)-3]
		if len(payload) != 2 || payload[0] != '}' || payload[1] != special^' ' {
			t.Fatalf("special %q: got payload %v, want escape sequence", special, payload)
		}
	}
}

// decodeViaConn feeds a raw, already-framed ("$payload#cc"-shaped, with
// the leading '$' stripped) packet through GetPkt and returns the
// scanner's payload bytes.
func decodeViaConn(t *testing.T, framed []byte, noAck, notif bool) []byte {
	t.Helper()
	body := framed
	if body[0] == '$' || body[0] == '%' {
		body = body[1:]
	}
	w := &bytes.Buffer{}
	c := NewConn(bytes.NewReader(body), w)
	c.NoAck = noAck
	sc, err := c.GetPkt(notif)
	if err != nil {
		t.Fatalf("GetPkt: %v", err)
	}
	return sc.Rest()
}

func TestEncodeDecodeRoundTripPlainPayload(t *testing.T) {
	out := encodeRoundTrip(t, "qSupported:multiprocess+")
	got := decodeViaConn(t, out, true, false)
	if string(got) != "qSupported:multiprocess+" {
		t.Fatalf("got %q", got)
	}
}

func TestEncodeDecodeRoundTripWithFramingBytes(t *testing.T) {
	payload := "a#b$c%d*e}f"
	out := encodeRoundTrip(t, payload)
	got := decodeViaConn(t, out, true, false)
	if string(got) != payload {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func runOfN(c byte, n int) string {
	return strings.Repeat(string(c), n)
}

// expandRLE undoes PktFinish's run-length encoding on a payload GetPkt
// has already unescaped: "X*N" stands for X followed by N-29 more
// copies of X. GetPkt itself does not expand runs.
func expandRLE(b []byte) []byte {
	var out []byte
	for i := 0; i < len(b); i++ {
		if b[i] == '*' && len(out) > 0 && i+1 < len(b) {
			for n := int(b[i+1]) - 29; n > 0; n-- {
				out = append(out, out[len(out)-1])
			}
			i++
			continue
		}
		out = append(out, b[i])
	}
	return out
}

func TestRLERunsRoundTripForForbiddenAndBoundaryLengths(t *testing.T) {
	for _, n := range []int{1, 3, 4, 6, 7, 8, 9, 98, 99, 102, 200} {
		payload := runOfN('x', n)
		out := encodeRoundTrip(t, payload)
		got := expandRLE(decodeViaConn(t, out, true, false))
		if string(got) != payload {
			t.Fatalf("run of %d: got len %d, want %d", n, len(got), n)
		}
	}
}

func TestRLENeverEncodesForbiddenLengthDirectly(t *testing.T) {
	for _, n := range []int{7, 8} {
		out := encodeRoundTrip(t, runOfN('x', n))
		payload := out[1 : len(out)-3]
		for i := 0; i < len(payload); i++ {
			if payload[i] == '*' && i > 0 {
				encLen := int(payload[i+1]) - ' ' + 4
				if encLen == 7 || encLen == 8 {
					t.Fatalf("run of %d encoded a forbidden RLE length %d", n, encLen)
				}
			}
		}
	}
}

func TestPutHexSuppressesLeadingZerosKeepsOneDigit(t *testing.T) {
	w := &bytes.Buffer{}
	c := &Conn{w: w, NoAck: true}
	c.PktStart(false)
	c.PutHex(0)
	c.PktFinish()
	payload := w.Bytes()[1 : len(w.Bytes())-3]
	if string(payload) != "0" {
		t.Fatalf("got %q, want \"0\"", payload)
	}

	w2 := &bytes.Buffer{}
	c2 := &Conn{w: w2, NoAck: true}
	c2.PktStart(false)
	c2.PutHex(0xabc)
	c2.PktFinish()
	payload2 := w2.Bytes()[1 : len(w2.Bytes())-3]
	if string(payload2) != "abc" {
		t.Fatalf("got %q, want \"abc\"", payload2)
	}
}

func TestPutHexNFixedWidth(t *testing.T) {
	w := &bytes.Buffer{}
	c := &Conn{w: w, NoAck: true}
	c.PktStart(false)
	c.PutHexN(0x5, 4)
	c.PktFinish()
	payload := w.Bytes()[1 : len(w.Bytes())-3]
	if string(payload) != "0005" {
		t.Fatalf("got %q, want \"0005\"", payload)
	}
}

func TestPktFinishRetransmitsOnNack(t *testing.T) {
	w := &fakeWriter{}
	c := &Conn{w: w, r: bufio.NewReader(bytes.NewReader([]byte{'-', '+'}))}
	c.PktStart(false)
	c.PutString("OK")
	if err := c.PktFinish(); err != nil {
		t.Fatalf("PktFinish: %v", err)
	}
	if len(w.writes) != 2 {
		t.Fatalf("expected 2 writes (original + retransmit), got %d", len(w.writes))
	}
	if !bytes.Equal(w.writes[0], w.writes[1]) {
		t.Fatalf("retransmit bytes differ: %v vs %v", w.writes[0], w.writes[1])
	}
}

func TestPktFinishProtocolErrorOnBadAck(t *testing.T) {
	w := &fakeWriter{}
	c := &Conn{w: w, r: bufio.NewReader(bytes.NewReader([]byte{'?'}))}
	c.PktStart(false)
	c.PutString("OK")
	if err := c.PktFinish(); err != ErrProtocol {
		t.Fatalf("PktFinish err = %v, want ErrProtocol", err)
	}
}

func TestPktFinishSkipsHandshakeInNoAckMode(t *testing.T) {
	w := &fakeWriter{}
	c := &Conn{w: w, NoAck: true}
	c.PktStart(false)
	c.PutString("OK")
	if err := c.PktFinish(); err != nil {
		t.Fatalf("PktFinish: %v", err)
	}
	if len(w.writes) != 1 {
		t.Fatalf("expected exactly 1 write with no-ack, got %d", len(w.writes))
	}
}

func TestGetPktChecksumMismatchNacks(t *testing.T) {
	w := &bytes.Buffer{}
	// "OK" with a deliberately wrong checksum.
	c := NewConn(strings.NewReader("OK#00"), w)
	if _, err := c.GetPkt(false); err != ErrChecksum {
		t.Fatalf("GetPkt err = %v, want ErrChecksum", err)
	}
	if w.Bytes()[0] != '-' {
		t.Fatalf("expected a '-' nack, got %q", w.Bytes())
	}
}

func TestGetPktAcksOnSuccess(t *testing.T) {
	out := encodeRoundTrip(t, "OK")
	body := out[1:]
	w := &bytes.Buffer{}
	c := NewConn(bytes.NewReader(body), w)
	if _, err := c.GetPkt(false); err != nil {
		t.Fatalf("GetPkt: %v", err)
	}
	if w.Bytes()[0] != '+' {
		t.Fatalf("expected a '+' ack, got %q", w.Bytes())
	}
}

func TestGetPktNotificationNeverAcksOrNacks(t *testing.T) {
	w := &bytes.Buffer{}
	c := NewConn(strings.NewReader("OK#00"), w)
	if _, err := c.GetPkt(true); err != ErrChecksum {
		t.Fatalf("GetPkt err = %v, want ErrChecksum", err)
	}
	if w.Len() != 0 {
		t.Fatalf("expected no ack/nack byte written for a notification, got %q", w.Bytes())
	}
}
