package rdb

// regAccessor binds one RSP register index (0x00..0x47) to a
// ThreadContext field. Indices with a nil accessor read as zero and
// ignore writes — get_reg/set_reg's switch falls through to "return 0"
// / a no-op for exactly the same indices (0, 0x1A, 0x1B, 0x27, 0x29,
// ..., 0x45, 0x47).
type regAccessor struct {
	get func(*ThreadContext) uint64
	set func(*ThreadContext, uint64)
}

const regCount = 0x48

var regTable [regCount]regAccessor

func reg(i int, get func(*ThreadContext) uint64, set func(*ThreadContext, uint64)) {
	regTable[i] = regAccessor{get, set}
}

func init() {
	reg(0x01, func(c *ThreadContext) uint64 { return c.At }, func(c *ThreadContext, v uint64) { c.At = v })
	reg(0x02, func(c *ThreadContext) uint64 { return c.V0 }, func(c *ThreadContext, v uint64) { c.V0 = v })
	reg(0x03, func(c *ThreadContext) uint64 { return c.V1 }, func(c *ThreadContext, v uint64) { c.V1 = v })
	reg(0x04, func(c *ThreadContext) uint64 { return c.A0 }, func(c *ThreadContext, v uint64) { c.A0 = v })
	reg(0x05, func(c *ThreadContext) uint64 { return c.A1 }, func(c *ThreadContext, v uint64) { c.A1 = v })
	reg(0x06, func(c *ThreadContext) uint64 { return c.A2 }, func(c *ThreadContext, v uint64) { c.A2 = v })
	reg(0x07, func(c *ThreadContext) uint64 { return c.A3 }, func(c *ThreadContext, v uint64) { c.A3 = v })
	reg(0x08, func(c *ThreadContext) uint64 { return c.T0 }, func(c *ThreadContext, v uint64) { c.T0 = v })
	reg(0x09, func(c *ThreadContext) uint64 { return c.T1 }, func(c *ThreadContext, v uint64) { c.T1 = v })
	reg(0x0A, func(c *ThreadContext) uint64 { return c.T2 }, func(c *ThreadContext, v uint64) { c.T2 = v })
	reg(0x0B, func(c *ThreadContext) uint64 { return c.T3 }, func(c *ThreadContext, v uint64) { c.T3 = v })
	reg(0x0C, func(c *ThreadContext) uint64 { return c.T4 }, func(c *ThreadContext, v uint64) { c.T4 = v })
	reg(0x0D, func(c *ThreadContext) uint64 { return c.T5 }, func(c *ThreadContext, v uint64) { c.T5 = v })
	reg(0x0E, func(c *ThreadContext) uint64 { return c.T6 }, func(c *ThreadContext, v uint64) { c.T6 = v })
	reg(0x0F, func(c *ThreadContext) uint64 { return c.T7 }, func(c *ThreadContext, v uint64) { c.T7 = v })
	reg(0x10, func(c *ThreadContext) uint64 { return c.S0 }, func(c *ThreadContext, v uint64) { c.S0 = v })
	reg(0x11, func(c *ThreadContext) uint64 { return c.S1 }, func(c *ThreadContext, v uint64) { c.S1 = v })
	reg(0x12, func(c *ThreadContext) uint64 { return c.S2 }, func(c *ThreadContext, v uint64) { c.S2 = v })
	reg(0x13, func(c *ThreadContext) uint64 { return c.S3 }, func(c *ThreadContext, v uint64) { c.S3 = v })
	reg(0x14, func(c *ThreadContext) uint64 { return c.S4 }, func(c *ThreadContext, v uint64) { c.S4 = v })
	reg(0x15, func(c *ThreadContext) uint64 { return c.S5 }, func(c *ThreadContext, v uint64) { c.S5 = v })
	reg(0x16, func(c *ThreadContext) uint64 { return c.S6 }, func(c *ThreadContext, v uint64) { c.S6 = v })
	reg(0x17, func(c *ThreadContext) uint64 { return c.S7 }, func(c *ThreadContext, v uint64) { c.S7 = v })
	reg(0x18, func(c *ThreadContext) uint64 { return c.T8 }, func(c *ThreadContext, v uint64) { c.T8 = v })
	reg(0x19, func(c *ThreadContext) uint64 { return c.T9 }, func(c *ThreadContext, v uint64) { c.T9 = v })
	reg(0x1C, func(c *ThreadContext) uint64 { return c.Gp }, func(c *ThreadContext, v uint64) { c.Gp = v })
	reg(0x1D, func(c *ThreadContext) uint64 { return c.Sp }, func(c *ThreadContext, v uint64) { c.Sp = v })
	reg(0x1E, func(c *ThreadContext) uint64 { return c.S8 }, func(c *ThreadContext, v uint64) { c.S8 = v })
	reg(0x1F, func(c *ThreadContext) uint64 { return c.Ra }, func(c *ThreadContext, v uint64) { c.Ra = v })
	reg(0x20, func(c *ThreadContext) uint64 { return c.Sr }, func(c *ThreadContext, v uint64) { c.Sr = v })
	reg(0x21, func(c *ThreadContext) uint64 { return c.Lo }, func(c *ThreadContext, v uint64) { c.Lo = v })
	reg(0x22, func(c *ThreadContext) uint64 { return c.Hi }, func(c *ThreadContext, v uint64) { c.Hi = v })
	reg(0x23, func(c *ThreadContext) uint64 { return c.BadVAddr }, func(c *ThreadContext, v uint64) { c.BadVAddr = v })
	reg(0x24, func(c *ThreadContext) uint64 { return c.Cause }, func(c *ThreadContext, v uint64) { c.Cause = v })
	reg(0x25, func(c *ThreadContext) uint64 { return c.Pc }, func(c *ThreadContext, v uint64) { c.Pc = v })

	// The 32 single-precision FP registers are addressed here as 16
	// double-wide slots at even register numbers, the way *(u64*)&c->fp0
	// reinterprets the FPR file in the source.
	for i := 0; i < 16; i++ {
		i := i
		reg(0x26+i*2, func(c *ThreadContext) uint64 { return c.F[i] }, func(c *ThreadContext, v uint64) { c.F[i] = v })
	}

	reg(0x46, func(c *ThreadContext) uint64 { return uint64(c.Fpcsr) }, func(c *ThreadContext, v uint64) { c.Fpcsr = uint32(v) })
}

// GetReg reads register index from thread's context, returning 0 for
// any index get_reg's switch does not map.
func GetReg(thread Thread, index int) uint64 {
	if index < 0 || index >= regCount || regTable[index].get == nil {
		return 0
	}
	return regTable[index].get(thread.Context())
}

// SetReg writes register index on thread's context, silently ignoring
// any index set_reg's switch does not map.
func SetReg(thread Thread, index int, value uint64) {
	if index < 0 || index >= regCount || regTable[index].set == nil {
		return
	}
	regTable[index].set(thread.Context(), value)
}
