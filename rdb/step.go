package rdb

import "github.com/glankk/rdb/vr4300"

// plannedPCs decodes the instruction at pc and returns up to two
// candidate successor addresses the step breakpoints should cover, the
// same case analysis as step()'s switch over insn.opcode. A zero
// address in slot 1 means "no second candidate" (set_bkp is never
// called with address 0 as a real target since it always fails
// CheckAddr anyway, matching the source's "step_addr[1] = 0" sentinel).
func plannedPCs(mem Memory, thread Thread, pc uint32) (a0, a1 uint32) {
	if !CheckAddr(pc, 4) {
		return pc + 4, 0
	}
	insn, ok := vr4300.Decode(mem.ReadWord(pc))
	if !ok {
		return pc + 4, 0
	}

	switch insn.Op {
	case vr4300.OpBC1F, vr4300.OpBC1FL, vr4300.OpBC1T, vr4300.OpBC1TL:
		return pc + 4 + uint32(insn.OpndValue[0]), pc + 8

	case vr4300.OpBGEZ, vr4300.OpBGEZAL, vr4300.OpBGEZALL, vr4300.OpBGEZL,
		vr4300.OpBGTZ, vr4300.OpBGTZL, vr4300.OpBLEZ, vr4300.OpBLEZL,
		vr4300.OpBLTZ, vr4300.OpBLTZAL, vr4300.OpBLTZALL, vr4300.OpBLTZL:
		return pc + 4 + uint32(insn.OpndValue[1]), pc + 8

	case vr4300.OpBEQ, vr4300.OpBEQL, vr4300.OpBNE, vr4300.OpBNEL:
		return pc + 4 + uint32(insn.OpndValue[2]), pc + 8

	case vr4300.OpJ:
		return (pc & 0xF0000000) | uint32(insn.OpndValue[0]), 0

	case vr4300.OpJAL:
		// Stepping into some functions is forbidden (they're exempt), so
		// a second breakpoint on the return address lets the step-over
		// land on PC+8 instead.
		return (pc & 0xF0000000) | uint32(insn.OpndValue[0]), pc + 8

	case vr4300.OpJALR:
		return uint32(GetReg(thread, int(insn.OpndValue[1]))), pc + 8

	case vr4300.OpJR:
		return uint32(GetReg(thread, int(insn.OpndValue[0]))), 0

	default:
		return pc + 4, 0
	}
}
