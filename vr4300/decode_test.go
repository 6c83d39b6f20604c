package vr4300

import "testing"

func TestDecodeRType(t *testing.T) {
	// add $v0, $a0, $a1 -> opcode 0, rs=4, rt=5, rd=2, funct=0x20
	code := uint32(0x20<<0) | uint32(2<<11) | uint32(4<<21) | uint32(5<<16)
	insn, ok := Decode(code)
	if !ok {
		t.Fatal("decode failed")
	}
	if insn.Op != OpADD {
		t.Fatalf("op = %v, want OpADD", insn.Op)
	}
	if insn.OpndValue[0] != RegCPUFirst+2 {
		t.Errorf("rd = %d, want %d", insn.OpndValue[0], RegCPUFirst+2)
	}
	if insn.OpndValue[1] != RegCPUFirst+4 {
		t.Errorf("rs = %d, want %d", insn.OpndValue[1], RegCPUFirst+4)
	}
	if insn.OpndValue[2] != RegCPUFirst+5 {
		t.Errorf("rt = %d, want %d", insn.OpndValue[2], RegCPUFirst+5)
	}
}

func TestDecodeBranchOffsetMultipliedByFour(t *testing.T) {
	// beq $zero, $zero, -4 (opcode 0x04, offset 0xFFFF)
	code := uint32(0x04<<26) | uint32(0xFFFF)
	insn, ok := Decode(code)
	if !ok {
		t.Fatal("decode failed")
	}
	if insn.Op != OpBEQ {
		t.Fatalf("op = %v, want OpBEQ", insn.Op)
	}
	if insn.OpndValue[2] != -4 {
		t.Errorf("offset = %d, want -4", insn.OpndValue[2])
	}
}

func TestDecodeJumpTarget(t *testing.T) {
	// j with a 26-bit target, shifted left 2 on decode
	target := uint32(0x0123456)
	code := uint32(0x02<<26) | target
	insn, ok := Decode(code)
	if !ok {
		t.Fatal("decode failed")
	}
	if insn.Op != OpJ {
		t.Fatalf("op = %v, want OpJ", insn.Op)
	}
	if uint32(insn.OpndValue[0]) != target<<2 {
		t.Errorf("jump target = %#x, want %#x", insn.OpndValue[0], target<<2)
	}
}

func TestDecodeTrapWord(t *testing.T) {
	// teq $zero, $zero -- the software breakpoint trap encoding.
	insn, ok := Decode(0x00000034)
	if !ok {
		t.Fatal("decode failed")
	}
	if insn.Op != OpTEQ {
		t.Fatalf("op = %v, want OpTEQ", insn.Op)
	}
}

func TestDecodeUnknownReturnsFalse(t *testing.T) {
	// funct 0x3D is unused in the special table.
	code := uint32(0x3D)
	if _, ok := Decode(code); ok {
		t.Fatal("expected decode to fail for unused special funct")
	}
}

func TestDecodeJALR(t *testing.T) {
	code := uint32(0x09) | uint32(8<<21) | uint32(31<<11)
	insn, ok := Decode(code)
	if !ok {
		t.Fatal("decode failed")
	}
	if insn.Op != OpJALR {
		t.Fatalf("op = %v, want OpJALR", insn.Op)
	}
	if insn.OpndValue[0] != RegCPUFirst+31 {
		t.Errorf("rd = %d, want ra", insn.OpndValue[0])
	}
	if insn.OpndValue[1] != RegCPUFirst+8 {
		t.Errorf("rs = %d, want 8", insn.OpndValue[1])
	}
}
