package vr4300

// signExtend16 sign-extends the low 16 bits of code.
func signExtend16(code uint32) int32 {
	imm := int32(code & 0xFFFF)
	if imm >= 0x8000 {
		imm = -0x10000 + imm
	}
	return imm
}

type decodeFunc func(op Op, code uint32, insn *Insn) bool

func decodeISO(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandCPU
	insn.OpndKind[1] = OperandBranch
	insn.OpndKind[2] = OperandNone
	insn.OpndValue[0] = RegCPUFirst + int32((code>>21)&0x1F)
	insn.OpndValue[1] = signExtend16(code) * 4
	return true
}

func decodeISI(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandCPU
	insn.OpndKind[1] = OperandImmediate
	insn.OpndKind[2] = OperandNone
	insn.OpndValue[0] = RegCPUFirst + int32((code>>21)&0x1F)
	insn.OpndValue[1] = signExtend16(code)
	return true
}

func decodeIO(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandBranch
	insn.OpndKind[1] = OperandNone
	insn.OpndKind[2] = OperandNone
	insn.OpndValue[0] = signExtend16(code) * 4
	return true
}

func decodeISTO(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandCPU
	insn.OpndKind[1] = OperandCPU
	insn.OpndKind[2] = OperandBranch
	insn.OpndValue[0] = RegCPUFirst + int32((code>>21)&0x1F)
	insn.OpndValue[1] = RegCPUFirst + int32((code>>16)&0x1F)
	insn.OpndValue[2] = signExtend16(code) * 4
	return true
}

func decodeITSI(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandCPU
	insn.OpndKind[1] = OperandCPU
	insn.OpndKind[2] = OperandImmediate
	insn.OpndValue[0] = RegCPUFirst + int32((code>>16)&0x1F)
	insn.OpndValue[1] = RegCPUFirst + int32((code>>21)&0x1F)
	insn.OpndValue[2] = signExtend16(code)
	return true
}

func decodeITI(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandCPU
	insn.OpndKind[1] = OperandImmediate
	insn.OpndKind[2] = OperandNone
	insn.OpndValue[0] = RegCPUFirst + int32((code>>16)&0x1F)
	insn.OpndValue[1] = int32((code >> 0) & 0xFFFF)
	return true
}

func decodeITOB(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandCPU
	insn.OpndKind[1] = OperandOffset
	insn.OpndKind[2] = OperandCPU
	insn.OpndValue[0] = RegCPUFirst + int32((code>>16)&0x1F)
	insn.OpndValue[1] = signExtend16(code)
	insn.OpndValue[2] = RegCPUFirst + int32((code>>21)&0x1F)
	return true
}

func decodeIOOB(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandCache
	insn.OpndKind[1] = OperandOffset
	insn.OpndKind[2] = OperandCPU
	insn.OpndValue[0] = int32((code >> 16) & 0x1F)
	insn.OpndValue[1] = signExtend16(code)
	insn.OpndValue[2] = RegCPUFirst + int32((code>>21)&0x1F)
	return true
}

func decodeIT1OB(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandCP1
	insn.OpndKind[1] = OperandOffset
	insn.OpndKind[2] = OperandCPU
	insn.OpndValue[0] = RegCP1First + int32((code>>16)&0x1F)
	insn.OpndValue[1] = signExtend16(code)
	insn.OpndValue[2] = RegCPUFirst + int32((code>>21)&0x1F)
	return true
}

func decodeJ(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandJump
	insn.OpndKind[1] = OperandNone
	insn.OpndKind[2] = OperandNone
	insn.OpndValue[0] = int32((code & 0x3FFFFFF) << 2)
	return true
}

func decodeRDTA(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandCPU
	insn.OpndKind[1] = OperandCPU
	insn.OpndKind[2] = OperandImmediate
	insn.OpndValue[0] = RegCPUFirst + int32((code>>11)&0x1F)
	insn.OpndValue[1] = RegCPUFirst + int32((code>>16)&0x1F)
	insn.OpndValue[2] = int32((code >> 6) & 0x1F)
	return true
}

func decodeRDTS(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandCPU
	insn.OpndKind[1] = OperandCPU
	insn.OpndKind[2] = OperandCPU
	insn.OpndValue[0] = RegCPUFirst + int32((code>>11)&0x1F)
	insn.OpndValue[1] = RegCPUFirst + int32((code>>16)&0x1F)
	insn.OpndValue[2] = RegCPUFirst + int32((code>>21)&0x1F)
	return true
}

func decodeRS(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandCPU
	insn.OpndKind[1] = OperandNone
	insn.OpndKind[2] = OperandNone
	insn.OpndValue[0] = RegCPUFirst + int32((code>>21)&0x1F)
	return true
}

func decodeRDS(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandCPU
	insn.OpndKind[1] = OperandCPU
	insn.OpndKind[2] = OperandNone
	insn.OpndValue[0] = RegCPUFirst + int32((code>>11)&0x1F)
	insn.OpndValue[1] = RegCPUFirst + int32((code>>21)&0x1F)
	return true
}

func decodeRC(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandImmediate
	insn.OpndKind[1] = OperandNone
	insn.OpndKind[2] = OperandNone
	insn.OpndValue[0] = int32((code >> 6) & 0xFFFFF)
	return true
}

func decodeR(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandNone
	insn.OpndKind[1] = OperandNone
	insn.OpndKind[2] = OperandNone
	return true
}

func decodeRD(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandCPU
	insn.OpndKind[1] = OperandNone
	insn.OpndKind[2] = OperandNone
	insn.OpndValue[0] = RegCPUFirst + int32((code>>11)&0x1F)
	return true
}

func decodeRST(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandCPU
	insn.OpndKind[1] = OperandCPU
	insn.OpndKind[2] = OperandNone
	insn.OpndValue[0] = RegCPUFirst + int32((code>>21)&0x1F)
	insn.OpndValue[1] = RegCPUFirst + int32((code>>16)&0x1F)
	return true
}

func decodeRDST(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandCPU
	insn.OpndKind[1] = OperandCPU
	insn.OpndKind[2] = OperandCPU
	insn.OpndValue[0] = RegCPUFirst + int32((code>>11)&0x1F)
	insn.OpndValue[1] = RegCPUFirst + int32((code>>21)&0x1F)
	insn.OpndValue[2] = RegCPUFirst + int32((code>>16)&0x1F)
	return true
}

func decodeRSTC(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandCPU
	insn.OpndKind[1] = OperandCPU
	insn.OpndKind[2] = OperandImmediate
	insn.OpndValue[0] = RegCPUFirst + int32((code>>21)&0x1F)
	insn.OpndValue[1] = RegCPUFirst + int32((code>>16)&0x1F)
	insn.OpndValue[2] = int32((code >> 6) & 0x3FF)
	return true
}

func decodeRTD0(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandCPU
	insn.OpndKind[1] = OperandCP0
	insn.OpndKind[2] = OperandNone
	insn.OpndValue[0] = RegCPUFirst + int32((code>>16)&0x1F)
	insn.OpndValue[1] = RegCP0First + int32((code>>11)&0x1F)
	return true
}

func decodeRD1S1T1(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandCP1
	insn.OpndKind[1] = OperandCP1
	insn.OpndKind[2] = OperandCP1
	insn.OpndValue[0] = RegCP1First + int32((code>>6)&0x1F)
	insn.OpndValue[1] = RegCP1First + int32((code>>11)&0x1F)
	insn.OpndValue[2] = RegCP1First + int32((code>>16)&0x1F)
	return true
}

func decodeRD1S1(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandCP1
	insn.OpndKind[1] = OperandCP1
	insn.OpndKind[2] = OperandNone
	insn.OpndValue[0] = RegCP1First + int32((code>>6)&0x1F)
	insn.OpndValue[1] = RegCP1First + int32((code>>11)&0x1F)
	return true
}

func decodeRS1T1(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandCP1
	insn.OpndKind[1] = OperandCP1
	insn.OpndKind[2] = OperandNone
	insn.OpndValue[0] = RegCP1First + int32((code>>11)&0x1F)
	insn.OpndValue[1] = RegCP1First + int32((code>>16)&0x1F)
	return true
}

func decodeRTS1(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandCPU
	insn.OpndKind[1] = OperandCP1
	insn.OpndKind[2] = OperandNone
	insn.OpndValue[0] = RegCPUFirst + int32((code>>16)&0x1F)
	insn.OpndValue[1] = RegCP1First + int32((code>>11)&0x1F)
	return true
}

func decodeRTS1C(op Op, code uint32, insn *Insn) bool {
	insn.Op = op
	insn.OpndKind[0] = OperandCPU
	insn.OpndKind[1] = OperandFCR
	insn.OpndKind[2] = OperandNone
	insn.OpndValue[0] = RegCPUFirst + int32((code>>16)&0x1F)
	insn.OpndValue[1] = RegFCRFirst + int32((code>>11)&0x1F)
	return true
}

func decodeSpecial(code uint32, insn *Insn) bool {
	switch (code >> 0) & 0x3F {
	case 0x00:
		return decodeRDTA(OpSLL, code, insn)
	case 0x02:
		return decodeRDTA(OpSRL, code, insn)
	case 0x03:
		return decodeRDTA(OpSRA, code, insn)
	case 0x04:
		return decodeRDTS(OpSLLV, code, insn)
	case 0x06:
		return decodeRDTS(OpSRLV, code, insn)
	case 0x07:
		return decodeRDTS(OpSRAV, code, insn)
	case 0x08:
		return decodeRS(OpJR, code, insn)
	case 0x09:
		return decodeRDS(OpJALR, code, insn)
	case 0x0C:
		return decodeRC(OpSYSCALL, code, insn)
	case 0x0D:
		return decodeRC(OpBREAK, code, insn)
	case 0x0F:
		return decodeR(OpSYNC, code, insn)
	case 0x10:
		return decodeRD(OpMFHI, code, insn)
	case 0x11:
		return decodeRS(OpMTHI, code, insn)
	case 0x12:
		return decodeRD(OpMFLO, code, insn)
	case 0x13:
		return decodeRS(OpMTLO, code, insn)
	case 0x14:
		return decodeRDTS(OpDSLLV, code, insn)
	case 0x16:
		return decodeRDTS(OpDSRLV, code, insn)
	case 0x17:
		return decodeRDTS(OpDSRAV, code, insn)
	case 0x18:
		return decodeRST(OpMULT, code, insn)
	case 0x19:
		return decodeRST(OpMULTU, code, insn)
	case 0x1A:
		return decodeRST(OpDIV, code, insn)
	case 0x1B:
		return decodeRST(OpDIVU, code, insn)
	case 0x1C:
		return decodeRST(OpDMULT, code, insn)
	case 0x1D:
		return decodeRST(OpDMULTU, code, insn)
	case 0x1E:
		return decodeRST(OpDDIV, code, insn)
	case 0x1F:
		return decodeRST(OpDDIVU, code, insn)
	case 0x20:
		return decodeRDST(OpADD, code, insn)
	case 0x21:
		return decodeRDST(OpADDU, code, insn)
	case 0x22:
		return decodeRDST(OpSUB, code, insn)
	case 0x23:
		return decodeRDST(OpSUBU, code, insn)
	case 0x24:
		return decodeRDST(OpAND, code, insn)
	case 0x25:
		return decodeRDST(OpOR, code, insn)
	case 0x26:
		return decodeRDST(OpXOR, code, insn)
	case 0x27:
		return decodeRDST(OpNOR, code, insn)
	case 0x2A:
		return decodeRDST(OpSLT, code, insn)
	case 0x2B:
		return decodeRDST(OpSLTU, code, insn)
	case 0x2C:
		return decodeRDST(OpDADD, code, insn)
	case 0x2D:
		return decodeRDST(OpDADDU, code, insn)
	case 0x2E:
		return decodeRDST(OpDSUB, code, insn)
	case 0x2F:
		return decodeRDST(OpDSUBU, code, insn)
	case 0x30:
		return decodeRSTC(OpTGE, code, insn)
	case 0x31:
		return decodeRSTC(OpTGEU, code, insn)
	case 0x32:
		return decodeRSTC(OpTLT, code, insn)
	case 0x33:
		return decodeRSTC(OpTLTU, code, insn)
	case 0x34:
		return decodeRSTC(OpTEQ, code, insn)
	case 0x36:
		return decodeRSTC(OpTNE, code, insn)
	case 0x38:
		return decodeRDTA(OpDSLL, code, insn)
	case 0x3A:
		return decodeRDTA(OpDSRL, code, insn)
	case 0x3B:
		return decodeRDTA(OpDSRA, code, insn)
	case 0x3C:
		return decodeRDTA(OpDSLL32, code, insn)
	case 0x3E:
		return decodeRDTA(OpDSRL32, code, insn)
	case 0x3F:
		return decodeRDTA(OpDSRA32, code, insn)
	default:
		return false
	}
}

func decodeRegimm(code uint32, insn *Insn) bool {
	switch (code >> 16) & 0x1F {
	case 0x00:
		return decodeISO(OpBLTZ, code, insn)
	case 0x01:
		return decodeISO(OpBGEZ, code, insn)
	case 0x02:
		return decodeISO(OpBLTZL, code, insn)
	case 0x03:
		return decodeISO(OpBGEZL, code, insn)
	case 0x08:
		return decodeISI(OpTGEI, code, insn)
	case 0x09:
		return decodeISI(OpTGEIU, code, insn)
	case 0x0A:
		return decodeISI(OpTLTI, code, insn)
	case 0x0B:
		return decodeISI(OpTLTIU, code, insn)
	case 0x0C:
		return decodeISI(OpTEQI, code, insn)
	case 0x0E:
		return decodeISI(OpTNEI, code, insn)
	case 0x10:
		return decodeISO(OpBLTZAL, code, insn)
	case 0x11:
		return decodeISO(OpBGEZAL, code, insn)
	case 0x12:
		return decodeISO(OpBLTZALL, code, insn)
	case 0x13:
		return decodeISO(OpBGEZALL, code, insn)
	default:
		return false
	}
}

func decodeCop0Co(code uint32, insn *Insn) bool {
	switch (code >> 0) & 0x3F {
	case 0x01:
		return decodeR(OpTLBR, code, insn)
	case 0x02:
		return decodeR(OpTLBWI, code, insn)
	case 0x06:
		return decodeR(OpTLBWR, code, insn)
	case 0x08:
		return decodeR(OpTLBP, code, insn)
	case 0x18:
		return decodeR(OpERET, code, insn)
	default:
		return false
	}
}

func decodeCop0(code uint32, insn *Insn) bool {
	rs := (code >> 21) & 0x1F
	switch rs {
	case 0x00:
		return decodeRTD0(OpMFC0, code, insn)
	case 0x04:
		return decodeRTD0(OpMTC0, code, insn)
	case 0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17,
		0x18, 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E, 0x1F:
		return decodeCop0Co(code, insn)
	default:
		return false
	}
}

func decodeCop1Bc1(code uint32, insn *Insn) bool {
	switch (code >> 16) & 0x1F {
	case 0x00:
		return decodeIO(OpBC1F, code, insn)
	case 0x01:
		return decodeIO(OpBC1T, code, insn)
	case 0x02:
		return decodeIO(OpBC1FL, code, insn)
	case 0x03:
		return decodeIO(OpBC1TL, code, insn)
	default:
		return false
	}
}

func decodeCop1S(code uint32, insn *Insn) bool {
	switch (code >> 0) & 0x3F {
	case 0x00:
		return decodeRD1S1T1(OpADDS, code, insn)
	case 0x01:
		return decodeRD1S1T1(OpSUBS, code, insn)
	case 0x02:
		return decodeRD1S1T1(OpMULS, code, insn)
	case 0x03:
		return decodeRD1S1T1(OpDIVS, code, insn)
	case 0x04:
		return decodeRD1S1(OpSQRTS, code, insn)
	case 0x05:
		return decodeRD1S1(OpABSS, code, insn)
	case 0x06:
		return decodeRD1S1(OpMOVS, code, insn)
	case 0x07:
		return decodeRD1S1(OpNEGS, code, insn)
	case 0x08:
		return decodeRD1S1(OpROUNDLS, code, insn)
	case 0x09:
		return decodeRD1S1(OpTRUNCLS, code, insn)
	case 0x0A:
		return decodeRD1S1(OpCEILLS, code, insn)
	case 0x0B:
		return decodeRD1S1(OpFLOORLS, code, insn)
	case 0x0C:
		return decodeRD1S1(OpROUNDWS, code, insn)
	case 0x0D:
		return decodeRD1S1(OpTRUNCWS, code, insn)
	case 0x0E:
		return decodeRD1S1(OpCEILWS, code, insn)
	case 0x0F:
		return decodeRD1S1(OpFLOORWS, code, insn)
	case 0x21:
		return decodeRD1S1(OpCVTDS, code, insn)
	case 0x24:
		return decodeRD1S1(OpCVTWS, code, insn)
	case 0x25:
		return decodeRD1S1(OpCVTLS, code, insn)
	case 0x30:
		return decodeRS1T1(OpCFS, code, insn)
	case 0x31:
		return decodeRS1T1(OpCUNS, code, insn)
	case 0x32:
		return decodeRS1T1(OpCEQS, code, insn)
	case 0x33:
		return decodeRS1T1(OpCUEQS, code, insn)
	case 0x34:
		return decodeRS1T1(OpCOLTS, code, insn)
	case 0x35:
		return decodeRS1T1(OpCULTS, code, insn)
	case 0x36:
		return decodeRS1T1(OpCOLES, code, insn)
	case 0x37:
		return decodeRS1T1(OpCULES, code, insn)
	case 0x38:
		return decodeRS1T1(OpCSFS, code, insn)
	case 0x39:
		return decodeRS1T1(OpCNGLES, code, insn)
	case 0x3A:
		return decodeRS1T1(OpCSEQS, code, insn)
	case 0x3B:
		return decodeRS1T1(OpCNGLS, code, insn)
	case 0x3C:
		return decodeRS1T1(OpCLTS, code, insn)
	case 0x3D:
		return decodeRS1T1(OpCNGES, code, insn)
	case 0x3E:
		return decodeRS1T1(OpCLES, code, insn)
	case 0x3F:
		return decodeRS1T1(OpCNGTS, code, insn)
	default:
		return false
	}
}

func decodeCop1D(code uint32, insn *Insn) bool {
	switch (code >> 0) & 0x3F {
	case 0x00:
		return decodeRD1S1T1(OpADDD, code, insn)
	case 0x01:
		return decodeRD1S1T1(OpSUBD, code, insn)
	case 0x02:
		return decodeRD1S1T1(OpMULD, code, insn)
	case 0x03:
		return decodeRD1S1T1(OpDIVD, code, insn)
	case 0x04:
		return decodeRD1S1(OpSQRTD, code, insn)
	case 0x05:
		return decodeRD1S1(OpABSD, code, insn)
	case 0x06:
		return decodeRD1S1(OpMOVD, code, insn)
	case 0x07:
		return decodeRD1S1(OpNEGD, code, insn)
	case 0x08:
		return decodeRD1S1(OpROUNDLD, code, insn)
	case 0x09:
		return decodeRD1S1(OpTRUNCLD, code, insn)
	case 0x0A:
		return decodeRD1S1(OpCEILLD, code, insn)
	case 0x0B:
		return decodeRD1S1(OpFLOORLD, code, insn)
	case 0x0C:
		return decodeRD1S1(OpROUNDWD, code, insn)
	case 0x0D:
		return decodeRD1S1(OpTRUNCWD, code, insn)
	case 0x0E:
		return decodeRD1S1(OpCEILWD, code, insn)
	case 0x0F:
		return decodeRD1S1(OpFLOORWD, code, insn)
	case 0x20:
		return decodeRD1S1(OpCVTSD, code, insn)
	case 0x24:
		return decodeRD1S1(OpCVTWD, code, insn)
	case 0x25:
		return decodeRD1S1(OpCVTLD, code, insn)
	case 0x30:
		return decodeRS1T1(OpCFD, code, insn)
	case 0x31:
		return decodeRS1T1(OpCUND, code, insn)
	case 0x32:
		return decodeRS1T1(OpCEQD, code, insn)
	case 0x33:
		return decodeRS1T1(OpCUEQD, code, insn)
	case 0x34:
		return decodeRS1T1(OpCOLTD, code, insn)
	case 0x35:
		return decodeRS1T1(OpCULTD, code, insn)
	case 0x36:
		return decodeRS1T1(OpCOLED, code, insn)
	case 0x37:
		return decodeRS1T1(OpCULED, code, insn)
	case 0x38:
		return decodeRS1T1(OpCSFD, code, insn)
	case 0x39:
		return decodeRS1T1(OpCNGLED, code, insn)
	case 0x3A:
		return decodeRS1T1(OpCSEQD, code, insn)
	case 0x3B:
		return decodeRS1T1(OpCNGLD, code, insn)
	case 0x3C:
		return decodeRS1T1(OpCLTD, code, insn)
	case 0x3D:
		return decodeRS1T1(OpCNGED, code, insn)
	case 0x3E:
		return decodeRS1T1(OpCLED, code, insn)
	case 0x3F:
		return decodeRS1T1(OpCNGTD, code, insn)
	default:
		return false
	}
}

func decodeCop1W(code uint32, insn *Insn) bool {
	switch (code >> 0) & 0x3F {
	case 0x20:
		return decodeRD1S1(OpCVTSW, code, insn)
	case 0x21:
		return decodeRD1S1(OpCVTDW, code, insn)
	default:
		return false
	}
}

func decodeCop1L(code uint32, insn *Insn) bool {
	switch (code >> 0) & 0x3F {
	case 0x20:
		return decodeRD1S1(OpCVTSL, code, insn)
	case 0x21:
		return decodeRD1S1(OpCVTDL, code, insn)
	default:
		return false
	}
}

func decodeCop1(code uint32, insn *Insn) bool {
	switch (code >> 21) & 0x1F {
	case 0x00:
		return decodeRTS1(OpMFC1, code, insn)
	case 0x01:
		return decodeRTS1(OpDMFC1, code, insn)
	case 0x02:
		return decodeRTS1C(OpCFC1, code, insn)
	case 0x04:
		return decodeRTS1(OpMTC1, code, insn)
	case 0x05:
		return decodeRTS1(OpDMTC1, code, insn)
	case 0x06:
		return decodeRTS1C(OpCTC1, code, insn)
	case 0x08:
		return decodeCop1Bc1(code, insn)
	case 0x10:
		return decodeCop1S(code, insn)
	case 0x11:
		return decodeCop1D(code, insn)
	case 0x14:
		return decodeCop1W(code, insn)
	case 0x15:
		return decodeCop1L(code, insn)
	default:
		return false
	}
}

// Decode decodes a 32-bit VR4300 instruction word. It reports false for
// encodings the decoder does not recognize.
func Decode(code uint32) (Insn, bool) {
	var insn Insn
	var ok bool
	switch (code >> 26) & 0x3F {
	case 0x00:
		ok = decodeSpecial(code, &insn)
	case 0x01:
		ok = decodeRegimm(code, &insn)
	case 0x02:
		ok = decodeJ(OpJ, code, &insn)
	case 0x03:
		ok = decodeJ(OpJAL, code, &insn)
	case 0x04:
		ok = decodeISTO(OpBEQ, code, &insn)
	case 0x05:
		ok = decodeISTO(OpBNE, code, &insn)
	case 0x06:
		ok = decodeISO(OpBLEZ, code, &insn)
	case 0x07:
		ok = decodeISO(OpBGTZ, code, &insn)
	case 0x08:
		ok = decodeITSI(OpADDI, code, &insn)
	case 0x09:
		ok = decodeITSI(OpADDIU, code, &insn)
	case 0x0A:
		ok = decodeITSI(OpSLTI, code, &insn)
	case 0x0B:
		ok = decodeITSI(OpSLTIU, code, &insn)
	case 0x0C:
		ok = decodeITSI(OpANDI, code, &insn)
	case 0x0D:
		ok = decodeITSI(OpORI, code, &insn)
	case 0x0E:
		ok = decodeITSI(OpXORI, code, &insn)
	case 0x0F:
		ok = decodeITI(OpLUI, code, &insn)
	case 0x10:
		ok = decodeCop0(code, &insn)
	case 0x11:
		ok = decodeCop1(code, &insn)
	case 0x14:
		ok = decodeISTO(OpBEQL, code, &insn)
	case 0x15:
		ok = decodeISTO(OpBNEL, code, &insn)
	case 0x16:
		ok = decodeISO(OpBLEZL, code, &insn)
	case 0x17:
		ok = decodeISO(OpBGTZL, code, &insn)
	case 0x18:
		ok = decodeITSI(OpDADDI, code, &insn)
	case 0x19:
		ok = decodeITSI(OpDADDIU, code, &insn)
	case 0x1A:
		ok = decodeITOB(OpLDL, code, &insn)
	case 0x1B:
		ok = decodeITOB(OpLDR, code, &insn)
	case 0x20:
		ok = decodeITOB(OpLB, code, &insn)
	case 0x21:
		ok = decodeITOB(OpLH, code, &insn)
	case 0x22:
		ok = decodeITOB(OpLWL, code, &insn)
	case 0x23:
		ok = decodeITOB(OpLW, code, &insn)
	case 0x24:
		ok = decodeITOB(OpLBU, code, &insn)
	case 0x25:
		ok = decodeITOB(OpLHU, code, &insn)
	case 0x26:
		ok = decodeITOB(OpLWR, code, &insn)
	case 0x27:
		ok = decodeITOB(OpLWU, code, &insn)
	case 0x28:
		ok = decodeITOB(OpSB, code, &insn)
	case 0x29:
		ok = decodeITOB(OpSH, code, &insn)
	case 0x2A:
		ok = decodeITOB(OpSWL, code, &insn)
	case 0x2B:
		ok = decodeITOB(OpSW, code, &insn)
	case 0x2C:
		ok = decodeITOB(OpSDL, code, &insn)
	case 0x2D:
		ok = decodeITOB(OpSDR, code, &insn)
	case 0x2E:
		ok = decodeITOB(OpSWR, code, &insn)
	case 0x2F:
		ok = decodeIOOB(OpCACHE, code, &insn)
	case 0x30:
		ok = decodeITOB(OpLL, code, &insn)
	case 0x31:
		ok = decodeIT1OB(OpLWC1, code, &insn)
	case 0x34:
		ok = decodeITOB(OpLLD, code, &insn)
	case 0x35:
		ok = decodeIT1OB(OpLDC1, code, &insn)
	case 0x37:
		ok = decodeITOB(OpLD, code, &insn)
	case 0x38:
		ok = decodeITOB(OpSC, code, &insn)
	case 0x39:
		ok = decodeIT1OB(OpSWC1, code, &insn)
	case 0x3C:
		ok = decodeITOB(OpSCD, code, &insn)
	case 0x3D:
		ok = decodeIT1OB(OpSDC1, code, &insn)
	case 0x3F:
		ok = decodeITOB(OpSD, code, &insn)
	default:
		ok = false
	}
	return insn, ok
}
