// Package vr4300 decodes VR4300 (MIPS III) machine words into typed
// instructions for the debugger core's breakpoint and step-planner logic.
// It has no notion of execution — only of instruction shape.
package vr4300

// Op identifies a decoded instruction.
type Op int

const (
	OpNone Op = iota

	OpSLL
	OpSRL
	OpSRA
	OpSLLV
	OpSRLV
	OpSRAV
	OpJR
	OpJALR
	OpSYSCALL
	OpBREAK
	OpSYNC
	OpMFHI
	OpMTHI
	OpMFLO
	OpMTLO
	OpDSLLV
	OpDSRLV
	OpDSRAV
	OpMULT
	OpMULTU
	OpDIV
	OpDIVU
	OpDMULT
	OpDMULTU
	OpDDIV
	OpDDIVU
	OpADD
	OpADDU
	OpSUB
	OpSUBU
	OpAND
	OpOR
	OpXOR
	OpNOR
	OpSLT
	OpSLTU
	OpDADD
	OpDADDU
	OpDSUB
	OpDSUBU
	OpTGE
	OpTGEU
	OpTLT
	OpTLTU
	OpTEQ
	OpTNE
	OpDSLL
	OpDSRL
	OpDSRA
	OpDSLL32
	OpDSRL32
	OpDSRA32

	OpBLTZ
	OpBGEZ
	OpBLTZL
	OpBGEZL
	OpTGEI
	OpTGEIU
	OpTLTI
	OpTLTIU
	OpTEQI
	OpTNEI
	OpBLTZAL
	OpBGEZAL
	OpBLTZALL
	OpBGEZALL

	OpTLBR
	OpTLBWI
	OpTLBWR
	OpTLBP
	OpERET
	OpMFC0
	OpMTC0

	OpBC1F
	OpBC1T
	OpBC1FL
	OpBC1TL

	OpADDS
	OpSUBS
	OpMULS
	OpDIVS
	OpSQRTS
	OpABSS
	OpMOVS
	OpNEGS
	OpROUNDLS
	OpTRUNCLS
	OpCEILLS
	OpFLOORLS
	OpROUNDWS
	OpTRUNCWS
	OpCEILWS
	OpFLOORWS
	OpCVTDS
	OpCVTWS
	OpCVTLS
	OpCFS
	OpCUNS
	OpCEQS
	OpCUEQS
	OpCOLTS
	OpCULTS
	OpCOLES
	OpCULES
	OpCSFS
	OpCNGLES
	OpCSEQS
	OpCNGLS
	OpCLTS
	OpCNGES
	OpCLES
	OpCNGTS

	OpADDD
	OpSUBD
	OpMULD
	OpDIVD
	OpSQRTD
	OpABSD
	OpMOVD
	OpNEGD
	OpROUNDLD
	OpTRUNCLD
	OpCEILLD
	OpFLOORLD
	OpROUNDWD
	OpTRUNCWD
	OpCEILWD
	OpFLOORWD
	OpCVTSD
	OpCVTWD
	OpCVTLD
	OpCFD
	OpCUND
	OpCEQD
	OpCUEQD
	OpCOLTD
	OpCULTD
	OpCOLED
	OpCULED
	OpCSFD
	OpCNGLED
	OpCSEQD
	OpCNGLD
	OpCLTD
	OpCNGED
	OpCLED
	OpCNGTD

	OpCVTSW
	OpCVTDW
	OpCVTSL
	OpCVTDL

	OpMFC1
	OpDMFC1
	OpCFC1
	OpMTC1
	OpDMTC1
	OpCTC1

	OpJ
	OpJAL
	OpBEQ
	OpBNE
	OpBLEZ
	OpBGTZ
	OpADDI
	OpADDIU
	OpSLTI
	OpSLTIU
	OpANDI
	OpORI
	OpXORI
	OpLUI
	OpBEQL
	OpBNEL
	OpBLEZL
	OpBGTZL
	OpDADDI
	OpDADDIU
	OpLDL
	OpLDR
	OpLB
	OpLH
	OpLWL
	OpLW
	OpLBU
	OpLHU
	OpLWR
	OpLWU
	OpSB
	OpSH
	OpSWL
	OpSW
	OpSDL
	OpSDR
	OpSWR
	OpCACHE
	OpLL
	OpLWC1
	OpLLD
	OpLDC1
	OpLD
	OpSC
	OpSWC1
	OpSCD
	OpSDC1
	OpSD
)

// OperandKind classifies a decoded operand slot.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandCPU              // value is a register number in [RegCPUFirst, RegCPUFirst+31]
	OperandCP1              // value is a register number in [RegCP1First, RegCP1First+31]
	OperandCP0              // value is a register number in [RegCP0First, RegCP0First+31]
	OperandFCR              // value is a register number in [RegFCRFirst, RegFCRFirst+31]
	OperandImmediate        // value is a sign- or zero-extended constant, per instruction
	OperandBranch           // value is a PC-relative offset, already multiplied by four
	OperandOffset           // value is a sign-extended base-register offset
	OperandJump             // value is the low 28 bits of an absolute jump target
	OperandCache            // value is a cache op code (not a register)
)

// Register number spaces. Each operand's Value is offset from the
// appropriate *First constant so a single int can name any register bank.
const (
	RegCPUFirst = 0
	RegCP1First = 32
	RegCP0First = 64
	RegFCRFirst = 96
)

// Insn is a decoded instruction: an opcode plus up to three typed operands.
type Insn struct {
	Op        Op
	OpndKind  [3]OperandKind
	OpndValue [3]int32
}
