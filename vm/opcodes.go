package vm

// Opcode selectors of the track bytecode. Selectors below 0x80 are implicit
// note-ons keyed by the selector byte itself.
const (
	opWait       = 0x80
	opProgram    = 0x81
	opSplit      = 0x88
	opJump       = 0x89
	opCall       = 0x8A
	opUnknownB0  = 0xB0
	opPan        = 0xC0
	opVolume     = 0xC1
	opMasterVol  = 0xC2
	opTranspose  = 0xC3
	opBend       = 0xC4
	opBendRange  = 0xC5
	opPriority   = 0xC6
	opPolyphony  = 0xC7
	opTie        = 0xC8
	opPortaCtrl  = 0xC9
	opModDepth   = 0xCA
	opModSpeed   = 0xCB
	opModType    = 0xCC
	opModRange   = 0xCD
	opPortamento = 0xCE
	opPortaTime  = 0xCF
	opAttack     = 0xD0
	opDecay      = 0xD1
	opSustain    = 0xD2
	opRelease    = 0xD3
	opLoopStart  = 0xD4
	opExpression = 0xD5
	opPrint      = 0xD6
	opUnknownD8  = 0xD8
	opUnknownD9  = 0xD9
	opUnknownDA  = 0xDA
	opUnknownDB  = 0xDB
	opModDelay   = 0xE0
	opTempo      = 0xE1
	opSweep      = 0xE3
	opLoopEnd    = 0xFC
	opReturn     = 0xFD
	opTrackUsage = 0xFE
	opFine       = 0xFF
)
