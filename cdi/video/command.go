package video

import "fmt"

// Op is the action a display-list opcode selects. Every opcode byte maps to
// exactly one Op.
type Op uint8

const (
	OpStop Op = iota
	OpNop
	OpReloadDCP
	OpReloadDCPStop
	// OpReloadVSR jumps the command pointer in an ICA and reloads the VSR in a DCA.
	OpReloadVSR
	OpReloadVSRStop
	OpInterrupt
	OpReloadDisplayParams
	OpRegisterSet
)

var opNames = [...]string{
	OpStop:                "STOP",
	OpNop:                 "NOP",
	OpReloadDCP:           "RELOAD DCP",
	OpReloadDCPStop:       "RELOAD DCP and STOP",
	OpReloadVSR:           "RELOAD VSR",
	OpReloadVSRStop:       "RELOAD VSR and STOP",
	OpInterrupt:           "INTERRUPT",
	OpReloadDisplayParams: "RELOAD DISPLAY PARAMETERS",
	OpRegisterSet:         "REGISTER SET",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// opTable maps every opcode byte to its Op.
var opTable = buildOpTable()

func buildOpTable() [256]Op {
	var t [256]Op
	groups := [8]Op{
		0x0: OpStop,
		0x1: OpNop,
		0x2: OpReloadDCP,
		0x3: OpReloadDCPStop,
		0x4: OpReloadVSR,
		0x5: OpReloadVSRStop,
		0x6: OpInterrupt,
		0x7: OpRegisterSet,
	}
	for i := range t {
		switch {
		case i >= 0x80:
			t[i] = OpRegisterSet
		case i >= 0x78:
			t[i] = OpReloadDisplayParams
		default:
			t[i] = groups[i>>4]
		}
	}
	return t
}

// Decode returns the Op for an opcode byte.
func Decode(opcode uint8) Op {
	return opTable[opcode]
}

// Command is a 32-bit display-list word: the opcode in the top byte and a
// 24-bit operand below it.
type Command uint32

func (c Command) Opcode() uint8   { return uint8(c >> 24) }
func (c Command) Operand() uint32 { return uint32(c) & 0x00FFFFFF }
func (c Command) Op() Op          { return Decode(c.Opcode()) }

// Address returns the 21-bit address carried by reload commands.
func (c Command) Address() uint32 { return uint32(c) & 0x001FFFFF }

func (c Command) String() string {
	return fmt.Sprintf("0x%08X %s", uint32(c), c.Op())
}
