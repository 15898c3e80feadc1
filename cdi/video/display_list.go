package video

import "fmt"

// listMode selects the command area being processed. A few opcodes behave
// differently in each.
type listMode uint8

const (
	modeICA listMode = iota
	modeDCA
)

func (l listMode) String() string {
	if l == modeICA {
		return "ICA"
	}
	return "DCA"
}

// Interrupt vector bases, added to the level selected in LIR.
const (
	icaVectorBase = 56
	dcaVectorBase = 24
)

// DCA command caps per line.
const (
	dcaCommands          = 32
	dcaCommandsColorMode = 64
)

// processICA runs channel ch's initial command area from its fixed start
// until a STOP, and returns the number of commands executed.
func (m *MCD212) processICA(ch int) int {
	plane := m.planes[ch]
	address := uint32(icaStart)
	count := 0

	for count < m.opts.MaxICACommands {
		cmd := Command(plane.Long(address))
		address += 4
		count++

		m.logger.Debug("ICA command", "channel", ch, "addr", hex32(address-4), "cmd", cmd.String())

		// In the ICA, RELOAD VSR reloads the command pointer instead.
		if cmd.Op() == OpReloadVSR {
			address = cmd.Address()
			continue
		}
		if m.execute(ch, modeICA, cmd) {
			return count
		}
	}

	m.logger.Warn("ICA did not stop", "channel", ch, "commands", count)
	return count
}

// processDCA runs channel ch's display command area for one line, starting
// at the DCA cursor. It stops at a STOP or after the per-line cap, leaving
// the cursor at the next unread command unless a command reloaded DCP, and
// returns the number of commands executed. The DCP register itself only
// changes through RELOAD DCP commands and CPU writes.
func (m *MCD212) processDCA(ch int) int {
	c := &m.channels[ch]
	plane := m.planes[ch]
	address := c.DCACursor()
	limit := dcaCommands
	if c.ColorMode() {
		limit = dcaCommandsColorMode
	}

	count := 0
	reloaded := false
	for count < limit {
		cmd := Command(plane.Long(address))
		address += 4
		count++

		m.logger.Debug("DCA command", "channel", ch, "addr", hex32(address-4), "cmd", cmd.String())

		if cmd.Op() == OpReloadDCPStop {
			reloaded = true
		}
		if m.execute(ch, modeDCA, cmd) {
			break
		}
	}

	if !reloaded {
		c.dca = address & addressMask
	}
	return count
}

// execute performs one command and reports whether the list stops.
func (m *MCD212) execute(ch int, mode listMode, cmd Command) bool {
	c := &m.channels[ch]

	switch cmd.Op() {
	case OpStop:
		return true

	case OpNop:
		return false

	case OpReloadDCP:
		if mode == modeDCA {
			m.logger.Debug("RELOAD DCP ignored in DCA", "channel", ch)
			return false
		}
		c.SetDCP(cmd.Address())
		return false

	case OpReloadDCPStop:
		c.SetDCP(cmd.Address())
		return true

	case OpReloadVSR:
		c.SetVSR(cmd.Address())
		return false

	case OpReloadVSRStop:
		c.SetVSR(cmd.Address())
		return true

	case OpInterrupt:
		m.interrupt(ch, mode)
		return false

	case OpReloadDisplayParams:
		c.setDisplayParameters(uint8(cmd.Operand() & 0x1F))
		return false

	case OpRegisterSet:
		m.setRegister(ch, cmd.Opcode(), cmd.Operand())
		return false
	}

	return false
}

// interrupt flags IT1 for channel 0 and IT2 for channel 1 in the channel 1
// status register, then raises the CPU lines LIR assigns to every flag
// currently set.
func (m *MCD212) interrupt(ch int, mode listMode) {
	status := &m.channels[1].csrr
	*status |= 1 << (2 - ch)

	base := icaVectorBase
	if mode == modeDCA {
		base = dcaVectorBase
	}

	lir := m.lirValue()
	if *status&CSR2Interrupt1 != 0 {
		if level := int(lir>>4) & 7; level != 0 {
			m.logger.Debug("Interrupt 1", "mode", mode.String(), "level", level)
			m.lines.Assert(level, uint8(base+level))
		}
	}
	if *status&CSR2Interrupt2 != 0 {
		if level := int(lir) & 7; level != 0 {
			m.logger.Debug("Interrupt 2", "mode", mode.String(), "level", level)
			m.lines.Assert(level, uint8(base+level))
		}
	}
}

// Register-set targets.
const (
	regCLUTFirst           = 0x80
	regCLUTLast            = 0xBF
	regImageCodingMethod   = 0xC0
	regTransparencyControl = 0xC1
	regPlaneOrder          = 0xC2
	regCLUTBank            = 0xC3
	regTransparentColorA   = 0xC4
	regTransparentColorB   = 0xC6
	regMaskColorA          = 0xC7
	regMaskColorB          = 0xC9
	regDYUVAbsStartA       = 0xCA
	regDYUVAbsStartB       = 0xCB
	regCursorPosition      = 0xCD
	regCursorControl       = 0xCE
	regCursorPattern       = 0xCF
	regRegionControlFirst  = 0xD0
	regRegionControlLast   = 0xD7
	regBackdropColor       = 0xD8
	regMosaicHoldA         = 0xD9
	regMosaicHoldB         = 0xDA
	regWeightFactorA       = 0xDB
	regWeightFactorB       = 0xDC
)

// registerOwner maps plane-specific registers to the channel that owns them.
var registerOwner = map[uint8]int{
	regImageCodingMethod:   0,
	regTransparencyControl: 0,
	regPlaneOrder:          0,
	regTransparentColorA:   0,
	regTransparentColorB:   1,
	regMaskColorA:          0,
	regMaskColorB:          1,
	regDYUVAbsStartA:       0,
	regDYUVAbsStartB:       1,
	regCursorPosition:      0,
	regCursorControl:       0,
	regCursorPattern:       0,
	regBackdropColor:       0,
	regMosaicHoldA:         0,
	regMosaicHoldB:         1,
	regWeightFactorA:       0,
	regWeightFactorB:       1,
}

// setRegister applies a REGISTER SET command. CLUT, CLUT bank and region
// control belong to each channel; every other register is owned by one
// channel and ignored when set from the other.
func (m *MCD212) setRegister(ch int, reg uint8, value uint32) {
	c := &m.channels[ch]

	switch {
	case reg >= regCLUTFirst && reg <= regCLUTLast:
		index := int(c.clutBank)*clutBankSize + int(reg-regCLUTFirst)
		c.clut[index] = value
		m.logger.Debug("CLUT write", "channel", ch, "index", index, "value", hex32(value))
		return
	case reg >= regRegionControlFirst && reg <= regRegionControlLast:
		c.regionControl[reg&7] = value
		m.logger.Debug("Region control write", "channel", ch, "region", reg&7, "value", hex32(value))
		return
	case reg == regCLUTBank:
		c.clutBank = uint8(value & 3)
		return
	}

	owner, ok := registerOwner[reg]
	if !ok {
		m.logger.Debug("Unknown register set", "channel", ch, "reg", hex8(reg), "value", hex32(value))
		return
	}
	if owner != ch {
		m.logger.Debug("Register set from non-owning channel ignored",
			"channel", ch, "reg", hex8(reg), "value", hex32(value))
		return
	}

	switch reg {
	case regImageCodingMethod:
		c.imageCodingMethod = value
	case regTransparencyControl:
		c.transparencyControl = value
	case regPlaneOrder:
		c.planeOrder = uint8(value & 7)
	case regTransparentColorA:
		c.transparentColorA = value
	case regTransparentColorB:
		c.transparentColorB = value
	case regMaskColorA:
		c.maskColorA = value
	case regMaskColorB:
		c.maskColorB = value
	case regDYUVAbsStartA:
		c.dyuvAbsStartA = value
	case regDYUVAbsStartB:
		c.dyuvAbsStartB = value
	case regCursorPosition:
		c.cursorPosition = value
	case regCursorControl:
		c.cursorControl = value
	case regCursorPattern:
		c.cursorPattern[(value>>16)&0xF] = uint16(value)
	case regBackdropColor:
		c.backdropColor = value
	case regMosaicHoldA:
		c.mosaicHoldA = value
	case regMosaicHoldB:
		c.mosaicHoldB = value
	case regWeightFactorA:
		c.weightFactorA = value
	case regWeightFactorB:
		c.weightFactorB = value
	}
	m.logger.Debug("Register set", "channel", ch, "reg", hex8(reg), "value", hex32(value))
}

func hex8(v uint8) string   { return fmt.Sprintf("0x%02X", v) }
func hex16(v uint16) string { return fmt.Sprintf("0x%04X", v) }
func hex32(v uint32) string { return fmt.Sprintf("0x%08X", v) }
