package video

import (
	"github.com/valerio/go-cdi/cdi/addr"
	"github.com/valerio/go-cdi/cdi/bit"
)

// registerChannel maps a byte offset in the register page to the channel
// it addresses. The block for channel 1 comes first.
func registerChannel(offset uint32) int {
	return 1 - int((offset>>1)/8)
}

// Read handles CPU reads of the register page at 0x4FFFE0.
func (m *MCD212) Read(offset uint32, mask uint16) uint16 {
	offset &= 0x1E
	ch := registerChannel(offset)
	c := &m.channels[ch]

	switch offset & 0x0F {
	case addr.MCDStatus:
		if !bit.AccessesLow(mask) {
			m.logger.Debug("Status register read on high lane", "channel", ch, "mask", hex16(mask))
			return 0
		}
		if ch == 0 {
			return uint16(c.csrr | csr1ReadBits)
		}
		return uint16(m.readStatus2())
	case addr.MCDDCR:
		m.logger.Debug("DCR read", "channel", ch, "value", hex16(c.dcr))
		return c.dcr
	case addr.MCDVSR:
		m.logger.Debug("VSR read", "channel", ch, "value", hex16(c.vsr))
		return c.vsr
	case addr.MCDDDR:
		m.logger.Debug("DDR read", "channel", ch, "value", hex16(c.ddr))
		return c.ddr
	case addr.MCDDCP:
		m.logger.Debug("DCP read", "channel", ch, "value", hex16(c.dcp))
		return c.dcp
	}

	m.logger.Warn("Unknown MCD212 register read", "channel", ch, "offset", hex32(offset), "mask", hex16(mask))
	return 0
}

// readStatus2 returns channel 1's status and acknowledges both interrupts:
// IT1 and IT2 are cleared and the CPU lines LIR routes them to drop.
func (m *MCD212) readStatus2() uint8 {
	c := &m.channels[1]
	old := c.csrr
	c.csrr &^= CSR2Interrupt1 | CSR2Interrupt2

	lir := m.lirValue()
	if level := int(lir>>4) & 7; level != 0 {
		m.lines.Clear(level)
	}
	if level := int(lir) & 7; level != 0 {
		m.lines.Clear(level)
	}
	return old
}

// Write handles CPU writes to the register page.
func (m *MCD212) Write(offset uint32, data, mask uint16) {
	offset &= 0x1E
	ch := registerChannel(offset)
	c := &m.channels[ch]

	switch offset & 0x0F {
	case addr.MCDStatus:
		c.csrw = bit.CombineData(c.csrw, data, mask)
		m.logger.Debug("Control register write", "channel", ch, "value", hex16(c.csrw))
	case addr.MCDDCR:
		c.dcr = bit.CombineData(c.dcr, data, mask)
		m.logger.Debug("DCR write", "channel", ch, "value", hex16(c.dcr))
	case addr.MCDVSR:
		c.vsr = bit.CombineData(c.vsr, data, mask)
		m.logger.Debug("VSR write", "channel", ch, "value", hex16(c.vsr))
	case addr.MCDDDR:
		c.ddr = bit.CombineData(c.ddr, data, mask)
		m.logger.Debug("DDR write", "channel", ch, "value", hex16(c.ddr))
	case addr.MCDDCP:
		c.dcp = bit.CombineData(c.dcp, data, mask)
		m.logger.Debug("DCP write", "channel", ch, "value", hex16(c.dcp))
	default:
		m.logger.Warn("Unknown MCD212 register write",
			"channel", ch, "offset", hex32(offset), "data", hex16(data), "mask", hex16(mask))
	}
}
