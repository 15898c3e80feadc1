package video

import "github.com/valerio/go-cdi/cdi/bit"

// Display command register bits.
const (
	DCRDisplayEnable    uint16 = 0x8000
	DCRCrystalFrequency uint16 = 0x4000
	DCRFrameDuration    uint16 = 0x2000
	DCRScanMode         uint16 = 0x1000
	DCRColorMode        uint16 = 0x0800
	DCRICAEnable        uint16 = 0x0200
	DCRDCAEnable        uint16 = 0x0100
	DCRAddressHigh      uint16 = 0x003F
)

// Display decoder register fields.
const (
	DDRFileType      uint16 = 0x0300
	DDRFileBitmap    uint16 = 0x0000
	DDRFileBitmapAlt uint16 = 0x0100
	DDRFileRLE       uint16 = 0x0200
	DDRFileMosaic    uint16 = 0x0300
	DDRDisplayParams uint16 = 0x0F00
	DDRAddressHigh   uint16 = 0x003F
)

// Channel 1 status register bits.
const (
	CSR2Interrupt1 uint8 = 0x04
	CSR2Interrupt2 uint8 = 0x02
	CSR2BusError   uint8 = 0x01
)

// CSR1ActiveDisplay is set in the channel 0 status register while the beam
// is in the active display area.
const CSR1ActiveDisplay uint8 = 0x80

// csr1ReadBits are always reported when reading the channel 0 status.
const csr1ReadBits uint8 = 0x20

const (
	clutSize     = 256
	clutBankSize = 64
)

// Channel is the register file of one MCD212 display channel. Channel 0
// drives plane A and channel 1 plane B. Registers that belong to one plane
// only (the "A" and "B" registers, and the shared cursor, backdrop,
// transparency and plane order controls) live in the channel that owns them.
type Channel struct {
	csrr uint8
	csrw uint16
	dcr  uint16
	vsr  uint16
	ddr  uint16
	dcp  uint16

	// dca is where the next DCA pass fetches. It is loaded from DCP at
	// the start of each frame and whenever DCP is set by a command.
	dca uint32

	clut     [clutSize]uint32
	clutBank uint8

	imageCodingMethod   uint32
	transparencyControl uint32
	planeOrder          uint8
	transparentColorA   uint32
	transparentColorB   uint32
	maskColorA          uint32
	maskColorB          uint32
	dyuvAbsStartA       uint32
	dyuvAbsStartB       uint32
	cursorPosition      uint32
	cursorControl       uint32
	cursorPattern       [16]uint16
	regionControl       [8]uint32
	backdropColor       uint32
	mosaicHoldA         uint32
	mosaicHoldB         uint32
	weightFactorA       uint32
	weightFactorB       uint32

	lastUnsupported string
}

// VSR returns the 22-bit video start address: the DCR address field above
// the 16-bit VSR.
func (c *Channel) VSR() uint32 {
	return bit.JoinAddress(c.dcr&DCRAddressHigh, c.vsr)
}

// SetVSR stores a video start address, splitting it between VSR and the
// DCR address field.
func (c *Channel) SetVSR(value uint32) {
	high, low := bit.SplitAddress(value)
	c.vsr = low
	c.dcr = c.dcr&^DCRAddressHigh | high
}

// DCP returns the 22-bit display command pointer: the DDR address field
// above the 16-bit DCP.
func (c *Channel) DCP() uint32 {
	return bit.JoinAddress(c.ddr&DDRAddressHigh, c.dcp)
}

// SetDCP stores a display command pointer, splitting it between DCP and the
// DDR address field.
func (c *Channel) SetDCP(value uint32) {
	high, low := bit.SplitAddress(value)
	c.dcp = low
	c.ddr = c.ddr&^DDRAddressHigh | high
	c.dca = value & addressMask
}

// addressMask bounds a chip address to the 22 bits VSR and DCP can hold.
const addressMask = 0x3FFFFF

// DCACursor returns the address the next DCA pass starts from.
func (c *Channel) DCACursor() uint32 { return c.dca }

func (c *Channel) loadDCACursor() { c.dca = c.DCP() }

// setDisplayParameters loads the DDR display parameter nibble from bits 0-3
// and the DCR color mode from bit 4.
func (c *Channel) setDisplayParameters(value uint8) {
	c.ddr = c.ddr&^DDRDisplayParams | uint16(value&0x0F)<<8
	c.dcr = c.dcr&^DCRColorMode | uint16(value&0x10)<<7
}

func (c *Channel) DCR() uint16     { return c.dcr }
func (c *Channel) DDR() uint16     { return c.ddr }
func (c *Channel) Status() uint8   { return c.csrr }
func (c *Channel) Control() uint16 { return c.csrw }

// SetDCR replaces the display command register, including the VSR high field.
func (c *Channel) SetDCR(v uint16) { c.dcr = v }

// SetDDR replaces the display decoder register, including the DCP high field.
func (c *Channel) SetDDR(v uint16) { c.ddr = v }

// FileType returns the DDR display file type.
func (c *Channel) FileType() uint16 { return c.ddr & DDRFileType }

// ColorMode reports whether the DCR color mode bit is set.
func (c *Channel) ColorMode() bool { return c.dcr&DCRColorMode != 0 }

// CLUT returns color lookup table entry i.
func (c *Channel) CLUT(i int) uint32 { return c.clut[i&(clutSize-1)] }

// SetCLUT stores color lookup table entry i.
func (c *Channel) SetCLUT(i int, color uint32) { c.clut[i&(clutSize-1)] = color }

// CLUTBank returns the bank selected for CLUT register writes.
func (c *Channel) CLUTBank() uint8 { return c.clutBank }

func (c *Channel) CursorControl() uint32        { return c.cursorControl }
func (c *Channel) CursorPattern(row int) uint16 { return c.cursorPattern[row&0xF] }
func (c *Channel) TransparencyControl() uint32  { return c.transparencyControl }
func (c *Channel) PlaneOrder() uint8            { return c.planeOrder }
func (c *Channel) Backdrop() uint32             { return c.backdropColor }
func (c *Channel) RegionControl(n int) uint32   { return c.regionControl[n&7] }
