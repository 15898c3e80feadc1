package memory

import (
	"log/slog"

	"github.com/valerio/go-cdi/cdi/addr"
	"github.com/valerio/go-cdi/cdi/bit"
)

// Device is anything that answers word accesses at byte offsets relative to
// the start of its window.
type Device interface {
	Read16(offset uint32, mask uint16) uint16
	Write16(offset uint32, data, mask uint16)
}

// RegisterPage is a register file accessed with Read/Write, the way the
// MCD212 and the SCC68070 peripheral block expose their registers.
type RegisterPage interface {
	Read(offset uint32, mask uint16) uint16
	Write(offset uint32, data, mask uint16)
}

type memRegion uint8

const (
	regionOpen memRegion = iota
	regionPlaneA
	regionPlaneB
	regionCDIC
	regionSlave
	regionNVRAM
	regionBIOS
	regionVideoPage
	regionSystemRAM
)

// Bus decodes CPU addresses to the devices of the CD-i memory map. The
// 24-bit external space is decoded through a 64 KiB granularity region map;
// the SCC68070 on-chip page at 0x80000000 is checked separately.
type Bus struct {
	PlaneA    *RAM
	PlaneB    *RAM
	BIOS      *ROM
	SystemRAM *RAM
	CDIC      *CDIC
	Slave     *Slave
	NVRAM     *M48T08

	video      Device
	peripheral Device
	regionMap  [256]memRegion
}

// NewBus creates the memory map with freshly allocated memories, routing
// the MCD212 register page to video and the on-chip page to peripheral.
// A nil page reads as zero and drops writes.
func NewBus(video, peripheral RegisterPage) *Bus {
	b := &Bus{
		PlaneA:     NewRAM(addr.PlaneSize),
		PlaneB:     NewRAM(addr.PlaneSize),
		BIOS:       NewROM(addr.BIOSSize),
		SystemRAM:  NewRAM(addr.SystemRAMSize),
		CDIC:       NewCDIC(),
		Slave:      NewSlave(),
		NVRAM:      NewM48T08(),
		video:      registerDevice{video},
		peripheral: registerDevice{peripheral},
	}
	initRegionMap(b)
	return b
}

func initRegionMap(b *Bus) {
	fill := func(start, end uint32, r memRegion) {
		for i := start >> 16; i <= end>>16; i++ {
			b.regionMap[i] = r
		}
	}
	fill(addr.PlaneAStart, addr.PlaneAEnd, regionPlaneA)
	fill(addr.PlaneBStart, addr.PlaneBEnd, regionPlaneB)
	fill(addr.CDICStart, addr.CDICEnd, regionCDIC)
	fill(addr.SlaveStart, addr.SlaveEnd, regionSlave)
	fill(addr.NVRAMStart, addr.NVRAMEnd, regionNVRAM)
	fill(addr.BIOSStart, addr.BIOSEnd, regionBIOS)
	fill(addr.MCD212Start, addr.MCD212End, regionVideoPage)
	fill(addr.SystemRAMStart, addr.SystemRAMEnd, regionSystemRAM)
}

// AttachVideo routes the MCD212 register page to video. The video decoder
// is built over the bus planes, so it is attached after NewBus.
func (b *Bus) AttachVideo(video RegisterPage) {
	b.video = registerDevice{video}
}

// Plane returns the display memory of channel ch (0 = A, 1 = B).
func (b *Bus) Plane(ch int) *RAM {
	if ch == 0 {
		return b.PlaneA
	}
	return b.PlaneB
}

// Reset clears volatile memory and copies the BIOS reset vectors (initial
// stack pointer and program counter) to the bottom of plane A.
func (b *Bus) Reset() {
	b.PlaneA.Clear()
	b.PlaneB.Clear()
	b.SystemRAM.Clear()
	b.Slave.Reset()
	copy(b.PlaneA.Bytes()[:8], b.BIOS.Bytes()[:8])
}

// Read16 reads the word at address. Bytes outside mask are undefined.
func (b *Bus) Read16(address uint32, mask uint16) uint16 {
	address &^= 1
	if address >= addr.PeripheralStart && address <= addr.PeripheralEnd {
		return b.peripheral.Read16(address-addr.PeripheralStart, mask)
	}
	if address > 0xFFFFFF {
		slog.Debug("Open bus read", "addr", hex32(address), "mask", hex16(mask))
		return 0
	}

	dev, base := b.decode(address)
	if dev == nil {
		slog.Debug("Open bus read", "addr", hex32(address), "mask", hex16(mask))
		return 0
	}
	return dev.Read16(address-base, mask)
}

// Write16 writes the lanes of data selected by mask to address.
func (b *Bus) Write16(address uint32, data, mask uint16) {
	address &^= 1
	if address >= addr.PeripheralStart && address <= addr.PeripheralEnd {
		b.peripheral.Write16(address-addr.PeripheralStart, data, mask)
		return
	}
	if address > 0xFFFFFF {
		slog.Debug("Open bus write", "addr", hex32(address), "data", hex16(data), "mask", hex16(mask))
		return
	}

	dev, base := b.decode(address)
	if dev == nil {
		slog.Debug("Open bus write", "addr", hex32(address), "data", hex16(data), "mask", hex16(mask))
		return
	}
	dev.Write16(address-base, data, mask)
}

// Read8 reads the byte at address.
func (b *Bus) Read8(address uint32) uint8 {
	if address&1 == 0 {
		return bit.High(b.Read16(address, bit.HighLane))
	}
	return bit.Low(b.Read16(address, bit.LowLane))
}

// Write8 writes one byte at address.
func (b *Bus) Write8(address uint32, value uint8) {
	if address&1 == 0 {
		b.Write16(address, uint16(value)<<8, bit.HighLane)
		return
	}
	b.Write16(address, uint16(value), bit.LowLane)
}

// Read32 reads a big-endian long word as two word accesses.
func (b *Bus) Read32(address uint32) uint32 {
	return uint32(b.Read16(address, bit.AllLanes))<<16 | uint32(b.Read16(address+2, bit.AllLanes))
}

// Write32 writes a big-endian long word as two word accesses.
func (b *Bus) Write32(address, value uint32) {
	b.Write16(address, uint16(value>>16), bit.AllLanes)
	b.Write16(address+2, uint16(value), bit.AllLanes)
}

// registerDevice adapts a RegisterPage to Device.
type registerDevice struct {
	page RegisterPage
}

func (r registerDevice) Read16(offset uint32, mask uint16) uint16 {
	if r.page == nil {
		return 0
	}
	return r.page.Read(offset, mask)
}

func (r registerDevice) Write16(offset uint32, data, mask uint16) {
	if r.page != nil {
		r.page.Write(offset, data, mask)
	}
}

// decode maps a 24-bit address to its device and the device's base address.
func (b *Bus) decode(address uint32) (Device, uint32) {
	switch b.regionMap[address>>16] {
	case regionPlaneA:
		return b.PlaneA, addr.PlaneAStart
	case regionPlaneB:
		return b.PlaneB, addr.PlaneBStart
	case regionCDIC:
		if address <= addr.CDICEnd {
			return b.CDIC, addr.CDICStart
		}
	case regionSlave:
		if address <= addr.SlaveEnd {
			return b.Slave, addr.SlaveStart
		}
	case regionNVRAM:
		if address <= addr.NVRAMEnd {
			return b.NVRAM, addr.NVRAMStart
		}
	case regionBIOS:
		return b.BIOS, addr.BIOSStart
	case regionVideoPage:
		if address >= addr.MCD212Start {
			return b.video, addr.MCD212Start
		}
	case regionSystemRAM:
		return b.SystemRAM, addr.SystemRAMStart
	}
	return nil, 0
}
