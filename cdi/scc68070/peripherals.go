package scc68070

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/valerio/go-cdi/cdi/addr"
	"github.com/valerio/go-cdi/cdi/bit"
	"github.com/valerio/go-cdi/cdi/irq"
	"github.com/valerio/go-cdi/cdi/sched"
	"github.com/valerio/go-cdi/cdi/serial"
)

// DMAChannels is the number of on-chip DMA channels.
const DMAChannels = 2

// Options configures the peripheral block.
type Options struct {
	// ClockHz is the CPU input clock (CLOCK_A).
	ClockHz int64
	// TimerDivider divides ClockHz to produce the timer input clock.
	TimerDivider int64
	// Sink receives bytes written to the UART transmit holding register.
	// Nil disables echo.
	Sink *serial.LogSink
}

// DefaultOptions returns a 30 MHz clock divided by 3, no UART echo.
func DefaultOptions() Options {
	return Options{ClockHz: 30_000_000, TimerDivider: 3}
}

// Peripherals is the SCC68070 on-chip peripheral page. Registers are
// addressed by byte offset within the page and accessed a word at a time
// with a byte-lane mask.
type Peripherals struct {
	lir   uint16
	picr1 uint8
	picr2 uint8

	i2c    I2C
	uart   UART
	timers Timers
	dma    [DMAChannels]DMAChannel
	mmu    MMU

	lines  *irq.Lines
	sink   *serial.LogSink
	logger *slog.Logger
}

// New creates the peripheral block. Timer0 is registered on the scheduler
// and raises interrupts on lines.
func New(s *sched.Scheduler, lines *irq.Lines, opts Options) *Peripherals {
	if opts.ClockHz <= 0 {
		opts.ClockHz = DefaultOptions().ClockHz
	}
	if opts.TimerDivider <= 0 {
		opts.TimerDivider = DefaultOptions().TimerDivider
	}

	p := &Peripherals{
		lines:  lines,
		sink:   opts.Sink,
		logger: slog.Default().With("device", "scc68070"),
	}
	p.timers.tick = time.Duration(opts.TimerDivider) * time.Second / time.Duration(opts.ClockHz)
	p.timers.timer = s.NewTimer("timer0", p.timer0Overflow)
	return p
}

// Reset returns every register to zero and stops timer0.
func (p *Peripherals) Reset() {
	p.lir = 0
	p.picr1 = 0
	p.picr2 = 0
	p.i2c = I2C{}
	p.uart = UART{}
	p.timers.reset()
	p.dma = [DMAChannels]DMAChannel{}
	p.mmu = MMU{}
}

// LIR returns the latched interrupt register. Bits 4-6 select the level for
// MCD212 IT1 and bits 0-2 the level for IT2.
func (p *Peripherals) LIR() uint16 { return p.lir }

// PICR1 returns peripheral interrupt control register 1.
func (p *Peripherals) PICR1() uint8 { return p.picr1 }

// PICR2 returns peripheral interrupt control register 2.
func (p *Peripherals) PICR2() uint8 { return p.picr2 }

// Timers exposes the timer block for inspection.
func (p *Peripherals) Timers() *Timers { return &p.timers }

// DMA exposes DMA channel n for inspection.
func (p *Peripherals) DMA(n int) *DMAChannel { return &p.dma[n&1] }

// MMU exposes the MMU registers for inspection.
func (p *Peripherals) MMU() *MMU { return &p.mmu }

// Read returns the register word at offset. Bytes outside mask are undefined
// to the caller and may hold any value.
func (p *Peripherals) Read(offset uint32, mask uint16) uint16 {
	switch {
	case offset == addr.LIR:
		p.logger.Debug("LIR read", "value", hex16(p.lir), "mask", hex16(mask))
		return p.lir

	case offset >= addr.I2CData && offset <= addr.I2CClockControl:
		return p.readI2C(offset, mask)

	case offset >= addr.UARTMode && offset <= addr.UARTReceiveHold:
		return p.readUART(offset, mask)

	case offset >= addr.TimerControl && offset <= addr.Timer2:
		return p.readTimer(offset, mask)

	case offset == addr.PICR1:
		return uint16(p.picr1)
	case offset == addr.PICR2:
		return uint16(p.picr2)

	case offset >= addr.DMAStatus && offset <= addr.DMAEnd:
		return p.readDMA(offset, mask)

	case offset == addr.MMUStatusControl:
		return bit.Combine(p.mmu.status, p.mmu.control)
	case offset >= addr.MMUDescriptors && offset <= addr.MMUDescriptorEnd:
		return p.readDescriptor(offset)
	}

	p.logger.Warn("Unknown peripheral register read", "offset", hex32(offset), "mask", hex16(mask))
	return 0
}

// Write stores data into the register at offset, touching only the byte
// lanes selected by mask.
func (p *Peripherals) Write(offset uint32, data, mask uint16) {
	switch {
	case offset == addr.LIR:
		p.lir = bit.CombineData(p.lir, data, mask)
		p.logger.Debug("LIR write", "value", hex16(p.lir), "mask", hex16(mask))

	case offset >= addr.I2CData && offset <= addr.I2CClockControl:
		p.writeI2C(offset, data, mask)

	case offset >= addr.UARTMode && offset <= addr.UARTReceiveHold:
		p.writeUART(offset, data, mask)

	case offset >= addr.TimerControl && offset <= addr.Timer2:
		p.writeTimer(offset, data, mask)

	case offset == addr.PICR1:
		if bit.AccessesLow(mask) {
			p.picr1 = uint8(data)
			p.logger.Debug("PICR1 write", "value", hex8(p.picr1))
		}
	case offset == addr.PICR2:
		if bit.AccessesLow(mask) {
			p.picr2 = uint8(data)
			p.logger.Debug("PICR2 write", "value", hex8(p.picr2))
		}

	case offset >= addr.DMAStatus && offset <= addr.DMAEnd:
		p.writeDMA(offset, data, mask)

	case offset == addr.MMUStatusControl:
		if bit.AccessesLow(mask) {
			p.mmu.control = uint8(data)
		}
		if bit.AccessesHigh(mask) {
			p.logger.Debug("MMU status is read only", "value", hex16(data))
		}
	case offset >= addr.MMUDescriptors && offset <= addr.MMUDescriptorEnd:
		p.writeDescriptor(offset, data, mask)

	default:
		p.logger.Warn("Unknown peripheral register write",
			"offset", hex32(offset), "data", hex16(data), "mask", hex16(mask))
	}
}

func (p *Peripherals) readI2C(offset uint32, mask uint16) uint16 {
	var v uint8
	switch offset {
	case addr.I2CData:
		v = p.i2c.data
	case addr.I2CAddress:
		v = p.i2c.address
	case addr.I2CStatus:
		v = p.i2c.status
	case addr.I2CControl:
		v = p.i2c.control
	case addr.I2CClockControl:
		v = p.i2c.clockControl
	default:
		p.logger.Warn("Unknown I2C register read", "offset", hex32(offset), "mask", hex16(mask))
		return 0
	}
	return uint16(v)
}

func (p *Peripherals) writeI2C(offset uint32, data, mask uint16) {
	if !bit.AccessesLow(mask) {
		p.logger.Debug("I2C write ignored on high lane", "offset", hex32(offset), "data", hex16(data))
		return
	}
	v := uint8(data)
	switch offset {
	case addr.I2CData:
		p.i2c.data = v
	case addr.I2CAddress:
		p.i2c.address = v
	case addr.I2CStatus:
		p.i2c.status = v
	case addr.I2CControl:
		p.i2c.control = v
	case addr.I2CClockControl:
		p.i2c.clockControl = v
	default:
		p.logger.Warn("Unknown I2C register write", "offset", hex32(offset), "data", hex16(data))
	}
}

func (p *Peripherals) readUART(offset uint32, mask uint16) uint16 {
	var v uint8
	switch offset {
	case addr.UARTMode:
		v = p.uart.mode
	case addr.UARTStatus:
		v = p.uart.readStatus()
	case addr.UARTClockSelect:
		v = p.uart.clockSelect
	case addr.UARTCommand:
		v = p.uart.command
	case addr.UARTTransmitHold:
		v = p.uart.transmitHold
	case addr.UARTReceiveHold:
		v = p.uart.receiveHold
	default:
		p.logger.Warn("Unknown UART register read", "offset", hex32(offset), "mask", hex16(mask))
		return 0
	}
	return uint16(v)
}

func (p *Peripherals) writeUART(offset uint32, data, mask uint16) {
	if !bit.AccessesLow(mask) {
		p.logger.Debug("UART write ignored on high lane", "offset", hex32(offset), "data", hex16(data))
		return
	}
	v := uint8(data)
	switch offset {
	case addr.UARTMode:
		p.uart.mode = v
	case addr.UARTStatus:
		p.uart.status = v
	case addr.UARTClockSelect:
		p.uart.clockSelect = v
	case addr.UARTCommand:
		p.uart.command = v
	case addr.UARTTransmitHold:
		p.uart.transmitHold = v
		// The sink needs control bytes to break lines.
		if p.sink != nil {
			p.sink.Transmit(v)
		}
	case addr.UARTReceiveHold:
		p.uart.receiveHold = v
	default:
		p.logger.Warn("Unknown UART register write", "offset", hex32(offset), "data", hex16(data))
	}
}

func (p *Peripherals) readTimer(offset uint32, mask uint16) uint16 {
	t := &p.timers
	switch offset {
	case addr.TimerControl:
		return bit.Combine(t.status, t.control)
	case addr.TimerReload:
		return t.reload
	case addr.Timer0:
		return t.timer0
	case addr.Timer1:
		return t.timer1
	case addr.Timer2:
		return t.timer2
	}
	p.logger.Warn("Unknown timer register read", "offset", hex32(offset), "mask", hex16(mask))
	return 0
}

func (p *Peripherals) writeTimer(offset uint32, data, mask uint16) {
	t := &p.timers
	switch offset {
	case addr.TimerControl:
		if bit.AccessesLow(mask) {
			t.control = uint8(data)
		}
		if bit.AccessesHigh(mask) {
			p.clearTimerStatus(bit.High(data))
		}
	case addr.TimerReload:
		t.reload = bit.CombineData(t.reload, data, mask)
	case addr.Timer0:
		t.timer0 = bit.CombineData(t.timer0, data, mask)
		p.armTimer0()
	case addr.Timer1:
		t.timer1 = bit.CombineData(t.timer1, data, mask)
	case addr.Timer2:
		t.timer2 = bit.CombineData(t.timer2, data, mask)
	default:
		p.logger.Warn("Unknown timer register write", "offset", hex32(offset), "data", hex16(data))
	}
}

// dmaChannel splits a DMA offset into the channel index and the offset
// within the channel's register block.
func dmaChannel(offset uint32) (int, uint32) {
	rel := offset - addr.DMAStatus
	return int(rel / addr.DMAStride), addr.DMAStatus + rel%addr.DMAStride
}

func (p *Peripherals) readDMA(offset uint32, mask uint16) uint16 {
	n, reg := dmaChannel(offset)
	c := &p.dma[n]
	switch reg {
	case addr.DMAStatus:
		return bit.Combine(c.status, c.errorCode)
	case addr.DMAControl:
		return bit.Combine(c.deviceControl, c.operationControl)
	case addr.DMASequence:
		return bit.Combine(c.sequenceControl, c.channelControl)
	case addr.DMATransferCounter:
		return uint16(c.transferCounter)
	case addr.DMAMemoryAddressHigh:
		return uint16(c.memoryAddress >> 16)
	case addr.DMAMemoryAddressLow:
		return uint16(c.memoryAddress)
	case addr.DMADeviceAddressHigh:
		return uint16(c.deviceAddress >> 16)
	case addr.DMADeviceAddressLow:
		return uint16(c.deviceAddress)
	}
	p.logger.Warn("Unknown DMA register read", "channel", n, "offset", hex32(offset), "mask", hex16(mask))
	return 0
}

func (p *Peripherals) writeDMA(offset uint32, data, mask uint16) {
	n, reg := dmaChannel(offset)
	c := &p.dma[n]
	switch reg {
	case addr.DMAStatus:
		if bit.AccessesHigh(mask) {
			c.status = bit.High(data)
		}
		if bit.AccessesLow(mask) {
			c.errorCode = bit.Low(data)
		}
	case addr.DMAControl:
		if bit.AccessesHigh(mask) {
			c.deviceControl = bit.High(data)
		}
		if bit.AccessesLow(mask) {
			c.operationControl = bit.Low(data)
		}
	case addr.DMASequence:
		if bit.AccessesHigh(mask) {
			c.sequenceControl = bit.High(data)
		}
		if bit.AccessesLow(mask) {
			c.channelControl = bit.Low(data)
			p.logChannelControl(n, c)
		}
	case addr.DMATransferCounter:
		if bit.AccessesLow(mask) {
			c.transferCounter = bit.Low(data)
		}
		if bit.AccessesHigh(mask) {
			p.logger.Debug("DMA transfer counter high byte write ignored", "channel", n, "data", hex16(data))
		}
	case addr.DMAMemoryAddressHigh:
		c.memoryAddress = setHigh(c.memoryAddress, data, mask)
	case addr.DMAMemoryAddressLow:
		c.memoryAddress = setLow(c.memoryAddress, data, mask)
	case addr.DMADeviceAddressHigh:
		c.deviceAddress = setHigh(c.deviceAddress, data, mask)
	case addr.DMADeviceAddressLow:
		c.deviceAddress = setLow(c.deviceAddress, data, mask)
	default:
		p.logger.Warn("Unknown DMA register write", "channel", n, "offset", hex32(offset), "data", hex16(data))
	}
}

// logChannelControl reports start and abort requests, which are not acted on.
func (p *Peripherals) logChannelControl(n int, c *DMAChannel) {
	switch {
	case c.channelControl&CCRSoftwareAbort != 0:
		p.logger.Debug("DMA software abort ignored", "channel", n, "active", c.Active())
	case c.channelControl&CCRStart != 0:
		p.logger.Debug("DMA start ignored",
			"channel", n,
			"deviceToMemory", c.DeviceToMemory(),
			"word", c.WordOperands(),
			"count", c.transferCounter,
			"memory", hex32(c.memoryAddress),
			"device", hex32(c.deviceAddress),
			"interrupt", c.InterruptEnabled(),
			"level", c.InterruptLevel(),
			"lastError", errorText(c.errorCode))
	}
}

func descriptorIndex(offset uint32) (int, uint32) {
	rel := offset - addr.MMUDescriptors
	return int(rel / addr.MMUDescriptorLen), rel % addr.MMUDescriptorLen
}

func (p *Peripherals) readDescriptor(offset uint32) uint16 {
	n, field := descriptorIndex(offset)
	d := &p.mmu.desc[n]
	switch field {
	case 0:
		return d.Attributes
	case 2:
		return d.Length
	case 4:
		return uint16(d.Segment)
	case 6:
		return d.Base
	}
	p.logger.Warn("Unaligned MMU descriptor read", "offset", hex32(offset))
	return 0
}

func (p *Peripherals) writeDescriptor(offset uint32, data, mask uint16) {
	n, field := descriptorIndex(offset)
	d := &p.mmu.desc[n]
	switch field {
	case 0:
		d.Attributes = bit.CombineData(d.Attributes, data, mask)
	case 2:
		d.Length = bit.CombineData(d.Length, data, mask)
	case 4:
		if bit.AccessesLow(mask) {
			d.Segment = bit.Low(data)
		}
	case 6:
		d.Base = bit.CombineData(d.Base, data, mask)
	default:
		p.logger.Warn("Unaligned MMU descriptor write", "offset", hex32(offset), "data", hex16(data))
	}
}

func hex8(v uint8) string   { return fmt.Sprintf("0x%02X", v) }
func hex16(v uint16) string { return fmt.Sprintf("0x%04X", v) }
func hex32(v uint32) string { return fmt.Sprintf("0x%08X", v) }
