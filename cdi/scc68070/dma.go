package scc68070

import "fmt"

// DMA channel status bits.
const (
	CSRComplete      uint8 = 0x80
	CSRNormalDevice  uint8 = 0x20
	CSRError         uint8 = 0x10
	CSRChannelActive uint8 = 0x08
)

// DMA channel error codes.
const (
	CERMask         uint8 = 0x1F
	CERNone         uint8 = 0x00
	CERTiming       uint8 = 0x02
	CERBusErrMemory uint8 = 0x09
	CERBusErrDevice uint8 = 0x0A
	CERSoftAbort    uint8 = 0x11
)

// DMA operation control fields.
const (
	OCRDirection      uint8 = 0x80
	OCRDeviceToMemory uint8 = 0x80
	OCROperandSize    uint8 = 0x30
	OCROperandWord    uint8 = 0x10
)

// DMA channel control fields.
const (
	CCRStart           uint8 = 0x80
	CCRSoftwareAbort   uint8 = 0x10
	CCRInterruptEnable uint8 = 0x08
	CCRInterruptLevel  uint8 = 0x07
)

const addressCounterMask = 0x00FFFFFF

// DMAChannel is one of the two SCC68070 DMA channel register blocks.
// Transfers are not performed; the registers hold what software wrote.
type DMAChannel struct {
	status           uint8
	errorCode        uint8
	deviceControl    uint8
	operationControl uint8
	sequenceControl  uint8
	channelControl   uint8
	transferCounter  uint8

	memoryAddress uint32
	deviceAddress uint32
}

// Complete reports the channel operation complete bit.
func (c *DMAChannel) Complete() bool { return c.status&CSRComplete != 0 }

// NormalDevice reports whether the device signalled normal termination.
func (c *DMAChannel) NormalDevice() bool { return c.status&CSRNormalDevice != 0 }

// Failed reports the status error bit.
func (c *DMAChannel) Failed() bool { return c.status&CSRError != 0 }

// Active reports whether the channel is marked as transferring.
func (c *DMAChannel) Active() bool { return c.status&CSRChannelActive != 0 }

// ErrorCode returns the 5-bit error code register field.
func (c *DMAChannel) ErrorCode() uint8 { return c.errorCode & CERMask }

// DeviceToMemory reports the transfer direction selected in OCR.
func (c *DMAChannel) DeviceToMemory() bool {
	return c.operationControl&OCRDirection == OCRDeviceToMemory
}

// WordOperands reports whether OCR selects 16-bit operands.
func (c *DMAChannel) WordOperands() bool {
	return c.operationControl&OCROperandSize == OCROperandWord
}

// InterruptEnabled reports the CCR interrupt enable bit.
func (c *DMAChannel) InterruptEnabled() bool { return c.channelControl&CCRInterruptEnable != 0 }

// InterruptLevel returns the level CCR assigns to channel interrupts.
func (c *DMAChannel) InterruptLevel() int { return int(c.channelControl & CCRInterruptLevel) }

func errorText(code uint8) string {
	switch code & CERMask {
	case CERNone:
		return "none"
	case CERTiming:
		return "timing"
	case CERBusErrMemory:
		return "memory bus error"
	case CERBusErrDevice:
		return "device bus error"
	case CERSoftAbort:
		return "software abort"
	}
	return fmt.Sprintf("0x%02X", code)
}

// MemoryAddress returns the 24-bit memory address counter.
func (c *DMAChannel) MemoryAddress() uint32 { return c.memoryAddress }

// DeviceAddress returns the 24-bit device address counter.
func (c *DMAChannel) DeviceAddress() uint32 { return c.deviceAddress }

// setHigh replaces the masked bits of the upper word of a 24-bit counter.
func setHigh(counter uint32, data, mask uint16) uint32 {
	high := uint32(data&mask) << 16
	counter = (counter &^ (uint32(mask) << 16)) | high
	return counter & addressCounterMask
}

// setLow replaces the masked bits of the lower word of a 24-bit counter.
func setLow(counter uint32, data, mask uint16) uint32 {
	counter = (counter &^ uint32(mask)) | uint32(data&mask)
	return counter & addressCounterMask
}
