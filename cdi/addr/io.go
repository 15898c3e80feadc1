package addr

// SCC68070 on-chip peripheral registers, as byte offsets into the peripheral page.
const (
	// LIR is the latched interrupt priority register for the two MCD212 interrupt sources.
	LIR uint32 = 0x1000

	// I2C interface
	I2CData         uint32 = 0x2000
	I2CAddress      uint32 = 0x2002
	I2CStatus       uint32 = 0x2004
	I2CControl      uint32 = 0x2006
	I2CClockControl uint32 = 0x2008

	// UART interface
	UARTMode         uint32 = 0x2010
	UARTStatus       uint32 = 0x2012
	UARTClockSelect  uint32 = 0x2014
	UARTCommand      uint32 = 0x2016
	UARTTransmitHold uint32 = 0x2018
	UARTReceiveHold  uint32 = 0x201A

	// Timers. The status register is the high byte of TimerControl.
	TimerControl uint32 = 0x2020
	TimerReload  uint32 = 0x2022
	Timer0       uint32 = 0x2024
	Timer1       uint32 = 0x2026
	Timer2       uint32 = 0x2028

	// Peripheral interrupt control registers.
	PICR1 uint32 = 0x2044
	PICR2 uint32 = 0x2046

	// DMA channel 0 block; channel 1 lives DMAStride bytes higher.
	DMAStatus            uint32 = 0x4000
	DMAControl           uint32 = 0x4004
	DMASequence          uint32 = 0x4006
	DMATransferCounter   uint32 = 0x400A
	DMAMemoryAddressHigh uint32 = 0x400C
	DMAMemoryAddressLow  uint32 = 0x400E
	DMADeviceAddressHigh uint32 = 0x4014
	DMADeviceAddressLow  uint32 = 0x4016
	DMAStride            uint32 = 0x40
	DMAEnd               uint32 = 0x407F

	// MMU status (high byte) / control (low byte), followed by 8 segment descriptors.
	MMUStatusControl uint32 = 0x8000
	MMUDescriptors   uint32 = 0x8040
	MMUDescriptorEnd uint32 = 0x807F
	MMUDescriptorLen uint32 = 8
)

// MCD212 register offsets within a channel block. The page holds two blocks
// of 0x10 bytes; the block at 0x00 belongs to channel 1 and the block at 0x10
// to channel 0.
const (
	MCDStatus uint32 = 0x00
	MCDDCR    uint32 = 0x02
	MCDVSR    uint32 = 0x04
	MCDDDR    uint32 = 0x08
	MCDDCP    uint32 = 0x0A
)

// M48T08 clock registers, as byte offsets into the NVRAM.
const (
	RTCControl uint16 = 0x1FF8
	RTCSeconds uint16 = 0x1FF9
	RTCMinutes uint16 = 0x1FFA
	RTCHours   uint16 = 0x1FFB
	RTCDay     uint16 = 0x1FFC
	RTCDate    uint16 = 0x1FFD
	RTCMonth   uint16 = 0x1FFE
	RTCYear    uint16 = 0x1FFF
)
