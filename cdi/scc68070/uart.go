package scc68070

// UART mode register fields.
const (
	UMROperatingMode uint8 = 0xC0
	UMRModeNormal    uint8 = 0x00
	UMRModeEcho      uint8 = 0x40
	UMRModeLoopback  uint8 = 0x80
	UMRModeRemote    uint8 = 0xC0
	UMRTxControl     uint8 = 0x10
	UMRParityControl uint8 = 0x08
	UMRParity        uint8 = 0x04
	UMRStopBits      uint8 = 0x02
	UMRCharLength    uint8 = 0x01
)

// UART status register bits.
const (
	USRReceivedBreak uint8 = 0x80
	USRFramingError  uint8 = 0x40
	USRParityError   uint8 = 0x20
	USROverrunError  uint8 = 0x10
	USRTxEmpty       uint8 = 0x08
	USRTxReady       uint8 = 0x04
	USRRxReady       uint8 = 0x01
)

// UART is the SCC68070 serial port register set. The transmitter is always
// ready; transmitted bytes go to the attached sink.
type UART struct {
	mode         uint8
	status       uint8
	clockSelect  uint8
	command      uint8
	transmitHold uint8
	receiveHold  uint8
}

// readStatus reports the transmitter and receiver as ready alongside the stored bits.
func (u *UART) readStatus() uint8 {
	return u.status | USRTxReady | USRRxReady
}
