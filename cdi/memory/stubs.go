package memory

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-cdi/cdi/bit"
)

// CDIC is a placeholder for the CD interface controller. Reads return 0 and
// writes are logged and dropped.
type CDIC struct{}

// NewCDIC creates the CDIC placeholder.
func NewCDIC() *CDIC {
	return &CDIC{}
}

func (c *CDIC) Read16(offset uint32, mask uint16) uint16 {
	slog.Debug("CDIC read not implemented", "offset", hex32(offset), "mask", hex16(mask))
	return 0
}

func (c *CDIC) Write16(offset uint32, data, mask uint16) {
	slog.Debug("CDIC write not implemented", "offset", hex32(offset), "data", hex16(data), "mask", hex16(mask))
}

// Slave controller register offsets.
const (
	slaveStatus   = 0x0
	slaveData     = 0x4
	slaveRegister = 0x6
)

// Slave controller queries.
const (
	SlaveQueryVideoStandard uint8 = 0xF6
	SlaveQueryInfo          uint8 = 0xF7
)

// VideoStandardNTSC is the answer to SlaveQueryVideoStandard.
const VideoStandardNTSC uint8 = 0x01

// slaveInfoReply is the canned reply streamed from the status register
// after SlaveQueryInfo.
var slaveInfoReply = [...]uint8{0x00, 0x00, 0x00, 0x00, 0x35, 0x0D, 0x03, 0x70}

// Slave models the query protocol of the slave microcontroller that
// handles input devices and the front panel. Software selects a query by
// writing its code, then reads the echo followed by the answer.
type Slave struct {
	register  uint8
	readIndex int
	infoIndex int
}

// NewSlave creates an idle slave controller.
func NewSlave() *Slave {
	return &Slave{}
}

// Reset clears the selected query.
func (s *Slave) Reset() {
	*s = Slave{}
}

func (s *Slave) Read16(offset uint32, mask uint16) uint16 {
	switch offset &^ 1 {
	case slaveStatus:
		if s.register != SlaveQueryInfo {
			return 0
		}
		v := slaveInfoReply[s.infoIndex]
		s.infoIndex = (s.infoIndex + 1) % len(slaveInfoReply)
		return uint16(v)

	case slaveData:
		if s.readIndex == 0 {
			s.readIndex++
			return uint16(s.register)
		}
		switch s.register {
		case SlaveQueryVideoStandard:
			return uint16(VideoStandardNTSC)
		}
		slog.Debug("Unknown slave query", "register", hex8(s.register))
		return 0
	}

	slog.Debug("Unknown slave read", "offset", hex32(offset), "mask", hex16(mask))
	return 0
}

func (s *Slave) Write16(offset uint32, data, mask uint16) {
	if offset&^1 != slaveRegister || !bit.AccessesLow(mask) {
		slog.Debug("Unknown slave write", "offset", hex32(offset), "data", hex16(data), "mask", hex16(mask))
		return
	}
	s.register = bit.Low(data)
	s.readIndex = 0
	s.infoIndex = 0
}

func hex8(v uint8) string   { return fmt.Sprintf("0x%02X", v) }
func hex16(v uint16) string { return fmt.Sprintf("0x%04X", v) }
func hex32(v uint32) string { return fmt.Sprintf("0x%08X", v) }
