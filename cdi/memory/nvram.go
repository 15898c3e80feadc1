package memory

import (
	"log/slog"
	"os"

	"github.com/pkg/errors"

	"github.com/valerio/go-cdi/cdi/addr"
	"github.com/valerio/go-cdi/cdi/bit"
)

// NVRAMSize is the number of bytes in the M48T08.
const NVRAMSize = 0x2000

// RTC control register bits.
const (
	RTCWrite uint8 = 0x80
	RTCRead  uint8 = 0x40
)

// rtcFieldMasks are the writable bits of the clock fields 0x1FF9..0x1FFF:
// seconds, minutes, hours, day of week, day of month, month, year.
var rtcFieldMasks = [7]uint8{0xFF, 0x7F, 0x3F, 0x47, 0x3F, 0x1F, 0xFF}

// M48T08 is the battery-backed 8 KiB NVRAM with its clock registers in the
// top eight bytes. It sits on the high byte lane of the bus: byte n of the
// device is the high byte of bus word n.
type M48T08 struct {
	data [NVRAMSize]byte
}

// NewM48T08 creates a cleared NVRAM.
func NewM48T08() *M48T08 {
	return &M48T08{}
}

// Byte returns device byte n.
func (m *M48T08) Byte(n uint16) uint8 {
	return m.data[n%NVRAMSize]
}

// Bytes exposes the device contents.
func (m *M48T08) Bytes() []byte {
	return m.data[:]
}

// Read16 returns the device byte for a bus byte offset on the high lane.
func (m *M48T08) Read16(offset uint32, _ uint16) uint16 {
	n := uint16(offset>>1) % NVRAMSize
	return uint16(m.data[n]) << 8
}

// Write16 stores the high byte of data. Clock fields only change while the
// control register's write bit is set.
func (m *M48T08) Write16(offset uint32, data, mask uint16) {
	if !bit.AccessesHigh(mask) {
		return
	}
	n := uint16(offset>>1) % NVRAMSize
	m.SetByte(n, bit.High(data))
}

// SetByte stores value at device byte n following the clock write rules.
func (m *M48T08) SetByte(n uint16, value uint8) {
	n %= NVRAMSize
	if n > addr.RTCControl {
		if m.data[addr.RTCControl]&RTCWrite == 0 {
			slog.Debug("RTC field write while locked", "index", hex16(n), "value", hex8(value))
			return
		}
		value &= rtcFieldMasks[n-addr.RTCSeconds]
	}
	m.data[n] = value
}

// Load restores the device contents from image.
func (m *M48T08) Load(image []byte) error {
	if len(image) != NVRAMSize {
		return errors.Errorf("nvram image is %d bytes, expected %d", len(image), NVRAMSize)
	}
	copy(m.data[:], image)
	return nil
}

// LoadFile restores the device contents from path.
func (m *M48T08) LoadFile(path string) error {
	image, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading nvram %s", path)
	}
	return errors.Wrapf(m.Load(image), "loading nvram %s", path)
}

// SaveFile writes the device contents to path.
func (m *M48T08) SaveFile(path string) error {
	if err := os.WriteFile(path, m.data[:], 0o644); err != nil {
		return errors.Wrapf(err, "writing nvram %s", path)
	}
	return nil
}
