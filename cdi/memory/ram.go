package memory

import (
	"log/slog"
	"os"

	"github.com/pkg/errors"

	"github.com/valerio/go-cdi/cdi/bit"
)

// RAM is a block of big-endian word-addressed memory. Offsets are byte
// offsets into the block and wrap at its size, which must be a power of two.
// The same storage is visible as words, for bus and display-list access,
// and as bytes, for pixel fetch.
type RAM struct {
	data []byte
	mask uint32
}

// NewRAM allocates a zeroed block of size bytes.
func NewRAM(size uint32) *RAM {
	if size == 0 || size&(size-1) != 0 {
		panic("memory: RAM size must be a power of two")
	}
	return &RAM{
		data: make([]byte, size),
		mask: size - 1,
	}
}

// Size returns the block size in bytes.
func (r *RAM) Size() uint32 { return uint32(len(r.data)) }

// Bytes exposes the backing storage.
func (r *RAM) Bytes() []byte { return r.data }

// Byte returns the byte at offset.
func (r *RAM) Byte(offset uint32) uint8 {
	return r.data[offset&r.mask]
}

// SetByte stores one byte at offset.
func (r *RAM) SetByte(offset uint32, value uint8) {
	r.data[offset&r.mask] = value
}

// Word returns the big-endian word containing offset.
func (r *RAM) Word(offset uint32) uint16 {
	o := offset & r.mask &^ 1
	return bit.Combine(r.data[o], r.data[o+1])
}

// Long returns the big-endian 32-bit value at offset.
func (r *RAM) Long(offset uint32) uint32 {
	return uint32(r.Word(offset))<<16 | uint32(r.Word(offset+2))
}

// Read16 is the bus read: the word at offset. The mask is ignored.
func (r *RAM) Read16(offset uint32, _ uint16) uint16 {
	return r.Word(offset)
}

// Write16 is the bus write: only the lanes selected by mask change.
func (r *RAM) Write16(offset uint32, data, mask uint16) {
	o := offset & r.mask &^ 1
	if bit.AccessesHigh(mask) {
		r.data[o] = bit.High(data)
	}
	if bit.AccessesLow(mask) {
		r.data[o+1] = bit.Low(data)
	}
}

// Clear zeroes the block.
func (r *RAM) Clear() {
	clear(r.data)
}

// Load copies image into the start of the block. Images larger than the
// block are rejected; shorter ones leave the remainder untouched.
func (r *RAM) Load(image []byte) error {
	if len(image) > len(r.data) {
		return errors.Errorf("image of %d bytes does not fit in %d bytes", len(image), len(r.data))
	}
	copy(r.data, image)
	return nil
}

// LoadFile reads path into the start of the block.
func (r *RAM) LoadFile(path string) error {
	image, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	return errors.Wrapf(r.Load(image), "loading %s", path)
}

// ROM is read-only memory. Bus writes are logged and dropped.
type ROM struct {
	*RAM
}

// NewROM allocates a zeroed ROM of size bytes.
func NewROM(size uint32) *ROM {
	return &ROM{RAM: NewRAM(size)}
}

// Write16 drops the write.
func (r *ROM) Write16(offset uint32, data, mask uint16) {
	slog.Warn("Write to ROM ignored", "offset", hex32(offset), "data", hex16(data), "mask", hex16(mask))
}
